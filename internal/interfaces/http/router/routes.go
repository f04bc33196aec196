package router

import (
	"github.com/bizlens/backend/internal/interfaces/http/handler"
)

// CompanyRoutes builds the company-scoped intelligence route group:
// profile reads, single-section reads, dossier access and archive exports.
func CompanyRoutes(
	intelligence *handler.IntelligenceHandler,
	dossier *handler.DossierHandler,
	archive *handler.ArchiveHandler,
) *DomainGroup {
	companies := NewDomainGroup("companies", "/companies")

	companies.GET("/:companyId/intelligence", intelligence.GetProfile).
		GET("/:companyId/intelligence/sections/:sectionName", intelligence.GetSection).
		POST("/:companyId/intelligence/archive", archive.Archive).
		GET("/:companyId/dossier", dossier.GetDossier).
		POST("/:companyId/dossier/rebuild", dossier.Rebuild)

	return companies
}

// SystemRoutes builds the system info and ping route group.
func SystemRoutes(system *handler.SystemHandler) *DomainGroup {
	group := NewDomainGroup("system", "/system")

	group.GET("/info", system.GetSystemInfo).
		GET("/ping", system.Ping)

	return group
}
