package handler

import (
	intelapp "github.com/bizlens/backend/internal/application/intel"
	"github.com/gin-gonic/gin"
)

// ArchiveHandler exports point-in-time profile archives to object storage
type ArchiveHandler struct {
	BaseHandler
	archives *intelapp.ArchiveService
}

// NewArchiveHandler creates a new ArchiveHandler
func NewArchiveHandler(archives *intelapp.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{archives: archives}
}

// Archive godoc
// @ID           archiveCompanyIntelligence
// @Summary      Export the company's intelligence profile to archive storage
// @Description  Assembles the full profile and stores it as a dated JSON
// @Description  archive so the profile's state can be compared across dates
// @Tags         intelligence
// @Produce      json
// @Param        companyId path string true "Company ID" format(uuid)
// @Success      201 {object} APIResponse[intelapp.ArchiveResult]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /companies/{companyId}/intelligence/archive [post]
func (h *ArchiveHandler) Archive(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	result, err := h.archives.Archive(c.Request.Context(), companyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}
