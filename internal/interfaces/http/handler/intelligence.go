package handler

import (
	"time"

	intelapp "github.com/bizlens/backend/internal/application/intel"
	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/infrastructure/telemetry"
	"github.com/bizlens/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// IntelligenceHandler serves the composite intelligence profile
type IntelligenceHandler struct {
	BaseHandler
	profiles *intelapp.ProfileService
	metrics  *telemetry.ProfileMetrics
}

// NewIntelligenceHandler creates a new IntelligenceHandler. Metrics may be nil
// when instrumentation is not wanted.
func NewIntelligenceHandler(profiles *intelapp.ProfileService, metrics *telemetry.ProfileMetrics) *IntelligenceHandler {
	return &IntelligenceHandler{
		profiles: profiles,
		metrics:  metrics,
	}
}

// GetProfile godoc
// @ID           getCompanyIntelligence
// @Summary      Get the intelligence profile for a company
// @Description  Assembles the twelve-section intelligence profile. The optional
// @Description  sections parameter restricts which supplemental sections are
// @Description  computed; omitted sections carry their empty defaults.
// @Tags         intelligence
// @Produce      json
// @Param        companyId path string true "Company ID" format(uuid)
// @Param        sections query string false "Comma separated section names"
// @Success      200 {object} APIResponse[intel.Profile]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /companies/{companyId}/intelligence [get]
func (h *IntelligenceHandler) GetProfile(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var query dto.ProfileQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	started := time.Now()

	var profile *intel.Profile
	if names := query.SectionNames(); len(names) > 0 {
		sections := make([]intel.SectionName, 0, len(names))
		for _, raw := range names {
			parsed, err := intel.ParseSectionName(raw)
			if err != nil {
				h.HandleDomainError(c, err)
				return
			}
			sections = append(sections, parsed)
		}
		profile, err = h.profiles.BuildProfileSections(c.Request.Context(), companyID, sections)
	} else {
		profile, err = h.profiles.BuildProfile(c.Request.Context(), companyID)
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordProfileBuild(c.Request.Context(), time.Since(started))
		for _, name := range profile.DegradedSections {
			h.metrics.RecordSectionDegraded(c.Request.Context(), name.String())
		}
	}

	h.Success(c, profile)
}

// GetSection godoc
// @ID           getCompanyIntelligenceSection
// @Summary      Get one intelligence profile section
// @Description  Computes and returns the content of a single named section
// @Tags         intelligence
// @Produce      json
// @Param        companyId path string true "Company ID" format(uuid)
// @Param        sectionName path string true "Section name"
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /companies/{companyId}/intelligence/sections/{sectionName} [get]
func (h *IntelligenceHandler) GetSection(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	name, err := intel.ParseSectionName(c.Param("sectionName"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	content, err := h.profiles.BuildSection(c.Request.Context(), companyID, name)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{
		"section": name.String(),
		"content": content,
	})
}
