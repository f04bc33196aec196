package handler

import (
	"time"

	intelapp "github.com/bizlens/backend/internal/application/intel"
	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/infrastructure/telemetry"
	"github.com/bizlens/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DossierHandler serves and rebuilds the persisted dossier snapshot
type DossierHandler struct {
	BaseHandler
	dossiers *intelapp.DossierService
	metrics  *telemetry.ProfileMetrics
}

// NewDossierHandler creates a new DossierHandler. Metrics may be nil when
// instrumentation is not wanted.
func NewDossierHandler(dossiers *intelapp.DossierService, metrics *telemetry.ProfileMetrics) *DossierHandler {
	return &DossierHandler{
		dossiers: dossiers,
		metrics:  metrics,
	}
}

// GetDossier godoc
// @ID           getCompanyDossier
// @Summary      Get the current dossier snapshot for a company
// @Description  Returns the persisted snapshot without triggering a rebuild.
// @Description  Responds 404 when no dossier has been built yet.
// @Tags         dossier
// @Produce      json
// @Param        companyId path string true "Company ID" format(uuid)
// @Success      200 {object} APIResponse[intel.DossierSnapshot]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /companies/{companyId}/dossier [get]
func (h *DossierHandler) GetDossier(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	snapshot, err := h.dossiers.GetCurrent(c.Request.Context(), companyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, snapshot)
}

// Rebuild godoc
// @ID           rebuildCompanyDossier
// @Summary      Rebuild the dossier snapshot for a company
// @Description  Reads every base source and replaces the snapshot. The optional
// @Description  body records a rebuild reason; without one the rebuild is
// @Description  recorded as manual. Responds 409 when a rebuild is already
// @Description  running for the company.
// @Tags         dossier
// @Accept       json
// @Produce      json
// @Param        companyId path string true "Company ID" format(uuid)
// @Param        request body dto.RebuildDossierRequest false "Rebuild options"
// @Success      200 {object} APIResponse[intel.DossierSnapshot]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /companies/{companyId}/dossier/rebuild [post]
func (h *DossierHandler) Rebuild(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	reason := intel.RebuildReasonManual
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		var req dto.RebuildDossierRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.ValidationError(c, []dto.ValidationDetail{
				{Field: "reason", Message: "Must be one of profile_build, manual, scheduled_refresh"},
			})
			return
		}
		if req.Reason != "" {
			reason = req.Reason
		}
	}

	started := time.Now()
	snapshot, err := h.dossiers.Rebuild(c.Request.Context(), companyID, reason)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordDossierRebuild(c.Request.Context(), reason, telemetry.RebuildStatusFailed, time.Since(started))
		}
		h.HandleDomainError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordDossierRebuild(c.Request.Context(), reason, telemetry.RebuildStatusSuccess, time.Since(started))
	}

	h.Success(c, snapshot)
}
