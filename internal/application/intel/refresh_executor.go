package intel

import (
	"context"
	"errors"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// RefreshExecutor runs scheduled dossier rebuilds. It satisfies the refresh
// scheduler's JobExecutor interface.
type RefreshExecutor struct {
	dossiers *DossierService
	logger   *zap.Logger
}

// NewRefreshExecutor creates a refresh executor
func NewRefreshExecutor(dossiers *DossierService, logger *zap.Logger) *RefreshExecutor {
	return &RefreshExecutor{
		dossiers: dossiers,
		logger:   logger,
	}
}

// Execute rebuilds the dossier for the job's company. A rebuild already in
// flight for the company is not an error; the running rebuild produces the
// fresh snapshot this job wanted.
func (e *RefreshExecutor) Execute(ctx context.Context, job *scheduler.RefreshJob) error {
	_, err := e.dossiers.Rebuild(ctx, job.CompanyID, job.Reason)
	if err != nil {
		if errors.Is(err, intel.ErrRebuildConflict) {
			e.logger.Debug("skipping scheduled refresh, rebuild already in flight",
				zap.String("company_id", job.CompanyID.String()))
			return nil
		}
		return err
	}
	return nil
}

var _ scheduler.JobExecutor = (*RefreshExecutor)(nil)
