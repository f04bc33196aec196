package intel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DossierService builds and serves the per-company dossier snapshot holding
// the nine base profile sections. Rebuilds read every base source, assemble a
// fresh snapshot and upsert it (one snapshot per company, last write wins).
type DossierService struct {
	sources intel.DossierSourceReader
	repo    intel.DossierRepository
	events  shared.EventPublisher
	logger  *zap.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]bool
}

// NewDossierService creates a dossier service. The event publisher may be nil
// when rebuild notifications are not wanted.
func NewDossierService(
	sources intel.DossierSourceReader,
	repo intel.DossierRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *DossierService {
	return &DossierService{
		sources:  sources,
		repo:     repo,
		events:   events,
		logger:   logger,
		inFlight: make(map[uuid.UUID]bool),
	}
}

// GetCurrent returns the company's current snapshot, or ErrSnapshotNotFound
// when no dossier has been built yet.
func (s *DossierService) GetCurrent(ctx context.Context, companyID uuid.UUID) (*intel.DossierSnapshot, error) {
	snapshot, err := s.repo.FindByCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: company %s", intel.ErrSnapshotNotFound, companyID)
		}
		return nil, err
	}
	return snapshot, nil
}

// Rebuild assembles a fresh snapshot from the base sources and persists it.
// Only one rebuild per company runs at a time; a second concurrent caller
// gets ErrRebuildConflict.
func (s *DossierService) Rebuild(ctx context.Context, companyID uuid.UUID, reason string) (*intel.DossierSnapshot, error) {
	if !s.begin(companyID) {
		return nil, fmt.Errorf("%w: company %s", intel.ErrRebuildConflict, companyID)
	}
	defer s.end(companyID)

	started := time.Now()

	company, err := s.sources.CompanyProfile(ctx, companyID)
	if err != nil {
		return nil, err
	}
	figures, err := s.sources.LatestFinancials(ctx, companyID)
	if err != nil {
		return nil, err
	}
	assessment, err := s.sources.AssessmentStats(ctx, companyID)
	if err != nil {
		return nil, err
	}
	valuation, err := s.sources.ValuationHistory(ctx, companyID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.sources.TaskStats(ctx, companyID)
	if err != nil {
		return nil, err
	}
	evidence, err := s.sources.EvidenceStats(ctx, companyID)
	if err != nil {
		return nil, err
	}
	signals, err := s.sources.SignalStats(ctx, companyID)
	if err != nil {
		return nil, err
	}
	engagement, err := s.sources.EngagementStats(ctx, companyID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	identity := intel.BuildIdentitySection(company)

	snapshot := &intel.DossierSnapshot{
		CompanyID:  companyID,
		BuiltAt:    now,
		Reason:     reason,
		Version:    s.nextVersion(ctx, companyID),
		Identity:   identity,
		Financials: intel.GradeFinancials(figures),
		Assessment: assessment,
		Valuation:  valuation,
		Tasks:      tasks,
		Evidence:   intel.BuildEvidenceSection(evidence),
		Signals:    signals,
		Engagement: intel.BuildEngagementSection(engagement, now),
		AIContext:  intel.BuildAIContextSection(identity, assessment, signals),
	}

	if err := s.repo.Upsert(ctx, snapshot); err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, intel.NewDossierRebuiltEvent(snapshot)); err != nil {
			s.logger.Warn("Failed to publish dossier rebuilt event",
				zap.String("company_id", companyID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("Dossier snapshot rebuilt",
		zap.String("company_id", companyID.String()),
		zap.String("reason", reason),
		zap.Int("version", snapshot.Version),
		zap.Duration("took", time.Since(started)))

	return snapshot, nil
}

// nextVersion numbers the snapshot after the one being replaced. A failed
// read just restarts the count; the version is provenance, not a lock.
func (s *DossierService) nextVersion(ctx context.Context, companyID uuid.UUID) int {
	previous, err := s.repo.FindByCompany(ctx, companyID)
	if err != nil || previous == nil {
		return 1
	}
	return previous.Version + 1
}

func (s *DossierService) begin(companyID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[companyID] {
		return false
	}
	s.inFlight[companyID] = true
	return true
}

func (s *DossierService) end(companyID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, companyID)
}

var _ intel.DossierProvider = (*DossierService)(nil)
