package intel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanyProfile is the raw company record feeding the identity section.
type CompanyProfile struct {
	CompanyID     uuid.UUID
	Name          string
	Description   string
	Industry      string
	BusinessModel string
	TeamSize      int
	FoundedYear   int
	RevenueModel  string
}

// FinancialFigures is the latest reported financial record, nil when the
// company has never reported.
type FinancialFigures struct {
	Revenue    *decimal.Decimal
	Profit     *decimal.Decimal
	FiscalYear int
}

// EvidenceStats is the raw document-room tally feeding the evidence section.
type EvidenceStats struct {
	DocumentCount     int
	PresentCategories []string
	RecentUploads     []DocumentDigest
}

// EngagementStats is the raw activity tally feeding the engagement section.
type EngagementStats struct {
	CheckInsCompleted int
	LastActivityAt    *time.Time
}

// DossierSourceReader exposes the aggregate queries the dossier builder runs
// when rebuilding a snapshot.
type DossierSourceReader interface {
	// CompanyProfile returns the company record, or shared.ErrNotFound.
	CompanyProfile(ctx context.Context, companyID uuid.UUID) (*CompanyProfile, error)
	// LatestFinancials returns the most recent financial record, nil when none.
	LatestFinancials(ctx context.Context, companyID uuid.UUID) (*FinancialFigures, error)
	// AssessmentStats summarizes assessment progress and stored scores.
	AssessmentStats(ctx context.Context, companyID uuid.UUID) (AssessmentSection, error)
	// ValuationHistory returns the current valuation and history, most recent first.
	ValuationHistory(ctx context.Context, companyID uuid.UUID) (ValuationSection, error)
	// TaskStats summarizes completion-task progress.
	TaskStats(ctx context.Context, companyID uuid.UUID) (TasksSection, error)
	// EvidenceStats tallies the document room.
	EvidenceStats(ctx context.Context, companyID uuid.UUID) (EvidenceStats, error)
	// SignalStats returns open signals and the value-movement event count.
	SignalStats(ctx context.Context, companyID uuid.UUID) (SignalsSection, error)
	// EngagementStats tallies check-ins and last recorded activity.
	EngagementStats(ctx context.Context, companyID uuid.UUID) (EngagementStats, error)
}
