package intel

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NoActivitySentinel is the days-since-activity value recorded for companies
// with no activity at all.
const NoActivitySentinel = 9999

// IdentitySection describes who the company is. Industry, business model,
// team size and revenue model together form the business-profile factors.
type IdentitySection struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Industry      string `json:"industry,omitempty"`
	BusinessModel string `json:"businessModel,omitempty"`
	TeamSize      int    `json:"teamSize,omitempty"`
	FoundedYear   int    `json:"foundedYear,omitempty"`
	RevenueModel  string `json:"revenueModel,omitempty"`
}

// HasProfileFactors reports whether any business-profile factor is filled in.
func (s IdentitySection) HasProfileFactors() bool {
	return s.Industry != "" || s.BusinessModel != "" || s.TeamSize > 0 || s.RevenueModel != ""
}

// FinancialsSection carries the latest reported figures. The completeness
// grade is assigned when the dossier is built and passed through unchanged by
// the classifier.
type FinancialsSection struct {
	LatestRevenue *decimal.Decimal `json:"latestRevenue,omitempty"`
	LatestProfit  *decimal.Decimal `json:"latestProfit,omitempty"`
	FiscalYear    int              `json:"fiscalYear,omitempty"`
	Completeness  Completeness     `json:"completeness"`
}

// HasData reports whether any financial figure was reported.
func (s FinancialsSection) HasData() bool {
	return s.LatestRevenue != nil || s.LatestProfit != nil
}

// CategoryScore is one assessment category's score.
type CategoryScore struct {
	Category string          `json:"category"`
	Score    decimal.Decimal `json:"score"`
}

// AssessmentSection summarizes the company's assessment progress. Scores are
// inputs produced by the scoring models, never recomputed here.
type AssessmentSection struct {
	QuestionsAnswered    int              `json:"questionsAnswered"`
	TotalQuestions       int              `json:"totalQuestions"`
	AnsweredCategories   []string         `json:"answeredCategories"`
	UnansweredCategories []string         `json:"unansweredCategories"`
	CategoryScores       []CategoryScore  `json:"categoryScores"`
	OverallScore         *decimal.Decimal `json:"overallScore,omitempty"`
	LastCompletedAt      *time.Time       `json:"lastCompletedAt,omitempty"`
}

// ValuationPoint is one historical valuation snapshot.
type ValuationPoint struct {
	AsOf  time.Time       `json:"asOf"`
	Value decimal.Decimal `json:"value"`
}

// ValuationSection carries the current valuation and its history,
// most recent first.
type ValuationSection struct {
	CurrentValue *decimal.Decimal `json:"currentValue,omitempty"`
	Method       string           `json:"method,omitempty"`
	History      []ValuationPoint `json:"history"`
}

// TaskDigest is a compact view of one task for the dossier.
type TaskDigest struct {
	TaskID      uuid.UUID  `json:"taskId"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// TasksSection summarizes completion-task progress.
type TasksSection struct {
	TotalTasks      int          `json:"totalTasks"`
	CompletedTasks  int          `json:"completedTasks"`
	OpenTasks       int          `json:"openTasks"`
	RecentCompleted []TaskDigest `json:"recentCompleted"`
}

// DocumentDigest is a compact view of one uploaded document.
type DocumentDigest struct {
	DocumentID uuid.UUID `json:"documentId"`
	FileName   string    `json:"fileName"`
	Category   string    `json:"category"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// EvidenceSection summarizes the company's document room. CategoryGaps lists
// the expected evidence categories with no uploaded document.
type EvidenceSection struct {
	DocumentCount int              `json:"documentCount"`
	CategoryGaps  []string         `json:"categoryGaps"`
	RecentUploads []DocumentDigest `json:"recentUploads"`
}

// EvidenceCategories returns the canonical evidence checklist categories a
// complete document room covers.
func EvidenceCategories() []string {
	return []string{"financial", "legal", "operations", "customers", "team"}
}

// Signal kinds and severities as recorded by the signal pipeline.
const (
	SignalKindRisk          = "risk"
	SignalKindOpportunity   = "opportunity"
	SignalKindValueMovement = "value_movement"

	SignalSeverityLow      = "low"
	SignalSeverityMedium   = "medium"
	SignalSeverityHigh     = "high"
	SignalSeverityCritical = "critical"
)

// SignalDigest is a compact view of one signal raised against the company.
type SignalDigest struct {
	SignalID  uuid.UUID `json:"signalId"`
	Kind      string    `json:"kind"`
	Severity  string    `json:"severity"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// SignalsSection carries open signals plus the count of value-movement events.
type SignalsSection struct {
	OpenSignals         []SignalDigest `json:"openSignals"`
	ValueMovementEvents int            `json:"valueMovementEvents"`
}

// EngagementSection summarizes how actively the company works the platform.
// DaysSinceActivity is NoActivitySentinel for companies that were never active.
type EngagementSection struct {
	CheckInsCompleted int        `json:"checkInsCompleted"`
	DaysSinceActivity int        `json:"daysSinceActivity"`
	LastActivityAt    *time.Time `json:"lastActivityAt,omitempty"`
}

// AIContextSection carries the hints downstream reasoning clients seed their
// prompts with.
type AIContextSection struct {
	RiskFactors []string `json:"riskFactors"`
	FocusAreas  []string `json:"focusAreas"`
	Summary     string   `json:"summary,omitempty"`
}

// Rebuild reasons recorded on the snapshot for provenance.
const (
	RebuildReasonProfileBuild = "profile_build"
	RebuildReasonManual       = "manual"
	RebuildReasonScheduled    = "scheduled_refresh"
)

// DossierSnapshot is the persisted result of one dossier build: the nine base
// sections plus build provenance. Rebuilds replace the snapshot wholesale
// (upsert per company, last write wins).
type DossierSnapshot struct {
	CompanyID uuid.UUID `json:"companyId"`
	BuiltAt   time.Time `json:"builtAt"`
	Reason    string    `json:"reason,omitempty"`
	Version   int       `json:"version"`

	Identity   IdentitySection   `json:"identity"`
	Financials FinancialsSection `json:"financials"`
	Assessment AssessmentSection `json:"assessment"`
	Valuation  ValuationSection  `json:"valuation"`
	Tasks      TasksSection      `json:"tasks"`
	Evidence   EvidenceSection   `json:"evidence"`
	Signals    SignalsSection    `json:"signals"`
	Engagement EngagementSection `json:"engagement"`
	AIContext  AIContextSection  `json:"aiContext"`
}
