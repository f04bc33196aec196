package models

import (
	"time"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanyModel is the persistence model for the company record.
type CompanyModel struct {
	BaseModel
	Name          string `gorm:"type:varchar(200);not null"`
	Description   string `gorm:"type:text"`
	Industry      string `gorm:"type:varchar(100)"`
	BusinessModel string `gorm:"type:varchar(100)"`
	TeamSize      int    `gorm:"not null;default:0"`
	FoundedYear   int    `gorm:"not null;default:0"`
	RevenueModel  string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to the company read model.
func (m *CompanyModel) ToDomain() *intel.CompanyProfile {
	return &intel.CompanyProfile{
		CompanyID:     m.ID,
		Name:          m.Name,
		Description:   m.Description,
		Industry:      m.Industry,
		BusinessModel: m.BusinessModel,
		TeamSize:      m.TeamSize,
		FoundedYear:   m.FoundedYear,
		RevenueModel:  m.RevenueModel,
	}
}

// AssessmentQuestionModel is the catalog of assessment questions companies
// answer. Categories are derived from this catalog, so a category with no
// responses yet still appears in per-category breakdowns.
type AssessmentQuestionModel struct {
	QuestionID string    `gorm:"type:varchar(64);primaryKey"`
	Text       string    `gorm:"type:text;not null"`
	Category   string    `gorm:"type:varchar(100);not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AssessmentQuestionModel) TableName() string {
	return "assessment_questions"
}

// AssessmentResponseModel is one answer a company gave to an assessment
// question. A question may carry several responses across rounds; readers
// that need one-per-question take the most recently updated.
type AssessmentResponseModel struct {
	BaseModel
	CompanyID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_assessment_responses_company"`
	QuestionID    string           `gorm:"type:varchar(64);not null;index"`
	NotApplicable bool             `gorm:"not null;default:false"`
	Note          string           `gorm:"type:text"`
	Score         *decimal.Decimal `gorm:"type:decimal(10,4)"`
}

// TableName returns the table name for GORM
func (AssessmentResponseModel) TableName() string {
	return "assessment_responses"
}

// AssessmentRoundModel marks one completed pass through the assessment.
type AssessmentRoundModel struct {
	BaseModel
	CompanyID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	CompletedAt  *time.Time       `gorm:"index"`
	OverallScore *decimal.Decimal `gorm:"type:decimal(10,4)"`
}

// TableName returns the table name for GORM
func (AssessmentRoundModel) TableName() string {
	return "assessment_rounds"
}

// CategoryScoreModel stores the per-category score assigned by the scoring
// models. Scores are inputs to the intelligence layer, never computed by it.
type CategoryScoreModel struct {
	BaseModel
	CompanyID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_category_scores_company_category,priority:1"`
	Category  string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_category_scores_company_category,priority:2"`
	Score     decimal.Decimal `gorm:"type:decimal(10,4);not null"`
}

// TableName returns the table name for GORM
func (CategoryScoreModel) TableName() string {
	return "assessment_category_scores"
}

// FinancialSnapshotModel is one reported set of financial figures.
type FinancialSnapshotModel struct {
	BaseModel
	CompanyID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	Revenue    *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Profit     *decimal.Decimal `gorm:"type:decimal(18,2)"`
	FiscalYear int              `gorm:"not null;default:0"`
	ReportedAt time.Time        `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (FinancialSnapshotModel) TableName() string {
	return "financial_snapshots"
}

// ValuationSnapshotModel is one computed valuation point. The newest row per
// company is the current value.
type ValuationSnapshotModel struct {
	BaseModel
	CompanyID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Value     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method    string          `gorm:"type:varchar(50)"`
	AsOf      time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ValuationSnapshotModel) TableName() string {
	return "valuation_snapshots"
}

// Task statuses as persisted.
const (
	TaskStatusOpen          = "open"
	TaskStatusCompleted     = "completed"
	TaskStatusNotApplicable = "not_applicable"
)

// TaskModel is one completion task. CompletionNote is the legacy single-note
// field; task_notes carries the newer multi-note store.
type TaskModel struct {
	BaseModel
	CompanyID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title          string     `gorm:"type:varchar(300);not null"`
	Category       string     `gorm:"type:varchar(100)"`
	Status         string     `gorm:"type:varchar(20);not null;default:'open';index"`
	CompletionNote string     `gorm:"type:text"`
	CompletedAt    *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// TaskNoteModel is one note from the multi-note-per-task store.
type TaskNoteModel struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Text      string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (TaskNoteModel) TableName() string {
	return "task_notes"
}

// Disclosure cycle statuses as persisted.
const (
	DisclosureCycleCompleted = "completed"
	DisclosureCycleSkipped   = "skipped"
)

// DisclosureCycleModel marks one periodic disclosure prompt set as completed
// or skipped.
type DisclosureCycleModel struct {
	BaseModel
	CompanyID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status      string     `gorm:"type:varchar(20);not null"`
	CompletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DisclosureCycleModel) TableName() string {
	return "disclosure_cycles"
}

// DisclosureResponseModel is one self-reported yes/no change answer.
type DisclosureResponseModel struct {
	BaseModel
	CompanyID         uuid.UUID `gorm:"type:uuid;not null;index:idx_disclosure_responses_company"`
	CycleID           uuid.UUID `gorm:"type:uuid;not null;index"`
	QuestionKey       string    `gorm:"type:varchar(100);not null"`
	QuestionText      string    `gorm:"type:text;not null"`
	Category          string    `gorm:"type:varchar(100);not null"`
	Answer            bool      `gorm:"not null;default:false"`
	FollowUpText      string    `gorm:"type:text"`
	TriggeredFollowUp bool      `gorm:"not null;default:false"`
	RespondedAt       time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (DisclosureResponseModel) TableName() string {
	return "disclosure_responses"
}

// ToDomain converts the persistence model to the disclosure response read model.
func (m *DisclosureResponseModel) ToDomain() intel.DisclosureResponse {
	return intel.DisclosureResponse{
		QuestionKey:       m.QuestionKey,
		QuestionText:      m.QuestionText,
		Category:          m.Category,
		Answer:            m.Answer,
		FollowUpText:      m.FollowUpText,
		RespondedAt:       m.RespondedAt,
		TriggeredFollowUp: m.TriggeredFollowUp,
	}
}

// Check-in statuses as persisted.
const (
	CheckInStatusPending   = "pending"
	CheckInStatusCompleted = "completed"
)

// CheckInModel is one periodic structured update.
type CheckInModel struct {
	BaseModel
	CompanyID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status             string     `gorm:"type:varchar(20);not null;default:'pending'"`
	TeamChanged        *bool      `gorm:""`
	TeamChangeNote     *string    `gorm:"type:text"`
	CustomerChanged    *bool      `gorm:""`
	CustomerChangeNote *string    `gorm:"type:text"`
	ConfidenceRating   *float64   `gorm:""`
	AdditionalNotes    *string    `gorm:"type:text"`
	CompletedAt        *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (CheckInModel) TableName() string {
	return "check_ins"
}

// ToDomain converts the persistence model to the check-in read model.
// CompletedAt must be non-nil; only completed check-ins are read.
func (m *CheckInModel) ToDomain() intel.CheckIn {
	ci := intel.CheckIn{
		CheckInID:          m.ID,
		TeamChanged:        m.TeamChanged,
		TeamChangeNote:     m.TeamChangeNote,
		CustomerChanged:    m.CustomerChanged,
		CustomerChangeNote: m.CustomerChangeNote,
		ConfidenceRating:   m.ConfidenceRating,
		AdditionalNotes:    m.AdditionalNotes,
	}
	if m.CompletedAt != nil {
		ci.CompletedAt = *m.CompletedAt
	}
	return ci
}

// DocumentModel is one uploaded evidence document.
type DocumentModel struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName  string    `gorm:"type:varchar(300);not null"`
	Category  string    `gorm:"type:varchar(100);not null;index"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// Signal statuses as persisted.
const (
	SignalStatusOpen     = "open"
	SignalStatusResolved = "resolved"
)

// SignalModel is one signal raised against the company by the signal pipeline.
type SignalModel struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind      string    `gorm:"type:varchar(30);not null"`
	Severity  string    `gorm:"type:varchar(20);not null"`
	Title     string    `gorm:"type:varchar(300);not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'open';index"`
}

// TableName returns the table name for GORM
func (SignalModel) TableName() string {
	return "signals"
}

// ToDomain converts the persistence model to the signal digest read model.
func (m *SignalModel) ToDomain() intel.SignalDigest {
	return intel.SignalDigest{
		SignalID:  m.ID,
		Kind:      m.Kind,
		Severity:  m.Severity,
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
	}
}
