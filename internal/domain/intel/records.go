package intel

import (
	"time"

	"github.com/google/uuid"
)

// NAFlag is an explicit "not applicable" declaration on one assessment
// question. The repository returns one per NA-tagged response; the aggregator
// keeps at most one per question id.
type NAFlag struct {
	QuestionID   string    `json:"questionId"`
	QuestionText string    `json:"questionText"`
	Category     string    `json:"category"`
	FlaggedAt    time.Time `json:"flaggedAt"`
}

// NATask is a completion task the company marked not applicable.
type NATask struct {
	TaskID    uuid.UUID `json:"taskId"`
	TaskTitle string    `json:"taskTitle"`
	Category  string    `json:"category"`
}

// CategoryNAMark is one distinct assessment question's NA state, used to
// build the per-category breakdown.
type CategoryNAMark struct {
	Category string
	IsNA     bool
}

// CategoryNACount is the per-category tally of distinct questions and how
// many of them are marked not applicable.
type CategoryNACount struct {
	Category       string `json:"category"`
	TotalQuestions int    `json:"totalQuestions"`
	NACount        int    `json:"naCount"`
}

// DisclosureStatus is the terminal state of one disclosure cycle.
type DisclosureStatus string

const (
	DisclosureCompleted DisclosureStatus = "completed"
	DisclosureSkipped   DisclosureStatus = "skipped"
)

// DisclosureMarker records that a periodic disclosure prompt set was either
// completed or skipped.
type DisclosureMarker struct {
	CycleID     uuid.UUID        `json:"cycleId"`
	Status      DisclosureStatus `json:"status"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
}

// DisclosureResponse is one self-reported yes/no change answer.
type DisclosureResponse struct {
	QuestionKey       string    `json:"questionKey"`
	QuestionText      string    `json:"questionText"`
	Category          string    `json:"category"`
	Answer            bool      `json:"answer"`
	FollowUpText      string    `json:"followUpText,omitempty"`
	RespondedAt       time.Time `json:"respondedAt"`
	TriggeredFollowUp bool      `json:"triggeredFollowUp"`
}

// AssessmentNote is a non-empty free-text note attached to an assessment answer.
type AssessmentNote struct {
	QuestionID   string    `json:"questionId"`
	QuestionText string    `json:"questionText"`
	Category     string    `json:"category"`
	Text         string    `json:"text"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NoteSource tags where a task completion note was recorded.
type NoteSource string

const (
	// NoteSourceLegacy is the single completion-note field on the task itself.
	NoteSourceLegacy NoteSource = "legacy"
	// NoteSourceRecord is the newer multi-note-per-task store.
	NoteSourceRecord NoteSource = "record"
)

// TaskNote is a non-empty completion note on a task, tagged with its origin.
type TaskNote struct {
	TaskID      uuid.UUID  `json:"taskId"`
	TaskTitle   string     `json:"taskTitle"`
	Category    string     `json:"category"`
	Text        string     `json:"text"`
	CompletedAt time.Time  `json:"completedAt"`
	Source      NoteSource `json:"source"`
}

// CheckIn is one completed periodic check-in. The change notes and the
// additional-notes field are optional free text; the confidence rating is the
// owner's self-reported score for the period.
type CheckIn struct {
	CheckInID          uuid.UUID `json:"checkInId"`
	TeamChanged        *bool     `json:"teamChanged,omitempty"`
	TeamChangeNote     *string   `json:"teamChangeNote,omitempty"`
	CustomerChanged    *bool     `json:"customerChanged,omitempty"`
	CustomerChangeNote *string   `json:"customerChangeNote,omitempty"`
	ConfidenceRating   *float64  `json:"confidenceRating,omitempty"`
	AdditionalNotes    *string   `json:"additionalNotes,omitempty"`
	CompletedAt        time.Time `json:"completedAt"`
}

// TimestampBundle carries the most recent activity timestamp per source.
// A nil entry means the source has no recorded activity ("unknown").
type TimestampBundle struct {
	DossierBuiltAt        *time.Time `json:"dossierBuiltAt,omitempty"`
	AssessmentUpdatedAt   *time.Time `json:"assessmentUpdatedAt,omitempty"`
	TaskCompletedAt       *time.Time `json:"taskCompletedAt,omitempty"`
	DocumentUpdatedAt     *time.Time `json:"documentUpdatedAt,omitempty"`
	SignalCreatedAt       *time.Time `json:"signalCreatedAt,omitempty"`
	CheckInCompletedAt    *time.Time `json:"checkInCompletedAt,omitempty"`
	DisclosureRespondedAt *time.Time `json:"disclosureRespondedAt,omitempty"`
}
