package intel

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordReader exposes the read-only queries the aggregation layer runs
// against live business records. Every list is ordered most-recent-first.
type RecordReader interface {
	// ListAssessmentNAFlags returns the NA-tagged assessment responses.
	ListAssessmentNAFlags(ctx context.Context, companyID uuid.UUID) ([]NAFlag, error)
	// ListNATasks returns tasks marked not applicable.
	ListNATasks(ctx context.Context, companyID uuid.UUID) ([]NATask, error)
	// CategoryNABreakdown returns per-category question/NA tallies over all
	// distinct assessment questions the company has touched.
	CategoryNABreakdown(ctx context.Context, companyID uuid.UUID) ([]CategoryNACount, error)

	// ListDisclosureMarkers returns completion/skip markers for disclosure cycles.
	ListDisclosureMarkers(ctx context.Context, companyID uuid.UUID) ([]DisclosureMarker, error)
	// ListDisclosureResponses returns the full disclosure response history.
	ListDisclosureResponses(ctx context.Context, companyID uuid.UUID) ([]DisclosureResponse, error)

	// ListAssessmentNotes returns non-empty notes attached to assessment answers.
	ListAssessmentNotes(ctx context.Context, companyID uuid.UUID) ([]AssessmentNote, error)
	// ListLegacyTaskNotes returns completed tasks whose legacy single-field
	// completion note is non-empty.
	ListLegacyTaskNotes(ctx context.Context, companyID uuid.UUID) ([]TaskNote, error)
	// ListTaskNoteRecords returns notes from the multi-note-per-task store.
	ListTaskNoteRecords(ctx context.Context, companyID uuid.UUID) ([]TaskNote, error)
	// ListCompletedCheckIns returns completed periodic check-ins.
	ListCompletedCheckIns(ctx context.Context, companyID uuid.UUID) ([]CheckIn, error)

	// LatestTimestamps returns the most recent activity timestamp per source.
	// The dossier build time is not part of this query; the orchestrator fills
	// it in from the snapshot.
	LatestTimestamps(ctx context.Context, companyID uuid.UUID) (TimestampBundle, error)
}

// DossierProvider returns the persisted nine-section dossier snapshot for a
// company, or rebuilds one from source records.
type DossierProvider interface {
	// GetCurrent returns the current snapshot, or ErrSnapshotNotFound.
	GetCurrent(ctx context.Context, companyID uuid.UUID) (*DossierSnapshot, error)
	// Rebuild builds a fresh snapshot from source records and persists it.
	// Rebuild is idempotent per company: concurrent rebuilds converge on the
	// last written snapshot.
	Rebuild(ctx context.Context, companyID uuid.UUID, reason string) (*DossierSnapshot, error)
}

// DossierRepository persists dossier snapshots, one per company.
type DossierRepository interface {
	FindByCompany(ctx context.Context, companyID uuid.UUID) (*DossierSnapshot, error)
	// Upsert inserts or replaces the company's snapshot.
	Upsert(ctx context.Context, snapshot *DossierSnapshot) error
	// ListStale returns companies whose snapshot was built before the cutoff,
	// oldest first, capped at limit.
	ListStale(ctx context.Context, builtBefore time.Time, limit int) ([]uuid.UUID, error)
}
