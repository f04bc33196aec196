package intel

import "github.com/bizlens/backend/internal/domain/shared"

// Errors surfaced by the intelligence profile layer. Callers should treat
// ErrSourceUnavailable as "intelligence temporarily unavailable" and fall back
// to cached or last-known data instead of blocking the surrounding feature.
var (
	// ErrSourceUnavailable indicates a repository or dossier read/write failed.
	ErrSourceUnavailable = shared.NewDomainError("SOURCE_UNAVAILABLE", "Intelligence source data is temporarily unavailable")

	// ErrInvalidSection indicates a requested section name is not one of the
	// twelve recognized names.
	ErrInvalidSection = shared.NewDomainError("INVALID_SECTION", "Unknown intelligence profile section")

	// ErrRebuildConflict indicates a concurrent dossier rebuild was detected.
	ErrRebuildConflict = shared.NewDomainError("REBUILD_CONFLICT", "Dossier rebuild already in progress for this company")

	// ErrSnapshotNotFound indicates no dossier snapshot exists for the company.
	ErrSnapshotNotFound = shared.NewDomainError("SNAPSHOT_NOT_FOUND", "No dossier snapshot exists for this company")
)
