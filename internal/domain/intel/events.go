package intel

import "github.com/bizlens/backend/internal/domain/shared"

// EventTypeDossierRebuilt is published after a dossier snapshot is rebuilt
// and persisted. Cache layers subscribe to it to drop stale profiles.
const EventTypeDossierRebuilt = "intel.dossier.rebuilt"

// DossierRebuiltEvent announces a fresh dossier snapshot for a company.
type DossierRebuiltEvent struct {
	shared.BaseDomainEvent
	Reason          string `json:"reason"`
	SnapshotVersion int    `json:"snapshot_version"`
}

// NewDossierRebuiltEvent creates the event for a freshly persisted snapshot.
func NewDossierRebuiltEvent(snapshot *DossierSnapshot) *DossierRebuiltEvent {
	return &DossierRebuiltEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDossierRebuilt, snapshot.CompanyID, "DossierSnapshot"),
		Reason:          snapshot.Reason,
		SnapshotVersion: snapshot.Version,
	}
}
