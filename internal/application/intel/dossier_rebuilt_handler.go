package intel

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/domain/shared"
)

// ProfileInvalidationBroadcaster fans a profile invalidation out to the other
// instances, typically over Redis Pub/Sub. The local cache is always dropped
// directly; the broadcast only covers caches this process cannot reach.
type ProfileInvalidationBroadcaster interface {
	Broadcast(ctx context.Context, companyID uuid.UUID, reason string) error
}

// DossierRebuiltHandler drops the cached profile for a company whenever its
// dossier snapshot is rebuilt, so the next read reassembles against the fresh
// snapshot instead of serving a stale cache entry until TTL expiry.
type DossierRebuiltHandler struct {
	profiles    *ProfileService
	broadcaster ProfileInvalidationBroadcaster
	logger      *zap.Logger
}

// NewDossierRebuiltHandler creates the cache invalidation handler. The
// broadcaster may be nil when the deployment runs a single instance.
func NewDossierRebuiltHandler(
	profiles *ProfileService,
	broadcaster ProfileInvalidationBroadcaster,
	logger *zap.Logger,
) *DossierRebuiltHandler {
	return &DossierRebuiltHandler{
		profiles:    profiles,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Handle processes a dossier rebuilt event
func (h *DossierRebuiltHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	evt, ok := event.(*intel.DossierRebuiltEvent)
	if !ok {
		h.logger.Warn("Unexpected event type for dossier rebuilt handler",
			zap.String("event_type", event.EventType()))
		return nil
	}

	companyID := evt.AggregateID()
	h.profiles.InvalidateCachedProfile(ctx, companyID)

	h.logger.Info("Cached profile invalidated after dossier rebuild",
		zap.String("company_id", companyID.String()),
		zap.String("reason", evt.Reason),
		zap.Int("snapshot_version", evt.SnapshotVersion),
	)

	if h.broadcaster != nil {
		// Broadcast failures only delay invalidation on other instances
		// until their TTL expires, so they never fail the handler.
		if err := h.broadcaster.Broadcast(ctx, companyID, evt.Reason); err != nil {
			h.logger.Warn("Profile invalidation broadcast failed",
				zap.String("company_id", companyID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// EventTypes returns the event types this handler subscribes to
func (h *DossierRebuiltHandler) EventTypes() []string {
	return []string{intel.EventTypeDossierRebuilt}
}

var _ shared.EventHandler = (*DossierRebuiltHandler)(nil)
