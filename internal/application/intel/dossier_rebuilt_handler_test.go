package intel

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/domain/shared"
)

// MockInvalidationBroadcaster is a mock implementation of ProfileInvalidationBroadcaster
type MockInvalidationBroadcaster struct {
	mock.Mock
}

func (m *MockInvalidationBroadcaster) Broadcast(ctx context.Context, companyID uuid.UUID, reason string) error {
	args := m.Called(ctx, companyID, reason)
	return args.Error(0)
}

func newRebuiltEvent(companyID uuid.UUID) *intel.DossierRebuiltEvent {
	snapshot := testSnapshot(companyID)
	snapshot.Reason = intel.RebuildReasonManual
	return intel.NewDossierRebuiltEvent(snapshot)
}

func TestDossierRebuiltHandler_Handle(t *testing.T) {
	t.Run("invalidates cached profile and broadcasts", func(t *testing.T) {
		companyID := uuid.New()
		cache := new(MockProfileCache)
		cache.On("Invalidate", mock.Anything, companyID).Return(nil)
		broadcaster := new(MockInvalidationBroadcaster)
		broadcaster.On("Broadcast", mock.Anything, companyID, intel.RebuildReasonManual).Return(nil)

		profiles := newTestProfileService(new(MockRecordReader), new(MockDossierProvider), cache, ProfileServiceConfig{CacheEnabled: true})
		handler := NewDossierRebuiltHandler(profiles, broadcaster, zap.NewNop())

		err := handler.Handle(context.Background(), newRebuiltEvent(companyID))

		require.NoError(t, err)
		cache.AssertExpectations(t)
		broadcaster.AssertExpectations(t)
	})

	t.Run("works without a broadcaster", func(t *testing.T) {
		companyID := uuid.New()
		cache := new(MockProfileCache)
		cache.On("Invalidate", mock.Anything, companyID).Return(nil)

		profiles := newTestProfileService(new(MockRecordReader), new(MockDossierProvider), cache, ProfileServiceConfig{CacheEnabled: true})
		handler := NewDossierRebuiltHandler(profiles, nil, zap.NewNop())

		err := handler.Handle(context.Background(), newRebuiltEvent(companyID))

		require.NoError(t, err)
		cache.AssertExpectations(t)
	})

	t.Run("broadcast failure does not fail the handler", func(t *testing.T) {
		companyID := uuid.New()
		cache := new(MockProfileCache)
		cache.On("Invalidate", mock.Anything, companyID).Return(nil)
		broadcaster := new(MockInvalidationBroadcaster)
		broadcaster.On("Broadcast", mock.Anything, companyID, intel.RebuildReasonManual).Return(errors.New("redis down"))

		profiles := newTestProfileService(new(MockRecordReader), new(MockDossierProvider), cache, ProfileServiceConfig{CacheEnabled: true})
		handler := NewDossierRebuiltHandler(profiles, broadcaster, zap.NewNop())

		err := handler.Handle(context.Background(), newRebuiltEvent(companyID))

		require.NoError(t, err)
		cache.AssertExpectations(t)
		broadcaster.AssertExpectations(t)
	})

	t.Run("ignores events of other types", func(t *testing.T) {
		cache := new(MockProfileCache)
		profiles := newTestProfileService(new(MockRecordReader), new(MockDossierProvider), cache, ProfileServiceConfig{CacheEnabled: true})
		handler := NewDossierRebuiltHandler(profiles, nil, zap.NewNop())

		other := shared.NewBaseDomainEvent("some.other.event", uuid.New(), "Other")
		err := handler.Handle(context.Background(), &other)

		require.NoError(t, err)
		cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})
}

func TestDossierRebuiltHandler_EventTypes(t *testing.T) {
	handler := NewDossierRebuiltHandler(nil, nil, zap.NewNop())
	assert.Equal(t, []string{intel.EventTypeDossierRebuilt}, handler.EventTypes())
}
