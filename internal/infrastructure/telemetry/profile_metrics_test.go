package telemetry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bizlens/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap/zaptest"
)

// mockDossierStatsProvider returns fixed counts and tracks call totals.
type mockDossierStatsProvider struct {
	total int64
	stale int64
	calls atomic.Int64
	err   error
}

func (m *mockDossierStatsProvider) CountSnapshots(ctx context.Context) (int64, error) {
	m.calls.Add(1)
	return m.total, m.err
}

func (m *mockDossierStatsProvider) CountStaleSnapshots(ctx context.Context, builtBefore time.Time) (int64, error) {
	return m.stale, m.err
}

func newTestProfileMetrics(t *testing.T, provider telemetry.DossierStatsProvider) *telemetry.ProfileMetrics {
	t.Helper()

	pm, err := telemetry.NewProfileMetrics(telemetry.ProfileMetricsConfig{
		Meter:           otel.GetMeterProvider().Meter("test"),
		Logger:          zaptest.NewLogger(t),
		DossierProvider: provider,
	})
	require.NoError(t, err)
	require.NotNil(t, pm)
	return pm
}

func TestNewProfileMetrics_NilMeter(t *testing.T) {
	pm, err := telemetry.NewProfileMetrics(telemetry.ProfileMetricsConfig{})
	require.Error(t, err)
	assert.Nil(t, pm)
	assert.Contains(t, err.Error(), "meter cannot be nil")
}

func TestProfileMetrics_RecordCounters(t *testing.T) {
	pm := newTestProfileMetrics(t, nil)
	ctx := context.Background()

	// Recording against the no-op global meter must not panic
	pm.RecordProfileBuild(ctx, 120*time.Millisecond)
	pm.RecordSectionDegraded(ctx, "financials")
	pm.RecordCacheHit(ctx, "redis")
	pm.RecordCacheMiss(ctx, "memory")
	pm.RecordDossierRebuild(ctx, "manual", telemetry.RebuildStatusSuccess, 2*time.Second)
	pm.RecordDossierRebuild(ctx, "scheduled_refresh", telemetry.RebuildStatusFailed, time.Second)
	pm.RecordDossierCounts(ctx, 42, 3)
}

func TestProfileMetrics_PeriodicCollection(t *testing.T) {
	provider := &mockDossierStatsProvider{total: 10, stale: 2}
	pm := newTestProfileMetrics(t, provider)
	defer pm.Stop()

	pm.StartPeriodicCollection(context.Background(), time.Hour, 24*time.Hour)

	// Collection happens immediately on start
	assert.Eventually(t, func() bool {
		return provider.calls.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProfileMetrics_PeriodicCollection_ProviderError(t *testing.T) {
	provider := &mockDossierStatsProvider{err: errors.New("database unavailable")}
	pm := newTestProfileMetrics(t, provider)
	defer pm.Stop()

	// Errors are logged, not fatal
	pm.StartPeriodicCollection(context.Background(), time.Hour, 24*time.Hour)

	assert.Eventually(t, func() bool {
		return provider.calls.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProfileMetrics_StopIsIdempotent(t *testing.T) {
	pm := newTestProfileMetrics(t, nil)
	pm.Stop()
	pm.Stop()
}
