// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ProfileMetrics provides business metrics for the intelligence layer.
// It tracks profile assembly, cache effectiveness, and dossier freshness.
type ProfileMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	profileBuildTotal    *Counter
	sectionDegradedTotal *Counter
	cacheHitTotal        *Counter
	cacheMissTotal       *Counter
	dossierRebuildTotal  *Counter

	// Histogram metrics (distributions)
	profileBuildDuration   *Histogram
	dossierRebuildDuration *Histogram

	// Gauge metrics (point-in-time values)
	dossierCount      *Gauge
	staleDossierCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	dossierProvider DossierStatsProvider
}

// DossierStatsProvider provides dossier snapshot counts for periodic metrics
// collection. The interface keeps the telemetry layer from depending on the
// persistence layer directly.
type DossierStatsProvider interface {
	// CountSnapshots returns the total number of persisted dossier snapshots
	CountSnapshots(ctx context.Context) (int64, error)

	// CountStaleSnapshots returns the number of snapshots built before the cutoff
	CountStaleSnapshots(ctx context.Context, builtBefore time.Time) (int64, error)
}

// ProfileMetricsConfig holds configuration for profile metrics.
type ProfileMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	StaleAfter      time.Duration // Default: 24 hours
	DossierProvider DossierStatsProvider
}

// NewProfileMetrics creates a new ProfileMetrics instance.
func NewProfileMetrics(cfg ProfileMetricsConfig) (*ProfileMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &ProfileMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		dossierProvider: cfg.DossierProvider,
	}

	var err error

	pm.profileBuildTotal, err = NewCounter(
		cfg.Meter,
		"bizlens_profile_build_total",
		"Total number of intelligence profiles assembled",
		"{profiles}",
	)
	if err != nil {
		return nil, err
	}

	pm.sectionDegradedTotal, err = NewCounter(
		cfg.Meter,
		"bizlens_profile_section_degraded_total",
		"Total number of profile sections served degraded due to an unavailable source",
		"{sections}",
	)
	if err != nil {
		return nil, err
	}

	pm.cacheHitTotal, err = NewCounter(
		cfg.Meter,
		"bizlens_profile_cache_hit_total",
		"Total number of profile cache hits",
		"{hits}",
	)
	if err != nil {
		return nil, err
	}

	pm.cacheMissTotal, err = NewCounter(
		cfg.Meter,
		"bizlens_profile_cache_miss_total",
		"Total number of profile cache misses",
		"{misses}",
	)
	if err != nil {
		return nil, err
	}

	pm.dossierRebuildTotal, err = NewCounter(
		cfg.Meter,
		"bizlens_dossier_rebuild_total",
		"Total number of dossier snapshot rebuilds",
		"{rebuilds}",
	)
	if err != nil {
		return nil, err
	}

	pm.profileBuildDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "bizlens_profile_build_duration_seconds",
		Description: "Time spent assembling an intelligence profile",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	pm.dossierRebuildDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "bizlens_dossier_rebuild_duration_seconds",
		Description: "Time spent rebuilding a dossier snapshot",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	pm.dossierCount, err = NewGauge(
		cfg.Meter,
		"bizlens_dossier_count",
		"Current number of persisted dossier snapshots",
		"{snapshots}",
	)
	if err != nil {
		return nil, err
	}

	pm.staleDossierCount, err = NewGauge(
		cfg.Meter,
		"bizlens_dossier_stale_count",
		"Number of dossier snapshots older than the freshness cutoff",
		"{snapshots}",
	)
	if err != nil {
		return nil, err
	}

	return pm, nil
}

// =============================================================================
// Profile Metrics
// =============================================================================

// RecordProfileBuild records a completed profile assembly.
// This should be called from the application layer after a profile is built.
func (pm *ProfileMetrics) RecordProfileBuild(ctx context.Context, duration time.Duration) {
	pm.profileBuildTotal.Inc(ctx)
	pm.profileBuildDuration.RecordDuration(ctx, duration)
}

// RecordSectionDegraded records a section that was served with degraded data.
func (pm *ProfileMetrics) RecordSectionDegraded(ctx context.Context, section string) {
	pm.sectionDegradedTotal.Inc(ctx,
		AttrSection.String(section),
	)
}

// RecordCacheHit records a profile cache hit for the given backend.
func (pm *ProfileMetrics) RecordCacheHit(ctx context.Context, backend string) {
	pm.cacheHitTotal.Inc(ctx,
		AttrCacheBackend.String(backend),
	)
}

// RecordCacheMiss records a profile cache miss for the given backend.
func (pm *ProfileMetrics) RecordCacheMiss(ctx context.Context, backend string) {
	pm.cacheMissTotal.Inc(ctx,
		AttrCacheBackend.String(backend),
	)
}

// =============================================================================
// Dossier Metrics
// =============================================================================

// RebuildStatus represents the outcome of a dossier rebuild for metrics labeling.
type RebuildStatus string

const (
	RebuildStatusSuccess RebuildStatus = "success"
	RebuildStatusFailed  RebuildStatus = "failed"
)

// RecordDossierRebuild records a dossier rebuild attempt with its outcome.
func (pm *ProfileMetrics) RecordDossierRebuild(ctx context.Context, reason string, status RebuildStatus, duration time.Duration) {
	pm.dossierRebuildTotal.Inc(ctx,
		AttrRebuildReason.String(reason),
		AttrRebuildStatus.String(string(status)),
	)
	pm.dossierRebuildDuration.RecordDuration(ctx, duration,
		AttrRebuildReason.String(reason),
	)
}

// RecordDossierCounts records the current snapshot totals.
// These are gauge metrics that should be updated periodically.
func (pm *ProfileMetrics) RecordDossierCounts(ctx context.Context, total, stale int64) {
	pm.dossierCount.Record(ctx, total)
	pm.staleDossierCount.Record(ctx, stale)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of dossier gauge metrics.
// Snapshots built before now-staleAfter count as stale.
// This is non-blocking - use Stop() to stop collection.
func (pm *ProfileMetrics) StartPeriodicCollection(ctx context.Context, interval, staleAfter time.Duration) {
	pm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		if staleAfter <= 0 {
			staleAfter = 24 * time.Hour
		}

		go pm.runPeriodicCollection(ctx, interval, staleAfter)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (pm *ProfileMetrics) runPeriodicCollection(ctx context.Context, interval, staleAfter time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	pm.collectDossierMetrics(ctx, staleAfter)

	for {
		select {
		case <-pm.stopChan:
			pm.logger.Info("Stopping periodic profile metrics collection")
			return
		case <-ctx.Done():
			pm.logger.Info("Context cancelled, stopping periodic profile metrics collection")
			return
		case <-ticker.C:
			pm.collectDossierMetrics(ctx, staleAfter)
		}
	}
}

// collectDossierMetrics collects dossier gauge metrics.
func (pm *ProfileMetrics) collectDossierMetrics(ctx context.Context, staleAfter time.Duration) {
	if pm.dossierProvider == nil {
		pm.logger.Debug("No dossier provider configured, skipping dossier metrics collection")
		return
	}

	total, err := pm.dossierProvider.CountSnapshots(ctx)
	if err != nil {
		pm.logger.Warn("Failed to count dossier snapshots", zap.Error(err))
		return
	}

	stale, err := pm.dossierProvider.CountStaleSnapshots(ctx, time.Now().Add(-staleAfter))
	if err != nil {
		pm.logger.Warn("Failed to count stale dossier snapshots", zap.Error(err))
		return
	}

	pm.RecordDossierCounts(ctx, total, stale)
}

// Stop stops the periodic collection.
func (pm *ProfileMetrics) Stop() {
	pm.stopOnce.Do(func() {
		close(pm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewProfileMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
