package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bizlens/backend/internal/domain/intel"
)

// ---------------------------------------------------------------------------
// Stale Dossier Source
// ---------------------------------------------------------------------------

// StaleDossierSource lists companies whose dossier snapshot has gone stale.
// Satisfied by the dossier repository.
type StaleDossierSource interface {
	ListStale(ctx context.Context, builtBefore time.Time, limit int) ([]uuid.UUID, error)
}

// ---------------------------------------------------------------------------
// RefreshTriggerConfig
// ---------------------------------------------------------------------------

// RefreshTriggerConfig holds configuration for the refresh trigger
type RefreshTriggerConfig struct {
	// CheckInterval is how often to scan for stale dossiers
	CheckInterval time.Duration
	// StaleAfter is the snapshot age beyond which a dossier is refreshed
	StaleAfter time.Duration
	// BatchSize caps how many companies one scan enqueues
	BatchSize int
}

// DefaultRefreshTriggerConfig returns default configuration
func DefaultRefreshTriggerConfig() RefreshTriggerConfig {
	return RefreshTriggerConfig{
		CheckInterval: 15 * time.Minute,
		StaleAfter:    24 * time.Hour,
		BatchSize:     50,
	}
}

// Validate validates the configuration
func (c *RefreshTriggerConfig) Validate() error {
	if c.CheckInterval <= 0 {
		return ErrInvalidConfig
	}
	if c.StaleAfter <= 0 {
		return ErrInvalidConfig
	}
	if c.BatchSize <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// RefreshTrigger
// ---------------------------------------------------------------------------

// RefreshTrigger periodically scans for stale dossier snapshots and enqueues
// refresh jobs for them.
type RefreshTrigger struct {
	config    RefreshTriggerConfig
	scheduler *RefreshScheduler
	source    StaleDossierSource
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Track last enqueue per company so one stale dossier is not queued by
	// every scan while its rebuild is still in the queue.
	lastScheduledMu sync.RWMutex
	lastScheduled   map[uuid.UUID]time.Time
}

// NewRefreshTrigger creates a new refresh trigger
func NewRefreshTrigger(
	config RefreshTriggerConfig,
	scheduler *RefreshScheduler,
	source StaleDossierSource,
	logger *zap.Logger,
) (*RefreshTrigger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &RefreshTrigger{
		config:        config,
		scheduler:     scheduler,
		source:        source,
		logger:        logger,
		lastScheduled: make(map[uuid.UUID]time.Time),
	}, nil
}

// Start starts the trigger loop
func (c *RefreshTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Dossier refresh trigger started",
		zap.Duration("check_interval", c.config.CheckInterval),
		zap.Duration("stale_after", c.config.StaleAfter),
		zap.Int("batch_size", c.config.BatchSize),
	)

	return nil
}

// Stop stops the trigger loop
func (c *RefreshTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Dossier refresh trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop periodically scans and enqueues refresh jobs
func (c *RefreshTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	// Run immediately on start
	c.checkAndSchedule(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndSchedule(ctx)
		}
	}
}

// checkAndSchedule enqueues a refresh for each stale company
func (c *RefreshTrigger) checkAndSchedule(ctx context.Context) {
	now := time.Now()
	cutoff := now.Add(-c.config.StaleAfter)

	companyIDs, err := c.source.ListStale(ctx, cutoff, c.config.BatchSize)
	if err != nil {
		c.logger.Error("Failed to list stale dossiers", zap.Error(err))
		return
	}

	if len(companyIDs) == 0 {
		c.logger.Debug("No stale dossiers found")
		return
	}

	scheduled := 0
	for _, companyID := range companyIDs {
		if c.recentlyScheduled(companyID, now) {
			continue
		}

		if err := c.scheduler.ScheduleRefresh(companyID, intel.RebuildReasonScheduled); err != nil {
			c.logger.Error("Failed to schedule dossier refresh",
				zap.String("company_id", companyID.String()),
				zap.Error(err),
			)
			continue
		}

		c.updateLastScheduled(companyID, now)
		scheduled++
	}

	c.logger.Info("Stale dossier scan finished",
		zap.Int("stale_count", len(companyIDs)),
		zap.Int("scheduled", scheduled),
	)
}

// recentlyScheduled reports whether the company was enqueued within the
// current check interval.
func (c *RefreshTrigger) recentlyScheduled(companyID uuid.UUID, now time.Time) bool {
	c.lastScheduledMu.RLock()
	defer c.lastScheduledMu.RUnlock()

	last, exists := c.lastScheduled[companyID]
	return exists && now.Sub(last) < c.config.CheckInterval
}

// updateLastScheduled records when the company was last enqueued
func (c *RefreshTrigger) updateLastScheduled(companyID uuid.UUID, t time.Time) {
	c.lastScheduledMu.Lock()
	c.lastScheduled[companyID] = t
	c.lastScheduledMu.Unlock()
}

// GetTriggerStats returns statistics about the trigger
func (c *RefreshTrigger) GetTriggerStats() map[string]interface{} {
	c.lastScheduledMu.RLock()
	defer c.lastScheduledMu.RUnlock()

	stats := make(map[string]interface{})
	stats["is_running"] = c.isRunning
	stats["check_interval"] = c.config.CheckInterval.String()
	stats["tracked_companies"] = len(c.lastScheduled)
	return stats
}
