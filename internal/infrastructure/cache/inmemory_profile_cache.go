package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
)

// InMemoryProfileCache implements intel.ProfileCache using in-memory storage.
// This is suitable for single-instance deployments and as a fallback when
// Redis is unavailable.
type InMemoryProfileCache struct {
	profiles   sync.Map // map[uuid.UUID]*profileEntry
	defaultTTL time.Duration
	logger     *zap.Logger
	stopCh     chan struct{}
	stopped    int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// profileEntry wraps a cached profile with its expiration time
type profileEntry struct {
	profile   *intel.Profile
	expiresAt time.Time
}

func (e *profileEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryProfileCacheOption is a functional option for configuring the cache
type InMemoryProfileCacheOption func(*InMemoryProfileCache)

// WithInMemoryProfileLogger sets the logger for the cache
func WithInMemoryProfileLogger(logger *zap.Logger) InMemoryProfileCacheOption {
	return func(c *InMemoryProfileCache) {
		c.logger = logger
	}
}

// NewInMemoryProfileCache creates a new in-memory profile cache and starts
// its background cleanup goroutine.
func NewInMemoryProfileCache(defaultTTL time.Duration, opts ...InMemoryProfileCacheOption) *InMemoryProfileCache {
	if defaultTTL <= 0 {
		defaultTTL = intel.DefaultCacheConfig().ProfileTTL
	}
	cache := &InMemoryProfileCache{
		defaultTTL: defaultTTL,
		logger:     zap.NewNop(),
		stopCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupLoop()

	return cache
}

// Get retrieves a cached profile, nil on a miss or after expiry.
func (c *InMemoryProfileCache) Get(_ context.Context, companyID uuid.UUID) (*intel.Profile, error) {
	value, ok := c.profiles.Load(companyID)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}

	entry := value.(*profileEntry)
	if entry.isExpired() {
		c.profiles.Delete(companyID)
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}

	atomic.AddInt64(&c.hits, 1)
	return entry.profile, nil
}

// Set stores a profile with the given TTL, falling back to the default TTL
// when ttl is zero.
func (c *InMemoryProfileCache) Set(_ context.Context, profile *intel.Profile, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.profiles.Store(profile.CompanyID, &profileEntry{
		profile:   profile,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Invalidate removes the cached profile for the company, if any.
func (c *InMemoryProfileCache) Invalidate(_ context.Context, companyID uuid.UUID) error {
	c.profiles.Delete(companyID)
	return nil
}

// Stats returns hit/miss counters for monitoring.
func (c *InMemoryProfileCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (c *InMemoryProfileCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// cleanupLoop periodically evicts expired entries so abandoned companies do
// not pin memory until the next read.
func (c *InMemoryProfileCache) cleanupLoop() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *InMemoryProfileCache) evictExpired() {
	removed := 0
	c.profiles.Range(func(key, value interface{}) bool {
		if value.(*profileEntry).isExpired() {
			c.profiles.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("evicted expired cached profiles", zap.Int("count", removed))
	}
}

var _ intel.ProfileCache = (*InMemoryProfileCache)(nil)
