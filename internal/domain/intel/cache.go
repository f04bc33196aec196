package intel

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProfileCache is the read-through cache for assembled profiles. The cache is
// an explicit collaborator owned by the orchestrator, never a hidden
// package-level singleton, so tests and background rebuilds can swap it.
//
// Cache keys follow the pattern intel:profile:{companyId}.
type ProfileCache interface {
	// Get retrieves a cached profile for the company.
	// Returns nil, nil on a cache miss.
	Get(ctx context.Context, companyID uuid.UUID) (*Profile, error)

	// Set stores a profile with the specified TTL.
	// If ttl is 0, implementations should use a default TTL.
	Set(ctx context.Context, profile *Profile, ttl time.Duration) error

	// Invalidate removes the cached profile for the company, if any.
	Invalidate(ctx context.Context, companyID uuid.UUID) error

	// Close releases any resources held by the cache.
	Close() error
}

// CacheConfig tunes profile caching.
type CacheConfig struct {
	// ProfileTTL bounds how stale a served profile can be.
	ProfileTTL time.Duration
}

// DefaultCacheConfig returns the cache settings used when the configuration
// file does not override them.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ProfileTTL: 2 * time.Minute,
	}
}
