package cache

import (
	"fmt"
	"time"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ProfileCacheFactory creates profile caches based on configuration
type ProfileCacheFactory struct {
	redisConfig           config.RedisConfig
	defaultTTL            time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ProfileCacheFactoryOption is a functional option for configuring the factory
type ProfileCacheFactoryOption func(*ProfileCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ProfileCacheFactoryOption {
	return func(f *ProfileCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) ProfileCacheFactoryOption {
	return func(f *ProfileCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewProfileCacheFactory creates a new factory
func NewProfileCacheFactory(cfg config.RedisConfig, defaultTTL time.Duration, opts ...ProfileCacheFactoryOption) *ProfileCacheFactory {
	f := &ProfileCacheFactory{
		redisConfig:           cfg,
		defaultTTL:            defaultTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed profile cache
func (f *ProfileCacheFactory) CreateRedisCache() (intel.ProfileCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisProfileCache(redisCfg, f.defaultTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis profile cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory profile cache.
// WARNING: In-memory caches do not share state across process instances, so
// a rebuild on one instance can leave stale profiles cached on another unless
// cross-instance invalidation is wired separately.
func (f *ProfileCacheFactory) CreateInMemoryCache() intel.ProfileCache {
	return NewInMemoryProfileCache(f.defaultTTL, WithInMemoryProfileLogger(f.logger))
}

// CreateCache creates a profile cache, preferring Redis and falling back to
// in-memory when Redis is unavailable and fallback is allowed.
func (f *ProfileCacheFactory) CreateCache() (intel.ProfileCache, error) {
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis profile cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for profile cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory profile cache. "+
		"Profiles cached on other instances will not be invalidated from here.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
