package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const profileKeyPrefix = "intel:profile:"

// RedisProfileCache implements intel.ProfileCache using Redis.
// This is suitable for distributed deployments where multiple instances
// share the assembled-profile cache.
type RedisProfileCache struct {
	client     *redis.Client
	keyPrefix  string
	defaultTTL time.Duration
	ownsClient bool
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisProfileCache creates a new Redis-backed profile cache and verifies
// the connection before returning.
func NewRedisProfileCache(cfg RedisConfig, defaultTTL time.Duration) (*RedisProfileCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisProfileCache{
		client:     client,
		keyPrefix:  profileKeyPrefix,
		defaultTTL: defaultTTL,
		ownsClient: true,
	}, nil
}

// NewRedisProfileCacheWithClient creates a cache over an existing Redis client.
// This is useful for testing or when sharing a client across components.
// The client is not closed when the cache is closed.
func NewRedisProfileCacheWithClient(client *redis.Client, defaultTTL time.Duration) *RedisProfileCache {
	return &RedisProfileCache{
		client:     client,
		keyPrefix:  profileKeyPrefix,
		defaultTTL: defaultTTL,
	}
}

func (c *RedisProfileCache) key(companyID uuid.UUID) string {
	return c.keyPrefix + companyID.String()
}

// Get retrieves a cached profile, nil on a miss. A payload that no longer
// unmarshals is treated as a miss and evicted rather than surfaced.
func (c *RedisProfileCache) Get(ctx context.Context, companyID uuid.UUID) (*intel.Profile, error) {
	data, err := c.client.Get(ctx, c.key(companyID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached profile: %w", err)
	}

	var profile intel.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		_ = c.client.Del(ctx, c.key(companyID)).Err()
		return nil, nil
	}
	return &profile, nil
}

// Set stores a profile with the given TTL, falling back to the default TTL
// when ttl is zero.
func (c *RedisProfileCache) Set(ctx context.Context, profile *intel.Profile, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := c.client.Set(ctx, c.key(profile.CompanyID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache profile: %w", err)
	}
	return nil
}

// Invalidate removes the cached profile for the company, if any.
func (c *RedisProfileCache) Invalidate(ctx context.Context, companyID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(companyID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached profile: %w", err)
	}
	return nil
}

// Close closes the Redis client when the cache owns it.
func (c *RedisProfileCache) Close() error {
	if !c.ownsClient {
		return nil
	}
	return c.client.Close()
}

var _ intel.ProfileCache = (*RedisProfileCache)(nil)
