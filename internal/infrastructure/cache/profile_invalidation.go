package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Constants for invalidator configuration
const (
	defaultCloseTimeout        = 5 * time.Second
	defaultInvalidationChannel = "intel:profile:invalidate"
)

// ProfileInvalidationMessage is published when a company's cached profile must
// be dropped, typically after a dossier rebuild.
type ProfileInvalidationMessage struct {
	CompanyID uuid.UUID `json:"companyId"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// RedisProfileInvalidator fans profile invalidations out to every instance
// using Redis Pub/Sub. Local in-memory caches subscribe so a rebuild on one
// instance does not leave stale profiles on the others.
type RedisProfileInvalidator struct {
	client     *redis.Client
	ownsClient bool
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisProfileInvalidatorOption is a functional option for configuring the invalidator
type RedisProfileInvalidatorOption func(*RedisProfileInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel name
func WithInvalidatorChannel(channel string) RedisProfileInvalidatorOption {
	return func(i *RedisProfileInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger for the invalidator
func WithInvalidatorLogger(logger *zap.Logger) RedisProfileInvalidatorOption {
	return func(i *RedisProfileInvalidator) {
		i.logger = logger
	}
}

// NewRedisProfileInvalidator creates a new Redis Pub/Sub invalidator and
// verifies the connection before returning.
func NewRedisProfileInvalidator(cfg RedisConfig, opts ...RedisProfileInvalidatorOption) (*RedisProfileInvalidator, error) {
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

	invalidator := &RedisProfileInvalidator{
		client:     client,
		ownsClient: true,
		channel:    defaultInvalidationChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(invalidator)
	}

	return invalidator, nil
}

// NewRedisProfileInvalidatorWithClient creates an invalidator over an existing
// Redis client. The caller retains ownership of the client.
func NewRedisProfileInvalidatorWithClient(client *redis.Client, opts ...RedisProfileInvalidatorOption) *RedisProfileInvalidator {
	invalidator := &RedisProfileInvalidator{
		client:  client,
		channel: defaultInvalidationChannel,
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(invalidator)
	}

	return invalidator
}

// Publish sends an invalidation notification to all subscribers.
func (i *RedisProfileInvalidator) Publish(ctx context.Context, msg ProfileInvalidationMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation message: %w", err)
	}

	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish profile invalidation",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	i.logger.Debug("Published profile invalidation",
		zap.String("company_id", msg.CompanyID.String()),
		zap.String("reason", msg.Reason))

	return nil
}

// Subscribe starts listening for invalidation notifications. The callback is
// invoked for each received message. Blocks until the context is cancelled,
// so call it in a goroutine.
func (i *RedisProfileInvalidator) Subscribe(ctx context.Context, callback func(msg ProfileInvalidationMessage)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	i.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	i.mu.Lock()
	i.cancelFn = cancel
	i.mu.Unlock()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(subCtx); err != nil {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	i.logger.Info("Subscribed to profile invalidation channel",
		zap.String("channel", i.channel))

	ch := pubsub.Channel()

	for {
		select {
		case <-subCtx.Done():
			i.logger.Info("Profile invalidation subscription stopped")
			i.mu.Lock()
			i.isRunning = false
			i.mu.Unlock()
			i.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Profile invalidation channel closed")
				i.mu.Lock()
				i.isRunning = false
				i.mu.Unlock()
				i.markDone()
				return nil
			}

			var invMsg ProfileInvalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &invMsg); err != nil {
				i.logger.Error("Failed to unmarshal invalidation message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			// Run the callback off the receive loop so a slow cache
			// cannot stall delivery.
			go func(m ProfileInvalidationMessage) {
				defer func() {
					if r := recover(); r != nil {
						i.logger.Error("Panic in invalidation callback",
							zap.Any("panic", r))
					}
				}()
				callback(m)
			}(invMsg)
		}
	}
}

func (i *RedisProfileInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close stops the subscription and releases the client when owned.
func (i *RedisProfileInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(defaultCloseTimeout):
			i.logger.Warn("Timeout waiting for subscription to stop")
		}
	}

	if i.ownsClient {
		return i.client.Close()
	}
	return nil
}
