// Package cache provides a Redis read-through cache in front of the tenant
// guardrail store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/guardrails"
	"github.com/jonathan/candidate-matcher/internal/logger"
	"github.com/jonathan/candidate-matcher/internal/metrics"
)

// Defaults for the guardrail cache
const (
	DefaultTTL       = 5 * time.Minute
	DefaultKeyPrefix = "guardrails:"
)

// Cache read results reported to metrics
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a Redis client with conservative timeouts.
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// Ping tests the Redis connection
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// CachedStore wraps a guardrails.Store with a Redis read-through cache. Redis
// failures are logged and the call falls through to the backing store.
type CachedStore struct {
	client  *redis.Client
	next    guardrails.Store
	ttl     time.Duration
	prefix  string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a CachedStore
type Option func(*CachedStore)

// WithTTL sets how long cached documents live.
func WithTTL(ttl time.Duration) Option {
	return func(c *CachedStore) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix sets the Redis key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *CachedStore) { c.prefix = prefix }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *CachedStore) { c.logger = logger.OrNop(l) }
}

// WithMetrics records cache reads.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *CachedStore) { c.metrics = m }
}

// NewCachedStore wraps next with a cache backed by client.
func NewCachedStore(client *redis.Client, next guardrails.Store, opts ...Option) *CachedStore {
	c := &CachedStore{
		client: client,
		next:   next,
		ttl:    DefaultTTL,
		prefix: DefaultKeyPrefix,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the Redis key for a tenant.
func (c *CachedStore) Key(tenant string) string {
	return c.prefix + tenant
}

// Get implements guardrails.Store.
func (c *CachedStore) Get(ctx context.Context, tenant string) ([]byte, error) {
	key := c.Key(tenant)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		c.metrics.GuardrailCacheRead(ResultHit)
		return data, nil
	case errors.Is(err, redis.Nil):
		c.metrics.GuardrailCacheRead(ResultMiss)
	default:
		c.metrics.GuardrailCacheRead(ResultError)
		c.logger.Warn("guardrail cache read failed", zap.String("tenant", tenant), zap.Error(err))
	}

	data, err = c.next.Get(ctx, tenant)
	if err != nil || data == nil {
		return data, err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("guardrail cache fill failed", zap.String("tenant", tenant), zap.Error(err))
	}
	return data, nil
}

// Put implements guardrails.Store. The backing store is written first and the
// cached copy replaced only after it succeeds.
func (c *CachedStore) Put(ctx context.Context, tenant string, payload []byte) (bool, error) {
	created, err := c.next.Put(ctx, tenant, payload)
	if err != nil {
		return false, err
	}

	if err := c.client.Set(ctx, c.Key(tenant), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("guardrail cache update failed, evicting", zap.String("tenant", tenant), zap.Error(err))
		c.Invalidate(ctx, tenant)
	}
	return created, nil
}

// Invalidate drops the cached document for tenant.
func (c *CachedStore) Invalidate(ctx context.Context, tenant string) {
	if err := c.client.Del(ctx, c.Key(tenant)).Err(); err != nil {
		c.logger.Warn("guardrail cache eviction failed", zap.String("tenant", tenant), zap.Error(err))
	}
}
