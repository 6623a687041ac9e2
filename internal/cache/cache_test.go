package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-matcher/internal/guardrails"
	"github.com/jonathan/candidate-matcher/internal/metrics"
)

type countingStore struct {
	*guardrails.MemoryStore
	gets int
	err  error
}

func (s *countingStore) Get(ctx context.Context, tenant string) ([]byte, error) {
	s.gets++
	if s.err != nil {
		return nil, s.err
	}
	return s.MemoryStore.Get(ctx, tenant)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedStore_ReadThrough(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()
	backing := &countingStore{MemoryStore: guardrails.NewMemoryStore()}
	_, err := backing.Put(ctx, "acme", []byte(`{"a":1}`))
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	store := NewCachedStore(client, backing, WithMetrics(m), WithTTL(time.Minute))

	data, err := store.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
	assert.Equal(t, 1, backing.gets)

	cached, err := mr.Get("guardrails:acme")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, cached)
	assert.Equal(t, time.Minute, mr.TTL("guardrails:acme"))

	data, err = store.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
	assert.Equal(t, 1, backing.gets, "second read should be served from cache")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardrailCacheReads.WithLabelValues(ResultMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardrailCacheReads.WithLabelValues(ResultHit)))
}

func TestCachedStore_MissingRecordIsNotCached(t *testing.T) {
	mr, client := setupRedis(t)
	backing := &countingStore{MemoryStore: guardrails.NewMemoryStore()}
	store := NewCachedStore(client, backing)

	data, err := store.Get(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Nil(t, data)
	assert.False(t, mr.Exists("guardrails:nobody"))
}

func TestCachedStore_PutReplacesCachedCopy(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()
	backing := &countingStore{MemoryStore: guardrails.NewMemoryStore()}
	store := NewCachedStore(client, backing, WithKeyPrefix("g:"))

	created, err := store.Put(ctx, "acme", []byte(`{"v":1}`))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Put(ctx, "acme", []byte(`{"v":2}`))
	require.NoError(t, err)
	assert.False(t, created)

	cached, err := mr.Get("g:acme")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, cached)

	data, err := store.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))
	assert.Equal(t, 0, backing.gets)
}

func TestCachedStore_BackingErrorPropagates(t *testing.T) {
	_, client := setupRedis(t)
	boom := errors.New("store down")
	backing := &countingStore{MemoryStore: guardrails.NewMemoryStore(), err: boom}
	store := NewCachedStore(client, backing)

	_, err := store.Get(context.Background(), "acme")

	assert.ErrorIs(t, err, boom)
}

func TestCachedStore_RedisDownFallsThrough(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()
	backing := &countingStore{MemoryStore: guardrails.NewMemoryStore()}
	_, err := backing.Put(ctx, "acme", []byte(`{"a":1}`))
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	store := NewCachedStore(client, backing, WithMetrics(m))
	mr.Close()

	data, err := store.Get(ctx, "acme")

	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardrailCacheReads.WithLabelValues(ResultError)))
}

func TestCachedStore_WithPolicy(t *testing.T) {
	_, client := setupRedis(t)
	ctx := context.Background()
	store := NewCachedStore(client, guardrails.NewMemoryStore())
	policy := guardrails.NewPolicy(store)

	_, err := policy.Save(ctx, "acme", []byte(`{"thresholds":{"min_match_score":65,"shortlist_min_score":80}}`))
	require.NoError(t, err)

	cfg := policy.Load(ctx, "acme")
	assert.Equal(t, 65, cfg.Thresholds.MinMatchScore)
	assert.Equal(t, 80, cfg.Thresholds.ShortlistMinScore)
}

func TestInvalidate(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewCachedStore(client, guardrails.NewMemoryStore())
	require.NoError(t, mr.Set("guardrails:acme", "x"))

	store.Invalidate(context.Background(), "acme")

	assert.False(t, mr.Exists("guardrails:acme"))
	assert.Equal(t, "guardrails:acme", store.Key("acme"))
}
