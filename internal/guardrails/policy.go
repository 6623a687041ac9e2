package guardrails

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/logger"
	"github.com/jonathan/candidate-matcher/internal/metrics"
	"github.com/jonathan/candidate-matcher/internal/schemas"
)

// Fallback reasons reported by Load
const (
	FallbackNoStore       = "no_store"
	FallbackStoreError    = "store_error"
	FallbackMissingRecord = "missing_record"
	FallbackInvalidRecord = "invalid_record"
)

// Store persists raw guardrail documents per tenant. Get returns nil, nil when
// the tenant has no record. Put reports whether the record was newly created.
type Store interface {
	Get(ctx context.Context, tenant string) ([]byte, error)
	Put(ctx context.Context, tenant string, payload []byte) (created bool, err error)
}

// SaveResult reports the outcome of Policy.Save
type SaveResult struct {
	Saved   bool   `json:"saved"`
	Created bool   `json:"created"`
	Config  Config `json:"config"`
}

// Policy loads and saves tenant guardrails
type Policy struct {
	store    Store
	defaults Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// Option configures a Policy
type Option func(*Policy)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Policy) { p.logger = logger.OrNop(l) }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Policy) { p.metrics = m }
}

// WithDefaults substitutes the built-in defaults, mainly for tests.
func WithDefaults(cfg Config) Option {
	return func(p *Policy) { p.defaults = cfg }
}

// NewPolicy creates a policy over store. A nil store is allowed; every load then
// returns defaults and saves fail.
func NewPolicy(store Store, opts ...Option) *Policy {
	p := &Policy{
		store:    store,
		defaults: DefaultGuardrails(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Defaults returns the policy's default config.
func (p *Policy) Defaults() Config {
	return p.defaults
}

// Load returns the tenant's guardrails. It never fails: an unavailable store, a
// missing record or an invalid record all resolve to the defaults. A missing
// record is lazily created with the defaults on a best-effort basis.
func (p *Policy) Load(ctx context.Context, tenant string) Config {
	log := p.logger.With(zap.String("tenant", tenant))

	if p.store == nil {
		p.metrics.GuardrailFallback(FallbackNoStore)
		return p.defaults
	}

	data, err := p.store.Get(ctx, tenant)
	if err != nil {
		log.Warn("guardrail store unavailable, using defaults", zap.Error(err))
		p.metrics.GuardrailFallback(FallbackStoreError)
		return p.defaults
	}

	if data == nil {
		p.metrics.GuardrailFallback(FallbackMissingRecord)
		p.persistDefaults(ctx, tenant, log)
		return p.defaults
	}

	cfg, err := Decode(p.defaults, data)
	if err != nil {
		log.Warn("stored guardrails are invalid, using defaults", zap.Error(err))
		p.metrics.GuardrailFallback(FallbackInvalidRecord)
		return p.defaults
	}
	return cfg
}

func (p *Policy) persistDefaults(ctx context.Context, tenant string, log *zap.Logger) {
	payload, err := Encode(p.defaults)
	if err != nil {
		log.Warn("failed to encode default guardrails", zap.Error(err))
		return
	}
	if _, err := p.store.Put(ctx, tenant, payload); err != nil {
		log.Warn("failed to persist default guardrails", zap.Error(err))
		return
	}
	log.Debug("created default guardrails for tenant")
}

// Save validates a payload and persists it. Validation failures are returned as
// *schemas.ValidationError and nothing is written; store failures are wrapped.
func (p *Policy) Save(ctx context.Context, tenant string, payload []byte) (SaveResult, error) {
	log := p.logger.With(zap.String("tenant", tenant))

	cfg, err := Decode(p.defaults, payload)
	if err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			log.Info("rejected guardrail update", zap.Strings("fields", verr.Fields()))
		}
		p.metrics.GuardrailSave("rejected")
		return SaveResult{}, err
	}

	if p.store == nil {
		return SaveResult{}, fmt.Errorf("failed to save guardrails for tenant %s: no store configured", tenant)
	}

	normalized, err := Encode(cfg)
	if err != nil {
		return SaveResult{}, err
	}

	created, err := p.store.Put(ctx, tenant, normalized)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to save guardrails for tenant %s: %w", tenant, err)
	}

	result := "updated"
	if created {
		result = "created"
	}
	p.metrics.GuardrailSave(result)
	log.Info("saved guardrails", zap.Bool("created", created))

	return SaveResult{Saved: true, Created: created, Config: cfg}, nil
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, tenant string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.records[tenant]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, tenant string, payload []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.records[tenant]
	data := make([]byte, len(payload))
	copy(data, payload)
	s.records[tenant] = data
	return !exists, nil
}
