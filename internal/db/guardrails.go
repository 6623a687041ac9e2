package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GuardrailStore persists tenant guardrail documents in tenant_guardrails.
// It satisfies guardrails.Store.
type GuardrailStore struct {
	db *DB
}

// NewGuardrailStore returns a GuardrailStore backed by db.
func NewGuardrailStore(db *DB) *GuardrailStore {
	return &GuardrailStore{db: db}
}

// Get returns the stored document for tenant, or nil when none exists.
func (s *GuardrailStore) Get(ctx context.Context, tenant string) ([]byte, error) {
	var config []byte
	err := s.db.pool.QueryRow(ctx,
		`SELECT config FROM tenant_guardrails WHERE tenant_id = $1`,
		tenant,
	).Scan(&config)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get guardrails for tenant %s: %w", tenant, err)
	}
	return config, nil
}

// Put upserts the document for tenant and reports whether a new row was inserted.
func (s *GuardrailStore) Put(ctx context.Context, tenant string, payload []byte) (bool, error) {
	var created bool
	err := s.db.pool.QueryRow(ctx,
		`INSERT INTO tenant_guardrails (tenant_id, config)
		 VALUES ($1, $2)
		 ON CONFLICT (tenant_id) DO UPDATE SET config = $2, updated_at = NOW()
		 RETURNING (xmax = 0)`,
		tenant, payload,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to save guardrails for tenant %s: %w", tenant, err)
	}
	return created, nil
}

// Delete removes the tenant's guardrails so the next load falls back to defaults.
func (s *GuardrailStore) Delete(ctx context.Context, tenant string) error {
	_, err := s.db.pool.Exec(ctx, `DELETE FROM tenant_guardrails WHERE tenant_id = $1`, tenant)
	if err != nil {
		return fmt.Errorf("failed to delete guardrails for tenant %s: %w", tenant, err)
	}
	return nil
}
