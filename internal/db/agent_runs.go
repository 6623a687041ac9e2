package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// RecordAgentRun stores one agent run outcome. A nil timestamp records NOW().
func (db *DB) RecordAgentRun(ctx context.Context, s types.WatchdogSnapshot) error {
	var category *string
	if s.ErrorCategory != "" {
		category = &s.ErrorCategory
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO agent_runs (agent, status, duration_ms, output_complete, error_category, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`,
		s.Agent, string(s.Status), s.DurationMs, s.OutputComplete, category, s.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record agent run for %s: %w", s.Agent, err)
	}
	return nil
}

// RecentAgentRuns returns up to limit of the agent's most recent runs in
// chronological order, ready for watchdog evaluation.
func (db *DB) RecentAgentRuns(ctx context.Context, agent string, limit int) ([]types.WatchdogSnapshot, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT agent, status, duration_ms, output_complete, COALESCE(error_category, ''), recorded_at
		 FROM agent_runs
		 WHERE agent = $1
		 ORDER BY recorded_at DESC
		 LIMIT $2`,
		agent, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent runs: %w", err)
	}
	defer rows.Close()

	snapshots := make([]types.WatchdogSnapshot, 0)
	for rows.Next() {
		var s types.WatchdogSnapshot
		var status string
		var recordedAt time.Time
		if err := rows.Scan(&s.Agent, &status, &s.DurationMs, &s.OutputComplete, &s.ErrorCategory, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan agent run: %w", err)
		}
		s.Status = types.RunStatus(status)
		s.Timestamp = &recordedAt
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list agent runs: %w", err)
	}

	reverse(snapshots)
	return snapshots, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
