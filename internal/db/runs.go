package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/candidate-matcher/internal/types"
)

const matchRunColumns = `id, tenant_id, job_id, mode, COALESCE(strategy, ''), status,
	candidate_count, shortlisted, guardrails, notes, error_message, created_at, completed_at`

// CreateMatchRun records the start of a run. A nil input ID is replaced with a new UUID.
func (db *DB) CreateMatchRun(ctx context.Context, input *MatchRunInput) (uuid.UUID, error) {
	id := input.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	var guardrailsJSON []byte
	if input.Guardrails != nil {
		var err error
		guardrailsJSON, err = json.Marshal(input.Guardrails)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to marshal guardrails: %w", err)
		}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO match_runs (id, tenant_id, job_id, mode, status, candidate_count, guardrails)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, input.TenantID, input.JobID, string(input.Mode), RunStatusRunning, input.CandidateCount, guardrailsJSON,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create match run: %w", err)
	}
	return id, nil
}

// CompleteMatchRun stores the outcome of a run
func (db *DB) CompleteMatchRun(ctx context.Context, runID uuid.UUID, outcome *RunOutcome) error {
	notesJSON, err := json.Marshal(outcome.Notes)
	if err != nil {
		return fmt.Errorf("failed to marshal notes: %w", err)
	}

	var errMsg *string
	if outcome.ErrorMessage != "" {
		errMsg = &outcome.ErrorMessage
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE match_runs
		 SET status = $1, strategy = NULLIF($2, ''), shortlisted = $3, notes = $4,
		     error_message = $5, completed_at = NOW()
		 WHERE id = $6`,
		outcome.Status, string(outcome.Strategy), outcome.Shortlisted, notesJSON, errMsg, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete match run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("match run not found: %s", runID)
	}
	return nil
}

// GetMatchRun retrieves a run by ID. It returns nil when no run exists.
func (db *DB) GetMatchRun(ctx context.Context, runID uuid.UUID) (*MatchRun, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+matchRunColumns+` FROM match_runs WHERE id = $1`,
		runID,
	)
	run, err := scanMatchRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match run: %w", err)
	}
	return run, nil
}

// ListMatchRuns retrieves recent runs with optional filters
func (db *DB) ListMatchRuns(ctx context.Context, filters RunFilters) ([]MatchRun, error) {
	query := `SELECT ` + matchRunColumns + ` FROM match_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.TenantID != "" {
		query += fmt.Sprintf(" AND tenant_id = $%d", argNum)
		args = append(args, filters.TenantID)
		argNum++
	}
	if filters.JobID != "" {
		query += fmt.Sprintf(" AND job_id = $%d", argNum)
		args = append(args, filters.JobID)
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.limit())

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list match runs: %w", err)
	}
	defer rows.Close()

	runs := make([]MatchRun, 0)
	for rows.Next() {
		run, err := scanMatchRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanMatchRun(row pgx.Row) (*MatchRun, error) {
	var run MatchRun
	var mode string
	var guardrailsJSON, notesJSON []byte

	err := row.Scan(&run.ID, &run.TenantID, &run.JobID, &mode, &run.Strategy, &run.Status,
		&run.CandidateCount, &run.Shortlisted, &guardrailsJSON, &notesJSON, &run.ErrorMessage,
		&run.CreatedAt, &run.CompletedAt)
	if err != nil {
		return nil, err
	}

	run.Mode = types.Mode(mode)
	if len(guardrailsJSON) > 0 {
		run.Guardrails = json.RawMessage(guardrailsJSON)
	}
	if len(notesJSON) > 0 {
		_ = json.Unmarshal(notesJSON, &run.Notes)
	}
	return &run, nil
}

// SaveShortlistDecisions stores every decision for a run in one batch.
// Re-saving a candidate's decision overwrites it.
func (db *DB) SaveShortlistDecisions(ctx context.Context, runID uuid.UUID, decisions []types.ShortlistDecision) error {
	if len(decisions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, d := range decisions {
		var rank *int
		if d.Rank > 0 {
			r := d.Rank
			rank = &r
		}
		batch.Queue(
			`INSERT INTO shortlist_decisions (run_id, candidate_id, status, rank, score, confidence, reason)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (run_id, candidate_id) DO UPDATE
			 SET status = $3, rank = $4, score = $5, confidence = $6, reason = $7, created_at = NOW()`,
			runID, d.CandidateID, string(d.Status), rank, d.Score, d.Confidence, d.Reason,
		)
	}

	if err := db.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save shortlist decisions for run %s: %w", runID, err)
	}
	return nil
}

// ListShortlistDecisions returns a run's decisions, shortlisted first by rank,
// then the rest by score.
func (db *DB) ListShortlistDecisions(ctx context.Context, runID uuid.UUID) ([]types.ShortlistDecision, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT candidate_id, status, rank, score, confidence, COALESCE(reason, '')
		 FROM shortlist_decisions
		 WHERE run_id = $1
		 ORDER BY rank ASC NULLS LAST, score DESC, candidate_id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shortlist decisions: %w", err)
	}
	defer rows.Close()

	decisions := make([]types.ShortlistDecision, 0)
	for rows.Next() {
		var d types.ShortlistDecision
		var status string
		var rank *int
		if err := rows.Scan(&d.CandidateID, &status, &rank, &d.Score, &d.Confidence, &d.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan shortlist decision: %w", err)
		}
		d.Status = types.DecisionStatus(status)
		if rank != nil {
			d.Rank = *rank
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// DeleteMatchRun deletes a run and its decisions (via cascade)
func (db *DB) DeleteMatchRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM match_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete match run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("match run not found: %s", runID)
	}
	return nil
}
