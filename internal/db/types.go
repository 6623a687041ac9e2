package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// Match run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// MatchRun represents one scoring and shortlist run for a job
type MatchRun struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       string          `json:"tenant_id"`
	JobID          string          `json:"job_id"`
	Mode           types.Mode      `json:"mode"`
	Strategy       string          `json:"strategy,omitempty"`
	Status         string          `json:"status"`
	CandidateCount int             `json:"candidate_count"`
	Shortlisted    int             `json:"shortlisted"`
	Guardrails     json.RawMessage `json:"guardrails,omitempty"`
	Notes          []string        `json:"notes,omitempty"`
	ErrorMessage   *string         `json:"error_message,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// MatchRunInput holds the fields known when a run starts
type MatchRunInput struct {
	ID             uuid.UUID
	TenantID       string
	JobID          string
	Mode           types.Mode
	CandidateCount int
	Guardrails     any
}

// RunOutcome holds the fields recorded when a run finishes
type RunOutcome struct {
	Status       string
	Strategy     types.ShortlistStrategy
	Shortlisted  int
	Notes        []string
	ErrorMessage string
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	TenantID string
	JobID    string
	Status   string
	Limit    int
}

// DefaultListLimit caps list queries when no limit is given.
const DefaultListLimit = 50

func (f RunFilters) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}
