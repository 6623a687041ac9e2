// Package types provides type definitions for structured data used throughout the candidate-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// RunStatus is the outcome of a single agent run
type RunStatus string

// Run statuses
const (
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
)

// WatchdogSnapshot captures one agent run outcome. It is supplied per evaluation call.
type WatchdogSnapshot struct {
	Agent          string     `json:"agent"`
	Status         RunStatus  `json:"status"`
	DurationMs     int64      `json:"duration_ms"`
	OutputComplete bool       `json:"output_complete"`
	ErrorCategory  string     `json:"error_category,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}

// Failed reports whether the run failed.
func (s WatchdogSnapshot) Failed() bool {
	return s.Status == RunFailed
}
