// Package types provides type definitions for structured data used throughout the candidate-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// MatchExplanation is the structured, deterministic explanation attached to a match score
type MatchExplanation struct {
	TopReasons     []string         `json:"top_reasons"`
	MissingSkills  []string         `json:"missing_skills"`
	RiskAreas      []string         `json:"risk_areas"`
	Breakdown      []ScoreComponent `json:"breakdown,omitempty"`
	ExportableText string           `json:"exportable_text"`
}

// ScoreComponent is one weighted sub-score of a composite match score
type ScoreComponent struct {
	Name   string  `json:"name"`
	Score  int     `json:"score"`
	Weight float64 `json:"weight"`
}

// ScoredCandidate is a candidate after match scoring, as consumed by shortlist selection
type ScoredCandidate struct {
	CandidateID   string            `json:"candidate_id"`
	Score         int               `json:"score"`
	Confidence    *int              `json:"confidence,omitempty"`
	MissingSkills []string          `json:"missing_skills,omitempty"`
	Internal      bool              `json:"internal,omitempty"`
	Explanation   *MatchExplanation `json:"explanation,omitempty"`
}

// HasConfidence reports whether confidence data is available for the candidate.
func (s ScoredCandidate) HasConfidence() bool {
	return s.Confidence != nil
}

// Verbosity controls how much detail a match explanation carries
type Verbosity string

// Explanation verbosity levels
const (
	VerbosityCompact  Verbosity = "compact"
	VerbosityDetailed Verbosity = "detailed"
)
