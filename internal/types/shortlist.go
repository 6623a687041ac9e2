// Package types provides type definitions for structured data used throughout the candidate-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ShortlistStrategy names the policy used to turn a scored pool into a shortlist
type ShortlistStrategy string

// Shortlist strategies
const (
	StrategyQuality ShortlistStrategy = "quality"
	StrategyStrict  ShortlistStrategy = "strict"
)

// DecisionStatus records whether a candidate advanced to the shortlist
type DecisionStatus string

// Decision statuses
const (
	DecisionShortlisted    DecisionStatus = "SHORTLISTED"
	DecisionNotShortlisted DecisionStatus = "NOT_SHORTLISTED"
)

// ShortlistDecision is the auditable outcome for one candidate
type ShortlistDecision struct {
	CandidateID string         `json:"candidate_id"`
	Status      DecisionStatus `json:"status"`
	Rank        int            `json:"rank,omitempty"`
	Score       int            `json:"score"`
	Confidence  *int           `json:"confidence,omitempty"`
	Reason      string         `json:"reason,omitempty"`
}

// ShortlistResult is the output of shortlist selection
type ShortlistResult struct {
	Strategy              ShortlistStrategy   `json:"strategy"`
	ShortlistedCandidates []ShortlistDecision `json:"shortlisted_candidates"`
	NotShortlisted        []ShortlistDecision `json:"not_shortlisted"`
	Notes                 []string            `json:"notes"`
}

// Decisions returns shortlisted followed by not-shortlisted decisions.
func (r *ShortlistResult) Decisions() []ShortlistDecision {
	out := make([]ShortlistDecision, 0, len(r.ShortlistedCandidates)+len(r.NotShortlisted))
	out = append(out, r.ShortlistedCandidates...)
	return append(out, r.NotShortlisted...)
}
