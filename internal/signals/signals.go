// Package signals derives an engagement score for a candidate from recent
// activity, outreach interactions and pipeline status.
package signals

import (
	"fmt"
	"math"
	"time"

	"github.com/jonathan/candidate-matcher/internal/scoring"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// Neutral scores used when an input is missing
const (
	NeutralRecencyScore = 50
	NeutralStatusScore  = 45
)

// Reason strings are rendered verbatim into match explanations.
const (
	ReasonActive7d        = "Active within the last 7 days"
	ReasonActive30d       = "Active within the last 30 days"
	ReasonActive90d       = "Active within the last 90 days"
	ReasonActive180d      = "Active within the last 180 days"
	ReasonInactive        = "No activity in over 180 days"
	ReasonNoActivity      = "No activity timestamp; neutral recency"
	ReasonOutreach5Plus   = "5+ outreach interactions"
	ReasonOutreach3To4    = "3-4 outreach interactions"
	ReasonOutreach1To2    = "1-2 outreach interactions"
	ReasonOutreachNone    = "No outreach interactions"
	ReasonNoPipelineState = "No job-specific pipeline status; neutral status"
)

// statusScores is the fixed pipeline-status lookup table
var statusScores = map[types.PipelineStatus]int{
	types.StatusPotential:    40,
	types.StatusShortlisted:  65,
	types.StatusSubmitted:    75,
	types.StatusInterviewing: 90,
	types.StatusHired:        100,
	types.StatusRejected:     20,
}

// Weights blends the three sub-scores. They are renormalized to sum to 1.
type Weights struct {
	Recency  float64 `json:"recency"`
	Outreach float64 `json:"outreach"`
	Status   float64 `json:"status"`
}

// DefaultWeights is used when no weights are given or they sum to zero.
var DefaultWeights = Weights{Recency: 0.4, Outreach: 0.3, Status: 0.3}

// Normalize floors negative weights at zero and rescales proportionally,
// sharing the routine used for match weights.
func (w Weights) Normalize() Weights {
	shares, ok := scoring.Shares(w.Recency, w.Outreach, w.Status)
	if !ok {
		return DefaultWeights
	}
	return Weights{Recency: shares[0], Outreach: shares[1], Status: shares[2]}
}

// SubScore is one signal with its human-readable reason
type SubScore struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Result is the output of ComputeCandidateSignalScore
type Result struct {
	Score    int      `json:"score"`
	Recency  SubScore `json:"recency"`
	Outreach SubScore `json:"outreach"`
	Status   SubScore `json:"status"`
	Weights  Weights  `json:"weights"`
}

// Reasons returns the sub-score reasons in fixed order: recency, outreach, status.
func (r Result) Reasons() []string {
	return []string{r.Recency.Reason, r.Outreach.Reason, r.Status.Reason}
}

// ComputeCandidateSignalScore scores candidate engagement. link may be nil when the
// candidate has no job-specific pipeline entry; weights may be nil for defaults.
// A zero now means the current wall-clock time.
func ComputeCandidateSignalScore(candidate *types.Candidate, link *types.JobCandidateLink, outreachCount int, weights *Weights, now time.Time) Result {
	w := DefaultWeights
	if weights != nil {
		w = weights.Normalize()
	}
	if now.IsZero() {
		now = time.Now()
	}

	recency := recencyScore(lastActivity(candidate, link), now)
	outreach := outreachScore(outreachCount)
	status := statusScore(link)

	blended := w.Recency*float64(recency.Score) + w.Outreach*float64(outreach.Score) + w.Status*float64(status.Score)
	score := int(math.Round(blended))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Result{
		Score:    score,
		Recency:  recency,
		Outreach: outreach,
		Status:   status,
		Weights:  w,
	}
}

// lastActivity returns the most recent of the link update, candidate update and
// candidate creation timestamps, or nil if none is known.
func lastActivity(candidate *types.Candidate, link *types.JobCandidateLink) *time.Time {
	var latest *time.Time
	consider := func(ts *time.Time) {
		if ts != nil && (latest == nil || ts.After(*latest)) {
			latest = ts
		}
	}
	if link != nil {
		consider(link.UpdatedAt)
	}
	if candidate != nil {
		consider(candidate.UpdatedAt)
		consider(candidate.CreatedAt)
	}
	return latest
}

func recencyScore(last *time.Time, now time.Time) SubScore {
	if last == nil {
		return SubScore{Score: NeutralRecencyScore, Reason: ReasonNoActivity}
	}

	days := now.Sub(*last).Hours() / 24
	switch {
	case days <= 7:
		return SubScore{Score: 100, Reason: ReasonActive7d}
	case days <= 30:
		return SubScore{Score: 85, Reason: ReasonActive30d}
	case days <= 90:
		return SubScore{Score: 70, Reason: ReasonActive90d}
	case days <= 180:
		return SubScore{Score: 55, Reason: ReasonActive180d}
	default:
		return SubScore{Score: 35, Reason: ReasonInactive}
	}
}

func outreachScore(count int) SubScore {
	switch {
	case count >= 5:
		return SubScore{Score: 100, Reason: ReasonOutreach5Plus}
	case count >= 3:
		return SubScore{Score: 85, Reason: ReasonOutreach3To4}
	case count >= 1:
		return SubScore{Score: 70, Reason: ReasonOutreach1To2}
	default:
		return SubScore{Score: 30, Reason: ReasonOutreachNone}
	}
}

func statusScore(link *types.JobCandidateLink) SubScore {
	if link == nil || link.Status == "" {
		return SubScore{Score: NeutralStatusScore, Reason: ReasonNoPipelineState}
	}
	score, ok := statusScores[link.Status]
	if !ok {
		return SubScore{Score: NeutralStatusScore, Reason: ReasonNoPipelineState}
	}
	return SubScore{Score: score, Reason: fmt.Sprintf("Pipeline status: %s", link.Status)}
}
