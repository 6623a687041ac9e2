package selection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/guardrails"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// Notes emitted with a shortlist
const (
	NoteConfidenceUnavailable = "Confidence unavailable; using match score only."
	NoteFireDrill             = "Fire drill: conservative guardrails enforced."
	NoteEmptyPool             = "No candidates to shortlist."
)

// ReasonConfidenceUnavailable is recorded when strict selection meets a candidate
// without confidence data while others have it.
const ReasonConfidenceUnavailable = "Confidence unavailable"

// RunShortlist selects a shortlist from a scored pool. fire_drill forces the
// conservative guardrails and the strict strategy; otherwise cfg.Shortlist.Strategy
// applies. Every candidate that is not shortlisted is returned in NotShortlisted
// with a reason. The result does not depend on pool order.
func RunShortlist(job *types.Job, pool []types.ScoredCandidate, cfg guardrails.Config, mode types.Mode) (types.ShortlistResult, error) {
	if err := checkPool(pool); err != nil {
		jobID := ""
		if job != nil {
			jobID = job.ID
		}
		return types.ShortlistResult{}, &Error{Message: fmt.Sprintf("invalid candidate pool for job %q", jobID), Cause: err}
	}

	notes := make([]string, 0)
	if mode == types.ModeFireDrill {
		cfg = guardrails.Effective(cfg, mode)
		notes = append(notes, NoteFireDrill)
	}
	strategy := strategyFor(cfg, mode)

	result := types.ShortlistResult{
		Strategy:              strategy,
		ShortlistedCandidates: make([]types.ShortlistDecision, 0),
		NotShortlisted:        make([]types.ShortlistDecision, 0),
	}

	if len(pool) == 0 {
		result.Notes = append(notes, NoteEmptyPool)
		return result, nil
	}

	matchOnly := !anyConfidence(pool)
	if matchOnly {
		notes = append(notes, NoteConfidenceUnavailable)
	}

	eligible := make([]types.ScoredCandidate, 0, len(pool))
	for _, c := range pool {
		if reason := excludedReason(c, cfg, strategy, matchOnly); reason != "" {
			result.NotShortlisted = append(result.NotShortlisted, decision(c, types.DecisionNotShortlisted, 0, reason))
			continue
		}
		eligible = append(eligible, c)
	}

	sortCandidates(eligible)

	limit := len(eligible)
	if strategy == types.StrategyQuality && cfg.Thresholds.ShortlistMaxCandidates < limit {
		limit = cfg.Thresholds.ShortlistMaxCandidates
	}

	for i, c := range eligible {
		if i < limit {
			result.ShortlistedCandidates = append(result.ShortlistedCandidates,
				decision(c, types.DecisionShortlisted, i+1, shortlistedReason(strategy, cfg)))
			continue
		}
		result.NotShortlisted = append(result.NotShortlisted, decision(c, types.DecisionNotShortlisted, 0,
			fmt.Sprintf("Ranked below shortlist cap of %d", cfg.Thresholds.ShortlistMaxCandidates)))
	}

	sortDecisions(result.NotShortlisted)
	result.Notes = notes
	return result, nil
}

func strategyFor(cfg guardrails.Config, mode types.Mode) types.ShortlistStrategy {
	if mode == types.ModeFireDrill {
		return types.StrategyStrict
	}
	if cfg.Shortlist.Strategy == types.StrategyStrict {
		return types.StrategyStrict
	}
	return types.StrategyQuality
}

// excludedReason applies the safety filters, then the strategy's floors. An
// empty string means the candidate is eligible.
func excludedReason(c types.ScoredCandidate, cfg guardrails.Config, strategy types.ShortlistStrategy, matchOnly bool) string {
	if cfg.Safety.RequireMustHaves && len(c.MissingSkills) > 0 {
		return fmt.Sprintf("Missing required skills: %s", strings.Join(c.MissingSkills, ", "))
	}
	if cfg.Safety.ExcludeInternalCandidates && c.Internal {
		return "Internal candidate excluded by policy"
	}

	t := cfg.Thresholds
	if strategy == types.StrategyQuality {
		if c.Score < t.MinMatchScore {
			return fmt.Sprintf("Match score %d below minimum %d", c.Score, t.MinMatchScore)
		}
		return ""
	}

	if c.Score < t.ShortlistMinScore {
		return fmt.Sprintf("Match score %d below shortlist minimum %d", c.Score, t.ShortlistMinScore)
	}
	if matchOnly {
		return ""
	}
	if c.Confidence == nil {
		return ReasonConfidenceUnavailable
	}
	if *c.Confidence < t.MinConfidence {
		return fmt.Sprintf("Confidence %d below minimum %d", *c.Confidence, t.MinConfidence)
	}
	return ""
}

func shortlistedReason(strategy types.ShortlistStrategy, cfg guardrails.Config) string {
	if strategy == types.StrategyStrict {
		return fmt.Sprintf("Cleared shortlist minimum %d and confidence minimum %d",
			cfg.Thresholds.ShortlistMinScore, cfg.Thresholds.MinConfidence)
	}
	return fmt.Sprintf("Within top %d at or above minimum %d",
		cfg.Thresholds.ShortlistMaxCandidates, cfg.Thresholds.MinMatchScore)
}

func decision(c types.ScoredCandidate, status types.DecisionStatus, rank int, reason string) types.ShortlistDecision {
	d := types.ShortlistDecision{
		CandidateID: c.CandidateID,
		Status:      status,
		Rank:        rank,
		Score:       c.Score,
		Reason:      reason,
	}
	if c.Confidence != nil {
		conf := *c.Confidence
		d.Confidence = &conf
	}
	return d
}

func anyConfidence(pool []types.ScoredCandidate) bool {
	for _, c := range pool {
		if c.HasConfidence() {
			return true
		}
	}
	return false
}

func checkPool(pool []types.ScoredCandidate) error {
	seen := make(map[string]bool, len(pool))
	for i, c := range pool {
		if c.CandidateID == "" {
			return fmt.Errorf("candidate at index %d has no id", i)
		}
		if seen[c.CandidateID] {
			return fmt.Errorf("duplicate candidate id %q", c.CandidateID)
		}
		seen[c.CandidateID] = true
	}
	return nil
}

// confidenceOrLowest treats missing confidence as lower than any real value.
func confidenceOrLowest(c *int) int {
	if c == nil {
		return -1
	}
	return *c
}

// sortCandidates orders by score desc, confidence desc, candidate id asc.
func sortCandidates(pool []types.ScoredCandidate) {
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ca, cb := confidenceOrLowest(a.Confidence), confidenceOrLowest(b.Confidence)
		if ca != cb {
			return ca > cb
		}
		return a.CandidateID < b.CandidateID
	})
}

func sortDecisions(decisions []types.ShortlistDecision) {
	sort.SliceStable(decisions, func(i, j int) bool {
		a, b := decisions[i], decisions[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ca, cb := confidenceOrLowest(a.Confidence), confidenceOrLowest(b.Confidence)
		if ca != cb {
			return ca > cb
		}
		return a.CandidateID < b.CandidateID
	})
}
