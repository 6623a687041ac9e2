package ranking

import (
	"time"

	"github.com/jonathan/candidate-matcher/internal/confidence"
	"github.com/jonathan/candidate-matcher/internal/scoring"
	"github.com/jonathan/candidate-matcher/internal/signals"
	"github.com/jonathan/candidate-matcher/internal/skills"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// MatchContext is everything known about one job/candidate pair
type MatchContext struct {
	Job           *types.Job
	Candidate     *types.Candidate
	Link          *types.JobCandidateLink
	OutreachCount int
	// Now anchors recency; zero means the current wall-clock time.
	Now time.Time
}

// Options tunes a scoring pass. A nil *Options uses defaults.
type Options struct {
	Weights         *scoring.Weights
	SignalWeights   *signals.Weights
	Verbosity       types.Verbosity
	IncludeWeights  bool
	SkipConfidence  bool
	SkipExplanation bool
	// Concurrency bounds ScorePool fan-out; zero uses DefaultConcurrency.
	Concurrency int
}

// MatchResult is the score of one candidate for one job
type MatchResult struct {
	CandidateID          string                  `json:"candidate_id"`
	Score                int                     `json:"score"`
	SkillScore           int                     `json:"skill_score"`
	NiceToHaveScore      *int                    `json:"nice_to_have_score,omitempty"`
	SeniorityScore       int                     `json:"seniority_score"`
	LocationScore        int                     `json:"location_score"`
	CandidateSignalScore int                     `json:"candidate_signal_score"`
	Confidence           *confidence.Breakdown   `json:"confidence,omitempty"`
	ConfidenceCategory   confidence.Category     `json:"confidence_category,omitempty"`
	MissingSkills        []string                `json:"missing_skills"`
	Internal             bool                    `json:"internal,omitempty"`
	Weights              scoring.Weights         `json:"weights"`
	Explanation          *types.MatchExplanation `json:"explanation,omitempty"`
}

// ToScored converts the result into the shape consumed by shortlist selection.
func (r *MatchResult) ToScored() types.ScoredCandidate {
	scored := types.ScoredCandidate{
		CandidateID:   r.CandidateID,
		Score:         r.Score,
		MissingSkills: r.MissingSkills,
		Internal:      r.Internal,
		Explanation:   r.Explanation,
	}
	if r.Confidence != nil {
		total := r.Confidence.Total
		scored.Confidence = &total
	}
	return scored
}

// ComputeMatchScore scores a candidate against a job. It is deterministic for
// identical inputs and never fails: missing data resolves to neutral sub-scores.
func ComputeMatchScore(mc MatchContext, opts *Options) MatchResult {
	if opts == nil {
		opts = &Options{}
	}
	job := mc.Job
	if job == nil {
		job = &types.Job{}
	}
	candidate := mc.Candidate
	if candidate == nil {
		candidate = &types.Candidate{}
	}
	now := mc.Now
	if now.IsZero() {
		now = time.Now()
	}

	reqs := skills.BuildRequirements(job)
	requiredReqs, optionalReqs := skills.Split(reqs)
	required := matchSkills(requiredReqs, candidate.Skills)
	optional := matchSkills(optionalReqs, candidate.Skills)

	skillScore := computeSkillScore(required, optional)
	niceScore, niceApplies := computeNiceToHaveScore(required, optional)
	seniority := computeSeniority(job, candidate)
	location := computeLocation(job, candidate)
	signal := signals.ComputeCandidateSignalScore(candidate, mc.Link, mc.OutreachCount, opts.SignalWeights, now)

	base := scoring.DefaultWeights
	if opts.Weights != nil {
		base = *opts.Weights
	}
	var weights scoring.Weights
	if niceApplies {
		weights = base.Without()
	} else {
		weights = base.Without(scoring.NiceToHave)
	}

	subScores := map[scoring.Component]int{
		scoring.MustHave:        skillScore,
		scoring.NiceToHave:      niceScore,
		scoring.Experience:      seniority.score,
		scoring.Location:        location.score,
		scoring.CandidateSignal: signal.Score,
	}
	composite := 0.0
	for _, c := range scoring.Components {
		composite += weights.Get(c) * float64(subScores[c])
	}

	result := MatchResult{
		CandidateID:          candidate.ID,
		Score:                toScore(composite),
		SkillScore:           skillScore,
		SeniorityScore:       seniority.score,
		LocationScore:        location.score,
		CandidateSignalScore: signal.Score,
		MissingSkills:        missingSkills(required),
		Internal:             candidate.Internal,
		Weights:              weights,
	}
	if niceApplies {
		result.NiceToHaveScore = &niceScore
	}

	if !opts.SkipConfidence {
		breakdown := confidence.ComputeConfidenceScore(confidence.Context{
			JobSkills:       requirementKeys(reqs),
			CandidateSkills: candidateKeys(candidate.Skills),
			HasTitle:        candidate.Title != "",
			HasLocation:     candidate.Location != "",
			CreatedAt:       candidate.CreatedAt,
			Now:             now,
		})
		result.Confidence = &breakdown
		result.ConfidenceCategory = breakdown.Category()
	}

	if !opts.SkipExplanation {
		result.Explanation = explain(explainInput{
			required:    required,
			optional:    optional,
			seniority:   seniority,
			location:    location,
			signal:      signal,
			subScores:   subScores,
			weights:     weights,
			niceApplies: niceApplies,
			candidate:   candidate,
		}, opts)
	}

	return result
}

// missingSkills lists unmatched required skills in job order.
func missingSkills(required []skillMatch) []string {
	missing := make([]string, 0)
	for _, m := range required {
		if !m.matched {
			missing = append(missing, m.req.Name)
		}
	}
	return missing
}
