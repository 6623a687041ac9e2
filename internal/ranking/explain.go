package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/scoring"
	"github.com/jonathan/candidate-matcher/internal/signals"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// MaxTopReasons caps the number of reasons in an explanation
const MaxTopReasons = 5

// Reason strengths relative to the underlying sub-score
const (
	requiredStrength  = 1.0
	optionalStrength  = 0.6
	seniorityStrength = 0.8
	locationStrength  = 0.7
	signalStrength    = 0.5
	// signals below this score are not presented as reasons
	signalReasonFloor = 70
)

// explainInput is the intermediate state of one scoring pass
type explainInput struct {
	required    []skillMatch
	optional    []skillMatch
	seniority   seniorityResult
	location    locationResult
	signal      signals.Result
	subScores   map[scoring.Component]int
	weights     scoring.Weights
	niceApplies bool
	candidate   *types.Candidate
}

type reason struct {
	text     string
	strength float64
}

// explain builds the explanation from the values used for scoring. Reasons are
// generated in a fixed order (required skills, nice-to-haves, seniority,
// location, signals) and stably sorted by strength.
func explain(in explainInput, opts *Options) *types.MatchExplanation {
	reasons := collectReasons(in)
	sort.SliceStable(reasons, func(i, j int) bool {
		return reasons[i].strength > reasons[j].strength
	})
	if len(reasons) > MaxTopReasons {
		reasons = reasons[:MaxTopReasons]
	}

	exp := &types.MatchExplanation{
		TopReasons:    make([]string, 0, len(reasons)),
		MissingSkills: missingSkills(in.required),
		RiskAreas:     riskAreas(in),
	}
	for _, r := range reasons {
		exp.TopReasons = append(exp.TopReasons, r.text)
	}

	if opts.Verbosity == types.VerbosityDetailed || opts.IncludeWeights {
		exp.Breakdown = breakdown(in)
	}
	exp.ExportableText = renderText(exp)
	return exp
}

func collectReasons(in explainInput) []reason {
	var reasons []reason

	for _, m := range in.required {
		if m.matched {
			reasons = append(reasons, reason{
				text:     skillReason("Matches required skill", m),
				strength: requiredStrength * m.credit * 100,
			})
		}
	}
	for _, m := range in.optional {
		if m.matched {
			reasons = append(reasons, reason{
				text:     skillReason("Matches nice-to-have skill", m),
				strength: optionalStrength * m.credit * 100,
			})
		}
	}

	sen := in.seniority
	if sen.tierKnown && sen.tierDistance() == 0 {
		reasons = append(reasons, reason{
			text:     fmt.Sprintf("Seniority matches role level: %s", tierName(sen.jobTier)),
			strength: seniorityStrength * float64(sen.tierScore),
		})
	} else if sen.tierKnown && sen.tierDistance() == 1 {
		reasons = append(reasons, reason{
			text:     fmt.Sprintf("Seniority adjacent to role level: %s vs %s", tierName(sen.candidateTier), tierName(sen.jobTier)),
			strength: seniorityStrength * float64(sen.tierScore),
		})
	}
	if sen.rangeKnown && !sen.belowMin && !sen.aboveMax {
		reasons = append(reasons, reason{
			text:     fmt.Sprintf("Experience within required range: %s years", formatYears(in.candidate.TotalExperienceYears)),
			strength: seniorityStrength * sen.rangeScore,
		})
	}

	loc := in.location
	switch loc.match {
	case locationRemote:
		reasons = append(reasons, reason{text: "Remote-compatible location", strength: locationStrength * float64(loc.score)})
	case locationExact:
		reasons = append(reasons, reason{text: fmt.Sprintf("Location matches: %s", loc.job), strength: locationStrength * float64(loc.score)})
	case locationRegion:
		reasons = append(reasons, reason{text: fmt.Sprintf("Same region as role: %s", loc.region), strength: locationStrength * float64(loc.score)})
	}

	for _, sub := range []signals.SubScore{in.signal.Recency, in.signal.Outreach, in.signal.Status} {
		if sub.Score >= signalReasonFloor {
			reasons = append(reasons, reason{text: sub.Reason, strength: signalStrength * float64(sub.Score)})
		}
	}

	return reasons
}

func skillReason(prefix string, m skillMatch) string {
	if m.credit < 1.0 {
		return fmt.Sprintf("%s: %s (%s)", prefix, m.req.Name, m.proficiency)
	}
	return fmt.Sprintf("%s: %s", prefix, m.req.Name)
}

// riskAreas lists rule-based risks: missing required skills in job order, then
// seniority, experience and location.
func riskAreas(in explainInput) []string {
	risks := make([]string, 0)
	for _, m := range in.required {
		if !m.matched {
			risks = append(risks, fmt.Sprintf("Missing required skill: %s", m.req.Name))
		}
	}

	sen := in.seniority
	if sen.tierKnown && sen.tierDistance() >= 2 {
		risks = append(risks, fmt.Sprintf("Seniority mismatch: candidate is %s, role is %s",
			tierName(sen.candidateTier), tierName(sen.jobTier)))
	}
	if sen.belowMin {
		risks = append(risks, fmt.Sprintf("Experience below requirement: %s years vs %s required",
			formatYears(in.candidate.TotalExperienceYears), formatYears(sen.minYears)))
	}

	if in.location.match == locationMismatch {
		risks = append(risks, fmt.Sprintf("Location mismatch: candidate in %s, role in %s",
			in.location.candidate, in.location.job))
	}
	return risks
}

// breakdown lists the applicable components in canonical order with their
// normalized weights.
func breakdown(in explainInput) []types.ScoreComponent {
	components := make([]types.ScoreComponent, 0, len(scoring.Components))
	for _, c := range scoring.Components {
		if c == scoring.NiceToHave && !in.niceApplies {
			continue
		}
		components = append(components, types.ScoreComponent{
			Name:   string(c),
			Score:  in.subScores[c],
			Weight: in.weights.Get(c),
		})
	}
	return components
}

// renderText renders the structured explanation fields and nothing else.
func renderText(exp *types.MatchExplanation) string {
	var b strings.Builder

	b.WriteString("Top reasons: ")
	if len(exp.TopReasons) == 0 {
		b.WriteString("none")
	} else {
		b.WriteString(strings.Join(exp.TopReasons, "; "))
	}
	b.WriteString(".")

	if len(exp.MissingSkills) > 0 {
		b.WriteString("\nMissing skills: ")
		b.WriteString(strings.Join(exp.MissingSkills, ", "))
		b.WriteString(".")
	}
	if len(exp.RiskAreas) > 0 {
		b.WriteString("\nRisks: ")
		b.WriteString(strings.Join(exp.RiskAreas, "; "))
		b.WriteString(".")
	}
	if len(exp.Breakdown) > 0 {
		parts := make([]string, 0, len(exp.Breakdown))
		for _, c := range exp.Breakdown {
			parts = append(parts, fmt.Sprintf("%s %d (weight %.2f)", c.Name, c.Score, c.Weight))
		}
		b.WriteString("\nScore breakdown: ")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(".")
	}

	return b.String()
}
