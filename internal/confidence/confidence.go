// Package confidence computes how much trust to place in a match score from
// profile completeness, skill overlap and recency.
package confidence

import (
	"math"
	"time"

	"github.com/jonathan/candidate-matcher/internal/parsing"
)

// Component bands
const (
	MaxDataCompleteness = 40
	MaxSkillCoverage    = 40
	MaxRecency          = 20
	MaxTotal            = 100
)

const (
	freshDays   = 30.0
	staleDays   = 180.0
	staleFactor = 0.2
	floorFactor = 0.1
	// neutralFactor applies when no creation timestamp is known
	neutralFactor = 0.5
)

// Category is the confidence band derived from the numeric total
type Category string

// Confidence bands
const (
	High   Category = "HIGH"
	Medium Category = "MEDIUM"
	Low    Category = "LOW"
)

// Context is the input to ComputeConfidenceScore
type Context struct {
	JobSkills       []string
	CandidateSkills []string
	HasTitle        bool
	HasLocation     bool
	CreatedAt       *time.Time
	// Now anchors the recency factor; zero means the current wall-clock time.
	Now time.Time
}

// Breakdown is the per-component confidence score
type Breakdown struct {
	DataCompleteness int `json:"data_completeness"`
	SkillCoverage    int `json:"skill_coverage"`
	Recency          int `json:"recency"`
	Total            int `json:"total"`
}

// Category returns the band for the breakdown's total.
func (b Breakdown) Category() Category {
	return CategoryFor(b.Total)
}

// ComputeConfidenceScore returns the confidence breakdown for a candidate.
// Each component is rounded before summing; the total is clamped to [0,100].
func ComputeConfidenceScore(ctx Context) Breakdown {
	completeness := clamp(dataCompleteness(ctx), 0, MaxDataCompleteness)
	coverage := clamp(int(math.Round(jaccard(ctx.JobSkills, ctx.CandidateSkills)*MaxSkillCoverage)), 0, MaxSkillCoverage)

	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	recency := clamp(int(math.Round(RecencyFactor(ctx.CreatedAt, now)*MaxRecency)), 0, MaxRecency)

	return Breakdown{
		DataCompleteness: completeness,
		SkillCoverage:    coverage,
		Recency:          recency,
		Total:            clamp(completeness+coverage+recency, 0, MaxTotal),
	}
}

// CategoryFor maps a confidence total to its band.
func CategoryFor(total int) Category {
	switch {
	case total >= 75:
		return High
	case total >= 50:
		return Medium
	default:
		return Low
	}
}

// RecencyFactor returns 1.0 for profiles up to 30 days old, interpolates linearly
// down to 0.2 at 180 days and drops to 0.1 beyond. A nil timestamp is neutral (0.5).
func RecencyFactor(createdAt *time.Time, now time.Time) float64 {
	if createdAt == nil {
		return neutralFactor
	}

	ageDays := now.Sub(*createdAt).Hours() / 24
	switch {
	case ageDays <= freshDays:
		return 1.0
	case ageDays <= staleDays:
		progress := (ageDays - freshDays) / (staleDays - freshDays)
		return 1.0 - progress*(1.0-staleFactor)
	default:
		return floorFactor
	}
}

func dataCompleteness(ctx Context) int {
	score := 0
	if ctx.HasTitle {
		score += 15
	}
	if ctx.HasLocation {
		score += 5
	}

	switch n := len(skillSet(ctx.CandidateSkills)); {
	case n >= 5:
		score += 20
	case n >= 3:
		score += 10
	case n >= 1:
		score += 5
	}
	return score
}

// jaccard returns the case-insensitive Jaccard similarity of two skill lists.
func jaccard(a, b []string) float64 {
	setA := skillSet(a)
	setB := skillSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for k := range setA {
		if setB[k] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func skillSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if key := parsing.NormalizeSkillName(n); key != "" {
			set[key] = true
		}
	}
	return set
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
