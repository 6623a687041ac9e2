// Package ranking scores candidates against a job and explains each score.
package ranking

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// Neutral sub-scores for unknown inputs
const (
	neutralSeniorityScore = 50
	neutralLocationScore  = 50
)

// Partial credit for weak proficiency on a matched skill
const partialCredit = 0.5

var weakProficiency = map[string]bool{
	"beginner": true,
	"novice":   true,
	"basic":    true,
}

// skillMatch records how one job requirement was satisfied
type skillMatch struct {
	req     types.SkillRequirement
	matched bool
	credit  float64
	// proficiency of the candidate skill that satisfied the requirement
	proficiency string
}

// matchSkills joins requirements against the candidate's skills in requirement order.
func matchSkills(reqs []types.SkillRequirement, candidateSkills []types.CandidateSkill) []skillMatch {
	keys := parsing.CandidateSkillKeys(candidateSkills)
	matches := make([]skillMatch, 0, len(reqs))

	for _, req := range reqs {
		m := skillMatch{req: req}
		if idx, found := keys[req.NormalizedName]; found {
			m.matched = true
			m.proficiency = strings.ToLower(strings.TrimSpace(candidateSkills[idx].Proficiency))
			m.credit = 1.0
			if weakProficiency[m.proficiency] {
				m.credit = partialCredit
			}
		}
		matches = append(matches, m)
	}
	return matches
}

// requirementKeys returns the join keys of the requirements, in order.
func requirementKeys(reqs []types.SkillRequirement) []string {
	keys := make([]string, 0, len(reqs))
	for _, req := range reqs {
		keys = append(keys, req.NormalizedName)
	}
	return keys
}

// candidateKeys returns the distinct join keys of the candidate's skills.
func candidateKeys(candidateSkills []types.CandidateSkill) []string {
	keys := make([]string, 0, len(candidateSkills))
	for _, s := range candidateSkills {
		if key := parsing.SkillKey(s.Name, s.NormalizedName); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// weightedCredit returns matched weight over total weight in [0,1].
// An empty set returns ok=false.
func weightedCredit(matches []skillMatch) (ratio float64, ok bool) {
	total := 0.0
	earned := 0.0
	for _, m := range matches {
		total += m.req.Weight
		if m.matched {
			earned += m.credit * m.req.Weight
		}
	}
	if total <= 0 {
		return 0, false
	}
	return earned / total, true
}

// computeSkillScore scores required skills. With no required skills it falls back
// to the optional overlap ratio, and a job with no skills at all scores 100.
func computeSkillScore(required, optional []skillMatch) int {
	if ratio, ok := weightedCredit(required); ok {
		return toScore(ratio * 100)
	}
	if ratio, ok := weightedCredit(optional); ok {
		return toScore(ratio * 100)
	}
	return 100
}

// computeNiceToHaveScore scores optional skills. It only applies when the job has
// both required and optional skills; otherwise the skill score already covers them.
func computeNiceToHaveScore(required, optional []skillMatch) (int, bool) {
	if len(required) == 0 || len(optional) == 0 {
		return 0, false
	}
	ratio, ok := weightedCredit(optional)
	if !ok {
		return 0, false
	}
	return toScore(ratio * 100), true
}

// Seniority tiers, lowest first
var tierNames = []string{"intern", "junior", "mid", "senior", "lead", "principal"}

var tierAliases = map[string]int{
	"intern":        0,
	"entry":         0,
	"junior":        1,
	"jr":            1,
	"associate":     1,
	"i":             1,
	"mid":           2,
	"intermediate":  2,
	"ii":            2,
	"senior":        3,
	"sr":            3,
	"iii":           3,
	"lead":          4,
	"staff":         4,
	"manager":       4,
	"principal":     5,
	"director":      5,
	"distinguished": 5,
}

// parseTier maps a free-text seniority level onto the tier ladder using the
// first recognized word.
func parseTier(level string) (int, bool) {
	cleaned := strings.NewReplacer(".", " ", "-", " ", "_", " ", "/", " ").Replace(strings.ToLower(level))
	for _, word := range strings.Fields(cleaned) {
		if tier, ok := tierAliases[word]; ok {
			return tier, true
		}
	}
	return 0, false
}

// seniorityResult carries the intermediate values behind the seniority score
type seniorityResult struct {
	score         int
	jobTier       int
	candidateTier int
	tierKnown     bool
	tierScore     int
	rangeKnown    bool
	rangeScore    float64
	belowMin      bool
	aboveMax      bool
	minYears      float64
}

func tierDistanceScore(distance int) int {
	switch distance {
	case 0:
		return 100
	case 1:
		return 70
	case 2:
		return 40
	default:
		return 20
	}
}

// computeSeniority blends tier alignment and experience-range fit equally when
// both are known. Neither known is neutral.
func computeSeniority(job *types.Job, candidate *types.Candidate) seniorityResult {
	var r seniorityResult

	jobTier, jobOK := parseTier(job.SeniorityLevel)
	candTier, candOK := parseTier(candidate.SeniorityLevel)
	if jobOK && candOK {
		r.tierKnown = true
		r.jobTier = jobTier
		r.candidateTier = candTier
		distance := jobTier - candTier
		if distance < 0 {
			distance = -distance
		}
		r.tierScore = tierDistanceScore(distance)
	}

	if job.MinExperienceYears != nil || job.MaxExperienceYears != nil {
		r.rangeKnown = true
		years := candidate.TotalExperienceYears
		switch {
		case job.MinExperienceYears != nil && years < *job.MinExperienceYears:
			r.belowMin = true
			r.minYears = *job.MinExperienceYears
			gap := *job.MinExperienceYears - years
			r.rangeScore = math.Max(20, 100-20*gap)
		case job.MaxExperienceYears != nil && years > *job.MaxExperienceYears:
			r.aboveMax = true
			r.rangeScore = 85
		default:
			r.rangeScore = 100
		}
	}

	switch {
	case r.tierKnown && r.rangeKnown:
		r.score = toScore((float64(r.tierScore) + r.rangeScore) / 2)
	case r.tierKnown:
		r.score = r.tierScore
	case r.rangeKnown:
		r.score = toScore(r.rangeScore)
	default:
		r.score = neutralSeniorityScore
	}
	return r
}

// tierDistance returns the absolute tier gap; only meaningful when tierKnown.
func (r seniorityResult) tierDistance() int {
	d := r.jobTier - r.candidateTier
	if d < 0 {
		return -d
	}
	return d
}

type locationMatch string

const (
	locationUnknown  locationMatch = "unknown"
	locationRemote   locationMatch = "remote"
	locationExact    locationMatch = "exact"
	locationRegion   locationMatch = "region"
	locationMismatch locationMatch = "mismatch"
)

// locationResult carries the intermediate values behind the location score
type locationResult struct {
	score     int
	match     locationMatch
	region    string
	job       string
	candidate string
}

func normalizeLocation(loc string) string {
	return strings.Join(strings.Fields(strings.ToLower(loc)), " ")
}

// region returns the last comma-separated component of a location.
func region(loc string) string {
	parts := strings.Split(loc, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

func isRemote(loc string) bool {
	return strings.Contains(loc, "remote")
}

func computeLocation(job *types.Job, candidate *types.Candidate) locationResult {
	jobLoc := normalizeLocation(job.Location)
	candLoc := normalizeLocation(candidate.Location)
	r := locationResult{job: strings.TrimSpace(job.Location), candidate: strings.TrimSpace(candidate.Location)}

	switch {
	case isRemote(jobLoc) || isRemote(candLoc):
		r.score, r.match = 100, locationRemote
	case jobLoc == "" || candLoc == "":
		r.score, r.match = neutralLocationScore, locationUnknown
	case jobLoc == candLoc:
		r.score, r.match = 100, locationExact
	case region(jobLoc) != "" && region(jobLoc) == region(candLoc):
		r.score, r.match = 70, locationRegion
		r.region = region(r.job)
	default:
		r.score, r.match = 25, locationMismatch
	}
	return r
}

func tierName(tier int) string {
	if tier < 0 || tier >= len(tierNames) {
		return fmt.Sprintf("tier %d", tier)
	}
	return tierNames[tier]
}

func formatYears(years float64) string {
	return fmt.Sprintf("%g", years)
}

// toScore rounds and clamps a value to an integer score in [0,100].
func toScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	rounded := int(math.Round(v))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
