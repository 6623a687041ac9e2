package ranking

import (
	"testing"

	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/stretchr/testify/assert"
)

func float(v float64) *float64 {
	return &v
}

func TestComputeSkillScore_RequiredWeighted(t *testing.T) {
	required := matchSkills([]types.SkillRequirement{
		{Name: "React", NormalizedName: "react", Required: true, Weight: 2},
		{Name: "GraphQL", NormalizedName: "graphql", Required: true, Weight: 1},
	}, []types.CandidateSkill{{Name: "React"}})

	assert.Equal(t, 67, computeSkillScore(required, nil))
}

func TestComputeSkillScore_PartialCreditForWeakProficiency(t *testing.T) {
	required := matchSkills([]types.SkillRequirement{
		{Name: "React", NormalizedName: "react", Required: true, Weight: 2},
		{Name: "GraphQL", NormalizedName: "graphql", Required: true, Weight: 1},
	}, []types.CandidateSkill{{Name: "ReactJS", Proficiency: "Beginner"}, {Name: "graphql"}})

	// (0.5*2 + 1) / 3
	assert.Equal(t, 67, computeSkillScore(required, nil))
	assert.Equal(t, 0.5, required[0].credit)
	assert.Equal(t, 1.0, required[1].credit)
}

func TestComputeSkillScore_EdgeCases(t *testing.T) {
	assert.Equal(t, 100, computeSkillScore(nil, nil), "unconstrained role")

	required := matchSkills([]types.SkillRequirement{
		{Name: "Go", NormalizedName: "go", Required: true, Weight: 2},
	}, nil)
	assert.Equal(t, 0, computeSkillScore(required, nil), "candidate without skills")

	optional := matchSkills([]types.SkillRequirement{
		{Name: "Storybook", NormalizedName: "storybook", Weight: 1},
		{Name: "Jest", NormalizedName: "jest", Weight: 1},
	}, []types.CandidateSkill{{Name: "Storybook"}})
	assert.Equal(t, 50, computeSkillScore(nil, optional), "falls back to optional overlap")

	_, applies := computeNiceToHaveScore(nil, optional)
	assert.False(t, applies)
}

func TestComputeNiceToHaveScore(t *testing.T) {
	required := matchSkills([]types.SkillRequirement{
		{Name: "React", NormalizedName: "react", Required: true, Weight: 2},
	}, []types.CandidateSkill{{Name: "Storybook"}})
	optional := matchSkills([]types.SkillRequirement{
		{Name: "Storybook", NormalizedName: "storybook", Weight: 1},
	}, []types.CandidateSkill{{Name: "Storybook"}})

	score, applies := computeNiceToHaveScore(required, optional)

	assert.True(t, applies)
	assert.Equal(t, 100, score)
	assert.Equal(t, 0, computeSkillScore(required, optional))
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		level string
		tier  int
		ok    bool
	}{
		{"Senior", 3, true},
		{"Sr. Software Engineer", 3, true},
		{"Mid-level", 2, true},
		{"Engineer II", 2, true},
		{"Entry-level", 0, true},
		{"Staff Engineer", 4, true},
		{"Director", 5, true},
		{"Engineer", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			tier, ok := parseTier(tt.level)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.tier, tier)
		})
	}
}

func TestComputeSeniority(t *testing.T) {
	tests := []struct {
		name      string
		job       types.Job
		candidate types.Candidate
		want      int
	}{
		{"same tier", types.Job{SeniorityLevel: "senior"}, types.Candidate{SeniorityLevel: "Senior"}, 100},
		{"adjacent tier", types.Job{SeniorityLevel: "senior"}, types.Candidate{SeniorityLevel: "lead"}, 70},
		{"two tiers apart", types.Job{SeniorityLevel: "senior"}, types.Candidate{SeniorityLevel: "junior"}, 40},
		{"far apart", types.Job{SeniorityLevel: "principal"}, types.Candidate{SeniorityLevel: "intern"}, 20},
		{"nothing known", types.Job{}, types.Candidate{}, 50},
		{"below minimum", types.Job{MinExperienceYears: float(5)}, types.Candidate{TotalExperienceYears: 3}, 60},
		{"far below minimum floors at 20", types.Job{MinExperienceYears: float(5)}, types.Candidate{}, 20},
		{"above maximum", types.Job{MaxExperienceYears: float(4)}, types.Candidate{TotalExperienceYears: 8}, 85},
		{"tier and range blended", types.Job{SeniorityLevel: "Senior", MinExperienceYears: float(5)}, types.Candidate{SeniorityLevel: "Mid-level", TotalExperienceYears: 4}, 75},
		{"tier and range aligned", types.Job{SeniorityLevel: "Senior", MinExperienceYears: float(3)}, types.Candidate{SeniorityLevel: "Sr. Engineer", TotalExperienceYears: 6}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeSeniority(&tt.job, &tt.candidate)
			assert.Equal(t, tt.want, got.score)
		})
	}
}

func TestComputeLocation(t *testing.T) {
	tests := []struct {
		name      string
		job       string
		candidate string
		score     int
		match     locationMatch
	}{
		{"remote role", "Remote", "Berlin, Germany", 100, locationRemote},
		{"remote candidate", "Austin, TX", "remote (US)", 100, locationRemote},
		{"exact ignoring case and spacing", "Austin, TX", "austin,  tx", 100, locationExact},
		{"same region", "Austin, TX", "Dallas, TX", 70, locationRegion},
		{"mismatch", "Austin, TX", "Berlin, Germany", 25, locationMismatch},
		{"unknown candidate", "Austin, TX", "", 50, locationUnknown},
		{"unknown job", "", "Austin, TX", 50, locationUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeLocation(&types.Job{Location: tt.job}, &types.Candidate{Location: tt.candidate})
			assert.Equal(t, tt.score, got.score)
			assert.Equal(t, tt.match, got.match)
		})
	}
}

func TestToScore(t *testing.T) {
	assert.Equal(t, 67, toScore(66.666))
	assert.Equal(t, 0, toScore(-3))
	assert.Equal(t, 100, toScore(140))
}
