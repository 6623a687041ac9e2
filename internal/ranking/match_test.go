package ranking

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonathan/candidate-matcher/internal/scoring"
	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func reactGraphQLJob() *types.Job {
	return &types.Job{
		ID:             "job-1",
		Title:          "Frontend Engineer",
		Location:       "Austin, TX",
		SeniorityLevel: "Senior",
		Skills: []types.SkillRequirement{
			{Name: "React", Required: true, Weight: 2},
			{Name: "GraphQL", Required: true, Weight: 1},
		},
	}
}

func TestComputeMatchScore_MissingRequiredSkill(t *testing.T) {
	candidate := &types.Candidate{ID: "cand-1", Skills: []types.CandidateSkill{{Name: "React"}}}

	result := ComputeMatchScore(MatchContext{Job: reactGraphQLJob(), Candidate: candidate, Now: testNow}, nil)

	assert.Equal(t, 67, result.SkillScore)
	assert.Equal(t, []string{"GraphQL"}, result.MissingSkills)
	require.NotNil(t, result.Explanation)
	assert.Equal(t, []string{"GraphQL"}, result.Explanation.MissingSkills)
	assert.Contains(t, result.Explanation.RiskAreas, "Missing required skill: GraphQL")
	assert.Equal(t, "Matches required skill: React", result.Explanation.TopReasons[0])
	assert.True(t, strings.HasPrefix(result.Explanation.ExportableText, "Top reasons:"))
	assert.Nil(t, result.NiceToHaveScore)
}

func TestComputeMatchScore_CompositeUsesApplicableWeights(t *testing.T) {
	candidate := &types.Candidate{
		ID:             "cand-1",
		Location:       "Berlin, Germany",
		SeniorityLevel: "Senior",
		Skills:         []types.CandidateSkill{{Name: "React"}},
	}
	weights := scoring.Weights{MustHave: 40, NiceToHave: 20, Experience: 25, Location: 15}

	result := ComputeMatchScore(MatchContext{Job: reactGraphQLJob(), Candidate: candidate, Now: testNow}, &Options{Weights: &weights})

	// nice-to-have does not apply: 0.5*67 + 0.3125*100 + 0.1875*25
	assert.Equal(t, 69, result.Score)
	assert.Equal(t, 100, result.SeniorityScore)
	assert.Equal(t, 25, result.LocationScore)
	assert.Equal(t, 0.0, result.Weights.NiceToHave)
	assert.InDelta(t, 0.5, result.Weights.MustHave, 1e-9)
	assert.Contains(t, result.Explanation.RiskAreas, "Location mismatch: candidate in Berlin, Germany, role in Austin, TX")
}

func TestComputeMatchScore_Deterministic(t *testing.T) {
	created := testNow.AddDate(0, 0, -40)
	job := reactGraphQLJob()
	job.Skills = append(job.Skills, types.SkillRequirement{Name: "Storybook"})
	candidate := &types.Candidate{
		ID:             "cand-9",
		Title:          "UI Engineer",
		Location:       "Dallas, TX",
		SeniorityLevel: "lead",
		Skills:         []types.CandidateSkill{{Name: "Storybook"}, {Name: "react.js", Proficiency: "expert"}},
		CreatedAt:      &created,
	}
	link := &types.JobCandidateLink{JobID: "job-1", CandidateID: "cand-9", Status: types.StatusSubmitted}
	opts := &Options{Verbosity: types.VerbosityDetailed}

	first := ComputeMatchScore(MatchContext{Job: job, Candidate: candidate, Link: link, OutreachCount: 2, Now: testNow}, opts)
	for i := 0; i < 20; i++ {
		again := ComputeMatchScore(MatchContext{Job: job, Candidate: candidate, Link: link, OutreachCount: 2, Now: testNow}, opts)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("match result changed between calls (-first +again):\n%s", diff)
		}
	}
	require.NotNil(t, first.NiceToHaveScore)
	assert.Equal(t, 100, *first.NiceToHaveScore)
}

func TestComputeMatchScore_MonotonicInRequiredOverlap(t *testing.T) {
	job := &types.Job{ID: "job-2"}
	names := []string{"Go", "Kubernetes", "PostgreSQL", "Kafka"}
	for i, n := range names {
		job.Skills = append(job.Skills, types.SkillRequirement{Name: n, Required: true, Weight: float64(i + 1)})
	}

	previous := -1
	for k := 0; k <= len(names); k++ {
		candidate := &types.Candidate{ID: "cand"}
		for _, n := range names[:k] {
			candidate.Skills = append(candidate.Skills, types.CandidateSkill{Name: n})
		}
		result := ComputeMatchScore(MatchContext{Job: job, Candidate: candidate, Now: testNow}, nil)
		assert.GreaterOrEqual(t, result.SkillScore, previous, "overlap of %d skills", k)
		previous = result.SkillScore
	}
	assert.Equal(t, 100, previous)
}

func TestComputeMatchScore_UnconstrainedRole(t *testing.T) {
	result := ComputeMatchScore(MatchContext{Job: &types.Job{ID: "job-3"}, Candidate: &types.Candidate{ID: "c"}, Now: testNow}, nil)

	assert.Equal(t, 100, result.SkillScore)
	assert.Empty(t, result.MissingSkills)
	assert.Equal(t, "Top reasons: none.", result.Explanation.ExportableText)
}

func TestComputeMatchScore_TopReasonsCappedInJobOrder(t *testing.T) {
	job := &types.Job{ID: "job-4"}
	candidate := &types.Candidate{ID: "c"}
	for i := 1; i <= 7; i++ {
		name := fmt.Sprintf("skill-%d", i)
		job.Skills = append(job.Skills, types.SkillRequirement{Name: name, Required: true})
		candidate.Skills = append(candidate.Skills, types.CandidateSkill{Name: name})
	}

	result := ComputeMatchScore(MatchContext{Job: job, Candidate: candidate, Now: testNow}, nil)

	require.Len(t, result.Explanation.TopReasons, MaxTopReasons)
	for i, r := range result.Explanation.TopReasons {
		assert.Equal(t, fmt.Sprintf("Matches required skill: skill-%d", i+1), r)
	}
}

func TestComputeMatchScore_BreakdownOnlyWhenRequested(t *testing.T) {
	mc := MatchContext{Job: reactGraphQLJob(), Candidate: &types.Candidate{ID: "c"}, Now: testNow}

	compact := ComputeMatchScore(mc, &Options{Verbosity: types.VerbosityCompact})
	assert.Empty(t, compact.Explanation.Breakdown)
	assert.NotContains(t, compact.Explanation.ExportableText, "Score breakdown")

	withWeights := ComputeMatchScore(mc, &Options{IncludeWeights: true})
	require.Len(t, withWeights.Explanation.Breakdown, 4)
	assert.Equal(t, "must_have", withWeights.Explanation.Breakdown[0].Name)
	assert.Equal(t, "experience", withWeights.Explanation.Breakdown[1].Name)
	assert.Contains(t, withWeights.Explanation.ExportableText, "Score breakdown: must_have 0")
}

func TestComputeMatchScore_SignalReasons(t *testing.T) {
	updated := testNow.Add(-24 * time.Hour)
	candidate := &types.Candidate{ID: "c", UpdatedAt: &updated}

	result := ComputeMatchScore(MatchContext{Job: &types.Job{ID: "j"}, Candidate: candidate, Now: testNow}, nil)

	assert.Contains(t, result.Explanation.TopReasons, "Active within the last 7 days")
	assert.NotContains(t, result.Explanation.TopReasons, "No outreach interactions")
}

func TestComputeMatchScore_SkipConfidenceAndExplanation(t *testing.T) {
	mc := MatchContext{Job: reactGraphQLJob(), Candidate: &types.Candidate{ID: "c"}, Now: testNow}

	result := ComputeMatchScore(mc, &Options{SkipConfidence: true, SkipExplanation: true})

	assert.Nil(t, result.Confidence)
	assert.Nil(t, result.Explanation)
	scored := result.ToScored()
	assert.False(t, scored.HasConfidence())
	assert.Equal(t, []string{"React", "GraphQL"}, scored.MissingSkills)
}

func TestComputeMatchScore_Confidence(t *testing.T) {
	job := &types.Job{ID: "j", Skills: []types.SkillRequirement{
		{Name: "python", Required: true}, {Name: "sql", Required: true},
		{Name: "snowflake", Required: true}, {Name: "airflow", Required: true},
	}}
	candidate := &types.Candidate{
		ID:        "c",
		Title:     "Data Engineer",
		Location:  "Austin, TX",
		CreatedAt: &testNow,
		Skills: []types.CandidateSkill{
			{Name: "Python"}, {Name: "SQL"}, {Name: "Snowflake"}, {Name: "Airflow"}, {Name: "dbt"},
		},
	}

	result := ComputeMatchScore(MatchContext{Job: job, Candidate: candidate, Now: testNow}, nil)

	require.NotNil(t, result.Confidence)
	assert.Greater(t, result.Confidence.Total, 70)
	assert.Equal(t, "HIGH", string(result.ConfidenceCategory))
	require.NotNil(t, result.ToScored().Confidence)
	assert.Equal(t, result.Confidence.Total, *result.ToScored().Confidence)
}

func TestComputeMatchScore_ConfidenceCoverageUsesSkillKeys(t *testing.T) {
	job := &types.Job{ID: "j", Skills: []types.SkillRequirement{
		{Name: "GraphQL API design", NormalizedName: "graphql", Required: true},
		{Name: "React", Required: true},
	}}
	candidate := &types.Candidate{ID: "c", Skills: []types.CandidateSkill{
		{Name: "GraphQL"},
		{Name: "Component libraries", NormalizedName: "react"},
	}}

	result := ComputeMatchScore(MatchContext{Job: job, Candidate: candidate, Now: testNow}, nil)

	assert.Equal(t, 100, result.SkillScore)
	assert.Empty(t, result.MissingSkills)
	require.NotNil(t, result.Confidence)
	assert.Equal(t, 40, result.Confidence.SkillCoverage)
}
