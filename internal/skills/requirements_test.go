package skills

import (
	"testing"

	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequirements_DefaultWeights(t *testing.T) {
	job := &types.Job{
		ID: "job-1",
		Skills: []types.SkillRequirement{
			{Name: "Python", Required: true},
			{Name: "dbt"},
		},
	}

	reqs := BuildRequirements(job)
	require.Len(t, reqs, 2)

	assert.Equal(t, "python", reqs[0].NormalizedName)
	assert.Equal(t, 2.0, reqs[0].Weight)
	assert.True(t, reqs[0].Required)
	assert.Equal(t, "dbt", reqs[1].NormalizedName)
	assert.Equal(t, 1.0, reqs[1].Weight)
	assert.False(t, reqs[1].Required)
}

func TestBuildRequirements_ExplicitWeightKept(t *testing.T) {
	job := &types.Job{
		ID: "job-1",
		Skills: []types.SkillRequirement{
			{Name: "React", Required: true, Weight: 2},
			{Name: "GraphQL", Required: true, Weight: 1},
		},
	}

	reqs := BuildRequirements(job)
	require.Len(t, reqs, 2)
	assert.Equal(t, 2.0, reqs[0].Weight)
	assert.Equal(t, 1.0, reqs[1].Weight)
}

func TestBuildRequirements_Deduplicates(t *testing.T) {
	job := &types.Job{
		ID: "job-1",
		Skills: []types.SkillRequirement{
			{Name: "Golang", Weight: 1.5},
			{Name: "SQL", Required: true},
			{Name: "Go", Required: true, Weight: 1},
			{Name: "  "},
		},
	}

	reqs := BuildRequirements(job)
	require.Len(t, reqs, 2)

	// First occurrence keeps its position and display name
	assert.Equal(t, "Golang", reqs[0].Name)
	assert.Equal(t, "go", reqs[0].NormalizedName)
	assert.True(t, reqs[0].Required, "required duplicate promotes the entry")
	assert.Equal(t, 1.5, reqs[0].Weight, "maximum weight wins")
	assert.Equal(t, "sql", reqs[1].NormalizedName)

	// Job is not mutated
	assert.Equal(t, "", job.Skills[0].NormalizedName)
	assert.False(t, job.Skills[0].Required)
}

func TestBuildRequirements_Empty(t *testing.T) {
	assert.Nil(t, BuildRequirements(nil))
	assert.Nil(t, BuildRequirements(&types.Job{ID: "job-1"}))
}

func TestSplit(t *testing.T) {
	reqs := []types.SkillRequirement{
		{NormalizedName: "a", Required: true},
		{NormalizedName: "b"},
		{NormalizedName: "c", Required: true},
	}

	required, optional := Split(reqs)
	require.Len(t, required, 2)
	require.Len(t, optional, 1)
	assert.Equal(t, "c", required[1].NormalizedName)
	assert.Equal(t, "b", optional[0].NormalizedName)
}
