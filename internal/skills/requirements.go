// Package skills builds the normalized, weighted skill requirements every scorer joins on.
package skills

import (
	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/types"
)

const (
	// Default weights by requirement level
	DefaultRequiredWeight = 2.0
	DefaultOptionalWeight = 1.0
)

// BuildRequirements returns the job's skill requirements with normalized names and
// default weights filled in. Duplicates (same normalized name) collapse into the
// first occurrence: required if any duplicate is required, weight is the maximum.
// Input order is preserved and the job is not mutated.
func BuildRequirements(job *types.Job) []types.SkillRequirement {
	if job == nil || len(job.Skills) == 0 {
		return nil
	}

	reqs := make([]types.SkillRequirement, 0, len(job.Skills))
	seen := make(map[string]int) // normalized name -> index in reqs

	for _, skill := range job.Skills {
		key := parsing.SkillKey(skill.Name, skill.NormalizedName)
		if key == "" {
			continue
		}

		weight := skill.Weight
		if weight <= 0 {
			weight = defaultWeight(skill.Required)
		}

		if idx, exists := seen[key]; exists {
			mergeRequirement(&reqs[idx], skill.Required, weight)
			continue
		}

		reqs = append(reqs, types.SkillRequirement{
			Name:           skill.Name,
			NormalizedName: key,
			Required:       skill.Required,
			Weight:         weight,
		})
		seen[key] = len(reqs) - 1
	}

	return reqs
}

// Split partitions requirements into required and optional, preserving order.
func Split(reqs []types.SkillRequirement) (required, optional []types.SkillRequirement) {
	for _, r := range reqs {
		if r.Required {
			required = append(required, r)
		} else {
			optional = append(optional, r)
		}
	}
	return required, optional
}

func defaultWeight(required bool) float64 {
	if required {
		return DefaultRequiredWeight
	}
	return DefaultOptionalWeight
}

// mergeRequirement folds a duplicate into an existing requirement, taking the
// maximum weight. A required duplicate promotes the existing entry.
func mergeRequirement(existing *types.SkillRequirement, required bool, weight float64) {
	if weight > existing.Weight {
		existing.Weight = weight
	}
	if required {
		existing.Required = true
	}
}
