// Package types provides type definitions for structured data used throughout the candidate-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// SkillRequirement represents a single skill listed on a job requisition
type SkillRequirement struct {
	Name           string  `json:"name" validate:"required"`
	NormalizedName string  `json:"normalized_name,omitempty"`
	Required       bool    `json:"required"`
	Weight         float64 `json:"weight,omitempty" validate:"gte=0"`
}

// Job represents a job requisition supplied by the caller for one scoring pass
type Job struct {
	ID                 string             `json:"id" validate:"required"`
	Title              string             `json:"title,omitempty"`
	Location           string             `json:"location,omitempty"`
	SeniorityLevel     string             `json:"seniority_level,omitempty"`
	MinExperienceYears *float64           `json:"min_experience_years,omitempty" validate:"omitempty,gte=0"`
	MaxExperienceYears *float64           `json:"max_experience_years,omitempty" validate:"omitempty,gte=0"`
	Skills             []SkillRequirement `json:"skills" validate:"dive"`
}

// Validate validates the Job using the validator.
func (j *Job) Validate() error {
	validate := validator.New()
	return validate.Struct(j)
}

// RequiredSkills returns the required skills in input order.
func (j *Job) RequiredSkills() []SkillRequirement {
	out := make([]SkillRequirement, 0, len(j.Skills))
	for _, s := range j.Skills {
		if s.Required {
			out = append(out, s)
		}
	}
	return out
}

// OptionalSkills returns the nice-to-have skills in input order.
func (j *Job) OptionalSkills() []SkillRequirement {
	out := make([]SkillRequirement, 0, len(j.Skills))
	for _, s := range j.Skills {
		if !s.Required {
			out = append(out, s)
		}
	}
	return out
}

// SkillNames returns the display names of every job skill in input order.
func (j *Job) SkillNames() []string {
	names := make([]string, 0, len(j.Skills))
	for _, s := range j.Skills {
		names = append(names, s.Name)
	}
	return names
}
