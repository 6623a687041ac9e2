// Package types provides type definitions for structured data used throughout the candidate-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// CandidateSkill represents a skill listed on a candidate profile
type CandidateSkill struct {
	Name           string  `json:"name" validate:"required"`
	NormalizedName string  `json:"normalized_name,omitempty"`
	Proficiency    string  `json:"proficiency,omitempty"`
	Years          float64 `json:"years,omitempty" validate:"gte=0"`
}

// Candidate represents a candidate profile. The core never mutates it.
type Candidate struct {
	ID                   string           `json:"id" validate:"required"`
	Location             string           `json:"location,omitempty"`
	SeniorityLevel       string           `json:"seniority_level,omitempty"`
	TotalExperienceYears float64          `json:"total_experience_years,omitempty" validate:"gte=0"`
	Skills               []CandidateSkill `json:"skills" validate:"dive"`
	Title                string           `json:"title,omitempty"`
	Summary              string           `json:"summary,omitempty"`
	Internal             bool             `json:"internal,omitempty"`
	CreatedAt            *time.Time       `json:"created_at,omitempty"`
	UpdatedAt            *time.Time       `json:"updated_at,omitempty"`
}

// Validate validates the Candidate using the validator.
func (c *Candidate) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// SkillNames returns the display names of every candidate skill in input order.
func (c *Candidate) SkillNames() []string {
	names := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		names = append(names, s.Name)
	}
	return names
}

// PipelineStatus is the state of a candidate within a job's hiring pipeline
type PipelineStatus string

// Pipeline statuses
const (
	StatusPotential    PipelineStatus = "POTENTIAL"
	StatusShortlisted  PipelineStatus = "SHORTLISTED"
	StatusSubmitted    PipelineStatus = "SUBMITTED"
	StatusInterviewing PipelineStatus = "INTERVIEWING"
	StatusHired        PipelineStatus = "HIRED"
	StatusRejected     PipelineStatus = "REJECTED"
)

// JobCandidateLink ties a candidate to a specific job
type JobCandidateLink struct {
	JobID       string         `json:"job_id"`
	CandidateID string         `json:"candidate_id"`
	Status      PipelineStatus `json:"status"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
}

// PoolEntry is one candidate in a pool submitted for scoring, with its optional job link and outreach count
type PoolEntry struct {
	Candidate     Candidate         `json:"candidate"`
	Link          *JobCandidateLink `json:"link,omitempty"`
	OutreachCount int               `json:"outreach_count,omitempty"`
}
