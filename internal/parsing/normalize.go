// Package parsing normalizes skill names into the join keys used by every scorer.
package parsing

import (
	"strings"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// skillAliases maps common skill name variants to a canonical lower-case key
var skillAliases = map[string]string{
	"golang":   "go",
	"go lang":  "go",
	"js":       "javascript",
	"ts":       "typescript",
	"k8s":      "kubernetes",
	"react.js": "react",
	"reactjs":  "react",
	"vue.js":   "vue",
	"vuejs":    "vue",
	"nodejs":   "node.js",
	"node":     "node.js",
	"postgres": "postgresql",
	"psql":     "postgresql",
	"gcp":      "google cloud",
}

// NormalizeSkillName lower-cases and trims a skill name, collapses inner whitespace
// and resolves known aliases. The result is the overlap join key.
func NormalizeSkillName(skillName string) string {
	fields := strings.Fields(strings.ToLower(skillName))
	if len(fields) == 0 {
		return ""
	}
	normalized := strings.Join(fields, " ")

	if canonical, ok := skillAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// SkillKey returns the join key for a skill, preferring a caller-supplied
// normalized name and falling back to normalizing the display name.
func SkillKey(name, normalizedName string) string {
	if key := NormalizeSkillName(normalizedName); key != "" {
		return key
	}
	return NormalizeSkillName(name)
}

// CandidateSkillKeys returns the set of join keys for a candidate's skills,
// mapped to the index of the first skill that produced each key.
func CandidateSkillKeys(skills []types.CandidateSkill) map[string]int {
	keys := make(map[string]int, len(skills))
	for i, s := range skills {
		key := SkillKey(s.Name, s.NormalizedName)
		if key == "" {
			continue
		}
		if _, exists := keys[key]; !exists {
			keys[key] = i
		}
	}
	return keys
}

// NormalizeCandidateSkills fills NormalizedName on a copy of the candidate skills
// and drops entries whose name normalizes to empty.
func NormalizeCandidateSkills(skills []types.CandidateSkill) []types.CandidateSkill {
	if len(skills) == 0 {
		return skills
	}

	normalized := make([]types.CandidateSkill, 0, len(skills))
	for _, s := range skills {
		key := SkillKey(s.Name, s.NormalizedName)
		if key == "" {
			continue // Skip empty skill names
		}
		s.NormalizedName = key
		normalized = append(normalized, s)
	}
	return normalized
}
