// Package steps provides step definitions and dependency validation for the
// match pipeline.
package steps

import (
	"fmt"

	"github.com/jonathan/candidate-matcher/internal/guardrails"
)

// Step names
const (
	LoadGuardrails   = "load_guardrails"
	ResolveTradeoffs = "resolve_tradeoffs"
	Score            = "score"
	Confidence       = "confidence"
	Explain          = "explain"
	Shortlist        = "shortlist"
	Record           = "record"
)

// Step categories
const (
	CategoryPolicy      = "policy"
	CategoryScoring     = "scoring"
	CategorySelection   = "selection"
	CategoryPersistence = "persistence"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	Optional     []string
}

// order is the canonical execution order.
var order = []string{LoadGuardrails, ResolveTradeoffs, Score, Confidence, Explain, Shortlist, Record}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	LoadGuardrails: {
		Name:         LoadGuardrails,
		Category:     CategoryPolicy,
		Dependencies: []string{},
		Optional:     []string{},
	},
	ResolveTradeoffs: {
		Name:         ResolveTradeoffs,
		Category:     CategoryPolicy,
		Dependencies: []string{LoadGuardrails},
		Optional:     []string{},
	},
	Score: {
		Name:         Score,
		Category:     CategoryScoring,
		Dependencies: []string{LoadGuardrails},
		Optional:     []string{ResolveTradeoffs},
	},
	Confidence: {
		Name:         Confidence,
		Category:     CategoryScoring,
		Dependencies: []string{Score},
		Optional:     []string{},
	},
	Explain: {
		Name:         Explain,
		Category:     CategoryScoring,
		Dependencies: []string{Score},
		Optional:     []string{},
	},
	Shortlist: {
		Name:         Shortlist,
		Category:     CategorySelection,
		Dependencies: []string{Score},
		Optional:     []string{Confidence},
	},
	Record: {
		Name:         Record,
		Category:     CategoryPersistence,
		Dependencies: []string{Shortlist},
		Optional:     []string{},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s has missing dependencies: %v", e.Step, e.MissingDependencies)
}

// ValidatePlan checks that every step is known and that its required
// dependencies are part of the same plan.
func ValidatePlan(planned []string) error {
	present := make(map[string]bool, len(planned))
	for _, name := range planned {
		if _, ok := StepRegistry[name]; !ok {
			return fmt.Errorf("unknown step: %s", name)
		}
		present[name] = true
	}

	for _, name := range planned {
		var missing []string
		for _, dep := range StepRegistry[name].Dependencies {
			if !present[dep] {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			return &DependencyError{Step: name, MissingDependencies: missing}
		}
	}
	return nil
}

// ForPlan expands a mode plan into the ordered steps a run executes.
// withTradeoffs adds tradeoff resolution; persist adds recording, which only
// happens when the plan also shortlists.
func ForPlan(plan guardrails.Plan, withTradeoffs, persist bool) []string {
	include := map[string]bool{
		LoadGuardrails:   true,
		ResolveTradeoffs: withTradeoffs,
		Score:            plan.Enabled(guardrails.StepScore),
		Confidence:       plan.Enabled(guardrails.StepConfidence),
		Explain:          plan.Enabled(guardrails.StepExplain),
		Shortlist:        plan.Enabled(guardrails.StepShortlist),
	}
	include[Record] = persist && include[Shortlist] && !plan.DryRun

	out := make([]string, 0, len(order))
	for _, name := range order {
		if include[name] {
			out = append(out, name)
		}
	}
	return out
}

// Contains reports whether planned includes step.
func Contains(planned []string, step string) bool {
	for _, s := range planned {
		if s == step {
			return true
		}
	}
	return false
}
