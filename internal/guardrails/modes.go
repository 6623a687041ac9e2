package guardrails

import "github.com/jonathan/candidate-matcher/internal/types"

// Step is a pipeline step that a mode may enable
type Step string

// Pipeline steps
const (
	StepScore      Step = "score"
	StepConfidence Step = "confidence"
	StepExplain    Step = "explain"
	StepShortlist  Step = "shortlist"
)

// Preset names reported in plans
const (
	PresetTenant       = "tenant"
	PresetPilot        = "tenant_detailed"
	PresetSandbox      = "tenant_dry_run"
	PresetConservative = "conservative"
)

// Plan describes what a mode runs and which guardrails apply
type Plan struct {
	Mode   types.Mode `json:"mode"`
	Preset string     `json:"preset"`
	Steps  []Step     `json:"steps"`
	// DryRun runs every step but persists no decisions.
	DryRun bool `json:"dry_run"`
}

// Enabled reports whether the plan runs step.
func (p Plan) Enabled(step Step) bool {
	for _, s := range p.Steps {
		if s == step {
			return true
		}
	}
	return false
}

// PlanFor returns the steps and preset for a mode. Unknown modes plan as production.
func PlanFor(mode types.Mode) Plan {
	fullSteps := []Step{StepScore, StepConfidence, StepExplain, StepShortlist}

	switch mode {
	case types.ModeFireDrill:
		return Plan{Mode: mode, Preset: PresetConservative, Steps: []Step{StepScore, StepShortlist}}
	case types.ModePilot:
		return Plan{Mode: mode, Preset: PresetPilot, Steps: fullSteps}
	case types.ModeSandbox:
		return Plan{Mode: mode, Preset: PresetSandbox, Steps: fullSteps, DryRun: true}
	default:
		return Plan{Mode: types.ModeProduction, Preset: PresetTenant, Steps: fullSteps}
	}
}

// Effective overlays the operating mode on a tenant config. fire_drill is a hard
// override: the tenant config is ignored entirely in favor of the conservative
// preset. pilot forces detailed explanations.
func Effective(cfg Config, mode types.Mode) Config {
	switch mode {
	case types.ModeFireDrill:
		return ConservativeGuardrails()
	case types.ModePilot:
		cfg.Explain.Verbosity = types.VerbosityDetailed
		return cfg
	default:
		return cfg
	}
}
