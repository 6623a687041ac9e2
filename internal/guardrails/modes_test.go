package guardrails

import (
	"testing"

	"github.com/jonathan/candidate-matcher/internal/scoring"
	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/stretchr/testify/assert"
)

func looseTenantConfig() Config {
	cfg := DefaultGuardrails()
	cfg.Scoring = ScoringPolicy{Strategy: WeightedStrategy{W: scoring.Weights{CandidateSignal: 1}}}
	cfg.Thresholds = Thresholds{MinMatchScore: 10, ShortlistMinScore: 20, ShortlistMaxCandidates: 500, MinConfidence: 0}
	cfg.Shortlist.Strategy = types.StrategyQuality
	cfg.Explain.Verbosity = types.VerbosityDetailed
	cfg.Safety = SafetyPolicy{}
	return cfg
}

func TestEffective_FireDrillAlwaysConservative(t *testing.T) {
	tenants := []Config{DefaultGuardrails(), looseTenantConfig(), ConservativeGuardrails()}
	simple := DefaultGuardrails()
	simple.Scoring = ScoringPolicy{Strategy: SimpleStrategy{}}
	tenants = append(tenants, simple)

	for _, cfg := range tenants {
		effective := Effective(cfg, types.ModeFireDrill)
		assert.Equal(t, ConservativeGuardrails(), effective)
		assert.Equal(t, types.StrategyStrict, effective.Shortlist.Strategy)
	}
}

func TestEffective_PilotForcesDetailedExplanations(t *testing.T) {
	cfg := DefaultGuardrails()

	effective := Effective(cfg, types.ModePilot)

	assert.Equal(t, types.VerbosityDetailed, effective.Explain.Verbosity)
	assert.Equal(t, types.VerbosityCompact, cfg.Explain.Verbosity, "input not mutated")
}

func TestEffective_ProductionAndSandboxKeepTenantConfig(t *testing.T) {
	cfg := looseTenantConfig()

	assert.Equal(t, cfg, Effective(cfg, types.ModeProduction))
	assert.Equal(t, cfg, Effective(cfg, types.ModeSandbox))
}

func TestConservativeGuardrails_IsValidAndTighter(t *testing.T) {
	conservative := ConservativeGuardrails()
	defaults := DefaultGuardrails()

	assert.NoError(t, conservative.Validate())
	assert.GreaterOrEqual(t, conservative.Thresholds.MinMatchScore, defaults.Thresholds.MinMatchScore)
	assert.GreaterOrEqual(t, conservative.Thresholds.ShortlistMinScore, defaults.Thresholds.ShortlistMinScore)
	assert.LessOrEqual(t, conservative.Thresholds.ShortlistMaxCandidates, defaults.Thresholds.ShortlistMaxCandidates)
	assert.True(t, conservative.Safety.RequireMustHaves)
	assert.True(t, conservative.Safety.ExcludeInternalCandidates)
}

func TestPlanFor(t *testing.T) {
	tests := []struct {
		mode       types.Mode
		preset     string
		confidence bool
		explain    bool
		dryRun     bool
	}{
		{types.ModeProduction, PresetTenant, true, true, false},
		{types.ModePilot, PresetPilot, true, true, false},
		{types.ModeSandbox, PresetSandbox, true, true, true},
		{types.ModeFireDrill, PresetConservative, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			plan := PlanFor(tt.mode)
			assert.Equal(t, tt.mode, plan.Mode)
			assert.Equal(t, tt.preset, plan.Preset)
			assert.True(t, plan.Enabled(StepScore))
			assert.True(t, plan.Enabled(StepShortlist))
			assert.Equal(t, tt.confidence, plan.Enabled(StepConfidence))
			assert.Equal(t, tt.explain, plan.Enabled(StepExplain))
			assert.Equal(t, tt.dryRun, plan.DryRun)
		})
	}
}

func TestPlanFor_UnknownModeIsProduction(t *testing.T) {
	assert.Equal(t, types.ModeProduction, PlanFor("").Mode)
}
