package guardrails

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/candidate-matcher/internal/schemas"
	"github.com/jonathan/candidate-matcher/internal/scoring"
	"github.com/jonathan/candidate-matcher/internal/tradeoffs"
	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGuardrails(t *testing.T) {
	cfg := DefaultGuardrails()

	assert.Equal(t, StrategyWeighted, cfg.StrategyName())
	assert.Equal(t, scoring.Weights{MustHave: 40, NiceToHave: 20, Experience: 25, Location: 15}, cfg.ScoringWeights())
	assert.Equal(t, Thresholds{MinMatchScore: 60, ShortlistMinScore: 75, ShortlistMaxCandidates: 10, MinConfidence: 50}, cfg.Thresholds)
	assert.Equal(t, types.StrategyQuality, cfg.Shortlist.Strategy)
	assert.Equal(t, ExplainPolicy{Verbosity: types.VerbosityCompact, IncludeWeights: true}, cfg.Explain)
	assert.True(t, cfg.Safety.RequireMustHaves)
	assert.False(t, cfg.Safety.ExcludeInternalCandidates)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultGuardrails_FreshCopy(t *testing.T) {
	cfg := DefaultGuardrails()
	cfg.Thresholds.MinMatchScore = 1
	cfg.Safety.RequireMustHaves = false

	again := DefaultGuardrails()
	assert.Equal(t, 60, again.Thresholds.MinMatchScore)
	assert.True(t, again.Safety.RequireMustHaves)
}

func TestEncodeDecode_Defaults(t *testing.T) {
	data, err := Encode(DefaultGuardrails())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"strategy":"weighted"`)
	assert.Contains(t, string(data), `"shortlist_min_score":75`)

	decoded, err := Decode(DefaultGuardrails(), data)
	require.NoError(t, err)
	assert.Equal(t, DefaultGuardrails(), decoded)
}

func TestDecode_PartialDocumentOverlaysDefaults(t *testing.T) {
	cfg, err := Decode(DefaultGuardrails(), []byte(`{"thresholds": {"min_match_score": 55}, "safety": {"exclude_internal_candidates": true}}`))

	require.NoError(t, err)
	assert.Equal(t, 55, cfg.Thresholds.MinMatchScore)
	assert.Equal(t, 75, cfg.Thresholds.ShortlistMinScore)
	assert.True(t, cfg.Safety.RequireMustHaves)
	assert.True(t, cfg.Safety.ExcludeInternalCandidates)
	assert.Equal(t, StrategyWeighted, cfg.StrategyName())
}

func TestDecode_RejectsInvariantViolation(t *testing.T) {
	_, err := Decode(DefaultGuardrails(), []byte(`{"thresholds": {"min_match_score": 80, "shortlist_min_score": 70}}`))

	require.Error(t, err)
	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"thresholds.shortlist_min_score"}, verr.Fields())
	assert.Contains(t, err.Error(), "70 < 80")
}

func TestDecode_RejectsSchemaViolation(t *testing.T) {
	_, err := Decode(DefaultGuardrails(), []byte(`{"explain": {"verbosity": "chatty"}}`))

	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields(), "explain.verbosity")
}

func TestScoringPolicy_SimpleStrategy(t *testing.T) {
	cfg, err := Decode(DefaultGuardrails(), []byte(`{"scoring": {"strategy": "simple"}}`))
	require.NoError(t, err)

	assert.Equal(t, SimpleStrategy{}, cfg.Scoring.Strategy)
	assert.Equal(t, scoring.Weights{MustHave: 1, NiceToHave: 1, Experience: 1, Location: 1}, cfg.ScoringWeights())

	data, err := json.Marshal(cfg.Scoring)
	require.NoError(t, err)
	assert.JSONEq(t, `{"strategy": "simple"}`, string(data))
}

func TestScoringPolicy_PartialWeightsOverlay(t *testing.T) {
	cfg, err := Decode(DefaultGuardrails(), []byte(`{"scoring": {"weights": {"candidate_signal": 10}}}`))
	require.NoError(t, err)

	assert.Equal(t, scoring.Weights{MustHave: 40, NiceToHave: 20, Experience: 25, Location: 15, CandidateSignal: 10}, cfg.ScoringWeights())
}

func TestScoringPolicy_SimpleToWeightedUsesDefaultWeights(t *testing.T) {
	p := ScoringPolicy{Strategy: SimpleStrategy{}}

	require.NoError(t, json.Unmarshal([]byte(`{"strategy": "weighted"}`), &p))
	assert.Equal(t, defaultWeights(), p.Strategy.Weights())

	assert.Error(t, json.Unmarshal([]byte(`{"strategy": "random"}`), &p))
}

func TestValidate_FieldErrors(t *testing.T) {
	cfg := DefaultGuardrails()
	cfg.Scoring = ScoringPolicy{Strategy: WeightedStrategy{W: scoring.Weights{MustHave: -1}}}
	cfg.Thresholds.ShortlistMaxCandidates = 0
	cfg.Shortlist.Strategy = "fastest"

	err := cfg.Validate()

	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"scoring.weights.must_have", "thresholds.shortlist_max_candidates", "shortlist.strategy"}, verr.Fields())
}

func TestWithTradeoffs_WeightedAcceptsAdjustment(t *testing.T) {
	cfg := DefaultGuardrails()
	adj := tradeoffs.ApplyToWeights(cfg.ScoringWeights(), tradeoffs.DefaultDeclaration())

	adjusted := cfg.WithTradeoffs(adj)

	assert.Equal(t, adj.Weights, adjusted.ScoringWeights())
	assert.Equal(t, 70, adjusted.Thresholds.MinMatchScore)
	assert.Equal(t, 85, adjusted.Thresholds.ShortlistMinScore)
	assert.Equal(t, 60, cfg.Thresholds.MinMatchScore, "input not mutated")
}

func TestWithTradeoffs_SimpleIgnoresWeights(t *testing.T) {
	cfg := DefaultGuardrails()
	cfg.Scoring = ScoringPolicy{Strategy: SimpleStrategy{}}
	adj := tradeoffs.Adjustment{Weights: scoring.Weights{CandidateSignal: 1}, MinScoreAdjustment: -5}

	adjusted := cfg.WithTradeoffs(adj)

	assert.Equal(t, SimpleStrategy{}.Weights(), adjusted.ScoringWeights())
	assert.Equal(t, 55, adjusted.Thresholds.MinMatchScore)
}

func TestWithTradeoffs_ClampsAndKeepsInvariant(t *testing.T) {
	cfg := DefaultGuardrails()
	cfg.Thresholds.MinMatchScore = 95
	cfg.Thresholds.ShortlistMinScore = 95

	adjusted := cfg.WithTradeoffs(tradeoffs.Adjustment{Weights: cfg.ScoringWeights(), MinScoreAdjustment: 10})
	assert.Equal(t, 100, adjusted.Thresholds.MinMatchScore)
	assert.Equal(t, 100, adjusted.Thresholds.ShortlistMinScore)

	cfg.Thresholds.MinMatchScore = 3
	adjusted = cfg.WithTradeoffs(tradeoffs.Adjustment{Weights: cfg.ScoringWeights(), MinScoreAdjustment: -10})
	assert.Equal(t, 0, adjusted.Thresholds.MinMatchScore)
	assert.NoError(t, adjusted.Validate())
}
