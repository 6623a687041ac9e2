// Package guardrails resolves tenant-scoped scoring, threshold and safety policy,
// validates it at the load/save boundary and overlays operating modes.
package guardrails

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/candidate-matcher/internal/schemas"
	"github.com/jonathan/candidate-matcher/internal/scoring"
	"github.com/jonathan/candidate-matcher/internal/tradeoffs"
	"github.com/jonathan/candidate-matcher/internal/types"
	schemafiles "github.com/jonathan/candidate-matcher/schemas"
)

// Config is a tenant's guardrail policy
type Config struct {
	Scoring    ScoringPolicy   `json:"scoring"`
	Thresholds Thresholds      `json:"thresholds"`
	Shortlist  ShortlistPolicy `json:"shortlist"`
	Explain    ExplainPolicy   `json:"explain"`
	Safety     SafetyPolicy    `json:"safety"`
}

// Thresholds are score floors and caps. ShortlistMinScore must be >= MinMatchScore.
type Thresholds struct {
	MinMatchScore          int `json:"min_match_score"`
	ShortlistMinScore      int `json:"shortlist_min_score"`
	ShortlistMaxCandidates int `json:"shortlist_max_candidates"`
	MinConfidence          int `json:"min_confidence"`
}

// ShortlistPolicy selects the shortlist strategy
type ShortlistPolicy struct {
	Strategy types.ShortlistStrategy `json:"strategy"`
}

// ExplainPolicy controls explanation detail
type ExplainPolicy struct {
	Verbosity      types.Verbosity `json:"verbosity"`
	IncludeWeights bool            `json:"include_weights"`
}

// SafetyPolicy holds hard candidate filters applied before shortlisting
type SafetyPolicy struct {
	RequireMustHaves          bool `json:"require_must_haves"`
	ExcludeInternalCandidates bool `json:"exclude_internal_candidates"`
}

func defaultWeights() scoring.Weights {
	return scoring.Weights{MustHave: 40, NiceToHave: 20, Experience: 25, Location: 15, CandidateSignal: 0}
}

func defaultStrategy() Strategy {
	return WeightedStrategy{W: defaultWeights()}
}

// DefaultGuardrails returns a fresh copy of the built-in defaults.
func DefaultGuardrails() Config {
	return Config{
		Scoring: ScoringPolicy{Strategy: defaultStrategy()},
		Thresholds: Thresholds{
			MinMatchScore:          60,
			ShortlistMinScore:      75,
			ShortlistMaxCandidates: 10,
			MinConfidence:          50,
		},
		Shortlist: ShortlistPolicy{Strategy: types.StrategyQuality},
		Explain:   ExplainPolicy{Verbosity: types.VerbosityCompact, IncludeWeights: true},
		Safety:    SafetyPolicy{RequireMustHaves: true, ExcludeInternalCandidates: false},
	}
}

// ConservativeGuardrails returns the most conservative preset, forced by fire drills.
func ConservativeGuardrails() Config {
	return Config{
		Scoring: ScoringPolicy{Strategy: WeightedStrategy{
			W: scoring.Weights{MustHave: 50, NiceToHave: 10, Experience: 25, Location: 15, CandidateSignal: 0},
		}},
		Thresholds: Thresholds{
			MinMatchScore:          75,
			ShortlistMinScore:      85,
			ShortlistMaxCandidates: 5,
			MinConfidence:          75,
		},
		Shortlist: ShortlistPolicy{Strategy: types.StrategyStrict},
		Explain:   ExplainPolicy{Verbosity: types.VerbosityCompact, IncludeWeights: true},
		Safety:    SafetyPolicy{RequireMustHaves: true, ExcludeInternalCandidates: true},
	}
}

// ScoringWeights returns the weight vector for the configured strategy.
func (c Config) ScoringWeights() scoring.Weights {
	if c.Scoring.Strategy == nil {
		return defaultWeights()
	}
	return c.Scoring.Strategy.Weights()
}

// StrategyName returns the configured scoring strategy name.
func (c Config) StrategyName() StrategyName {
	if c.Scoring.Strategy == nil {
		return StrategyWeighted
	}
	return c.Scoring.Strategy.Name()
}

// Validate checks the cross-field invariant and enum values. Failures are
// *schemas.ValidationError with field paths matching the JSON document.
func (c Config) Validate() error {
	verr := &schemas.ValidationError{}

	if c.Scoring.Strategy != nil {
		if err := c.Scoring.Strategy.Weights().Validate(); err != nil {
			field := "scoring.weights"
			if werr, ok := err.(*scoring.WeightError); ok {
				field = "scoring.weights." + werr.Field
			}
			verr.Errors = append(verr.Errors, schemas.FieldError{Field: field, Message: err.Error()})
		}
	}

	t := c.Thresholds
	if t.ShortlistMinScore < t.MinMatchScore {
		verr.Errors = append(verr.Errors, schemas.FieldError{
			Field:   "thresholds.shortlist_min_score",
			Message: fmt.Sprintf("must be greater than or equal to thresholds.min_match_score (%d < %d)", t.ShortlistMinScore, t.MinMatchScore),
		})
	}
	if t.ShortlistMaxCandidates < 1 {
		verr.Errors = append(verr.Errors, schemas.FieldError{
			Field:   "thresholds.shortlist_max_candidates",
			Message: "must be at least 1",
		})
	}

	switch c.Shortlist.Strategy {
	case types.StrategyQuality, types.StrategyStrict:
	default:
		verr.Errors = append(verr.Errors, schemas.FieldError{
			Field:   "shortlist.strategy",
			Message: fmt.Sprintf("unknown strategy %q", c.Shortlist.Strategy),
		})
	}
	switch c.Explain.Verbosity {
	case types.VerbosityCompact, types.VerbosityDetailed:
	default:
		verr.Errors = append(verr.Errors, schemas.FieldError{
			Field:   "explain.verbosity",
			Message: fmt.Sprintf("unknown verbosity %q", c.Explain.Verbosity),
		})
	}

	if len(verr.Errors) > 0 {
		return verr
	}
	return nil
}

// Decode schema-validates a JSON document and decodes it over the defaults, so
// partial documents are allowed. The result is checked with Validate.
func Decode(defaults Config, payload []byte) (Config, error) {
	if err := schemas.ValidateEmbedded(schemafiles.Guardrails, payload); err != nil {
		return Config{}, err
	}

	cfg := defaults
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return Config{}, schemas.NewFieldError("(root)", err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode renders a config as stored JSON.
func Encode(cfg Config) ([]byte, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode guardrails: %w", err)
	}
	return data, nil
}

// WithTradeoffs applies a tradeoff adjustment. The weight perturbation only
// applies to the weighted strategy; the minimum-score adjustment shifts both
// score floors, clamped to [0,100] with ShortlistMinScore >= MinMatchScore kept.
func (c Config) WithTradeoffs(adj tradeoffs.Adjustment) Config {
	out := c
	if c.Scoring.Strategy != nil && c.Scoring.Strategy.AcceptsAdjustment() {
		out.Scoring = ScoringPolicy{Strategy: WeightedStrategy{W: adj.Weights}}
	}

	out.Thresholds.MinMatchScore = clampScore(c.Thresholds.MinMatchScore + adj.MinScoreAdjustment)
	out.Thresholds.ShortlistMinScore = clampScore(c.Thresholds.ShortlistMinScore + adj.MinScoreAdjustment)
	if out.Thresholds.ShortlistMinScore < out.Thresholds.MinMatchScore {
		out.Thresholds.ShortlistMinScore = out.Thresholds.MinMatchScore
	}
	return out
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
