package guardrails

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/candidate-matcher/internal/scoring"
)

// StrategyName identifies a scoring strategy in stored JSON
type StrategyName string

// Scoring strategies
const (
	StrategySimple   StrategyName = "simple"
	StrategyWeighted StrategyName = "weighted"
)

// Strategy is the tagged scoring strategy. Implementations: SimpleStrategy, WeightedStrategy.
type Strategy interface {
	Name() StrategyName
	// Weights returns the weight vector the match scorer uses under this strategy.
	Weights() scoring.Weights
	// AcceptsAdjustment reports whether tradeoff weight perturbations apply.
	AcceptsAdjustment() bool
}

// SimpleStrategy weighs must-have, nice-to-have, experience and location equally
// and ignores candidate signals and tradeoff perturbations.
type SimpleStrategy struct{}

// Name implements Strategy.
func (SimpleStrategy) Name() StrategyName { return StrategySimple }

// Weights implements Strategy.
func (SimpleStrategy) Weights() scoring.Weights {
	return scoring.Weights{MustHave: 1, NiceToHave: 1, Experience: 1, Location: 1}
}

// AcceptsAdjustment implements Strategy.
func (SimpleStrategy) AcceptsAdjustment() bool { return false }

// WeightedStrategy uses an explicit per-signal weight vector.
type WeightedStrategy struct {
	W scoring.Weights
}

// Name implements Strategy.
func (WeightedStrategy) Name() StrategyName { return StrategyWeighted }

// Weights implements Strategy.
func (s WeightedStrategy) Weights() scoring.Weights { return s.W }

// AcceptsAdjustment implements Strategy.
func (WeightedStrategy) AcceptsAdjustment() bool { return true }

// ScoringPolicy is the "scoring" section of a guardrail config
type ScoringPolicy struct {
	Strategy Strategy
}

type scoringJSON struct {
	Strategy StrategyName     `json:"strategy"`
	Weights  *scoring.Weights `json:"weights,omitempty"`
}

// MarshalJSON writes {"strategy": ..., "weights": ...}; weights are omitted for simple.
func (p ScoringPolicy) MarshalJSON() ([]byte, error) {
	strategy := p.Strategy
	if strategy == nil {
		strategy = defaultStrategy()
	}
	out := scoringJSON{Strategy: strategy.Name()}
	if ws, ok := strategy.(WeightedStrategy); ok {
		w := ws.W
		out.Weights = &w
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes over the current value: a missing strategy keeps the
// current one, and a partial weights object overlays the current weights.
func (p *ScoringPolicy) UnmarshalJSON(data []byte) error {
	current := p.Strategy
	if current == nil {
		current = defaultStrategy()
	}

	weights := defaultWeights()
	if ws, ok := current.(WeightedStrategy); ok {
		weights = ws.W
	}

	raw := scoringJSON{Weights: &weights}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	name := raw.Strategy
	if name == "" {
		name = current.Name()
	}

	switch name {
	case StrategySimple:
		p.Strategy = SimpleStrategy{}
	case StrategyWeighted:
		p.Strategy = WeightedStrategy{W: weights}
	default:
		return fmt.Errorf("unknown scoring strategy %q", name)
	}
	return nil
}
