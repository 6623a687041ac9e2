// Package tradeoffs turns four binary business tradeoffs into weight
// perturbations and a minimum-score adjustment.
package tradeoffs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/candidate-matcher/internal/scoring"
)

// Tradeoff values
const (
	Speed        = "speed"
	Quality      = "quality"
	Rate         = "rate"
	Experience   = "experience"
	Availability = "availability"
	Fit          = "fit"
	Risk         = "risk"
	Upside       = "upside"
)

// Declaration is a resolved set of tradeoff choices
type Declaration struct {
	SpeedVsQuality    string `json:"speed_vs_quality" yaml:"speed_vs_quality" validate:"oneof=speed quality"`
	RateVsExperience  string `json:"rate_vs_experience" yaml:"rate_vs_experience" validate:"oneof=rate experience"`
	AvailabilityVsFit string `json:"availability_vs_fit" yaml:"availability_vs_fit" validate:"oneof=availability fit"`
	RiskVsUpside      string `json:"risk_vs_upside" yaml:"risk_vs_upside" validate:"oneof=risk upside"`
}

// DefaultDeclaration returns the default choices: quality, experience, fit, risk.
func DefaultDeclaration() Declaration {
	return Declaration{
		SpeedVsQuality:    Quality,
		RateVsExperience:  Experience,
		AvailabilityVsFit: Fit,
		RiskVsUpside:      Risk,
	}
}

// Overrides holds caller-supplied choices; nil fields keep the default.
type Overrides struct {
	SpeedVsQuality    *string `json:"speed_vs_quality,omitempty" yaml:"speed_vs_quality,omitempty" validate:"omitempty,oneof=speed quality"`
	RateVsExperience  *string `json:"rate_vs_experience,omitempty" yaml:"rate_vs_experience,omitempty" validate:"omitempty,oneof=rate experience"`
	AvailabilityVsFit *string `json:"availability_vs_fit,omitempty" yaml:"availability_vs_fit,omitempty" validate:"omitempty,oneof=availability fit"`
	RiskVsUpside      *string `json:"risk_vs_upside,omitempty" yaml:"risk_vs_upside,omitempty" validate:"omitempty,oneof=risk upside"`
}

// FieldError is a single invalid override
type FieldError struct {
	Field   string
	Value   string
	Message string
}

// ValidationError reports invalid tradeoff values
type ValidationError struct {
	Errors []FieldError
	Cause  error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return fmt.Sprintf("invalid tradeoffs: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Resolve applies overrides on top of defaults. Invalid overrides (or invalid
// defaults) are rejected as a whole: the returned declaration is then the
// default declaration and the error is a *ValidationError, so callers can log
// and fall back.
func Resolve(defaults Declaration, overrides *Overrides) (Declaration, error) {
	validate := validator.New()

	if err := validate.Struct(defaults); err != nil {
		return DefaultDeclaration(), toValidationError(err)
	}
	if overrides == nil {
		return defaults, nil
	}
	if err := validate.Struct(overrides); err != nil {
		return defaults, toValidationError(err)
	}

	resolved := defaults
	if overrides.SpeedVsQuality != nil {
		resolved.SpeedVsQuality = *overrides.SpeedVsQuality
	}
	if overrides.RateVsExperience != nil {
		resolved.RateVsExperience = *overrides.RateVsExperience
	}
	if overrides.AvailabilityVsFit != nil {
		resolved.AvailabilityVsFit = *overrides.AvailabilityVsFit
	}
	if overrides.RiskVsUpside != nil {
		resolved.RiskVsUpside = *overrides.RiskVsUpside
	}
	return resolved, nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}, Cause: err}
	}

	result := &ValidationError{Cause: err}
	for _, fe := range verrs {
		value := fmt.Sprintf("%v", fe.Value())
		if p, ok := fe.Value().(*string); ok && p != nil {
			value = *p
		}
		result.Errors = append(result.Errors, FieldError{
			Field:   jsonFieldName(fe.Field()),
			Value:   value,
			Message: fmt.Sprintf("invalid value %q (must be one of: %s)", value, strings.ReplaceAll(fe.Param(), " ", ", ")),
		})
	}
	return result
}

var jsonFieldNames = map[string]string{
	"SpeedVsQuality":    "speed_vs_quality",
	"RateVsExperience":  "rate_vs_experience",
	"AvailabilityVsFit": "availability_vs_fit",
	"RiskVsUpside":      "risk_vs_upside",
}

func jsonFieldName(field string) string {
	if name, ok := jsonFieldNames[field]; ok {
		return name
	}
	return field
}

// delta is the effect of one tradeoff choice
type delta struct {
	weights   map[scoring.Component]float64
	minScore  int
	rationale string
}

var deltas = map[string]delta{
	Speed: {
		weights:   map[scoring.Component]float64{scoring.CandidateSignal: 0.05, scoring.MustHave: -0.03},
		minScore:  -5,
		rationale: "Speed over quality: favor responsive candidates and relax the score floor",
	},
	Quality: {
		weights:   map[scoring.Component]float64{scoring.MustHave: 0.05},
		minScore:  5,
		rationale: "Quality over speed: emphasize must-have skills and raise the score floor",
	},
	Rate: {
		weights:   map[scoring.Component]float64{scoring.Experience: -0.05, scoring.Location: 0.02},
		rationale: "Rate over experience: de-emphasize seniority and favor nearby candidates",
	},
	Experience: {
		weights:   map[scoring.Component]float64{scoring.Experience: 0.05},
		rationale: "Experience over rate: emphasize seniority alignment",
	},
	Availability: {
		weights:   map[scoring.Component]float64{scoring.CandidateSignal: 0.08, scoring.NiceToHave: -0.04},
		rationale: "Availability over fit: favor engaged candidates over nice-to-have skills",
	},
	Fit: {
		weights:   map[scoring.Component]float64{scoring.MustHave: 0.03, scoring.NiceToHave: 0.03},
		rationale: "Domain fit over availability: emphasize skill fit",
	},
	Risk: {
		weights:   map[scoring.Component]float64{scoring.MustHave: 0.02},
		minScore:  5,
		rationale: "Risk over upside: require stronger must-have coverage and raise the score floor",
	},
	Upside: {
		weights:   map[scoring.Component]float64{scoring.NiceToHave: 0.05},
		minScore:  -5,
		rationale: "Upside over risk: reward breadth and relax the score floor",
	},
}

// Adjustment is the result of applying a declaration to base weights
type Adjustment struct {
	Weights            scoring.Weights `json:"weights"`
	MinScoreAdjustment int             `json:"min_score_adjustment"`
	Rationale          []string        `json:"rationale"`
}

// ApplyToWeights perturbs the normalized base weights by each choice in fixed
// order (speed/quality, rate/experience, availability/fit, risk/upside), then
// floors at zero and renormalizes. Unknown choices fall back to the default for
// that dimension, so the rationale always has four entries.
func ApplyToWeights(base scoring.Weights, decl Declaration) Adjustment {
	defaults := DefaultDeclaration()
	choices := []struct{ value, fallback string }{
		{decl.SpeedVsQuality, defaults.SpeedVsQuality},
		{decl.RateVsExperience, defaults.RateVsExperience},
		{decl.AvailabilityVsFit, defaults.AvailabilityVsFit},
		{decl.RiskVsUpside, defaults.RiskVsUpside},
	}

	weights := base.Normalize()
	adj := Adjustment{Rationale: make([]string, 0, len(choices))}

	for _, choice := range choices {
		d, ok := deltas[choice.value]
		if !ok {
			d = deltas[choice.fallback]
		}
		for _, c := range scoring.Components {
			if v, found := d.weights[c]; found {
				weights = weights.Set(c, weights.Get(c)+v)
			}
		}
		adj.MinScoreAdjustment += d.minScore
		adj.Rationale = append(adj.Rationale, d.rationale)
	}

	adj.Weights = weights.Normalize()
	return adj
}
