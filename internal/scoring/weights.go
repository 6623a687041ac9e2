// Package scoring holds the weight vector shared by every scorer and the single
// normalization routine applied to it.
package scoring

import (
	"fmt"
	"math"
)

// Component names a term of the composite match score
type Component string

// Composite score components
const (
	MustHave        Component = "must_have"
	NiceToHave      Component = "nice_to_have"
	Experience      Component = "experience"
	Location        Component = "location"
	CandidateSignal Component = "candidate_signal"
)

// Components lists every component in canonical order.
var Components = []Component{MustHave, NiceToHave, Experience, Location, CandidateSignal}

// Weights is the per-signal weight vector used by the match scorer.
// Values are relative; Normalize rescales them to sum to 1.
type Weights struct {
	MustHave        float64 `json:"must_have"`
	NiceToHave      float64 `json:"nice_to_have"`
	Experience      float64 `json:"experience"`
	Location        float64 `json:"location"`
	CandidateSignal float64 `json:"candidate_signal"`
}

// DefaultWeights is used when no weights are supplied or a vector sums to zero.
var DefaultWeights = Weights{
	MustHave:        0.35,
	NiceToHave:      0.15,
	Experience:      0.20,
	Location:        0.15,
	CandidateSignal: 0.15,
}

// WeightError reports an invalid weight
type WeightError struct {
	Field string
	Value float64
}

func (e *WeightError) Error() string {
	return fmt.Sprintf("invalid weight %s: %v (must be a finite, non-negative number)", e.Field, e.Value)
}

// Get returns the weight of a component.
func (w Weights) Get(c Component) float64 {
	switch c {
	case MustHave:
		return w.MustHave
	case NiceToHave:
		return w.NiceToHave
	case Experience:
		return w.Experience
	case Location:
		return w.Location
	case CandidateSignal:
		return w.CandidateSignal
	}
	return 0
}

// Set returns a copy with the component's weight replaced.
func (w Weights) Set(c Component, v float64) Weights {
	switch c {
	case MustHave:
		w.MustHave = v
	case NiceToHave:
		w.NiceToHave = v
	case Experience:
		w.Experience = v
	case Location:
		w.Location = v
	case CandidateSignal:
		w.CandidateSignal = v
	}
	return w
}

// Sum returns the total of all components.
func (w Weights) Sum() float64 {
	total := 0.0
	for _, c := range Components {
		total += w.Get(c)
	}
	return total
}

// Validate rejects negative or non-finite weights.
func (w Weights) Validate() error {
	for _, c := range Components {
		v := w.Get(c)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return &WeightError{Field: string(c), Value: v}
		}
	}
	return nil
}

// Normalize floors every component at zero and rescales the vector to sum to 1.
// A vector with no positive weight normalizes to DefaultWeights.
func (w Weights) Normalize() Weights {
	values := make([]float64, len(Components))
	for i, c := range Components {
		values[i] = w.Get(c)
	}

	shares, ok := Shares(values...)
	if !ok {
		return DefaultWeights.Normalize()
	}

	out := Weights{}
	for i, c := range Components {
		out = out.Set(c, shares[i])
	}
	return out
}

// Shares floors each value at zero, treating non-finite values as zero, and
// rescales them to sum to 1. It returns false when no value is positive.
func Shares(values ...float64) ([]float64, bool) {
	floored := make([]float64, len(values))
	total := 0.0
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			v = 0
		}
		floored[i] = v
		total += v
	}
	if total <= 0 {
		return nil, false
	}

	for i := range floored {
		floored[i] /= total
	}
	return floored, true
}

// Without zeroes the given components and renormalizes. If every remaining
// component is zero, the excluded components are dropped from DefaultWeights instead.
func (w Weights) Without(excluded ...Component) Weights {
	out := w
	for _, c := range excluded {
		out = out.Set(c, 0)
	}
	if !out.hasPositive() {
		out = DefaultWeights
		for _, c := range excluded {
			out = out.Set(c, 0)
		}
	}
	return out.Normalize()
}

func (w Weights) hasPositive() bool {
	for _, c := range Components {
		if v := w.Get(c); v > 0 && !math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
