package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_SumsToOne(t *testing.T) {
	w := Weights{MustHave: 40, NiceToHave: 20, Experience: 25, Location: 15}

	n := w.Normalize()

	assert.InDelta(t, 1.0, n.Sum(), 1e-9)
	assert.InDelta(t, 0.40, n.MustHave, 1e-9)
	assert.InDelta(t, 0.20, n.NiceToHave, 1e-9)
	assert.InDelta(t, 0.25, n.Experience, 1e-9)
	assert.InDelta(t, 0.15, n.Location, 1e-9)
	assert.Equal(t, 0.0, n.CandidateSignal)
}

func TestNormalize_FloorsNegatives(t *testing.T) {
	w := Weights{MustHave: 0.6, NiceToHave: -0.2, Experience: 0.4}

	n := w.Normalize()

	assert.Equal(t, 0.0, n.NiceToHave)
	assert.InDelta(t, 0.6, n.MustHave, 1e-9)
	assert.InDelta(t, 0.4, n.Experience, 1e-9)
}

func TestNormalize_ZeroVectorFallsBackToDefaults(t *testing.T) {
	n := Weights{}.Normalize()

	assert.InDelta(t, 1.0, n.Sum(), 1e-9)
	assert.InDelta(t, DefaultWeights.MustHave, n.MustHave, 1e-9)
}

func TestNormalize_NonFiniteTreatedAsZero(t *testing.T) {
	w := Weights{MustHave: math.NaN(), Location: math.Inf(1), Experience: 1}

	n := w.Normalize()

	assert.Equal(t, 1.0, n.Experience)
	assert.Equal(t, 0.0, n.MustHave)
	assert.Equal(t, 0.0, n.Location)
}

func TestNormalize_Idempotent(t *testing.T) {
	n := Weights{MustHave: 3, Location: 1}.Normalize()
	assert.Equal(t, n, n.Normalize())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights.Validate())

	err := Weights{MustHave: 1, Location: -0.5}.Validate()
	require.Error(t, err)

	var weightErr *WeightError
	require.ErrorAs(t, err, &weightErr)
	assert.Equal(t, "location", weightErr.Field)
	assert.Contains(t, err.Error(), "location")

	assert.Error(t, Weights{Experience: math.NaN()}.Validate())
}

func TestWithout_RenormalizesRemaining(t *testing.T) {
	w := Weights{MustHave: 0.4, NiceToHave: 0.2, Experience: 0.2, Location: 0.2}

	n := w.Without(NiceToHave)

	assert.Equal(t, 0.0, n.NiceToHave)
	assert.InDelta(t, 0.5, n.MustHave, 1e-9)
	assert.InDelta(t, 0.25, n.Experience, 1e-9)
	assert.InDelta(t, 1.0, n.Sum(), 1e-9)
}

func TestWithout_OnlyExcludedPositiveUsesDefaults(t *testing.T) {
	w := Weights{NiceToHave: 1}

	n := w.Without(NiceToHave)

	assert.Equal(t, 0.0, n.NiceToHave)
	assert.InDelta(t, 1.0, n.Sum(), 1e-9)
	assert.Greater(t, n.MustHave, 0.0)
}

func TestGetSet(t *testing.T) {
	w := Weights{}
	for i, c := range Components {
		w = w.Set(c, float64(i+1))
	}
	for i, c := range Components {
		assert.Equal(t, float64(i+1), w.Get(c))
	}
	assert.Equal(t, 0.0, w.Get(Component("unknown")))
}

func TestShares(t *testing.T) {
	shares, ok := Shares(2, -1, math.NaN(), 2)
	require.True(t, ok)
	assert.Equal(t, []float64{0.5, 0, 0, 0.5}, shares)

	_, ok = Shares(0, -3, math.Inf(1))
	assert.False(t, ok)

	_, ok = Shares()
	assert.False(t, ok)
}
