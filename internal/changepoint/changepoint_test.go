package changepoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyHistoryReturnsZero(t *testing.T) {
	assert.Equal(t, 0.0, Probability(1.0, nil, 0.1))
	assert.Equal(t, 0.0, Probability(12345.0, []float64{}, 0.9))
}

func TestStableDataLowProbability(t *testing.T) {
	historical := []float64{1.0, 1.01, 0.99, 1.0, 1.02, 0.98, 1.0, 1.01}
	p := Probability(1.0, historical, 0.1)
	assert.Less(t, p, 0.5, "value matching the pattern should score low")
}

func TestClearJumpHighProbability(t *testing.T) {
	historical := []float64{1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0}
	matching := Probability(1.0, historical, 0.1)
	jump := Probability(2.0, historical, 0.1)

	assert.Greater(t, jump, matching,
		"a value far from a tight cluster must score materially higher")
	assert.Greater(t, jump-matching, 0.3)
}

func TestHazardRateMonotonic(t *testing.T) {
	historical := []float64{1.0, 1.0, 1.0, 1.0, 1.0}
	value := 1.2

	prev := 0.0
	for _, hazard := range []float64{0.01, 0.05, 0.1, 0.3, 0.5, 0.9} {
		p := Probability(value, historical, hazard)
		assert.GreaterOrEqual(t, p, prev, "hazard=%v", hazard)
		prev = p
	}
}

func TestProbabilityBounded(t *testing.T) {
	historical := []float64{1.0, 1.1, 0.9, 1.0}
	for _, value := range []float64{0, 1, 100, 1e12} {
		p := Probability(value, historical, 0.99)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestGradualDriftScoresBelowSuddenJump(t *testing.T) {
	drift := Probability(1.35, []float64{1.0, 1.05, 1.1, 1.15, 1.2, 1.25, 1.3}, 0.1)
	sudden := Probability(1.35, []float64{1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0}, 0.1)
	assert.Greater(t, sudden, drift)
}

func TestSingleObservationHistory(t *testing.T) {
	// n=1 uses the default unit variance; must not panic or divide by zero.
	p := Probability(5.0, []float64{1.0}, 0.1)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}
