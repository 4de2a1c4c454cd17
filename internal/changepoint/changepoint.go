// Package changepoint implements a simplified Bayesian online change-point
// detection step in the style of Adams & MacKay (2007). Given one new
// observation and a historical series it estimates the probability that the
// underlying distribution shifted, which the regression detector uses to
// confirm that a slow run is a genuine level change rather than noise.
package changepoint

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Blend weights for combining data evidence with the hazard prior. Empirical
// constants; tests pin only the monotonicity and boundary behavior.
const (
	evidenceWeight = 0.7
	priorWeight    = 0.3
	jointWeight    = 0.5
)

// Detector estimates change-point probabilities under a fixed hazard rate.
type Detector struct {
	// HazardRate is the prior probability of a change per observation,
	// e.g. 0.1 = expect a change roughly every 10 runs.
	HazardRate float64
}

// New returns a Detector with the given hazard rate.
func New(hazardRate float64) *Detector {
	return &Detector{HazardRate: hazardRate}
}

// Probability returns the probability in [0,1] that value marks a change
// point relative to the historical series. Empty history returns 0: no
// change can be detected without a baseline distribution.
func (d *Detector) Probability(value float64, historical []float64) float64 {
	if len(historical) == 0 {
		return 0
	}

	likelihood := studentTLikelihood(value, historical)

	// Low predictive likelihood means the observation does not fit the
	// historical distribution.
	unlikelihood := 1 - math.Min(likelihood, 1)

	p := evidenceWeight*unlikelihood +
		priorWeight*d.HazardRate +
		jointWeight*unlikelihood*d.HazardRate
	return math.Min(p, 1)
}

// studentTLikelihood computes an unnormalized Student's-t predictive density
// of value under the historical distribution, with df = max(n-1, 1). The
// kernel peaks at 1 when value equals the historical mean, which keeps the
// unlikelihood conversion above well behaved. Near-zero variance falls back
// to a Gaussian with a floored stddev.
func studentTLikelihood(value float64, historical []float64) float64 {
	n := float64(len(historical))
	histMean := stat.Mean(historical, nil)

	variance := 1.0
	if n > 1 {
		variance = stat.PopVariance(historical, nil)
	}

	if variance < 1e-10 {
		stddev := math.Max(math.Sqrt(variance), 1e-5)
		z := math.Abs((value - histMean) / stddev)
		return math.Exp(-0.5 * z * z)
	}

	df := math.Max(n-1, 1)
	t := (value - histMean) / math.Sqrt(variance)
	return math.Pow(1+t*t/df, -(df+1)/2)
}

// Probability is the single-call form of Detector.Probability.
func Probability(value float64, historical []float64, hazardRate float64) float64 {
	return New(hazardRate).Probability(value, historical)
}
