// Package stats provides the statistical primitives shared by the regression
// detector, the change-point detector, and run analysis: means, population
// variance, z-scores, one-tailed confidence intervals, and the per-run summary
// computed from raw timing samples.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary holds the statistics computed from one run's raw samples.
// All duration fields are nanoseconds; Variance is ns².
type Summary struct {
	Mean        uint64  `json:"mean"`
	Median      uint64  `json:"median"`
	P90         uint64  `json:"p90"`
	P99         uint64  `json:"p99"`
	StdDev      float64 `json:"std_dev"`
	Variance    float64 `json:"variance"`
	Min         uint64  `json:"min"`
	Max         uint64  `json:"max"`
	SampleCount int     `json:"sample_count"`
}

// Mean returns the arithmetic mean, or 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Variance returns the population variance (divisor N), or 0 for fewer than
// two values.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.PopVariance(values, nil)
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// ZScore returns how many standard deviations value lies from mean.
// Returns 0 when stddev is effectively zero, so perfectly stable historical
// data never produces an infinite score.
func ZScore(value, mean, stddev float64) float64 {
	if stddev < 1e-10 {
		return 0
	}
	return (value - mean) / stddev
}

// ZCritical maps a confidence level to its one-tailed z-critical value.
// Unrecognized levels fall back to the two-tailed 95% value.
func ZCritical(confidenceLevel float64) float64 {
	switch {
	case math.Abs(confidenceLevel-0.90) < 0.01:
		return 1.282
	case math.Abs(confidenceLevel-0.95) < 0.01:
		return 1.645
	case math.Abs(confidenceLevel-0.99) < 0.01:
		return 2.326
	default:
		return 1.96
	}
}

// ConfidenceInterval returns the (lower, upper) bounds around mean for the
// given confidence level, using one-tailed critical values.
func ConfidenceInterval(mean, stddev, confidenceLevel float64) (float64, float64) {
	margin := ZCritical(confidenceLevel) * stddev
	return mean - margin, mean + margin
}

// Calculate computes a Summary from raw nanosecond samples. The input is not
// modified; percentiles use index = count*P/100 on a sorted copy, clamped to
// count-1. Empty input yields an all-zero Summary with SampleCount 0 —
// callers must check SampleCount before dividing.
func Calculate(samples []uint64) Summary {
	n := len(samples)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]uint64, n)
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := func(p int) uint64 {
		i := n * p / 100
		if i > n-1 {
			i = n - 1
		}
		return sorted[i]
	}

	var sum uint64
	for _, s := range samples {
		sum += s
	}
	mean := sum / uint64(n)

	// Second pass against the float-cast mean; population variance.
	meanF := float64(mean)
	var variance float64
	for _, s := range samples {
		d := float64(s) - meanF
		variance += d * d
	}
	variance /= float64(n)

	return Summary{
		Mean:        mean,
		Median:      idx(50),
		P90:         idx(90),
		P99:         idx(99),
		StdDev:      math.Sqrt(variance),
		Variance:    variance,
		Min:         sorted[0],
		Max:         sorted[n-1],
		SampleCount: n,
	}
}
