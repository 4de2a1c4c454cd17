// Package regression decides whether a benchmark run got slower. A run is
// compared against the window of its recent clean baselines on the same
// machine, and flagged only when the statistical evidence, the practical
// size of the change, and (in the ambiguous middle band) an online
// change-point probability all agree.
package regression

import (
	"math"

	"simplebench/internal/baseline"
	"simplebench/internal/changepoint"
	"simplebench/internal/stats"
)

// Z-score bands for the tiered verdict. Above strongZScore the shift is so
// many deviations out that the change-point check adds nothing; below
// weakZScore the evidence is indistinguishable from noise regardless of how
// large the percentage change looks.
const (
	strongZScore = 5.0
	weakZScore   = 2.0
)

// Config tunes the detector.
type Config struct {
	// ThresholdPercent is the minimum mean slowdown, in percent, that
	// counts as practically significant.
	ThresholdPercent float64
	// Confidence selects the one-tailed confidence bound (0.90, 0.95, 0.99).
	Confidence float64
	// Window caps how many recent baselines form the comparison window.
	Window int
	// ChangePointThreshold is the minimum change probability required in
	// the moderate-evidence band.
	ChangePointThreshold float64
	// HazardRate is the prior change probability fed to the change-point
	// detector.
	HazardRate float64
}

// Interval is a one-tailed confidence interval over the baseline window, in
// nanoseconds.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Comparison is the full verdict for one run against its baseline window.
type Comparison struct {
	BenchmarkName       string   `json:"benchmark_name"`
	CurrentMean         uint64   `json:"current_mean"`
	BaselineMean        uint64   `json:"baseline_mean"`
	PercentageChange    float64  `json:"percentage_change"`
	BaselineSampleCount int      `json:"baseline_sample_count"`
	ZScore              float64  `json:"z_score"`
	ConfidenceInterval  Interval `json:"confidence_interval"`
	ChangeProbability   float64  `json:"change_probability"`
	IsRegression        bool     `json:"is_regression"`

	// IsNewBaseline is set when no history existed to compare against; all
	// other analytical fields are zero in that case.
	IsNewBaseline bool `json:"is_new_baseline"`
}

// Detect compares the current run against its history. history must be in
// chronological order and already filtered of past regressions; only the
// newest cfg.Window entries are used.
func Detect(name string, current stats.Summary, history []baseline.RunRecord, cfg Config) Comparison {
	if len(history) == 0 {
		return Comparison{BenchmarkName: name, CurrentMean: current.Mean, IsNewBaseline: true}
	}

	if cfg.Window > 0 && len(history) > cfg.Window {
		history = history[len(history)-cfg.Window:]
	}

	means := make([]float64, len(history))
	for i, rec := range history {
		means[i] = float64(rec.Statistics.Mean)
	}

	baselineMean := stats.Mean(means)
	baselineStdDev := stats.StdDev(means)
	currentMean := float64(current.Mean)

	cmp := Comparison{
		BenchmarkName:       name,
		CurrentMean:         current.Mean,
		BaselineMean:        uint64(baselineMean),
		BaselineSampleCount: len(history),
		ZScore:              stats.ZScore(currentMean, baselineMean, baselineStdDev),
		ChangeProbability:   changepoint.Probability(currentMean, means, cfg.HazardRate),
	}
	if baselineMean > 0 {
		cmp.PercentageChange = (currentMean - baselineMean) / baselineMean * 100
	}
	lower, upper := stats.ConfidenceInterval(baselineMean, baselineStdDev, cfg.Confidence)
	cmp.ConfidenceInterval = Interval{Lower: lower, Upper: upper}

	statistical := currentMean > upper
	practical := cmp.PercentageChange > cfg.ThresholdPercent

	switch z := math.Abs(cmp.ZScore); {
	case z > strongZScore:
		cmp.IsRegression = statistical && practical
	case z > weakZScore:
		cmp.IsRegression = statistical && practical &&
			cmp.ChangeProbability > cfg.ChangePointThreshold
	default:
		// Within two deviations of the baseline the shift is noise no
		// matter how large the percentage looks.
		cmp.IsRegression = false
	}

	return cmp
}
