package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Heuristic thresholds for flagging measurement conditions likely to bias
// timings. They flag, they never fail.
const (
	coldStartCelsius        = 50.0
	throttleIncreaseCelsius = 20.0
	throttleMaxCelsius      = 85.0
	frequencyVariancePct    = 10.0
	lowFrequencyPctOfMax    = 50.0
)

// FrequencyStats summarizes the frequency readings of one run, in MHz.
type FrequencyStats struct {
	MinMHz          float64
	MaxMHz          float64
	MeanMHz         float64
	StdDevMHz       float64
	VariancePercent float64 // (max-min)/mean*100
}

// TemperatureStats summarizes the temperature readings of one run, in °C.
type TemperatureStats struct {
	MinCelsius      float64
	MaxCelsius      float64
	MeanCelsius     float64
	IncreaseCelsius float64 // max - min
}

// WarningKind identifies a measurement-condition warning.
type WarningKind int

const (
	WarnColdStart WarningKind = iota
	WarnThermalThrottling
	WarnFrequencyVariance
	WarnLowFrequency
)

// Warning is one qualitative finding about the run's CPU conditions.
type Warning struct {
	Kind WarningKind

	InitialTempCelsius float64 // ColdStart
	TempIncrease       float64 // ThermalThrottling
	MaxTempCelsius     float64 // ThermalThrottling
	VariancePercent    float64 // FrequencyVariance
	MeanMHz            float64 // LowFrequency
	MaxAvailableMHz    float64 // LowFrequency
	PercentOfMax       float64 // LowFrequency
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnColdStart:
		return fmt.Sprintf("cold start detected (initial: %.0f°C)", w.InitialTempCelsius)
	case WarnThermalThrottling:
		return fmt.Sprintf("thermal throttling detected (+%.0f°C, max: %.0f°C)",
			w.TempIncrease, w.MaxTempCelsius)
	case WarnFrequencyVariance:
		return fmt.Sprintf("frequency variance detected (%.1f%% variance)", w.VariancePercent)
	case WarnLowFrequency:
		return fmt.Sprintf("low frequency detected (%.0f MHz, %.0f%% of max %.0f MHz)",
			w.MeanMHz, w.PercentOfMax, w.MaxAvailableMHz)
	default:
		return "unknown warning"
	}
}

// Analysis aggregates a run's snapshots. Stats fields are nil when no
// reading of that kind was available.
type Analysis struct {
	Frequency   *FrequencyStats
	Temperature *TemperatureStats
	Warnings    []Warning
}

// Analyze summarizes the snapshots and evaluates the warning rules.
// maxFreqKHz is the core's advertised ceiling; pass 0 when unknown, which
// disables the low-frequency rule.
func Analyze(snapshots []Snapshot, maxFreqKHz uint64) Analysis {
	var frequencies, temperatures []float64
	for _, s := range snapshots {
		if mhz, ok := s.FrequencyMHz(); ok {
			frequencies = append(frequencies, mhz)
		}
		if c, ok := s.TemperatureCelsius(); ok {
			temperatures = append(temperatures, c)
		}
	}

	var a Analysis

	if len(frequencies) > 0 {
		fs := FrequencyStats{
			MinMHz:  frequencies[0],
			MaxMHz:  frequencies[0],
			MeanMHz: stat.Mean(frequencies, nil),
		}
		for _, f := range frequencies {
			if f < fs.MinMHz {
				fs.MinMHz = f
			}
			if f > fs.MaxMHz {
				fs.MaxMHz = f
			}
		}
		fs.StdDevMHz = stat.PopStdDev(frequencies, nil)
		if fs.MeanMHz > 0 {
			fs.VariancePercent = (fs.MaxMHz - fs.MinMHz) / fs.MeanMHz * 100
		}

		if fs.VariancePercent > frequencyVariancePct {
			a.Warnings = append(a.Warnings, Warning{
				Kind:            WarnFrequencyVariance,
				VariancePercent: fs.VariancePercent,
			})
		}
		if maxFreqKHz > 0 {
			maxAvailableMHz := float64(maxFreqKHz) / 1000
			pct := fs.MeanMHz / maxAvailableMHz * 100
			if pct < lowFrequencyPctOfMax {
				a.Warnings = append(a.Warnings, Warning{
					Kind:            WarnLowFrequency,
					MeanMHz:         fs.MeanMHz,
					MaxAvailableMHz: maxAvailableMHz,
					PercentOfMax:    pct,
				})
			}
		}
		a.Frequency = &fs
	}

	if len(temperatures) > 0 {
		ts := TemperatureStats{
			MinCelsius:  temperatures[0],
			MaxCelsius:  temperatures[0],
			MeanCelsius: stat.Mean(temperatures, nil),
		}
		for _, c := range temperatures {
			if c < ts.MinCelsius {
				ts.MinCelsius = c
			}
			if c > ts.MaxCelsius {
				ts.MaxCelsius = c
			}
		}
		ts.IncreaseCelsius = ts.MaxCelsius - ts.MinCelsius

		if temperatures[0] < coldStartCelsius {
			a.Warnings = append(a.Warnings, Warning{
				Kind:               WarnColdStart,
				InitialTempCelsius: temperatures[0],
			})
		}
		if ts.IncreaseCelsius > throttleIncreaseCelsius || ts.MaxCelsius > throttleMaxCelsius {
			a.Warnings = append(a.Warnings, Warning{
				Kind:           WarnThermalThrottling,
				TempIncrease:   ts.IncreaseCelsius,
				MaxTempCelsius: ts.MaxCelsius,
			})
		}
		a.Temperature = &ts
	}

	return a
}

// StatsLine renders the frequency/temperature summaries as a single line for
// compact display, or "" when neither is available.
func (a Analysis) StatsLine() string {
	var parts []string
	if a.Frequency != nil {
		parts = append(parts, fmt.Sprintf("%.0f-%.0f MHz (mean: %.0f MHz, variance: %.1f%%)",
			a.Frequency.MinMHz, a.Frequency.MaxMHz, a.Frequency.MeanMHz, a.Frequency.VariancePercent))
	}
	if a.Temperature != nil {
		parts = append(parts, fmt.Sprintf("%.0f-%.0f°C (increase: +%.0f°C)",
			a.Temperature.MinCelsius, a.Temperature.MaxCelsius, a.Temperature.IncreaseCelsius))
	}
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 2 {
		return parts[0] + ", " + parts[1]
	}
	return parts[0]
}
