// Package output renders benchmark results and regression verdicts for the
// terminal.
package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"simplebench/internal/regression"
	"simplebench/internal/stats"
)

var (
	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")). // Cyan
			Bold(true)
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("46")). // Green
		Bold(true)
	regressionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)
	newBaselineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("220")). // Yellow
				Bold(true)
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")) // Gray
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("63")). // Purple
			Bold(true).
			Padding(0, 1)
)

// FormatNs renders nanoseconds with the most readable unit.
func FormatNs(ns uint64) string {
	switch {
	case ns >= 1_000_000_000:
		return fmt.Sprintf("%.2f s", float64(ns)/1_000_000_000)
	case ns >= 1_000_000:
		return fmt.Sprintf("%.2f ms", float64(ns)/1_000_000)
	case ns >= 1_000:
		return fmt.Sprintf("%.2f µs", float64(ns)/1_000)
	default:
		return fmt.Sprintf("%d ns", ns)
	}
}

// RunHeader introduces a run.
func RunHeader(machineID string, benchmarks, samples int) string {
	return headerStyle.Render("simplebench") + " " + dimStyle.Render(fmt.Sprintf(
		"machine %s, %d benchmark(s), %d samples each", machineID, benchmarks, samples))
}

// ResultLine renders one benchmark's measurement summary.
func ResultLine(name string, s stats.Summary) string {
	return fmt.Sprintf("%s  mean %s  median %s  p90 %s  p99 %s  %s",
		nameStyle.Render(name),
		FormatNs(s.Mean), FormatNs(s.Median), FormatNs(s.P90), FormatNs(s.P99),
		dimStyle.Render(fmt.Sprintf("(stddev %.0f ns, n=%d)", s.StdDev, s.SampleCount)))
}

// ComparisonLine renders the regression verdict for one benchmark.
func ComparisonLine(cmp regression.Comparison) string {
	if cmp.IsNewBaseline {
		return fmt.Sprintf("  %s %s",
			newBaselineStyle.Render("NEW BASELINE"),
			dimStyle.Render("no history to compare against"))
	}

	detail := fmt.Sprintf("%+.1f%% vs %s (z=%.2f, p(change)=%.2f, window=%d)",
		cmp.PercentageChange, FormatNs(cmp.BaselineMean),
		cmp.ZScore, cmp.ChangeProbability, cmp.BaselineSampleCount)

	if cmp.IsRegression {
		return fmt.Sprintf("  %s %s", regressionStyle.Render("REGRESSION"), detail)
	}
	return fmt.Sprintf("  %s %s", okStyle.Render("OK"), dimStyle.Render(detail))
}

// FailureLine renders a worker failure.
func FailureLine(name string, err error) string {
	return fmt.Sprintf("%s  %s %v",
		nameStyle.Render(name), regressionStyle.Render("FAILED"), err)
}

// Summary renders the end-of-run totals.
func Summary(completed, regressions, failed int) string {
	parts := []string{fmt.Sprintf("%d completed", completed)}
	if regressions > 0 {
		parts = append(parts, regressionStyle.Render(fmt.Sprintf("%d regression(s)", regressions)))
	} else {
		parts = append(parts, okStyle.Render("no regressions"))
	}
	if failed > 0 {
		parts = append(parts, regressionStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	return strings.Join(parts, ", ")
}
