package output

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"simplebench/internal/regression"
	"simplebench/internal/stats"
)

func TestFormatNs(t *testing.T) {
	assert.Equal(t, "500 ns", FormatNs(500))
	assert.Equal(t, "1.50 µs", FormatNs(1500))
	assert.Equal(t, "2.35 ms", FormatNs(2_350_000))
	assert.Equal(t, "1.20 s", FormatNs(1_200_000_000))
}

func TestResultLine(t *testing.T) {
	line := ResultLine("sort_ints", stats.Summary{
		Mean: 1500, Median: 1400, P90: 2000, P99: 2500,
		StdDev: 120, SampleCount: 200,
	})
	assert.Contains(t, line, "sort_ints")
	assert.Contains(t, line, "1.50 µs")
	assert.Contains(t, line, "n=200")
}

func TestComparisonLineVerdicts(t *testing.T) {
	assert.Contains(t, ComparisonLine(regression.Comparison{IsNewBaseline: true}), "NEW BASELINE")

	cmp := regression.Comparison{
		PercentageChange:    42.0,
		BaselineMean:        1_000_000,
		ZScore:              8.1,
		ChangeProbability:   0.93,
		BaselineSampleCount: 10,
		IsRegression:        true,
	}
	line := ComparisonLine(cmp)
	assert.Contains(t, line, "REGRESSION")
	assert.Contains(t, line, "+42.0%")
	assert.Contains(t, line, "1.00 ms")

	cmp.IsRegression = false
	cmp.PercentageChange = -3.0
	line = ComparisonLine(cmp)
	assert.Contains(t, line, "OK")
	assert.Contains(t, line, "-3.0%")
}

func TestFailureLine(t *testing.T) {
	line := FailureLine("sort_ints", errors.New("exit status 1"))
	assert.Contains(t, line, "FAILED")
	assert.Contains(t, line, "exit status 1")
}

func TestSummary(t *testing.T) {
	assert.Contains(t, Summary(5, 0, 0), "no regressions")
	s := Summary(5, 2, 1)
	assert.Contains(t, s, "2 regression(s)")
	assert.Contains(t, s, "1 failed")
}
