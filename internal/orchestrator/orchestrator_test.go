package orchestrator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplebench/internal/baseline"
	"simplebench/internal/measure"
	"simplebench/internal/registry"
	"simplebench/internal/regression"
	"simplebench/internal/stats"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testBench(name string) registry.Benchmark {
	return registry.Benchmark{Name: name, Group: "sorting", Sampler: measure.NoSetup(func() {})}
}

func detectorConfig() regression.Config {
	return regression.Config{
		ThresholdPercent:     5.0,
		Confidence:           0.95,
		Window:               10,
		ChangePointThreshold: 0.8,
		HazardRate:           0.1,
	}
}

// echoWorker fakes a child process with a shell one-liner that emits the
// given result on stdout and a progress envelope on stderr.
func echoWorker(result WorkerResult) func(registry.Benchmark, int) *exec.Cmd {
	data, _ := json.Marshal(result)
	return func(bench registry.Benchmark, core int) *exec.Cmd {
		script := fmt.Sprintf(
			`echo '{"progress":{"bench":"%s","phase":"complete"}}' >&2; echo 'diag line' >&2; echo '%s'`,
			bench.Name, string(data))
		return exec.Command("sh", "-c", script)
	}
}

func samplesAround(mean uint64, n int) []uint64 {
	s := make([]uint64, n)
	for i := range s {
		s[i] = mean
	}
	return s
}

func TestParseResult(t *testing.T) {
	res, err := ParseResult([]byte(`{"name":"sort_ints","group":"sorting","samples":[100,110],"warmup_ms":5,"iterations":42}`))
	require.NoError(t, err)
	assert.Equal(t, "sort_ints", res.Name)
	assert.Equal(t, []uint64{100, 110}, res.Samples)
	assert.Equal(t, uint64(42), res.Iterations)

	_, err = ParseResult([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseResult([]byte(`{"name":"","samples":[]}`))
	assert.Error(t, err)
}

func TestRunPersistsRecordAndPrintsResult(t *testing.T) {
	store := baseline.NewStore(t.TempDir(), "m1")
	var out bytes.Buffer
	o := New(store, &out, testLogger())
	o.spawn = echoWorker(WorkerResult{
		Name: "sort_ints", Group: "sorting",
		Samples: samplesAround(1000, 20), WarmupMs: 5, Iterations: 100,
	})

	summary, err := o.Run([]registry.Benchmark{testBench("sort_ints")}, Options{
		Cores: []int{1}, Detector: detectorConfig(), Quiet: true,
	})
	require.NoError(t, err)
	assert.Equal(t, Summary{Completed: 1}, summary)
	assert.Contains(t, out.String(), "sort_ints")
	assert.Contains(t, out.String(), "NEW BASELINE")

	rec, err := store.LoadLatest("sorting_sort_ints")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, uint64(1000), rec.Statistics.Mean)
	assert.Equal(t, uint64(100), rec.Iterations)
	assert.Equal(t, "m1", rec.MachineID)
	assert.False(t, rec.WasRegression)
}

func TestRunDetectsRegressionAgainstHistory(t *testing.T) {
	store := baseline.NewStore(t.TempDir(), "m1")
	base := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	for i, mean := range []uint64{1_000_000, 1_000_100, 999_900, 1_000_050, 999_950} {
		require.NoError(t, store.Save(baseline.RunRecord{
			BenchmarkName: "sort_ints",
			Module:        "sorting",
			Timestamp:     base.Add(time.Duration(i) * time.Hour),
			Samples:       samplesAround(mean, 3),
			Statistics:    stats.Summary{Mean: mean, SampleCount: 3},
			MachineID:     "m1",
		}))
	}

	var out bytes.Buffer
	o := New(store, &out, testLogger())
	o.spawn = echoWorker(WorkerResult{
		Name: "sort_ints", Group: "sorting",
		Samples: samplesAround(2_000_000, 20),
	})

	summary, err := o.Run([]registry.Benchmark{testBench("sort_ints")}, Options{
		Cores: []int{1}, Detector: detectorConfig(), Quiet: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Regressions)
	assert.Contains(t, out.String(), "REGRESSION")

	// The regression-flagged record is persisted but excluded from future
	// comparison windows.
	rec, err := store.LoadLatest("sorting_sort_ints")
	require.NoError(t, err)
	assert.True(t, rec.WasRegression)

	recent, err := store.LoadRecent("sorting_sort_ints", 10)
	require.NoError(t, err)
	for _, r := range recent {
		assert.False(t, r.WasRegression)
	}
}

func TestRunReportsChildFailureAndContinues(t *testing.T) {
	store := baseline.NewStore(t.TempDir(), "m1")
	var out bytes.Buffer
	o := New(store, &out, testLogger())

	good := echoWorker(WorkerResult{
		Name: "sort_strings", Group: "sorting",
		Samples: samplesAround(500, 10),
	})
	o.spawn = func(bench registry.Benchmark, core int) *exec.Cmd {
		if bench.Name == "sort_ints" {
			return exec.Command("sh", "-c", "echo boom >&2; exit 1")
		}
		return good(bench, core)
	}

	summary, err := o.Run(
		[]registry.Benchmark{testBench("sort_ints"), testBench("sort_strings")},
		Options{Cores: []int{1}, Detector: detectorConfig(), Quiet: true},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Completed)
	assert.Contains(t, out.String(), "FAILED")
	assert.Contains(t, out.String(), "sort_strings")
}

func TestRunMalformedOutputIsFailure(t *testing.T) {
	var out bytes.Buffer
	o := New(nil, &out, testLogger())
	o.spawn = func(registry.Benchmark, int) *exec.Cmd {
		return exec.Command("sh", "-c", "echo 'this is not a result'")
	}

	summary, err := o.Run([]registry.Benchmark{testBench("sort_ints")}, Options{
		Cores: []int{1}, Quiet: true,
	})
	require.NoError(t, err)
	assert.Equal(t, Summary{Failed: 1}, summary)
}

func TestRunParallelBatchDrainsAllChildren(t *testing.T) {
	var out bytes.Buffer
	o := New(nil, &out, testLogger())
	o.spawn = func(bench registry.Benchmark, core int) *exec.Cmd {
		res := WorkerResult{Name: bench.Name, Group: bench.Group, Samples: samplesAround(100, 5)}
		return echoWorker(res)(bench, core)
	}

	benchmarks := []registry.Benchmark{
		testBench("a"), testBench("b"), testBench("c"), testBench("d"), testBench("e"),
	}
	summary, err := o.Run(benchmarks, Options{Cores: []int{1, 2}, Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Completed)
	for _, b := range benchmarks {
		assert.Contains(t, out.String(), b.Name)
	}
}

func TestRunNoBenchmarks(t *testing.T) {
	o := New(nil, &bytes.Buffer{}, testLogger())
	_, err := o.Run(nil, Options{})
	assert.Error(t, err)
}
