// Package orchestrator runs benchmarks as pinned child processes, batch by
// batch, and turns each completion into a printed result, a regression
// verdict, and a persisted baseline record. One process per benchmark in a
// batch, one batch per set of usable cores, completions handled in arrival
// order.
package orchestrator

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"simplebench/internal/baseline"
	"simplebench/internal/output"
	"simplebench/internal/progress"
	"simplebench/internal/registry"
	"simplebench/internal/regression"
	"simplebench/internal/stats"
	"simplebench/internal/telemetry"
)

// Options configures a run.
type Options struct {
	Samples int
	Warmup  time.Duration
	// Cores are the usable core indices; len(Cores) is the batch size.
	Cores []int
	// Detector tunes regression detection against stored history.
	Detector regression.Config
	Quiet    bool
}

// Summary counts what a run produced.
type Summary struct {
	Completed   int
	Regressions int
	Failed      int
}

// Orchestrator drives one run. Store may be nil, in which case results are
// printed without baseline comparison or persistence.
type Orchestrator struct {
	store  *baseline.Store
	out    io.Writer
	logger *slog.Logger

	// spawn launches one worker child; replaced in tests.
	spawn func(bench registry.Benchmark, core int) *exec.Cmd
}

// New returns an Orchestrator printing to out.
func New(store *baseline.Store, out io.Writer, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{store: store, out: out, logger: logger, spawn: spawnWorker}
}

// spawnWorker re-invokes this executable as a hidden worker subcommand,
// handing it the benchmark and core through the environment.
func spawnWorker(bench registry.Benchmark, core int) *exec.Cmd {
	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}
	cmd := exec.Command(self, "worker")
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("%s=%s", EnvBenchFilter, bench.Name),
		fmt.Sprintf("%s=%d", EnvPinCore, core),
	)
	return cmd
}

// completion is one child's outcome, sent as it finishes.
type completion struct {
	bench  registry.Benchmark
	core   int
	result WorkerResult
	err    error
}

// Run executes the benchmarks in batches and returns the totals. Only a
// totally unusable configuration returns an error; individual benchmark
// failures are counted and reported inline.
func (o *Orchestrator) Run(benchmarks []registry.Benchmark, opts Options) (Summary, error) {
	if len(benchmarks) == 0 {
		return Summary{}, fmt.Errorf("no benchmarks to run")
	}
	cores := opts.Cores
	if len(cores) == 0 {
		cores = []int{1}
	}

	var summary Summary
	display := progress.NewDisplay(o.out, opts.Quiet)

	for start := 0; start < len(benchmarks); start += len(cores) {
		end := start + len(cores)
		if end > len(benchmarks) {
			end = len(benchmarks)
		}
		o.runBatch(benchmarks[start:end], cores, opts, display, &summary)
	}

	fmt.Fprintln(o.out, output.Summary(summary.Completed, summary.Regressions, summary.Failed))
	return summary, nil
}

// runBatch launches one child per benchmark and drains completions in
// arrival order. The batch is fully observed before returning.
func (o *Orchestrator) runBatch(batch []registry.Benchmark, cores []int, opts Options, display *progress.Display, summary *Summary) {
	completions := make(chan completion, len(batch))
	var displayMu sync.Mutex

	for i, bench := range batch {
		core := cores[i%len(cores)]
		cmd := o.spawn(bench, core)
		if cmd.Env == nil {
			cmd.Env = os.Environ()
		}
		// Measurement settings travel by environment so the child resolves
		// the same configuration the parent validated.
		cmd.Env = append(cmd.Env,
			fmt.Sprintf("SIMPLEBENCH_SAMPLES=%d", opts.Samples),
			fmt.Sprintf("SIMPLEBENCH_WARMUP=%s", opts.Warmup),
			fmt.Sprintf("SIMPLEBENCH_QUIET=%t", opts.Quiet),
		)
		go o.runChild(cmd, bench, core, completions, display, &displayMu)
	}

	for range batch {
		c := <-completions
		displayMu.Lock()
		display.Finish()
		o.handleCompletion(c, opts, summary)
		displayMu.Unlock()
	}
}

// runChild runs one worker to completion, streaming its stderr for
// progress and capturing its stdout for the result object.
func (o *Orchestrator) runChild(cmd *exec.Cmd, bench registry.Benchmark, core int, completions chan<- completion, display *progress.Display, displayMu *sync.Mutex) {
	fail := func(err error) {
		completions <- completion{bench: bench, core: core, err: err}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		fail(fmt.Errorf("failed to open stderr pipe: %w", err))
		return
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Start(); err != nil {
		fail(fmt.Errorf("failed to start worker: %w", err))
		return
	}

	// Stderr is drained here while the exec package pumps stdout into the
	// buffer, so a chatty child never deadlocks on pipe back-pressure.
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if msg, ok := progress.Parse(line); ok {
			displayMu.Lock()
			display.Update(msg)
			displayMu.Unlock()
			continue
		}
		if line != "" {
			o.logger.Debug("worker diagnostic", "bench", bench.Name, "line", line)
		}
	}

	if err := cmd.Wait(); err != nil {
		fail(fmt.Errorf("worker exited: %w", err))
		return
	}
	result, err := ParseResult(stdout.Bytes())
	if err != nil {
		fail(err)
		return
	}
	completions <- completion{bench: bench, core: core, result: result}
}

// handleCompletion prints, compares, and persists one finished benchmark.
func (o *Orchestrator) handleCompletion(c completion, opts Options, summary *Summary) {
	if c.err != nil {
		summary.Failed++
		telemetry.BenchmarksFailed.WithLabelValues(c.bench.Group).Inc()
		fmt.Fprintln(o.out, output.FailureLine(c.bench.Name, c.err))
		return
	}

	summary.Completed++
	telemetry.BenchmarksCompleted.WithLabelValues(c.bench.Group).Inc()

	summaryStats := stats.Calculate(c.result.Samples)
	fmt.Fprintln(o.out, output.ResultLine(c.bench.Name, summaryStats))

	if o.store == nil {
		return
	}

	key := c.bench.Key()
	history, err := o.store.LoadRecent(key, opts.Detector.Window)
	if err != nil {
		o.logger.Warn("failed to load baseline history", "bench", c.bench.Name, "error", err)
		history = nil
	}

	cmp := regression.Detect(c.bench.Name, summaryStats, history, opts.Detector)
	fmt.Fprintln(o.out, output.ComparisonLine(cmp))
	if cmp.IsRegression {
		summary.Regressions++
		telemetry.RegressionsDetected.WithLabelValues(c.bench.Group).Inc()
	}

	rec := baseline.RunRecord{
		BenchmarkName: c.bench.Name,
		Module:        c.bench.Group,
		Timestamp:     time.Now().UTC(),
		Samples:       c.result.Samples,
		Statistics:    summaryStats,
		Iterations:    c.result.Iterations,
		MachineID:     o.store.MachineID(),
		CPUSamples:    c.result.CPUSamples,
		WasRegression: cmp.IsRegression,
	}
	if err := o.store.Save(rec); err != nil {
		o.logger.Warn("failed to persist run record", "bench", c.bench.Name, "error", err)
	}
}
