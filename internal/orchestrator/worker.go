package orchestrator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"simplebench/internal/cpu"
	"simplebench/internal/measure"
	"simplebench/internal/progress"
	"simplebench/internal/registry"
)

// Environment contract between the orchestrator and its worker children.
const (
	// EnvBenchFilter names the single benchmark the child must run.
	EnvBenchFilter = "SIMPLEBENCH_BENCH_FILTER"
	// EnvPinCore is the core index the child pins itself to.
	EnvPinCore = "SIMPLEBENCH_PIN_CORE"
)

// WorkerResult is the single JSON object a worker child emits on stdout
// when its measurement completes.
type WorkerResult struct {
	Name       string         `json:"name"`
	Group      string         `json:"group"`
	Samples    []uint64       `json:"samples"`
	CPUSamples []cpu.Snapshot `json:"cpu_samples"`
	WarmupMs   uint64         `json:"warmup_ms"`
	Iterations uint64         `json:"iterations"`
}

// RunWorker is the child-side entry point: it reads the contract from the
// environment, pins to the requested core, measures the one named
// benchmark, and writes the result object to stdout. Progress goes to
// stderr unless quiet suppresses it.
func RunWorker(samples int, warmup time.Duration, quiet bool) error {
	return runWorker(os.Stdout, os.Stderr, samples, warmup, quiet)
}

func runWorker(stdout, stderr io.Writer, samples int, warmup time.Duration, quiet bool) error {
	name := os.Getenv(EnvBenchFilter)
	if name == "" {
		return fmt.Errorf("%s not set", EnvBenchFilter)
	}
	bench, ok := registry.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown benchmark %q", name)
	}

	core := 1
	if v := os.Getenv(EnvPinCore); v != "" {
		parsed, err := parseCore(v)
		if err != nil {
			return err
		}
		core = parsed
	}
	if err := pinToCore(core); err != nil {
		// Unpinned timings are still timings; report and continue.
		fmt.Fprintf(stderr, "warning: failed to pin to core %d: %v\n", core, err)
	}

	engine := measure.New(cpu.NewMonitor(core), progress.NewEmitter(stderr, quiet))
	res := engine.Run(bench.Name, bench.Sampler, measure.Options{
		Samples: samples,
		Warmup:  warmup,
	})

	out := WorkerResult{
		Name:       bench.Name,
		Group:      bench.Group,
		Samples:    res.Samples,
		CPUSamples: res.CPUSamples,
		WarmupMs:   res.WarmupMs,
		Iterations: res.WarmupIterations,
	}
	enc := json.NewEncoder(stdout)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

func parseCore(v string) (int, error) {
	var core int
	if _, err := fmt.Sscanf(v, "%d", &core); err != nil || core < 0 {
		return 0, fmt.Errorf("invalid %s value %q", EnvPinCore, v)
	}
	return core, nil
}

// ParseResult decodes the one JSON object a worker wrote to stdout.
func ParseResult(stdout []byte) (WorkerResult, error) {
	var res WorkerResult
	if err := json.Unmarshal(stdout, &res); err != nil {
		return WorkerResult{}, fmt.Errorf("malformed worker output: %w", err)
	}
	if res.Name == "" || len(res.Samples) == 0 {
		return WorkerResult{}, fmt.Errorf("worker output missing name or samples")
	}
	return res, nil
}
