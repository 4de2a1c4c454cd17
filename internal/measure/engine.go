// Package measure drives the hot loop of a benchmark run: a time-budgeted
// warmup followed by a fixed number of timed samples, each bracketed by CPU
// frequency readings so later analysis can correlate timings with clock
// behavior.
package measure

import (
	"time"

	"simplebench/internal/cpu"
	"simplebench/internal/progress"
)

// warmupReportInterval throttles warmup progress so a fast body does not
// flood stderr.
const warmupReportInterval = 100 * time.Millisecond

// Options configures one measurement.
type Options struct {
	// Samples is the number of timed invocations to record.
	Samples int
	// Warmup is the wall-time budget spent running the body untimed before
	// sampling starts. Zero skips warmup entirely.
	Warmup time.Duration
}

// Result carries everything one measurement produced. Samples and
// CPUSamples are index-aligned.
type Result struct {
	Samples          []uint64
	CPUSamples       []cpu.Snapshot
	WarmupMs         uint64
	WarmupIterations uint64
}

// Engine runs samplers under a CPU monitor, reporting progress as it goes.
type Engine struct {
	monitor cpu.Monitor
	emitter *progress.Emitter
}

// New returns an Engine. monitor must be non-nil; emitter may be nil to
// suppress progress.
func New(monitor cpu.Monitor, emitter *progress.Emitter) *Engine {
	return &Engine{monitor: monitor, emitter: emitter}
}

// Run warms up and then samples the given body. name is only used to label
// progress messages.
func (e *Engine) Run(name string, sample Sampler, opts Options) Result {
	var res Result

	if opts.Warmup > 0 {
		res.WarmupMs, res.WarmupIterations = e.warmup(name, sample, opts.Warmup)
	}

	if opts.Samples <= 0 {
		e.emitter.Emit(progress.Message{Bench: name, Phase: progress.PhaseComplete})
		return res
	}

	reportEvery := opts.Samples / 100
	if reportEvery < 1 {
		reportEvery = 1
	}

	res.Samples = make([]uint64, 0, opts.Samples)
	res.CPUSamples = make([]cpu.Snapshot, 0, opts.Samples)

	for i := 0; i < opts.Samples; i++ {
		before := cpu.ReadFrequencyPtr(e.monitor)
		ns := sample()
		after := cpu.ReadFrequencyPtr(e.monitor)

		res.Samples = append(res.Samples, ns)
		res.CPUSamples = append(res.CPUSamples, cpu.TakeSnapshot(e.monitor, before, after))

		if (i+1)%reportEvery == 0 {
			e.emitter.Emit(progress.Message{
				Bench:   name,
				Phase:   progress.PhaseSamples,
				Current: uint32(i + 1),
				Total:   uint32(opts.Samples),
			})
		}
	}

	e.emitter.Emit(progress.Message{Bench: name, Phase: progress.PhaseComplete})
	return res
}

// warmup runs the body until the budget elapses, reporting at most every
// warmupReportInterval. It returns the actual elapsed milliseconds and the
// iteration count.
func (e *Engine) warmup(name string, sample Sampler, budget time.Duration) (uint64, uint64) {
	start := time.Now()
	lastReport := start
	var iterations uint64

	for {
		elapsed := time.Since(start)
		if elapsed >= budget {
			break
		}
		sample()
		iterations++

		if now := time.Now(); now.Sub(lastReport) >= warmupReportInterval {
			e.emitter.Emit(progress.Message{
				Bench:     name,
				Phase:     progress.PhaseWarmup,
				ElapsedMs: uint64(now.Sub(start).Milliseconds()),
				TargetMs:  uint64(budget.Milliseconds()),
			})
			lastReport = now
		}
	}

	return uint64(time.Since(start).Milliseconds()), iterations
}
