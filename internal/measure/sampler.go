package measure

import "time"

// Sampler runs one timed invocation of a benchmark body and returns the
// elapsed wall time in nanoseconds. Setup work happens outside the timed
// region, so the discipline a benchmark needs is baked in at construction
// and the engine stays oblivious to it.
type Sampler func() uint64

// NoSetup wraps a body that needs no per-run state.
func NoSetup(fn func()) Sampler {
	return func() uint64 {
		start := time.Now()
		fn()
		return uint64(time.Since(start).Nanoseconds())
	}
}

// SetupOnce runs setup a single time, before the first invocation, and
// shares the state across every warmup iteration and sample. The body
// borrows the state and must not consume it.
func SetupOnce[T any](setup func() T, fn func(*T)) Sampler {
	var state *T
	return func() uint64 {
		if state == nil {
			v := setup()
			state = &v
		}
		start := time.Now()
		fn(state)
		return uint64(time.Since(start).Nanoseconds())
	}
}

// SetupEach runs setup before every invocation, outside the timed region,
// and hands the body ownership of a fresh value each time. Use this when
// the body consumes or mutates its input.
func SetupEach[T any](setup func() T, fn func(T)) Sampler {
	return func() uint64 {
		input := setup()
		start := time.Now()
		fn(input)
		return uint64(time.Since(start).Nanoseconds())
	}
}

// SetupEachRef is SetupEach for bodies that only need to borrow the fresh
// value rather than consume it.
func SetupEachRef[T any](setup func() T, fn func(*T)) Sampler {
	return func() uint64 {
		input := setup()
		start := time.Now()
		fn(&input)
		return uint64(time.Since(start).Nanoseconds())
	}
}
