//go:build linux

package orchestrator

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore binds the calling thread to one core so frequency telemetry
// reads the core the workload actually runs on. The goroutine is locked to
// its OS thread first; it stays locked for the life of the worker process.
func pinToCore(core int) error {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return unix.SchedSetaffinity(0, &set)
}
