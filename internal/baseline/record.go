// Package baseline persists benchmark runs as JSON records under a
// per-machine directory tree and reads them back for comparison. Records
// are append-only: a run is never rewritten once saved.
package baseline

import (
	"time"

	"simplebench/internal/cpu"
	"simplebench/internal/stats"
)

// timestampLayout names record files. It is UTC with dashes in place of
// colons so filenames sort lexicographically by time and stay legal on
// every filesystem.
const timestampLayout = "2006-01-02T15-04-05"

// RunRecord is one persisted benchmark run.
type RunRecord struct {
	BenchmarkName string         `json:"benchmark_name"`
	Module        string         `json:"module"`
	Timestamp     time.Time      `json:"timestamp"`
	Samples       []uint64       `json:"samples"`
	Statistics    stats.Summary  `json:"statistics"`
	Iterations    uint64         `json:"iterations"`
	MachineID     string         `json:"machine_id"`
	CPUSamples    []cpu.Snapshot `json:"cpu_samples,omitempty"`
	WasRegression bool           `json:"was_regression"`
}

// Key is the record's store identity, "<module>_<benchmark_name>".
func (r RunRecord) Key() string {
	return r.Module + "_" + r.BenchmarkName
}

// FileStamp renders the record's timestamp in the filename layout.
func (r RunRecord) FileStamp() string {
	return r.Timestamp.UTC().Format(timestampLayout)
}
