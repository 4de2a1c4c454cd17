// Package progress defines the out-of-band progress protocol between a
// benchmark worker process and the orchestrator: newline-delimited JSON
// envelopes on the worker's stderr, interleavable with free-form diagnostic
// text. Non-JSON lines are diagnostics, not errors.
package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Phase identifies where a benchmark currently is in its lifecycle.
type Phase string

const (
	PhaseWarmup   Phase = "warmup"
	PhaseSamples  Phase = "samples"
	PhaseComplete Phase = "complete"
)

// Message is one progress update for one benchmark.
type Message struct {
	Bench string `json:"bench"`
	Phase Phase  `json:"phase"`

	// Warmup fields.
	ElapsedMs uint64 `json:"elapsed_ms,omitempty"`
	TargetMs  uint64 `json:"target_ms,omitempty"`

	// Sampling fields.
	Current uint32 `json:"current,omitempty"`
	Total   uint32 `json:"total,omitempty"`
}

// envelope wraps messages on the wire so progress is distinguishable from
// other stderr output.
type envelope struct {
	Progress *Message `json:"progress"`
}

// Emitter writes progress envelopes to a stream. A nil or quiet Emitter
// drops everything, so measurement code can emit unconditionally.
type Emitter struct {
	mu    sync.Mutex
	out   io.Writer
	quiet bool
}

// NewEmitter returns an Emitter writing to out. Quiet emitters swallow all
// messages.
func NewEmitter(out io.Writer, quiet bool) *Emitter {
	return &Emitter{out: out, quiet: quiet}
}

// Emit writes one envelope line. Failures are ignored: progress is
// fire-and-forget and must never disturb measurement.
func (e *Emitter) Emit(msg Message) {
	if e == nil || e.quiet || e.out == nil {
		return
	}
	data, err := json.Marshal(envelope{Progress: &msg})
	if err != nil {
		return
	}
	e.mu.Lock()
	fmt.Fprintln(e.out, string(data))
	e.mu.Unlock()
}

// Parse decodes one stderr line into a Message. The second return is false
// for anything that is not a progress envelope — callers treat those lines
// as diagnostics.
func Parse(line string) (Message, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return Message{}, false
	}
	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil || env.Progress == nil {
		return Message{}, false
	}
	if env.Progress.Bench == "" || env.Progress.Phase == "" {
		return Message{}, false
	}
	return *env.Progress, true
}
