package progress

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitAndParseRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf, false)

	e.Emit(Message{Bench: "sort_ints", Phase: PhaseWarmup, ElapsedMs: 120, TargetMs: 3000})
	e.Emit(Message{Bench: "sort_ints", Phase: PhaseSamples, Current: 57, Total: 200})
	e.Emit(Message{Bench: "sort_ints", Phase: PhaseComplete})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	msg, ok := Parse(lines[0])
	require.True(t, ok)
	assert.Equal(t, PhaseWarmup, msg.Phase)
	assert.Equal(t, uint64(120), msg.ElapsedMs)
	assert.Equal(t, uint64(3000), msg.TargetMs)

	msg, ok = Parse(lines[1])
	require.True(t, ok)
	assert.Equal(t, PhaseSamples, msg.Phase)
	assert.Equal(t, uint32(57), msg.Current)
	assert.Equal(t, uint32(200), msg.Total)

	msg, ok = Parse(lines[2])
	require.True(t, ok)
	assert.Equal(t, PhaseComplete, msg.Phase)
	assert.Equal(t, "sort_ints", msg.Bench)
}

func TestEmitWireShape(t *testing.T) {
	var buf bytes.Buffer
	NewEmitter(&buf, false).Emit(Message{Bench: "b", Phase: PhaseWarmup, ElapsedMs: 1, TargetMs: 2})

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	_, ok := raw["progress"]
	assert.True(t, ok, "messages must be wrapped in a progress envelope")
}

func TestQuietEmitterWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	NewEmitter(&buf, true).Emit(Message{Bench: "b", Phase: PhaseComplete})
	assert.Zero(t, buf.Len())

	// Nil emitter must also be safe.
	var e *Emitter
	e.Emit(Message{Bench: "b", Phase: PhaseComplete})
}

func TestParseDiagnosticLines(t *testing.T) {
	for _, line := range []string{
		"warning: governor is not performance",
		"",
		"{not json",
		`{"other": 1}`,
		`{"progress": null}`,
	} {
		_, ok := Parse(line)
		assert.False(t, ok, "line %q should be treated as a diagnostic", line)
	}
}

func TestDisplayClearsLine(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(&buf, false)
	d.Update(Message{Bench: "b", Phase: PhaseSamples, Current: 1, Total: 10})
	d.Finish()
	assert.Contains(t, buf.String(), "\r")

	// Quiet display writes nothing.
	buf.Reset()
	q := NewDisplay(&buf, true)
	q.Update(Message{Bench: "b", Phase: PhaseSamples})
	q.Finish()
	assert.Zero(t, buf.Len())
}
