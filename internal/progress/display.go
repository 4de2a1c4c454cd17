package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	benchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	phaseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// Display renders a transient single-line status for running benchmarks.
// It rewrites the line in place with carriage returns, so Finish must be
// called before printing anything permanent.
type Display struct {
	out     io.Writer
	quiet   bool
	lastLen int
}

// NewDisplay returns a Display writing to out; quiet displays render nothing.
func NewDisplay(out io.Writer, quiet bool) *Display {
	return &Display{out: out, quiet: quiet}
}

// Update rewrites the status line from msg.
func (d *Display) Update(msg Message) {
	if d == nil || d.quiet {
		return
	}

	var status string
	switch msg.Phase {
	case PhaseWarmup:
		status = fmt.Sprintf("warmup %.1fs / %.1fs",
			float64(msg.ElapsedMs)/1000, float64(msg.TargetMs)/1000)
	case PhaseSamples:
		status = fmt.Sprintf("samples %d/%d", msg.Current, msg.Total)
	case PhaseComplete:
		status = "finishing"
	default:
		return
	}

	line := benchStyle.Render(msg.Bench) + " " + phaseStyle.Render(status)
	d.write(line)
}

// Finish clears the status line so permanent output starts on a clean line.
func (d *Display) Finish() {
	if d == nil || d.quiet || d.lastLen == 0 {
		return
	}
	fmt.Fprintf(d.out, "\r%s\r", strings.Repeat(" ", d.lastLen))
	d.lastLen = 0
}

func (d *Display) write(line string) {
	pad := ""
	if w := lipgloss.Width(line); w < d.lastLen {
		pad = strings.Repeat(" ", d.lastLen-w)
	}
	fmt.Fprintf(d.out, "\r%s%s", line, pad)
	d.lastLen = lipgloss.Width(line)
}
