// Package diag implements the injected error handler: warning and error
// callbacks, plus a lipgloss-styled stderr sink for the CLI.
package diag

import (
	"fmt"
	"io"
)

// Handler receives warnings and errors as the parser encounters them.
// The core never panics
// or returns an error across its own API boundary; it reports through this
// interface and keeps its own counts.
type Handler interface {
	OnWarning(path, message string)
	OnError(path, message string)
}

// Counts tracks how many warnings/errors a Handler has seen, which the CLI
// maps onto exit codes.
type Counts struct {
	Warnings int
	Errors   int
}

// ExitCode maps accumulated counts onto the documented exit codes. Errors
// take priority over warnings when both occurred.
func (c Counts) ExitCode() int {
	switch {
	case c.Errors > 0:
		return 2
	case c.Warnings > 0:
		return 1
	default:
		return 0
	}
}

// CountingHandler wraps another Handler and tallies every call, so the
// CLI can compute an exit code without the handler itself tracking state.
type CountingHandler struct {
	Next   Handler
	Counts Counts
}

func (h *CountingHandler) OnWarning(path, message string) {
	h.Counts.Warnings++
	if h.Next != nil {
		h.Next.OnWarning(path, message)
	}
}

func (h *CountingHandler) OnError(path, message string) {
	h.Counts.Errors++
	if h.Next != nil {
		h.Next.OnError(path, message)
	}
}

// Discard is a Handler that reports nothing.
type Discard struct{}

func (Discard) OnWarning(string, string) {}
func (Discard) OnError(string, string)   {}

// WriterHandler reports warnings and errors as styled lines to an
// io.Writer (stderr in the CLI). Verbose controls whether warnings are
// emitted at all; errors always print.
type WriterHandler struct {
	Out     io.Writer
	Verbose bool
}

func (h *WriterHandler) OnWarning(path, message string) {
	if !h.Verbose {
		return
	}
	fmt.Fprintln(h.Out, warningStyle.Render(fmt.Sprintf("warning: %s: %s", path, message)))
}

func (h *WriterHandler) OnError(path, message string) {
	fmt.Fprintln(h.Out, errorStyle.Render(fmt.Sprintf("error: %s: %s", path, message)))
}
