package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestCountingHandler_ExitCode(t *testing.T) {
	cases := []struct {
		name     string
		warnings int
		errors   int
		want     int
	}{
		{"clean", 0, 0, 0},
		{"warnings only", 2, 0, 1},
		{"errors take priority", 1, 1, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := &CountingHandler{Next: Discard{}}
			for i := 0; i < c.warnings; i++ {
				h.OnWarning("f.ini", "missing variable")
			}
			for i := 0; i < c.errors; i++ {
				h.OnError("f.ini", "syntax error")
			}
			if got := h.Counts.ExitCode(); got != c.want {
				t.Fatalf("ExitCode() = %d, want %d", got, c.want)
			}
		})
	}
}

func TestWriterHandler_NonVerboseSuppressesWarnings(t *testing.T) {
	var buf bytes.Buffer
	h := &WriterHandler{Out: &buf, Verbose: false}
	h.OnWarning("f.ini", "missing variable")
	if buf.Len() != 0 {
		t.Fatalf("expected no output without -v, got %q", buf.String())
	}
}

func TestWriterHandler_VerboseEmitsWarnings(t *testing.T) {
	var buf bytes.Buffer
	h := &WriterHandler{Out: &buf, Verbose: true}
	h.OnWarning("f.ini", "missing variable")
	if !strings.Contains(buf.String(), "missing variable") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestWriterHandler_ErrorsAlwaysEmit(t *testing.T) {
	var buf bytes.Buffer
	h := &WriterHandler{Out: &buf, Verbose: false}
	h.OnError("f.ini", "syntax error")
	if !strings.Contains(buf.String(), "syntax error") {
		t.Fatalf("got %q", buf.String())
	}
}
