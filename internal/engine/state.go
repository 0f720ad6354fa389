package engine

import (
	"github.com/inipp/inipp/internal/diag"
	"github.com/inipp/inipp/internal/expr"
	"github.com/inipp/inipp/internal/scope"
	"github.com/inipp/inipp/internal/splitter"
	"github.com/inipp/inipp/internal/subst"
	"github.com/inipp/inipp/internal/value"
)

// buildEntry is one (section-name, section) pair on the insertion-ordered
// build list. section is a live map: later
// resolution steps (expr's set() callback, Finalizer merges) mutate it in
// place.
type buildEntry struct {
	name    string
	section map[string]value.Value
}

// parseState holds everything shared across a single Build call: the
// template/mixin registry, the scope arena, the expression interpreter,
// and the in-progress build list. One parseState is created per Build.
type parseState struct {
	opts     Options
	reader   Reader
	diag     diag.Handler
	provider DataProvider

	arena *scope.Arena
	reg   *registry
	interp *expr.Interpreter

	buildList []buildEntry

	// included tracks (path, fingerprint) pairs already processed, keyed
	// by path then fingerprint.
	included map[string]map[uint64]bool

	// fileStack supports include-cycle detection: a path already on the
	// stack would recurse back into itself.
	fileStack []string

	// incSeq keeps pending auto-increment key placeholders distinct until
	// the Finalizer assigns real indices.
	incSeq int

	counts diag.Counts
}

func newParseState(cfg Config) *parseState {
	p := &parseState{
		opts:     cfg.Options,
		reader:   cfg.Reader,
		provider: cfg.Provider,
		arena:    scope.NewArena(),
		reg:      newRegistry(),
		included: make(map[string]map[uint64]bool),
	}
	if cfg.Diag != nil {
		p.diag = &countingPassthrough{next: cfg.Diag, counts: &p.counts}
	} else {
		p.diag = &countingPassthrough{next: diag.Discard{}, counts: &p.counts}
	}
	if p.provider == nil {
		p.provider = NullProvider{}
	}
	p.interp = expr.NewInterpreter(&engineHost{p: p})
	return p
}

// countingPassthrough tallies warnings/errors into the parseState's own
// Counts while still forwarding to the caller's handler, so Build can
// report totals without requiring the caller to use diag.CountingHandler
// itself.
type countingPassthrough struct {
	next   diag.Handler
	counts *diag.Counts
}

func (c *countingPassthrough) OnWarning(path, message string) {
	c.counts.Warnings++
	c.next.OnWarning(path, message)
}

func (c *countingPassthrough) OnError(path, message string) {
	c.counts.Errors++
	c.next.OnError(path, message)
}

func (p *parseState) sectionByName(name string) (map[string]value.Value, bool) {
	for i := len(p.buildList) - 1; i >= 0; i-- {
		if p.buildList[i].name == name {
			return p.buildList[i].section, true
		}
	}
	return nil, false
}

func combinedLookup(lookups ...subst.Lookup) subst.Lookup {
	return func(name string) (value.Value, bool) {
		for _, l := range lookups {
			if l == nil {
				continue
			}
			if v, ok := l(name); ok {
				return v, true
			}
		}
		return value.Value{}, false
	}
}

// splitRaw wraps splitter.Split for readability at call sites.
func splitRaw(raw string, considerInline bool) (value.Value, []splitter.InlineParam) {
	return splitter.Split(raw, considerInline)
}
