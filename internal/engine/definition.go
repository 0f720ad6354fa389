package engine

import (
	"github.com/inipp/inipp/internal/scope"
	"github.com/inipp/inipp/internal/splitter"
)

// rawKV is a (key, raw-value-text) pair as written in source, still
// carrying any deferred missing-variable/expression wraps — resolution
// happens when the definition is applied to a concrete section. inline
// carries the "k=v" sub-pairs split out of @MIXIN/@ values.
type rawKV struct {
	key    string
	raw    []string // pieces, each possibly wrapped (markers package)
	inline []splitter.InlineParam
}

// definition is the shared record for both Template and Mixin,
// differing only in how they are referenced and applied.
type definition struct {
	name         string
	kind         headerKind // kindTemplate or kindMixin
	keys         []rawKV
	definedScope scope.Handle
	extends      []string
	earlyResolve bool
}

// registry holds every template and mixin defined during a parse, indexed
// by name within its own namespace; templates and mixins never collide
// since they're looked up through distinct headerSpec kinds.
type registry struct {
	templates map[string]*definition
	mixins    map[string]*definition
}

func newRegistry() *registry {
	return &registry{
		templates: make(map[string]*definition),
		mixins:    make(map[string]*definition),
	}
}

func (r *registry) define(d *definition) {
	if d.kind == kindTemplate {
		r.templates[d.name] = d
	} else {
		r.mixins[d.name] = d
	}
}

func (r *registry) template(name string) (*definition, bool) {
	d, ok := r.templates[name]
	return d, ok
}

func (r *registry) mixin(name string) (*definition, bool) {
	d, ok := r.mixins[name]
	return d, ok
}
