// Package scope implements hierarchical variable lookup:
// four precedence tiers per scope, a parent chain searched
// tier-by-tier before moving to the next tier, and sibling fallbacks
// consulted only once the whole parent chain is exhausted.
//
// Scopes live in an arena indexed by a
// handle rather than being individually reference-counted: the arena grows
// monotonically during a parse and is dropped with the parser.
package scope

import "github.com/inipp/inipp/internal/value"

// Handle indexes a scope record in an Arena, starting at 0; -1 means no scope.
type Handle int

const none Handle = -1

// Tier names a precedence tier, in the order they are searched.
type Tier int

const (
	Explicit Tier = iota
	Section
	IncludeParams
	Defaults
	tierCount
)

type record struct {
	tiers     [tierCount]*map[string]value.Value
	parent    Handle
	fallbacks []Handle
}

// Arena owns every scope created during a single parse.
type Arena struct {
	records []record
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Root creates a scope with no parent. Any tier map left nil behaves as
// empty for lookup purposes.
func (a *Arena) Root(explicit, section, includeParams, defaults map[string]value.Value) Handle {
	return a.new(none, explicit, section, includeParams, defaults)
}

// Child creates a scope whose parent chain is rooted at parent.
func (a *Arena) Child(parent Handle, explicit, section, includeParams, defaults map[string]value.Value) Handle {
	return a.new(parent, explicit, section, includeParams, defaults)
}

func (a *Arena) new(parent Handle, explicit, section, includeParams, defaults map[string]value.Value) Handle {
	r := record{parent: parent}
	r.tiers[Explicit] = mapPtr(explicit)
	r.tiers[Section] = mapPtr(section)
	r.tiers[IncludeParams] = mapPtr(includeParams)
	r.tiers[Defaults] = mapPtr(defaults)
	a.records = append(a.records, r)
	return Handle(len(a.records) - 1)
}

func mapPtr(m map[string]value.Value) *map[string]value.Value {
	if m == nil {
		return nil
	}
	return &m
}

// SetFallbacks installs zero or more sibling scopes to be consulted after
// h's own parent chain is exhausted across every tier.
func (a *Arena) SetFallbacks(h Handle, fallbacks ...Handle) {
	a.records[h].fallbacks = fallbacks
}

// SectionMap returns the live map backing h's own Section tier, creating one
// if the scope was built without one. Callers use this to add keys to "the
// section currently being built" as resolution progresses;
// this is the one tier that is legitimately mutated after scope creation,
// since it models in-progress construction rather than an installed parent.
func (a *Arena) SectionMap(h Handle) map[string]value.Value {
	r := &a.records[h]
	if r.tiers[Section] == nil {
		m := make(map[string]value.Value)
		r.tiers[Section] = &m
	}
	return *r.tiers[Section]
}

// Lookup resolves name starting at h: within each tier (Explicit, Section,
// IncludeParams, Defaults in that order) the whole parent chain is searched
// before moving to the next tier; only once every tier has failed across
// the entire chain are h's fallback scopes consulted (recursively, in the
// same fashion).
func (a *Arena) Lookup(h Handle, name string) (value.Value, bool) {
	if h == none {
		return value.Value{}, false
	}
	chain := a.chain(h)
	for tier := Tier(0); tier < tierCount; tier++ {
		for _, s := range chain {
			if m := a.records[s].tiers[tier]; m != nil {
				if v, ok := (*m)[name]; ok {
					return v, true
				}
			}
		}
	}
	for _, fb := range a.records[h].fallbacks {
		if v, ok := a.Lookup(fb, name); ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// chain returns h and every ancestor up to (and including) the root, in
// that order.
func (a *Arena) chain(h Handle) []Handle {
	var out []Handle
	for h != none {
		out = append(out, h)
		h = a.records[h].parent
	}
	return out
}
