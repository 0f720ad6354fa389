package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/inipp/inipp/internal/markers"
	"github.com/inipp/inipp/internal/scope"
	"github.com/inipp/inipp/internal/value"
)

const (
	keyOutput        = "@OUTPUT"
	keyActive        = "@ACTIVE"
	keySectionActive = "ACTIVE"
	keyTarget        = "TARGET"
	keyGenStart      = "@GENERATOR_STARTING_INDEX"
)

func isMixinKey(key string) bool {
	return key == "@MIXIN" || key == "@" || strings.HasPrefix(key, "@MIXIN_")
}

func isGeneratorKey(key string) bool {
	return (key == "@GENERATOR" || strings.HasPrefix(key, "@GENERATOR_")) &&
		key != keyGenStart && !strings.Contains(key, ":")
}

// splitGeneratorParam recognizes a "NAME: key" parameter line, where NAME
// matches a generator key: its value becomes a parameter passed into each
// section that generator emits.
func splitGeneratorParam(key string) (genKey, param string, ok bool) {
	idx := strings.IndexByte(key, ':')
	if idx < 0 {
		return "", "", false
	}
	g := strings.TrimSpace(key[:idx])
	if !isGeneratorKey(g) {
		return "", "", false
	}
	return g, strings.TrimSpace(key[idx+1:]), true
}

// sectionBuilder accumulates one in-progress section body: its own raw
// key=value lines plus the template references from its header spec.
// Multiple sections sharing one header body ("[A, B]") each get their own
// builder but see the same Assignment events.
type sectionBuilder struct {
	name         string
	templateRefs []string
	explicit     map[string]value.Value // inline overrides (e.g. from @MIXIN=Name, k=v)
	result       map[string]value.Value // the section under construction
	mixinRefs    []rawKV                // body-level @MIXIN/@ lines, applied at close
	genRefs      []rawKV                // body-level @GENERATOR lines, run at close
	genParams    map[string][]rawKV     // "NAME: key = value" parameter lines per generator key
	h          scope.Handle
	isDefaults bool // true for a literal [DEFAULTS] section
}

func (p *parseState) newSectionBuilder(fileScope scope.Handle, name string, refs []string) *sectionBuilder {
	b := &sectionBuilder{
		name:         name,
		templateRefs: refs,
		explicit:     make(map[string]value.Value),
		result:       make(map[string]value.Value),
	}
	b.h = p.arena.Child(fileScope, b.explicit, b.result, nil, nil)
	return b
}

// assignToBuilder records one body key=value line: @MIXIN/@GENERATOR lines
// and generator parameter lines are deferred for resolution at close;
// everything else lands in the builder's result map (raw, unsubstituted —
// the final pass at close resolves it).
func (p *parseState) assignToBuilder(b *sectionBuilder, key, raw string) {
	considerInline := isMixinKey(key) || isGeneratorKey(key)
	v, inline := splitRaw(raw, considerInline)
	switch {
	case isMixinKey(key):
		b.mixinRefs = append(b.mixinRefs, rawKV{key: key, raw: v.Pieces(), inline: inline})
	case isGeneratorKey(key):
		b.genRefs = append(b.genRefs, rawKV{key: key, raw: v.Pieces(), inline: inline})
	default:
		if genKey, param, ok := splitGeneratorParam(key); ok {
			if b.genParams == nil {
				b.genParams = make(map[string][]rawKV)
			}
			b.genParams[genKey] = append(b.genParams[genKey], rawKV{key: param, raw: v.Pieces()})
			return
		}
		if base, seq := isSequential(key); seq {
			p.incSeq++
			key = markers.WrapInc(base, p.incSeq)
		}
		b.result[key] = v
	}
}

// closeSection resolves a finished section body — templates, mixins, the
// final substitution pass, generators, the ACTIVE gate — and appends the
// result to the build list, unless it was dropped.
func (p *parseState) closeSection(b *sectionBuilder, fileScope scope.Handle, path string) {
	if b.name != "" {
		if _, ok := b.explicit[keyTarget]; !ok {
			b.explicit[keyTarget] = value.Single(b.name)
		}
	}

	var referenced []string
	written := make(map[string]bool)
	for k := range b.result {
		written[k] = true
	}

	for _, refName := range b.templateRefs {
		def, ok := p.reg.template(refName)
		if !ok {
			// A bare "[Name]" header with no matching template is just a
			// plain section; only a genuine "[Actual: Tpl]"/"[: Tpl]" form
			// that fails to resolve is a real error.
			if len(b.templateRefs) == 1 && b.name == refName {
				continue
			}
			p.diag.OnError(path, fmt.Sprintf("%v: %s", ErrUnknownTemplate, refName))
			continue
		}
		p.applyDefinition(def, b, fileScope, nil, written, &referenced, path, make(map[string]bool))
	}

	if b.name == "" {
		if out, ok := b.result[keyOutput]; ok {
			name := out.First()
			resolved, _, _ := p.resolveValue(out, p.lookupFor(b, fileScope), true, path)
			if resolved.Len() > 0 {
				name = resolved.First()
			}
			b.name = name
			b.explicit[keyTarget] = value.Single(name)
		}
	}

	lookup := p.lookupFor(b, fileScope)

	for _, kv := range b.mixinRefs {
		p.applyMixinRef(kv, lookup, b, fileScope, written, &referenced, path, make(map[string]bool))
	}

	keys := make([]string, 0, len(b.result))
	for key := range b.result {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if key == keyOutput || key == keyTarget || key == keyGenStart {
			continue
		}
		resolved, refs, drop := p.resolveValue(b.result[key], lookup, true, path)
		referenced = append(referenced, refs...)
		if drop {
			delete(b.result, key)
			continue
		}
		b.result[key] = resolved
	}

	for _, kv := range b.genRefs {
		p.runBodyGenerator(b, kv, lookup, fileScope, path)
	}

	if active, ok := b.result[keySectionActive]; ok {
		if !active.Bool() {
			if p.opts.IgnoreInactive {
				return
			}
			b.result = map[string]value.Value{keySectionActive: value.Single("0")}
		}
	}

	if p.opts.EraseReferenced {
		for _, name := range referenced {
			delete(b.result, name)
		}
	}

	delete(b.result, keyOutput)
	delete(b.result, keyGenStart)

	// A nameless builder with nothing left to say (e.g. the bare
	// "[@GENERATOR=...]" header shorthand) contributes no entry of its own.
	if b.name == "" && len(b.result) == 0 {
		return
	}
	p.buildList = append(p.buildList, buildEntry{name: b.name, section: b.result})
}

func (p *parseState) lookupFor(b *sectionBuilder, fileScope scope.Handle) func(name string) (value.Value, bool) {
	return func(name string) (value.Value, bool) {
		return p.arena.Lookup(b.h, name)
	}
}

// applyDefinition walks def's extends chain depth-first, then def's own
// key list, writing each non-special key into b.result unless already
// written this resolution pass. visiting guards
// against an extends/mixin cycle.
func (p *parseState) applyDefinition(def *definition, b *sectionBuilder, fileScope scope.Handle, overrides map[string]value.Value, written map[string]bool, referenced *[]string, path string, visiting map[string]bool) {
	if visiting[def.name] {
		p.diag.OnError(path, fmt.Sprintf("%v: %s", ErrCycleDetected, def.name))
		return
	}
	visiting[def.name] = true
	defer delete(visiting, def.name)

	defScopeFallback := func(name string) (value.Value, bool) {
		return p.arena.Lookup(def.definedScope, name)
	}
	lookup := combinedLookup(func(name string) (value.Value, bool) {
		if overrides != nil {
			if v, ok := overrides[name]; ok {
				return v, true
			}
		}
		return p.arena.Lookup(b.h, name)
	}, defScopeFallback)

	if active, ok := findKV(def.keys, keyActive); ok {
		v, _, _ := p.resolveValue(value.New(active.raw...), lookup, true, path)
		if !v.Bool() && v.Len() > 0 {
			return
		}
	}

	for _, parent := range def.extends {
		pd, ok := p.reg.template(parent)
		if !ok {
			pd, ok = p.reg.mixin(parent)
		}
		if !ok {
			p.diag.OnError(path, fmt.Sprintf("%v: %s", ErrUnknownTemplate, parent))
			continue
		}
		p.applyDefinition(pd, b, fileScope, overrides, written, referenced, path, visiting)
	}

	for _, kv := range def.keys {
		if _, _, ok := splitGeneratorParam(kv.key); ok {
			continue // consumed by runGenerator
		}
		switch {
		case kv.key == keyActive || kv.key == keyTarget || kv.key == keyGenStart:
			continue
		case kv.key == keyOutput:
			if b.name == "" {
				resolved, _, _ := p.resolveValue(value.New(kv.raw...), lookup, true, path)
				if resolved.Len() > 0 {
					b.name = resolved.First()
					b.explicit[keyTarget] = value.Single(b.name)
				}
			}
			continue
		case isGeneratorKey(kv.key):
			p.runGenerator(def, kv, lookup, fileScope, path)
			continue
		case isMixinKey(kv.key):
			p.applyMixinRef(kv, lookup, b, fileScope, written, referenced, path, visiting)
			continue
		}

		keyName := kv.key
		if strings.Contains(keyName, "$") {
			resolvedName, _, _ := p.resolveValue(value.Single(keyName), lookup, true, path)
			if resolvedName.Len() > 0 {
				keyName = resolvedName.First()
			}
		}
		if base, seq := isSequential(keyName); seq {
			p.incSeq++
			keyName = markers.WrapInc(base, p.incSeq)
		}
		if written[keyName] {
			continue
		}
		resolved, refs, drop := p.resolveValue(value.New(kv.raw...), lookup, false, path)
		*referenced = append(*referenced, refs...)
		if drop {
			continue
		}
		b.result[keyName] = resolved
		written[keyName] = true
	}
}

func findKV(keys []rawKV, name string) (rawKV, bool) {
	for _, kv := range keys {
		if kv.key == name {
			return kv, true
		}
	}
	return rawKV{}, false
}

// applyMixinRef resolves and applies one @MIXIN/@ reference: the first
// piece of its value names the mixin, remaining inline "k=v" pairs become
// tier-1 overrides for the duration of the application.
func (p *parseState) applyMixinRef(kv rawKV, lookup func(string) (value.Value, bool), b *sectionBuilder, fileScope scope.Handle, written map[string]bool, referenced *[]string, path string, visiting map[string]bool) {
	if len(kv.raw) == 0 {
		return
	}
	mixinName := kv.raw[0]
	if strings.Contains(mixinName, "$") {
		resolved, _, _ := p.resolveValue(value.Single(mixinName), lookup, true, path)
		if resolved.Len() > 0 {
			mixinName = resolved.First()
		}
	}
	def, ok := p.reg.mixin(mixinName)
	if !ok {
		p.diag.OnError(path, fmt.Sprintf("%v: %s", ErrUnknownMixin, mixinName))
		return
	}
	overrides := make(map[string]value.Value)
	for _, ip := range kv.inline {
		v, _, drop := p.resolveValue(value.Single(ip.Value), lookup, true, path)
		if drop {
			continue
		}
		overrides[ip.Key] = v
	}
	p.applyDefinition(def, b, fileScope, overrides, written, referenced, path, visiting)
}

// generatorIndices parses "N1, N2, …" operand pieces into integer
// dimension sizes.
func generatorIndices(pieces []string) ([]int, error) {
	dims := make([]int, 0, len(pieces))
	for _, p := range pieces {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadGenerator, p)
		}
		dims = append(dims, n)
	}
	return dims, nil
}
