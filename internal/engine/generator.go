package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inipp/inipp/internal/scope"
	"github.com/inipp/inipp/internal/value"
)

// runGenerator expands one @GENERATOR[_…]=Template, N1, N2, … line found
// in a template/mixin body into N1×N2×… sections, each built from Template
// with the loop indices exposed as variables "1", "2", …. Iterations
// append in lexicographic order over (i1, i2, …). Parameter lines of the
// form "<generator-key>: name = value"
// elsewhere in def, plus inline "k=v" pairs on the directive itself, are
// passed into every generated section.
func (p *parseState) runGenerator(def *definition, kv rawKV, lookup func(string) (value.Value, bool), fileScope scope.Handle, path string) {
	var startKV *rawKV
	if s, ok := findKV(def.keys, keyGenStart); ok {
		startKV = &s
	}
	var paramLines []rawKV
	for _, line := range def.keys {
		if genKey, param, ok := splitGeneratorParam(line.key); ok && genKey == kv.key {
			paramLines = append(paramLines, rawKV{key: param, raw: line.raw})
		}
	}
	p.runGeneratorDirective(kv, paramLines, startKV, lookup, fileScope, path)
}

// runBodyGenerator handles @GENERATOR lines written directly in a section
// body (including the bare "[@GENERATOR=...]" header shorthand). Parameter
// lines and @GENERATOR_STARTING_INDEX come from the enclosing builder.
func (p *parseState) runBodyGenerator(b *sectionBuilder, kv rawKV, lookup func(string) (value.Value, bool), fileScope scope.Handle, path string) {
	var startKV *rawKV
	if v, ok := b.result[keyGenStart]; ok {
		startKV = &rawKV{key: keyGenStart, raw: v.Pieces()}
	}
	p.runGeneratorDirective(kv, b.genParams[kv.key], startKV, lookup, fileScope, path)
}

func (p *parseState) runGeneratorDirective(kv rawKV, paramLines []rawKV, startKV *rawKV, lookup func(string) (value.Value, bool), fileScope scope.Handle, path string) {
	resolved, _, _ := p.resolveValue(value.New(kv.raw...), lookup, true, path)
	pieces := resolved.Pieces()
	if len(pieces) < 2 {
		p.diag.OnError(path, fmt.Sprintf("%v: %s", ErrBadGenerator, kv.key))
		return
	}
	templateName := pieces[0]
	dims, err := generatorIndices(pieces[1:])
	if err != nil {
		p.diag.OnError(path, err.Error())
		return
	}

	starts := make([]int, len(dims))
	for i := range starts {
		starts[i] = 1
	}
	if startKV != nil {
		resolvedStart, _, _ := p.resolveValue(value.New(startKV.raw...), lookup, true, path)
		for i, piece := range resolvedStart.Pieces() {
			if i >= len(starts) {
				break
			}
			if n, err := strconv.Atoi(strings.TrimSpace(piece)); err == nil {
				starts[i] = n
			}
		}
	}

	tplDef, ok := p.reg.template(templateName)
	if !ok {
		p.diag.OnError(path, fmt.Sprintf("%v: %s", ErrUnknownTemplate, templateName))
		return
	}

	overrides := make(map[string]value.Value)
	for _, line := range paramLines {
		v, _, drop := p.resolveValue(value.New(line.raw...), lookup, true, path)
		if drop {
			continue
		}
		overrides[line.key] = v
	}
	for _, ip := range kv.inline {
		v, _, drop := p.resolveValue(value.Single(ip.Value), lookup, true, path)
		if drop {
			continue
		}
		overrides[ip.Key] = v
	}

	indices := make([]int, len(dims))
	copy(indices, starts)
	p.iterateGenerator(dims, starts, indices, 0, tplDef, overrides, fileScope, path)
}

func (p *parseState) iterateGenerator(dims, starts, indices []int, pos int, tplDef *definition, overrides map[string]value.Value, fileScope scope.Handle, path string) {
	if pos == len(dims) {
		p.buildGeneratedSection(tplDef, indices, overrides, fileScope, path)
		return
	}
	for i := 0; i < dims[pos]; i++ {
		indices[pos] = starts[pos] + i
		p.iterateGenerator(dims, starts, indices, pos+1, tplDef, overrides, fileScope, path)
	}
}

func (p *parseState) buildGeneratedSection(tplDef *definition, indices []int, overrides map[string]value.Value, fileScope scope.Handle, path string) {
	b := p.newSectionBuilder(fileScope, "", []string{tplDef.name})
	for k, v := range overrides {
		b.explicit[k] = v
	}
	for i, idx := range indices {
		b.explicit[strconv.Itoa(i+1)] = value.Single(strconv.Itoa(idx))
	}
	p.closeSection(b, fileScope, path)
}
