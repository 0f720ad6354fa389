package engine

import (
	"path/filepath"
	"strings"

	"github.com/inipp/inipp/internal/diag"
	"github.com/inipp/inipp/internal/emit"
	"github.com/inipp/inipp/internal/expr"
	"github.com/inipp/inipp/internal/resolve"
	"github.com/inipp/inipp/internal/scope"
	"github.com/inipp/inipp/internal/token"
	"github.com/inipp/inipp/internal/value"
)

const defaultsSectionName = "DEFAULTS"

// Parser drives a single preprocessing run: tokenizing input, applying
// templates/mixins/generators, following includes, and finalizing the
// result.
type Parser struct {
	cfg Config
}

// NewParser returns a Parser configured with cfg. A zero-value Reader or
// Diag is filled with inert defaults (no reads succeed, no diagnostics
// reported) so callers may omit collaborators they don't need.
func NewParser(cfg Config) *Parser {
	if cfg.Reader == nil {
		cfg.Reader = func(string) (string, bool) { return "", false }
	}
	return &Parser{cfg: cfg}
}

// Build parses the file at rootPath (read through the configured Reader)
// and returns the finalized section map plus accumulated diagnostic
// counts.
func (pr *Parser) Build(rootPath string) (emit.Result, diag.Counts, error) {
	p := newParseState(pr.cfg)
	content, ok := p.reader(rootPath)
	if !ok {
		p.diag.OnWarning(rootPath, "could not read root file")
		content = ""
	}
	root := p.arena.Root(nil, nil, nil, nil)
	p.fileStack = append(p.fileStack, rootPath)
	p.processFile(rootPath, content, root, nil)
	p.fileStack = p.fileStack[:len(p.fileStack)-1]

	result := make(emit.Result)
	finalized := p.finalize()
	for name, sec := range finalized {
		result[name] = emit.Section(sec)
	}
	return result, p.counts, nil
}

type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingTemplateDef
	pendingMixinDef
	pendingIncludeDef
	pendingFunctionDef
)

// processFile scans content as one logical INI file and drives every
// section/template/mixin/include/function it contains. parentScope is the
// scope an including file (or the root) installs for this one; includeParams
// become this file's tier-3 values.
func (p *parseState) processFile(path string, content string, parentScope scope.Handle, includeParams map[string]value.Value) {
	dir := filepath.Dir(path)
	defaults := make(map[string]value.Value)
	fileScope := p.arena.Child(parentScope, nil, nil, includeParams, defaults)

	events := token.Scan(content)

	var active []*sectionBuilder
	pending := pendingNone
	var curDef *definition
	var includeList []string
	var includeParamsCollected map[string]value.Value
	var funcName string
	var funcArgs []string
	var funcCode strings.Builder

	closeActive := func() {
		for _, b := range active {
			if b.isDefaults {
				continue
			}
			p.closeSection(b, fileScope, path)
		}
		active = nil
	}
	closePending := func() {
		switch pending {
		case pendingTemplateDef, pendingMixinDef:
			if curDef != nil {
				p.reg.define(curDef)
			}
		case pendingIncludeDef:
			p.processInclude(includeList, includeParamsCollected, path, dir, fileScope)
		case pendingFunctionDef:
			p.installFunction(funcName, funcArgs, funcCode.String(), path)
		}
		pending = pendingNone
		curDef = nil
		includeList = nil
		includeParamsCollected = nil
		funcName = ""
		funcArgs = nil
		funcCode.Reset()
	}

	for _, ev := range events {
		switch ev.Kind {
		case token.Header:
			closeActive()
			closePending()
			p.dispatchHeader(ev.Header, fileScope, dir, path, &active, &pending, &curDef, &includeList, &includeParamsCollected, &funcName)
		case token.Assignment:
			p.dispatchAssignment(ev, pending, curDef, &includeList, includeParamsCollected, &funcArgs, &funcCode, &active, defaults, fileScope, path)
		}
	}
	closeActive()
	closePending()
}

func (p *parseState) dispatchHeader(raw string, fileScope scope.Handle, dir, path string, active *[]*sectionBuilder, pending *pendingKind, curDef **definition, includeList *[]string, includeParamsCollected *map[string]value.Value, funcName *string) {
	// A header whose entire body is an @GENERATOR directive ("[@GENERATOR=Row, 3]")
	// is shorthand for an anonymous section containing that one key.
	if trimmed := strings.TrimSpace(raw); strings.HasPrefix(trimmed, "@GENERATOR") {
		if idx := strings.Index(trimmed, "="); idx > 0 {
			b := p.newSectionBuilder(fileScope, "", nil)
			p.assignToBuilder(b, strings.TrimSpace(trimmed[:idx]), trimmed[idx+1:])
			*active = append(*active, b)
			return
		}
	}

	specs := parseHeader(raw)
	for _, spec := range specs {
		switch spec.kind {
		case kindTemplate:
			*pending = pendingTemplateDef
			*curDef = &definition{name: spec.defName, kind: kindTemplate, definedScope: fileScope, extends: spec.extends, earlyResolve: spec.earlyRes}
			return
		case kindMixin:
			*pending = pendingMixinDef
			*curDef = &definition{name: spec.defName, kind: kindMixin, definedScope: fileScope, extends: spec.extends}
			return
		case kindInclude:
			*pending = pendingIncludeDef
			*includeParamsCollected = make(map[string]value.Value)
			if spec.path != "" {
				*includeList = append(*includeList, spec.path)
			}
			return
		case kindFunction:
			*pending = pendingFunctionDef
			*funcName = spec.defName
			return
		case kindUse:
			p.processUse(spec.path, dir, path)
			return
		}
	}

	for _, spec := range specs {
		name := spec.name
		b := p.newSectionBuilder(fileScope, name, spec.templateRefs)
		if name == defaultsSectionName {
			b.isDefaults = true
		}
		*active = append(*active, b)
		p.applyEarlyResolve(b, fileScope, path)
	}
}

func (p *parseState) dispatchAssignment(ev token.Event, pending pendingKind, curDef *definition, includeList *[]string, includeParamsCollected map[string]value.Value, funcArgs *[]string, funcCode *strings.Builder, active *[]*sectionBuilder, defaults map[string]value.Value, fileScope scope.Handle, path string) {
	switch pending {
	case pendingTemplateDef, pendingMixinDef:
		considerInline := isMixinKey(ev.Key) || isGeneratorKey(ev.Key)
		v, inline := splitRaw(ev.RawValue, considerInline)
		curDef.keys = append(curDef.keys, rawKV{key: ev.Key, raw: v.Pieces(), inline: inline})
	case pendingIncludeDef:
		p.collectIncludeAssignment(ev.Key, ev.RawValue, includeList, includeParamsCollected)
	case pendingFunctionDef:
		switch strings.ToUpper(ev.Key) {
		case "ARGUMENTS":
			v, _ := splitRaw(ev.RawValue, false)
			*funcArgs = v.Pieces()
		case "CODE":
			if funcCode.Len() > 0 {
				funcCode.WriteByte('\n')
			}
			funcCode.WriteString(ev.RawValue)
		}
	default:
		if len(*active) == 0 {
			// Top-of-file entries preceding any header land in the
			// untitled section.
			*active = append(*active, p.newSectionBuilder(fileScope, "", nil))
		}
		for _, b := range *active {
			if b.isDefaults {
				v, _ := splitRaw(ev.RawValue, false)
				defaults[ev.Key] = v
				continue
			}
			p.assignToBuilder(b, ev.Key, ev.RawValue)
		}
	}
}

// applyEarlyResolve applies any early-resolve template referenced by b's
// header immediately, producing a partial section that later body lines
// can still add to or override.
func (p *parseState) applyEarlyResolve(b *sectionBuilder, fileScope scope.Handle, path string) {
	for _, ref := range b.templateRefs {
		def, ok := p.reg.template(ref)
		if !ok || !def.earlyResolve {
			continue
		}
		written := make(map[string]bool)
		var referenced []string
		p.applyDefinition(def, b, fileScope, nil, written, &referenced, path, make(map[string]bool))
	}
}

func (p *parseState) installFunction(name string, args []string, code string, path string) {
	if name == "" {
		return
	}
	script, err := expr.Parse(code)
	if err != nil {
		p.diag.OnError(path, "function "+name+": "+err.Error())
		return
	}
	p.interp.Install(name, &expr.UserFunc{Args: args, Body: script})
}

// processUse loads an auxiliary function-definition file. Since the
// expression bridge is a small tree-walking interpreter rather than an
// embedded Lua VM, a USE file
// is scanned with the same tokenizer as a regular input file and only its
// [FUNCTION: name] blocks are installed; any other content is ignored.
func (p *parseState) processUse(rawPath, dir, path string) {
	resolved := resolve.Resolve(rawPath, append([]string{dir}, p.opts.SearchDirs...), func(candidate string) bool {
		_, ok := p.reader(candidate)
		return ok
	})
	content, ok := p.reader(resolved)
	if !ok || content == "" {
		p.diag.OnWarning(path, "USE: could not read "+rawPath)
		return
	}
	events := token.Scan(content)
	var name string
	var args []string
	var code strings.Builder
	inFunc := false
	flush := func() {
		if inFunc {
			p.installFunction(name, args, code.String(), resolved)
		}
		inFunc = false
		name = ""
		args = nil
		code.Reset()
	}
	for _, ev := range events {
		switch ev.Kind {
		case token.Header:
			flush()
			for _, spec := range parseHeader(ev.Header) {
				if spec.kind == kindFunction {
					inFunc = true
					name = spec.defName
				}
			}
		case token.Assignment:
			if !inFunc {
				continue
			}
			switch strings.ToUpper(ev.Key) {
			case "ARGUMENTS":
				v, _ := splitRaw(ev.RawValue, false)
				args = v.Pieces()
			case "CODE":
				if code.Len() > 0 {
					code.WriteByte('\n')
				}
				code.WriteString(ev.RawValue)
			}
		}
	}
	flush()
}
