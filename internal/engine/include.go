package engine

import (
	"strings"

	"github.com/inipp/inipp/internal/resolve"
	"github.com/inipp/inipp/internal/scope"
	"github.com/inipp/inipp/internal/value"
)

// collectIncludeAssignment records one line of an [INCLUDE] body: an
// INCLUDE= entry appends to the include list (possibly multiple pieces at
// once), a legacy VAR=Name,value… entry becomes a named parameter, and
// anything else is a direct KEY=VALUE parameter.
func (p *parseState) collectIncludeAssignment(key, raw string, includeList *[]string, params map[string]value.Value) {
	v, _ := splitRaw(raw, false)
	switch {
	case strings.EqualFold(key, "INCLUDE"):
		*includeList = append(*includeList, v.Pieces()...)
	case strings.EqualFold(key, "VAR"):
		pieces := v.Pieces()
		if len(pieces) == 0 {
			return
		}
		params[pieces[0]] = value.New(pieces[1:]...)
	default:
		params[key] = v
	}
}

// processInclude resolves and reads every file named in includeList,
// skipping any (path, fingerprint) pair already processed, and recurses
// into each through processFile with params installed as the nested
// file's include-params tier.
func (p *parseState) processInclude(includeList []string, params map[string]value.Value, path, dir string, fileScope scope.Handle) {
	if p.opts.NoInclude {
		if len(includeList) > 0 {
			p.diag.OnWarning(path, "include disabled (--no-include)")
		}
		return
	}

	fp := fingerprint(stringifyParams(params))
	dirs := append([]string{dir}, p.opts.SearchDirs...)
	exists := func(candidate string) bool {
		_, ok := p.reader(candidate)
		return ok
	}

	for _, filename := range includeList {
		resolved := resolve.Resolve(filename, dirs, exists)

		if p.included[resolved] == nil {
			p.included[resolved] = make(map[uint64]bool)
		}
		if p.included[resolved][fp] {
			continue
		}

		onStack := false
		for _, s := range p.fileStack {
			if s == resolved {
				onStack = true
				break
			}
		}
		if onStack {
			p.diag.OnError(path, ErrCycleDetected.Error()+": "+resolved)
			continue
		}

		content, ok := p.reader(resolved)
		if !ok || content == "" {
			p.diag.OnWarning(path, "missing or empty include: "+filename)
			continue
		}

		p.included[resolved][fp] = true
		p.fileStack = append(p.fileStack, resolved)
		p.processFile(resolved, content, fileScope, cloneValueMap(params))
		p.fileStack = p.fileStack[:len(p.fileStack)-1]
	}
}

func stringifyParams(params map[string]value.Value) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = v.String()
	}
	return out
}

func cloneValueMap(m map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
