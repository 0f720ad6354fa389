package engine

import (
	"fmt"
	"strings"

	"github.com/inipp/inipp/internal/expr"
	"github.com/inipp/inipp/internal/markers"
	"github.com/inipp/inipp/internal/subst"
	"github.com/inipp/inipp/internal/value"
)

// resolveValue runs every piece of v through the substitutor. final selects
// between the deferred and final resolution passes. When
// final is true and a piece carries an expression wrap, the expression
// bridge evaluates it (unless p.opts.NoMaths); dropKey reports that a
// required reference (or a discard-sentinel expression error) means the
// caller must omit the whole key.
func (p *parseState) resolveValue(v value.Value, lookup subst.Lookup, final bool, path string) (out value.Value, referenced []string, dropKey bool) {
	var pieces []string
	var trace subst.Trace
	for _, piece := range v.Pieces() {
		resolved, drop := subst.SubstituteTracked(piece, lookup, final, &trace)
		if drop {
			return value.Value{}, trace.Referenced, true
		}
		for _, r := range resolved {
			if final && markers.IsCalculate(r) {
				evaluated, evalDrop := p.evalCalculate(r, lookup, path)
				if evalDrop {
					return value.Value{}, referenced, true
				}
				pieces = append(pieces, evaluated...)
				continue
			}
			if final {
				r = strings.ReplaceAll(r, markers.DollarLiteral, "")
			}
			pieces = append(pieces, r)
		}
	}
	if final {
		p.warnMissing(trace.Missing, path)
		for _, name := range trace.ZeroIndex {
			p.diag.OnError(path, fmt.Sprintf("%v: %s", ErrZeroIndex, name))
		}
		for _, name := range trace.Mismatch {
			p.diag.OnWarning(path, "projection arity mismatch: "+name)
		}
	}
	return value.New(pieces...), trace.Referenced, false
}

// warnMissing reports final-pass unresolved references, skipping implicit
// (purely numeric) names like generator loop indices.
func (p *parseState) warnMissing(names []string, path string) {
	for _, name := range names {
		if name == "" || isAllDigits(name) {
			continue
		}
		p.diag.OnWarning(path, "missing variable: "+name)
	}
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// evalCalculate evaluates a single expression-wrapped piece. dropKey is
// true only when the evaluation raised with the discard sentinel in its
// message: the sentinel suppresses the enclosing key silently. Any other
// failure is reported and leaves the offending
// piece as the prefix+postfix concatenation (empty here, since the wrap
// always spans the whole piece), keeping the key.
func (p *parseState) evalCalculate(piece string, lookup subst.Lookup, path string) (pieces []string, dropKey bool) {
	body, ok := markers.UnwrapCalculate(piece)
	if !ok {
		return []string{piece}, false
	}
	if p.opts.NoMaths {
		p.diag.OnWarning(path, "expression bridge disabled (--no-maths): "+body)
		return nil, false
	}

	rendered := subst.SubstituteExprBody(body, subst.ExprLookup(lookup), nil)

	// Free identifiers in the body resolve against the same scope as
	// $-references, rendered into script values on demand.
	p.interp.Vars = func(name string) (expr.Val, bool) {
		v, ok := lookup(name)
		if !ok {
			return expr.Nil(), false
		}
		return pieceVal(v.Pieces()), true
	}
	result, wasDiscard, err := p.interp.Run(rendered)
	p.interp.Vars = nil

	if wasDiscard {
		return nil, true
	}
	if err != nil {
		p.diag.OnError(path, fmt.Sprintf("expression error: %v", err))
		return []string{""}, false
	}
	return result, false
}
