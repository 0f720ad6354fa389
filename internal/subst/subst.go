package subst

import (
	"strconv"
	"strings"

	"github.com/inipp/inipp/internal/markers"
	"github.com/inipp/inipp/internal/scope"
	"github.com/inipp/inipp/internal/value"
)

// maxDepth bounds substitution recursion.
const maxDepth = 100

// Lookup resolves a single variable by name against a scope.
type Lookup func(name string) (value.Value, bool)

// Substitute resolves every $Name/${...} reference in piece against lookup.
//
// final controls missing-variable behavior: when false (template bodies,
// DEFAULTS, INCLUDE params — anything that will still be inherited), a
// reference that cannot be resolved right now is left untouched so a later,
// final pass can retry it against a fuller scope. When true, an unresolved
// bare/mid-string reference is rendered back as "$Name" (SubstituteTracked
// lists its name in Trace.Missing); an unresolved required reference instead
// requests that the caller drop the enclosing key (drop=true).
//
// referenced, if non-nil, accumulates every variable name that was looked
// up (used by the engine's erase_referenced option).
func Substitute(piece string, lookup Lookup, final bool, referenced *[]string) (pieces []string, drop bool) {
	var t Trace
	out, drop := substitute(piece, lookup, final, &t, 0)
	if referenced != nil {
		*referenced = append(*referenced, t.Referenced...)
	}
	return out, drop
}

// Trace collects per-resolution diagnostics for the caller: every name
// looked up, every reference that stayed unresolved on a final pass (after
// or= defaults were tried), every reference written with an explicit 0
// index against the 1-based slice syntax, and every projection applied to
// a value of the wrong cardinality.
type Trace struct {
	Referenced []string
	Missing    []string
	ZeroIndex  []string
	Mismatch   []string
}

// SubstituteTracked is Substitute with a Trace sink attached.
func SubstituteTracked(piece string, lookup Lookup, final bool, t *Trace) (pieces []string, drop bool) {
	return substitute(piece, lookup, final, t, 0)
}

func substitute(piece string, lookup Lookup, final bool, t *Trace, depth int) ([]string, bool) {
	if depth >= maxDepth {
		return []string{piece}, false
	}

	start, end, r, found := findRef(piece)
	if !found {
		return []string{piece}, false
	}

	if t != nil {
		t.Referenced = append(t.Referenced, r.name)
		if r.zeroIndex {
			t.ZeroIndex = append(t.ZeroIndex, r.name)
		}
	}

	whole := start == 0 && end == len(piece)
	prefix := piece[:start]
	postfix := piece[end:]

	v, ok := lookup(r.name)

	if !ok && r.def != nil {
		v = value.Single(*r.def)
		ok = true
	}

	if !ok {
		if !final {
			// Defer: leave this reference untouched for a later pass.
			return []string{piece}, false
		}
		if r.required {
			return nil, true
		}
		if r.mode == "exists" {
			return joinAround(prefix, []string{"0"}, postfix, lookup, final, t, depth)
		}
		if t != nil {
			t.Missing = append(t.Missing, r.name)
		}
		// Final, unresolved, not required: render back as bare "$Name".
		resolved := "$" + r.name
		return joinAround(prefix, []string{resolved}, postfix, lookup, final, t, depth)
	}

	projected, mismatch := project(v, r)
	if mismatch && t != nil {
		t.Mismatch = append(t.Mismatch, r.name)
	}

	if whole {
		return projected, false
	}

	return joinAround(prefix, projected, postfix, lookup, final, t, depth)
}

// joinAround re-substitutes prefix and postfix independently (so a
// substituted variable's own content is never re-scanned for '$')
// and joins each of mid's pieces between the results.
func joinAround(prefix string, mid []string, postfix string, lookup Lookup, final bool, t *Trace, depth int) ([]string, bool) {
	prefixPieces, drop := substitute(prefix, lookup, final, t, depth+1)
	if drop {
		return nil, true
	}
	postfixPieces, drop := substitute(postfix, lookup, final, t, depth+1)
	if drop {
		return nil, true
	}
	var out []string
	for _, p := range prefixPieces {
		for _, m := range mid {
			for _, s := range postfixPieces {
				out = append(out, p+m+s)
			}
		}
	}
	if len(out) == 0 {
		out = []string{prefix + postfix}
	}
	return out, false
}

// project applies a reference's slice range and mode to v, returning the
// output pieces. mismatch reports a vec*/x-y-z-w projection against a value
// of the wrong cardinality, which callers may surface as a warning.
func project(v value.Value, r ref) (pieces []string, mismatch bool) {
	start, end := sliceRange(r, v.Len())
	sliced := v.Pieces()[start:end]

	switch r.mode {
	case "size", "count":
		return []string{strconv.Itoa(v.Len())}, false
	case "length":
		return []string{strconv.Itoa(len(strings.Join(sliced, ",")))}, false
	case "exists":
		return []string{"1"}, false
	case "vec2", "vec3", "vec4":
		// Components stay separate pieces so cardinality carries through
		// to emission and ${Name:size} downstream; the mode only asserts
		// the expected arity.
		want := map[string]int{"vec2": 2, "vec3": 3, "vec4": 4}[r.mode]
		out := append([]string(nil), sliced...)
		return out, len(sliced) != want
	case "x", "y", "z", "w":
		idx := map[string]int{"x": 0, "y": 1, "z": 2, "w": 3}[r.mode]
		if idx >= len(sliced) {
			return []string{""}, true
		}
		return []string{sliced[idx]}, false
	case "num", "number":
		if len(sliced) == 0 {
			return []string{"0"}, false
		}
		return []string{sliced[0]}, false
	case "bool", "boolean":
		if len(sliced) == 0 {
			return []string{"0"}, false
		}
		b := value.Single(sliced[0]).Bool()
		if b {
			return []string{"1"}, false
		}
		return []string{"0"}, false
	case "str", "string":
		return []string{strings.Join(sliced, ",")}, false
	default:
		out := append([]string(nil), sliced...)
		if len(out) == 0 {
			out = []string{""}
		}
		return out, false
	}
}

// ExprLookup resolves variables for expression-mode rendering.
type ExprLookup func(name string) (value.Value, bool)

// SubstituteExprBody rewrites every $Name/${...} reference in body (the
// text inside a `$"..."` expression wrap) into a script literal, per
// expression mode: a numeric scalar passes through, an
// all-numeric 2/3/4-piece sequence becomes vec2/vec3/vec4(...), anything
// else becomes a quoted string or table literal. A reference that cannot
// be resolved at all renders as `nil`.
func SubstituteExprBody(body string, lookup ExprLookup, referenced *[]string) string {
	return exprSubstitute(body, lookup, referenced, 0)
}

func exprSubstitute(s string, lookup ExprLookup, referenced *[]string, depth int) string {
	if depth >= maxDepth {
		return s
	}
	start, end, r, found := findRef(s)
	if !found {
		return s
	}
	if referenced != nil {
		*referenced = append(*referenced, r.name)
	}

	prefix := exprSubstitute(s[:start], lookup, referenced, depth+1)
	postfix := exprSubstitute(s[end:], lookup, referenced, depth+1)

	v, ok := lookup(r.name)
	if !ok {
		return prefix + "nil" + postfix
	}
	projected, _ := project(v, r)
	return prefix + renderExprLiteral(value.New(projected...)) + postfix
}

// renderExprLiteral renders v as it should appear inside expression source:
// a single numeric piece passes through bare, a 2/3/4-piece all-numeric
// sequence becomes a vecN(...) constructor call, anything longer or mixed
// becomes a table literal, and non-numeric scalars are quoted.
func renderExprLiteral(v value.Value) string {
	if v.Len() == 1 {
		if isNumeric(v.First()) {
			return v.First()
		}
		return quoteLiteral(v.First())
	}
	if v.Len() >= 2 && v.Len() <= 4 && allNumeric(v.Pieces()) {
		return vecCtor(v.Len()) + "(" + strings.Join(v.Pieces(), ",") + ")"
	}
	var parts []string
	for _, p := range v.Pieces() {
		if isNumeric(p) {
			parts = append(parts, p)
		} else {
			parts = append(parts, quoteLiteral(p))
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func vecCtor(n int) string {
	switch n {
	case 2:
		return "vec2"
	case 3:
		return "vec3"
	default:
		return "vec4"
	}
}

func allNumeric(pieces []string) bool {
	for _, p := range pieces {
		if !isNumeric(p) {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func quoteLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

// UnwrapMissing re-exports markers.UnwrapMissing for callers that only
// import subst (keeps package boundaries tidy for the engine).
func UnwrapMissing(s string) (string, bool) {
	return markers.UnwrapMissing(s)
}

// ScopeArenaLookup adapts a scope.Arena+Handle pair into a Lookup.
func ScopeArenaLookup(a *scope.Arena, h scope.Handle) Lookup {
	return func(name string) (value.Value, bool) {
		return a.Lookup(h, name)
	}
}
