// Package subst implements the substitutor: $Name / ${...}
// interpolation against a Scope, slicing/projection modes, missing-variable
// deferral, and the expression-mode literal rendering used by the
// expression bridge.
package subst

import (
	"strconv"
	"strings"
)

// ref is a parsed `${Name:from:to:mode:flag|or=default}` reference, or the
// degenerate bare `$Name` form (all optional fields zero).
type ref struct {
	name      string
	from, to  *int
	mode      string
	required  bool
	def       *string
	bare      bool // true for the brace-less "$Name" form
	zeroIndex bool // an explicit 0 was written against the 1-based syntax
}

var modeKeywords = map[string]bool{
	"size": true, "count": true, "length": true, "exists": true,
	"vec2": true, "vec3": true, "vec4": true,
	"x": true, "y": true, "z": true, "w": true,
	"num": true, "number": true, "bool": true, "boolean": true,
	"str": true, "string": true,
}

// findRef locates the first `$Name` or `${...}` reference in s and returns
// its byte span and parsed content. found is false if there is none.
func findRef(s string) (start, end int, r ref, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '$' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '{' {
			j := strings.IndexByte(s[i+2:], '}')
			if j < 0 {
				continue
			}
			close := i + 2 + j
			content := s[i+2 : close]
			return i, close + 1, parseRefContent(content), true
		}
		// bare $Name
		j := i + 1
		for j < len(s) && isNameByte(s[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		return i, j, ref{name: s[i+1 : j], bare: true}, true
	}
	return 0, 0, ref{}, false
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// parseRefContent parses the text between "${" and "}": the variable name
// plus colon-separated from/to/mode/flag fields in any order (after name).
func parseRefContent(content string) ref {
	parts := strings.Split(content, ":")
	r := ref{name: parts[0]}
	for _, p := range parts[1:] {
		switch {
		case p == "required" || p == "?":
			r.required = true
		case strings.HasPrefix(p, "or="):
			d := p[len("or="):]
			r.def = &d
		case modeKeywords[p]:
			r.mode = p
		default:
			if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
				if n == 0 {
					r.zeroIndex = true
				}
				if r.from == nil {
					r.from = &n
				} else if r.to == nil {
					r.to = &n
				}
			}
		}
	}
	return r
}

// sliceRange resolves a reference's from/to fields against a sequence of
// length n into 0-based, half-open [start, end) bounds. Indices in the
// source syntax are 1-based and inclusive; negative indices count from the
// end. An omitted `to` with a set `from` defaults to a single element;
// an omitted `to` with no `from` defaults to the whole sequence.
func sliceRange(r ref, n int) (start, end int) {
	if r.from == nil && r.to == nil {
		return 0, n
	}
	from := 1
	if r.from != nil {
		from = *r.from
	}
	to := from
	if r.to != nil {
		to = *r.to
	}
	start = resolveIndex(from, n)
	end = resolveIndex(to, n) + 1
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	return start, end
}

// resolveIndex converts a 1-based, possibly negative source index into a
// 0-based index into a sequence of length n.
func resolveIndex(i, n int) int {
	if i < 0 {
		return n + i
	}
	if i > 0 {
		return i - 1
	}
	return 0
}
