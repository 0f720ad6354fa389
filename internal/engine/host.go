package engine

import (
	"sort"
	"strings"

	"github.com/inipp/inipp/internal/expr"
	"github.com/inipp/inipp/internal/value"
)

// engineHost implements expr.Host against the parser's DataProvider (for
// read()) and its in-progress build list (for has()/get()/set()).
type engineHost struct {
	p *parseState
}

func (h *engineHost) Read(key string, def expr.Val) (expr.Val, bool) {
	if f, ok := h.p.provider.ReadNumber(key); ok {
		return expr.Number(f), true
	}
	if s, ok := h.p.provider.ReadString(key); ok {
		return expr.String(s), true
	}
	if b, ok := h.p.provider.ReadBool(key); ok {
		return expr.Boolean(b), true
	}
	return def, false
}

// matchPattern implements the `prefix?`, `?suffix`, `?substring?`, and `?`
// multi-character-wildcard matching used by the has()/get()/set() callbacks.
func matchPattern(pattern, s string) bool {
	if pattern == "" {
		return s == ""
	}
	if !strings.Contains(pattern, "?") {
		return pattern == s
	}
	parts := strings.Split(pattern, "?")
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for i := 1; i < len(parts); i++ {
		part := parts[i]
		if part == "" {
			continue
		}
		if i == len(parts)-1 {
			if !strings.HasSuffix(s, part) {
				return false
			}
			s = s[:len(s)-len(part)]
			continue
		}
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}
	return true
}

// matchingKeys returns the entry's keys matched by pattern, sorted so the
// callbacks behave deterministically regardless of map iteration order.
func matchingKeys(sec map[string]value.Value, pattern string) []string {
	var out []string
	for k := range sec {
		if matchPattern(pattern, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (h *engineHost) Has(section, key, value string) bool {
	for _, entry := range h.p.buildList {
		if !matchPattern(section, entry.name) {
			continue
		}
		if key == "" {
			return true
		}
		for _, k := range matchingKeys(entry.section, key) {
			if value == "" || matchPattern(value, entry.section[k].String()) {
				return true
			}
		}
	}
	return false
}

func (h *engineHost) Get(section, key string, def expr.Val) (expr.Val, bool) {
	for _, entry := range h.p.buildList {
		if !matchPattern(section, entry.name) {
			continue
		}
		for _, k := range matchingKeys(entry.section, key) {
			return expr.CoerceLike(pieceVal(entry.section[k].Pieces()), def), true
		}
	}
	return def, false
}

func (h *engineHost) Set(section, key string, v expr.Val) int {
	n := 0
	rendered := expr.Pieces(v)
	for _, entry := range h.p.buildList {
		if !matchPattern(section, entry.name) {
			continue
		}
		for _, k := range matchingKeys(entry.section, key) {
			entry.section[k] = valueOfPieces(rendered)
			n++
		}
	}
	if n == 0 && !strings.Contains(section, "?") && !strings.Contains(key, "?") && len(rendered) > 0 {
		if sec, ok := h.p.sectionByName(section); ok {
			sec[key] = valueOfPieces(rendered)
			n = 1
		}
	}
	return n
}
