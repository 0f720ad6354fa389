// Package emit serializes a finalized INIpp result (map of section name to
// map of key to Value) back to INI or JSON text. The INI emitter sorts
// sections and keys with internal/natural's comparator; the JSON emitter
// leaves key order to encoding/json, which sorts lexicographically.
// Injected filter/ordering predicates shape the output.
package emit

import (
	"sort"
	"strings"

	"github.com/inipp/inipp/internal/natural"
	"github.com/inipp/inipp/internal/value"
)

// Section is an unordered mapping from key to Value, the resulting form
// produced by the Finalizer.
type Section map[string]value.Value

// Result is the finalized build output: section name to Section. The
// untitled top-of-file section uses the empty string as its name.
type Result map[string]Section

// Filter decides whether a (section, key) pair should be emitted at all.
// A nil Filter emits everything.
type Filter func(section, key string) bool

// Options configures emission shaping shared by both emitters.
type Options struct {
	// Filter, when non-nil, is consulted for every key before it is
	// written; a false result drops the key from output entirely.
	Filter Filter
	// Order, when non-nil, replaces the natural comparator for section
	// and key ordering in INI output.
	Order func(a, b string) bool
	// ExcessiveQuotes widens the unquoted character set check used by
	// the INI emitter from strict identifier characters to a looser set
	// that still leaves common punctuation bare.
	ExcessiveQuotes bool
	// Indent requests two-space indentation from the JSON emitter.
	Indent bool
}

func sortedKeys[V any](m map[string]V, less func(a, b string) bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
	return keys
}

func (o Options) less() func(a, b string) bool {
	if o.Order != nil {
		return o.Order
	}
	return natural.Less
}

func (o Options) allowed(section, key string) bool {
	if o.Filter == nil {
		return true
	}
	return o.Filter(section, key)
}

var identSafe = func(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '.' || c == '-'
}

var excessiveSafe = func(c byte) bool {
	if identSafe(c) {
		return true
	}
	switch c {
	case ' ', ':', '/', '@', '+', '#', '%':
		return true
	}
	return false
}

func needsQuote(piece string, excessive bool) bool {
	if piece == "" {
		return true
	}
	safe := identSafe
	if excessive {
		safe = excessiveSafe
	}
	for i := 0; i < len(piece); i++ {
		if !safe(piece[i]) {
			return true
		}
	}
	return false
}

func quotePiece(piece string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range piece {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func renderPiece(piece string, excessive bool) string {
	if needsQuote(piece, excessive) {
		return quotePiece(piece)
	}
	return piece
}
