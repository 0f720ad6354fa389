// Package markers defines the sentinel wrap strings used internally to
// defer variable substitution and expression evaluation across scope
// boundaries.
package markers

import (
	"strconv"
	"strings"
)

const (
	missingPrefix = "[[INIPP:MISSING:"
	missingSuffix = ":INIPP]]"
	calcPrefix    = "[[INIPP:CALCULATE:"
	calcSuffix    = ":INIPP]]"

	// DollarLiteral replaces a bare '$' typed inside a single-quoted piece,
	// distinguishing "explicitly emptied variable" from a literal dollar.
	DollarLiteral = "[[INIPP:MISSING::INIPP]]"

	incMarker = "[[INIPP:INC]]"
)

// WrapInc splices the auto-increment marker into a key name, used when a
// template or section writes multiple entries whose names must stay unique
// within a section. seq keeps concurrently pending placeholders distinct until
// the Finalizer assigns real indices.
func WrapInc(key string, seq int) string {
	return key + incMarker + strconv.Itoa(seq)
}

// UnwrapInc reports whether key carries the auto-increment marker, and if
// so returns the base name preceding it.
func UnwrapInc(key string) (base string, ok bool) {
	idx := strings.Index(key, incMarker)
	if idx < 0 {
		return "", false
	}
	return key[:idx], true
}

// WrapMissing returns the sentinel that defers resolution of variable name.
func WrapMissing(name string) string {
	return missingPrefix + name + missingSuffix
}

// UnwrapMissing reports whether s is exactly a missing-variable wrap, and if
// so returns the wrapped variable name.
func UnwrapMissing(s string) (name string, ok bool) {
	if !strings.HasPrefix(s, missingPrefix) || !strings.HasSuffix(s, missingSuffix) {
		return "", false
	}
	return s[len(missingPrefix) : len(s)-len(missingSuffix)], true
}

// WrapCalculate returns the sentinel marking body as an embedded expression
// to be evaluated by the expression bridge.
func WrapCalculate(body string) string {
	return calcPrefix + body + calcSuffix
}

// UnwrapCalculate reports whether s is exactly an expression wrap, and if so
// returns the wrapped body text.
func UnwrapCalculate(s string) (body string, ok bool) {
	if !strings.HasPrefix(s, calcPrefix) || !strings.HasSuffix(s, calcSuffix) {
		return "", false
	}
	return s[len(calcPrefix) : len(s)-len(calcSuffix)], true
}

// IsCalculate reports whether s starts with the expression-wrap prefix
// (used by the engine to find pieces that still carry an expression wrap
// after substitution).
func IsCalculate(s string) bool {
	return strings.HasPrefix(s, calcPrefix)
}
