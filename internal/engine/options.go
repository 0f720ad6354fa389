// Package engine implements the Template/Mixin engine, the File/Include
// processor, and the Finalizer, tying together
// internal/token, internal/splitter, internal/scope, internal/subst, and
// internal/expr into a single-pass parser: tokenize, split, defer or
// substitute, resolve templates on section close, then finalize.
package engine

import "github.com/inipp/inipp/internal/diag"

// Options configures parser-level behavior. These are constructor-level
// settings for library callers; the CLI surfaces them as flags only as a
// convenience on top.
type Options struct {
	// AllowOverride governs whether a later-declared section's keys may
	// overwrite an earlier one's during duplicate-name merging.
	AllowOverride bool
	// IgnoreInactive drops a section whose resolved ACTIVE is false
	// instead of emitting a stub ACTIVE=0.
	IgnoreInactive bool
	// EraseReferenced removes variables referenced while resolving
	// templates from the finished section.
	EraseReferenced bool
	// NoInclude disables the [INCLUDE] mechanism entirely.
	NoInclude bool
	// NoMaths disables the expression bridge; each $"…" piece is dropped
	// from its value unevaluated and reported as a warning.
	NoMaths bool
	// SearchDirs are consulted, in order, after the including file's own
	// directory, when resolving an INCLUDE/USE path.
	SearchDirs []string
}

// Reader maps a path to its contents. A miss returns ("", false); the
// engine treats that as an empty read and reports a warning.
type Reader func(path string) (string, bool)

// DataProvider backs the expression bridge's read() callback with external
// key/value state.
type DataProvider interface {
	ReadNumber(key string) (float64, bool)
	ReadString(key string) (string, bool)
	ReadBool(key string) (bool, bool)
}

// NullProvider answers every lookup as absent.
type NullProvider struct{}

func (NullProvider) ReadNumber(string) (float64, bool) { return 0, false }
func (NullProvider) ReadString(string) (string, bool)   { return "", false }
func (NullProvider) ReadBool(string) (bool, bool)        { return false, false }

// Config bundles everything Build needs beyond the Options that shape
// parsing semantics: the injected reader, diagnostics sink, and data
// provider.
type Config struct {
	Options
	Reader   Reader
	Diag     diag.Handler
	Provider DataProvider
}
