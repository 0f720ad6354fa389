package engine

import "errors"

// Sentinel errors for the failure classes reported as errors (diagnostic,
// parsing continues) rather than warnings. They flow to the injected
// diag.Handler and are never returned across Build's boundary.
var (
	ErrUnknownTemplate = errors.New("engine: referenced template is not defined")
	ErrUnknownMixin    = errors.New("engine: referenced mixin is not defined")
	ErrCycleDetected   = errors.New("engine: include cycle detected")
	ErrBadGenerator    = errors.New("engine: malformed generator directive")
	ErrZeroIndex       = errors.New("engine: 1-based index used with 0")
)
