package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrInvalidSquad signals a malformed squad composition. The optimizer
	// still returns a best-effort selection alongside it, so callers can
	// distinguish a degenerate-but-successful result from a clean one.
	ErrInvalidSquad = errors.New("invalid squad composition")
)
