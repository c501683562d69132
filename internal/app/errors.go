package engine

import "errors"

// Sentinel kinds for engine errors.
var (
	ErrNoBackend = errors.New("no backend client configured")
)
