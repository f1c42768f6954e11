package llm

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrTransport covers every upstream failure mode: network errors,
	// rate limiting, timeouts, and exhausted model cascades. Callers
	// recover from it locally, never surfacing it as a request failure.
	ErrTransport = errors.New("llm transport failed")

	// ErrNoAPIKey means the client was constructed without credentials.
	ErrNoAPIKey = errors.New("no API key provided")
)
