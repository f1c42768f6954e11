package meta

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrMalformedCompletion means the collaborator's completion did not
	// parse as the requested strict JSON object. Recovery is the same as
	// for a transport failure: the deterministic fallback.
	ErrMalformedCompletion = errors.New("malformed completion response")
)
