package experts

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrUnknownPersona means a persona outside the closed variant set was
	// requested at construction time.
	ErrUnknownPersona = errors.New("unknown persona")

	// ErrMalformedResponse means the collaborator returned text that does
	// not parse as the requested JSON array.
	ErrMalformedResponse = errors.New("malformed expert response")
)
