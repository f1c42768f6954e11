package consensus

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrUnknownCandidate means an expert referenced an identity the
	// provider never produced; this is an upstream data-consistency bug,
	// not a transient failure.
	ErrUnknownCandidate = errors.New("recommendation for unknown candidate")

	// ErrMissingRecommendations means a pool candidate received no
	// recommendation from any expert, violating the full-coverage contract.
	ErrMissingRecommendations = errors.New("candidate has no recommendations")
)
