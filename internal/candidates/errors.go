package candidates

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrSeasonRequired = errors.New("season must be provided")
	ErrSeasonNotFound = errors.New("season directory not found")
	ErrNoData         = errors.New("no gameweek data found")
)
