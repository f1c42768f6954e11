package app

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted  = errors.New("service not started")
	ErrNoProvider  = errors.New("no candidate provider configured")
	ErrNoExperts   = errors.New("no experts configured")
	ErrNoCompleter = errors.New("no completer configured")
)
