package app

import (
	"pundit/internal/candidates"
	"pundit/internal/experts"
	"pundit/internal/meta"
	"pundit/internal/snapshot"
	"pundit/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithProvider sets the candidate provider.
func WithProvider(p candidates.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithExperts sets the expert scorers run for every request.
func WithExperts(e ...*experts.Expert) Option {
	return func(s *Service) {
		if len(e) > 0 {
			s.experts = e
		}
	}
}

// WithCompleter sets the meta squad completer.
func WithCompleter(c *meta.Completer) Option {
	return func(s *Service) {
		if c != nil {
			s.completer = c
		}
	}
}

// WithSnapshotStore sets the debug snapshot store.
func WithSnapshotStore(st *snapshot.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.snapshots = st
		}
	}
}

// WithDefaultBudget sets the budget used when a request omits one.
func WithDefaultBudget(budget float64) Option {
	return func(s *Service) {
		if budget > 0 {
			s.defaultBudget = budget
		}
	}
}

// WithDefaultMaxPerClub sets the club cap used when a request omits one.
func WithDefaultMaxPerClub(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultMaxPerClub = n
		}
	}
}

// WithDefaultSeason sets the season used when a request omits one.
func WithDefaultSeason(season string) Option {
	return func(s *Service) {
		if season != "" {
			s.defaultSeason = season
		}
	}
}

// WithDefaultGameweek sets the gameweek used when a request omits one.
func WithDefaultGameweek(gw int) Option {
	return func(s *Service) {
		if gw > 0 {
			s.defaultGameweek = gw
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
