// Package app provides the core business service that implements
// the dependencies required by the HTTP API.
package app

import (
	"context"
	"sync"
	"time"

	"pundit/internal/candidates"
	"pundit/internal/domain/model"
	"pundit/internal/experts"
	"pundit/internal/meta"
	"pundit/internal/snapshot"
	"pundit/pkg/logger"
	"pundit/pkg/metrics"
)

// Request carries the user-facing knobs for one squad generation.
// Zero values fall back to the service defaults.
type Request struct {
	Budget     float64 `json:"budget"`
	MaxPerClub int     `json:"max_per_club"`
	Season     string  `json:"season"`
	Gameweek   int     `json:"gameweek"`
}

// Result is the generated squad plus the raw expert outputs that produced it.
type Result struct {
	Team        model.Selection   `json:"team"`
	Explanation model.Explanation `json:"explanation"`
}

// Service orchestrates the squad-generation pipeline: candidate provider,
// parallel expert scoring, and meta synthesis.
type Service struct {
	mu sync.RWMutex

	// Core components
	provider  candidates.Provider
	experts   []*experts.Expert
	completer *meta.Completer
	snapshots *snapshot.Store

	// Request defaults
	defaultBudget     float64
	defaultMaxPerClub int
	defaultSeason     string
	defaultGameweek   int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		defaultBudget:     100.0,
		defaultMaxPerClub: 3,
		defaultGameweek:   1,
		logger:            nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start validates wiring and marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}

	if s.provider == nil {
		return ErrNoProvider
	}
	if len(s.experts) == 0 {
		return ErrNoExperts
	}
	if s.completer == nil {
		return ErrNoCompleter
	}
	if s.snapshots == nil {
		s.snapshots = snapshot.NewStore("")
	}

	s.started = true
	s.logger.Info(ctx, "squad service started",
		logger.Int("experts", len(s.experts)),
		logger.Float64("default_budget", s.defaultBudget),
		logger.Int("default_max_per_club", s.defaultMaxPerClub),
	)
	return nil
}

// Stop marks the service stopped. The pipeline holds no background state;
// in-flight requests drain with their own contexts.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "squad service stopped")
}

// GenerateSquad runs the full pipeline for one request: candidate pool,
// expert fan-out, meta synthesis. Experts run concurrently and are joined
// before aggregation begins; each accumulates its output independently so a
// cancellation never leaves partial shared state. The returned squad is
// always structurally valid or carries a non-empty constraints_violated.
func (s *Service) GenerateSquad(ctx context.Context, req Request) (Result, error) {
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return Result{}, ErrNotStarted
	}
	s.mu.RUnlock()

	start := time.Now()
	req = s.withDefaults(req)

	pool, err := s.provider.Candidates(ctx, req.Season, req.Gameweek)
	if err != nil {
		return Result{}, err
	}
	s.logger.Info(ctx, "pipeline started",
		logger.Int("candidates", len(pool)),
		logger.Float64("budget", req.Budget),
		logger.String("season", req.Season),
		logger.Int("gameweek", req.Gameweek))
	s.snapshots.Save(ctx, req.Season, req.Gameweek, "candidates", pool)

	outputs := s.scoreAll(ctx, pool)
	for _, out := range outputs {
		s.snapshots.Save(ctx, req.Season, req.Gameweek, "expert_"+out.Agent, out)
	}

	team, err := s.completer.Synthesize(ctx, outputs, pool, req.Budget, req.MaxPerClub)
	if err != nil {
		return Result{}, err
	}

	decision := model.DecisionSynthesized
	if len(team.ConstraintsViolated) > 0 {
		decision = model.DecisionFallback
	}
	result := Result{
		Team: team,
		Explanation: model.Explanation{
			ExpertOutputs: outputs,
			MetaDecision:  decision,
		},
	}
	s.snapshots.Save(ctx, req.Season, req.Gameweek, "meta_selection", result.Team)

	metrics.RecordPipelineDuration(float64(time.Since(start).Milliseconds()))
	s.logger.Info(ctx, "pipeline finished",
		logger.String("decision", decision),
		logger.Int("squad_size", len(team.Selected)),
		logger.Float64("spend", team.Spend()))
	return result, nil
}

// scoreAll fans the candidate pool out to every expert and joins the
// results in expert order, independent of completion order.
func (s *Service) scoreAll(ctx context.Context, pool []model.Candidate) []model.ExpertOutput {
	outputs := make([]model.ExpertOutput, len(s.experts))

	var wg sync.WaitGroup
	for i, e := range s.experts {
		wg.Add(1)
		go func(i int, e *experts.Expert) {
			defer wg.Done()
			outputs[i] = e.Score(ctx, pool)
		}(i, e)
	}
	wg.Wait()

	return outputs
}

// withDefaults fills zero-valued request fields from the service defaults.
func (s *Service) withDefaults(req Request) Request {
	if req.Budget <= 0 {
		req.Budget = s.defaultBudget
	}
	if req.MaxPerClub <= 0 {
		req.MaxPerClub = s.defaultMaxPerClub
	}
	if req.Season == "" {
		req.Season = s.defaultSeason
	}
	if req.Gameweek <= 0 {
		req.Gameweek = s.defaultGameweek
	}
	return req
}
