package candidates

import (
	"context"
	"sort"

	"pundit/internal/domain/model"
	"pundit/internal/domain/types"
	"pundit/pkg/logger"
	"pundit/pkg/metrics"
)

// Default provider configuration constants.
const (
	defaultPoolSize = 30
)

// Provider produces the ranked candidate pool for a request. Errors are
// fatal for the request: with no candidates no squad is possible.
type Provider interface {
	Candidates(ctx context.Context, season string, gameweek int) ([]model.Candidate, error)
}

// CSVProvider implements Provider over per-gameweek history CSVs.
type CSVProvider struct {
	root     string
	poolSize int
	criteria []criterion
	logger   logger.Logger
}

// NewCSVProvider creates a provider reading from the given data root.
func NewCSVProvider(root string, opts ...ProviderOption) *CSVProvider {
	p := &CSVProvider{
		root:     root,
		poolSize: defaultPoolSize,
		criteria: defaultCriteria,
		logger:   logger.Get().Named("candidates"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProviderOption applies a configuration option to the CSVProvider.
type ProviderOption func(*CSVProvider)

// WithPoolSize sets how many candidates the pool carries.
func WithPoolSize(n int) ProviderOption {
	return func(p *CSVProvider) {
		if n > 0 {
			p.poolSize = n
		}
	}
}

// WithProviderLogger sets a custom logger for the provider.
func WithProviderLogger(l logger.Logger) ProviderOption {
	return func(p *CSVProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// Candidates aggregates history up to the requested gameweek, ranks every
// player with TOPSIS, and returns the position-aware top pool ordered by
// score descending. Each candidate's identity is assigned here, once, and
// is never re-derived downstream.
func (p *CSVProvider) Candidates(ctx context.Context, season string, gameweek int) ([]model.Candidate, error) {
	if season == "" {
		return nil, ErrSeasonRequired
	}

	aggregates, err := loadSeason(p.root, season, gameweek)
	if err != nil {
		return nil, err
	}

	cands := make([]model.Candidate, 0, len(aggregates))
	for key, agg := range aggregates {
		if !agg.position.Valid() {
			continue
		}
		cands = append(cands, model.Candidate{
			ID:       key,
			Name:     agg.name,
			Club:     agg.club,
			Position: agg.position,
			Price:    agg.price,
			Features: agg.features(),
		})
	}
	// Deterministic base order before ranking; map iteration is random.
	sort.Slice(cands, func(i, j int) bool { return cands[i].ID < cands[j].ID })

	scores := topsisScores(cands, p.criteria)
	pool := selectPool(cands, scores, p.poolSize)

	counts := make(map[types.Position]int, len(types.Positions))
	for _, c := range pool {
		counts[c.Position]++
	}
	p.logger.Info(ctx, "candidate pool ready",
		logger.String("season", season),
		logger.Int("gameweek", gameweek),
		logger.Int("players", len(cands)),
		logger.Int("pool", len(pool)),
		logger.Any("positions", counts))
	metrics.UpdateCandidatePoolSize(len(pool))

	return pool, nil
}
