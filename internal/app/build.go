package app

import (
	"fmt"
	"time"

	"pundit/internal/candidates"
	"pundit/internal/config"
	"pundit/internal/domain/consensus"
	"pundit/internal/experts"
	"pundit/internal/llm"
	"pundit/internal/meta"
	"pundit/internal/snapshot"
)

// FromConfig wires a complete Service from process configuration: the
// collaborator client (or the failing mock when llm_use_mock is set), one
// expert per persona, the consensus engine, the completer, the CSV
// candidate provider, and the snapshot store.
func FromConfig(cfg *config.Config) (*Service, error) {
	var client llm.Client
	if cfg.LLMUseMock {
		client = &llm.Mock{}
	} else {
		httpClient, err := llm.NewHTTPClient(
			llm.WithEndpoint(cfg.LLMEndpoint),
			llm.WithAPIKeys(cfg.APIKeys()...),
			llm.WithDefaultModel(cfg.ExpertModel),
			llm.WithFallbackModels(cfg.FallbackModels...),
			llm.WithMaxConcurrency(cfg.LLMMaxConcurrency),
			llm.WithTimeout(time.Duration(cfg.LLMTimeoutSecs)*time.Second),
			llm.WithRetryAttempts(cfg.LLMRetryAttempts),
		)
		if err != nil {
			return nil, fmt.Errorf("build llm client: %w", err)
		}
		client = httpClient
	}

	panel := make([]*experts.Expert, 0, len(experts.AllPersonas()))
	for _, persona := range experts.AllPersonas() {
		e, err := experts.New(persona, client,
			experts.WithBatchSize(cfg.ExpertBatchSize),
			experts.WithModel(cfg.ExpertModel),
		)
		if err != nil {
			return nil, fmt.Errorf("build expert %s: %w", persona, err)
		}
		panel = append(panel, e)
	}

	engine := consensus.NewEngine(
		consensus.WithRemovalThresholds(cfg.RemovalTickersMax, cfg.RemovalHaulersMax),
		consensus.WithHighVoteThreshold(cfg.HighVoteThreshold),
		consensus.WithMinAgreement(cfg.MinAgreement),
	)

	completer := meta.NewCompleter(client, engine,
		meta.WithModel(cfg.MetaModel),
		meta.WithMaxTokens(cfg.MetaMaxTokens),
	)

	provider := candidates.NewCSVProvider(cfg.DataRoot,
		candidates.WithPoolSize(cfg.PoolSize),
	)

	return New(
		WithProvider(provider),
		WithExperts(panel...),
		WithCompleter(completer),
		WithSnapshotStore(snapshot.NewStore(cfg.SnapshotRoot)),
		WithDefaultBudget(cfg.Budget),
		WithDefaultMaxPerClub(cfg.MaxPerClub),
		WithDefaultSeason(cfg.Season),
		WithDefaultGameweek(cfg.Gameweek),
	), nil
}
