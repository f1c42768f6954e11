// Package meta synthesizes the final squad from expert consensus: it locks
// agreed picks, asks the text-generation collaborator to fill the remaining
// slots, and substitutes a deterministic fallback whenever the collaborator
// fails or its answer violates a hard constraint.
package meta

import (
	"context"
	"encoding/json"
	"fmt"

	"pundit/internal/domain/consensus"
	"pundit/internal/domain/model"
	"pundit/internal/domain/squad"
	"pundit/internal/llm"
	"pundit/pkg/logger"
	"pundit/pkg/metrics"
)

// Default completer configuration constants.
const (
	defaultMaxTokens = 3500

	// Fallback reason tags.
	reasonException   = "exception"
	reasonConstraints = "constraints"
)

// Completer assembles a valid squad from expert outputs.
type Completer struct {
	client    llm.Client
	engine    *consensus.Engine
	model     string
	maxTokens int
	logger    logger.Logger
}

// NewCompleter creates a Completer using the given collaborator client and
// consensus engine.
func NewCompleter(client llm.Client, engine *consensus.Engine, opts ...Option) *Completer {
	c := &Completer{
		client:    client,
		engine:    engine,
		maxTokens: defaultMaxTokens,
		logger:    logger.Get().Named("meta"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Synthesize runs aggregation, consensus filtering and picking, then
// completes the squad. The returned Selection always has exactly 15 valid
// players or a non-empty ConstraintsViolated explaining the fallback.
// An error is returned only for contract violations in the expert outputs.
func (c *Completer) Synthesize(ctx context.Context, outputs []model.ExpertOutput, pool []model.Candidate, budget float64, maxPerClub int) (model.Selection, error) {
	aggregated, err := c.engine.Aggregate(outputs, pool)
	if err != nil {
		return model.Selection{}, err
	}

	filtered := c.engine.Filter(aggregated)
	pick := c.engine.Pick(filtered, consensus.PerExpertProbs(outputs), budget)
	metrics.RecordLockedCandidates(len(pick.Picked))

	c.logger.Info(ctx, "consensus complete",
		logger.Int("aggregated", len(aggregated)),
		logger.Int("filtered", len(filtered)),
		logger.Int("locked", len(pick.Picked)),
		logger.Float64("remaining_budget", pick.RemainingBudget))

	parsed, err := c.completeWithLLM(ctx, pick)
	if err != nil {
		c.logger.Error(ctx, "collaborator completion failed, using deterministic fallback", logger.Error(err))
		metrics.RecordSquadFallback(reasonException)
		return c.fallback(aggregated, budget, maxPerClub, []string{reasonException}), nil
	}

	final := append(append([]model.AggregatedCandidate{}, pick.Picked...), parsed.selected...)
	violations := squad.Validate(final, budget, maxPerClub)
	if len(violations) > 0 {
		c.logger.Warn(ctx, "collaborator squad violates constraints, using deterministic fallback",
			logger.Any("violations", violations))
		metrics.RecordSquadFallback(reasonConstraints)
		return c.fallback(aggregated, budget, maxPerClub, violations), nil
	}

	return model.Selection{
		Selected:            final,
		Bench:               parsed.bench,
		Justification:       parsed.justification,
		ConstraintsViolated: []string{},
	}, nil
}

// fallback builds the deterministic squad from the full pre-filter pool and
// tags it with why the primary path was discarded, plus any shortfalls of
// the fallback squad itself (the degenerate short-squad case).
func (c *Completer) fallback(aggregated []model.AggregatedCandidate, budget float64, maxPerClub int, tags []string) model.Selection {
	fb := squad.GreedyFallback(aggregated, budget)
	violated := append([]string{}, tags...)
	if fbViolations := squad.Validate(fb.Selected, budget, maxPerClub); len(fbViolations) > 0 {
		violated = append(violated, fbViolations...)
	}
	fb.ConstraintsViolated = violated
	return fb
}

// completion is the resolved collaborator answer.
type completion struct {
	selected      []model.AggregatedCandidate
	bench         []model.AggregatedCandidate
	justification string
}

// wireCompletion mirrors the strict JSON object the prompt requests.
type wireCompletion struct {
	Selected            []string `json:"selected"`
	Bench               []string `json:"bench"`
	Justification       string   `json:"justification"`
	ConstraintsViolated []string `json:"constraints_violated"`
}

// completeWithLLM asks the collaborator to fill the open slots from the
// remaining pool and resolves the returned identities. Identities outside
// the choice set and repeats of one already resolved are dropped, so a
// squad can never carry the same player twice; the resulting shortfall is
// caught by validation.
func (c *Completer) completeWithLLM(ctx context.Context, pick consensus.PickResult) (completion, error) {
	system, user, err := buildPrompt(pick)
	if err != nil {
		return completion{}, err
	}

	resp, err := c.client.Generate(ctx, llm.Request{
		System:      system,
		User:        user,
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return completion{}, err
	}

	raw := StripCodeFence(resp.Text)
	var wire wireCompletion
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return completion{}, fmt.Errorf("%w: %w", ErrMalformedCompletion, err)
	}
	if wire.Selected == nil {
		return completion{}, fmt.Errorf("%w: missing selected", ErrMalformedCompletion)
	}

	byID := make(map[string]model.AggregatedCandidate, len(pick.Remaining))
	for _, cand := range pick.Remaining {
		byID[cand.ID] = cand
	}

	out := completion{justification: wire.Justification}
	seen := make(map[string]bool, len(wire.Selected))
	for _, id := range wire.Selected {
		cand, ok := byID[id]
		if !ok {
			c.logger.Warn(ctx, "collaborator selected identity outside remaining pool", logger.String("candidate_id", id))
			continue
		}
		if seen[id] {
			c.logger.Warn(ctx, "collaborator selected identity twice", logger.String("candidate_id", id))
			continue
		}
		seen[id] = true
		out.selected = append(out.selected, cand)
	}
	for _, id := range wire.Bench {
		if cand, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			out.bench = append(out.bench, cand)
		}
	}
	return out, nil
}
