// Package consensus merges per-expert outcome distributions and applies the
// agreement rules that prune and lock candidates before squad completion.
package consensus

import (
	"fmt"

	"pundit/internal/domain/model"
	"pundit/internal/domain/probability"
	"pundit/internal/domain/types"
)

// Default agreement constants.
const (
	defaultRemovalTickersMax = 0.10
	defaultRemovalHaulersMax = 0.05
	defaultHighVoteThreshold = 0.70
	defaultMinAgreement      = 2
)

// Engine applies the consensus rules with configured thresholds.
type Engine struct {
	removalTickersMax float64
	removalHaulersMax float64
	highVoteThreshold float64
	minAgreement      int
}

// NewEngine creates an Engine with default thresholds.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		removalTickersMax: defaultRemovalTickersMax,
		removalHaulersMax: defaultRemovalHaulersMax,
		highVoteThreshold: defaultHighVoteThreshold,
		minAgreement:      defaultMinAgreement,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Aggregate groups every expert recommendation by candidate identity and
// averages the outcome weights across contributing experts, renormalizing
// each result to sum 1.0. Output preserves pool order, which carries the
// provider's priority ranking. A recommendation referencing an identity
// absent from the pool, or a pool candidate missing from every output,
// is a contract violation.
func (e *Engine) Aggregate(outputs []model.ExpertOutput, pool []model.Candidate) ([]model.AggregatedCandidate, error) {
	byID := make(map[string]model.Candidate, len(pool))
	for _, c := range pool {
		byID[c.ID] = c
	}

	type group struct {
		probs          []model.Distribution
		justifications []string
	}
	groups := make(map[string]*group, len(pool))

	for _, out := range outputs {
		for _, rec := range out.Recommendations {
			if _, ok := byID[rec.CandidateID]; !ok {
				return nil, fmt.Errorf("%w: %q from agent %q", ErrUnknownCandidate, rec.CandidateID, out.Agent)
			}
			g := groups[rec.CandidateID]
			if g == nil {
				g = &group{}
				groups[rec.CandidateID] = g
			}
			g.probs = append(g.probs, rec.Probs)
			g.justifications = append(g.justifications, out.Agent+": "+rec.Justification)
		}
	}

	aggregated := make([]model.AggregatedCandidate, 0, len(groups))
	for _, c := range pool {
		g := groups[c.ID]
		if g == nil {
			return nil, fmt.Errorf("%w: %q", ErrMissingRecommendations, c.ID)
		}

		avg := make(model.Distribution, len(types.Outcomes))
		for _, o := range types.Outcomes {
			var sum float64
			for _, p := range g.probs {
				sum += p[o]
			}
			avg[o] = sum / float64(len(g.probs))
		}

		aggregated = append(aggregated, model.AggregatedCandidate{
			ID:             c.ID,
			Name:           c.Name,
			Club:           c.Club,
			Position:       c.Position,
			Price:          c.Price,
			Probs:          probability.Renormalize(avg),
			Justifications: g.justifications,
		})
	}
	return aggregated, nil
}

// Filter drops candidates whose consensus distribution is clearly bad:
// averaged Tickers <= 0.10 and Haulers <= 0.05. A removal never drops a
// position's live count below its formation floor. Candidates are walked in
// input order, which is the provider's priority order, so protection favors
// higher-ranked candidates implicitly: once the floor is reached every later
// removal candidate in that position is kept.
func (e *Engine) Filter(aggregated []model.AggregatedCandidate) []model.AggregatedCandidate {
	count := make(map[types.Position]int, len(types.Positions))
	for _, c := range aggregated {
		count[c.Position]++
	}

	kept := make([]model.AggregatedCandidate, 0, len(aggregated))
	for _, c := range aggregated {
		removable := c.Probs[types.Tickers] <= e.removalTickersMax &&
			c.Probs[types.Haulers] <= e.removalHaulersMax
		if !removable {
			kept = append(kept, c)
			continue
		}
		if count[c.Position]-1 < types.Formation[c.Position] {
			kept = append(kept, c)
			continue
		}
		count[c.Position]--
	}
	return kept
}

// PickResult is the outcome of consensus picking.
type PickResult struct {
	Picked          []model.AggregatedCandidate
	Remaining       []model.AggregatedCandidate
	RemainingBudget float64
	Required        map[types.Position]int
}

// Pick locks in every candidate at least minAgreement distinct experts
// individually rated Tickers or Haulers at or above the high-vote threshold.
// perExpert maps candidate identity to the individual expert distributions
// for that candidate. Locked candidates never appear in Remaining.
func (e *Engine) Pick(filtered []model.AggregatedCandidate, perExpert map[string][]model.Distribution, budget float64) PickResult {
	res := PickResult{
		RemainingBudget: budget,
		Required:        types.RequiredCount(),
	}

	for _, c := range filtered {
		votes := 0
		for _, p := range perExpert[c.ID] {
			if p[types.Tickers] >= e.highVoteThreshold || p[types.Haulers] >= e.highVoteThreshold {
				votes++
			}
		}
		if votes >= e.minAgreement {
			res.Picked = append(res.Picked, c)
			res.RemainingBudget -= c.Price
			if res.Required[c.Position] > 0 {
				res.Required[c.Position]--
			}
		} else {
			res.Remaining = append(res.Remaining, c)
		}
	}
	return res
}

// PerExpertProbs indexes each expert's individual distributions by candidate
// identity, the shape Pick consumes.
func PerExpertProbs(outputs []model.ExpertOutput) map[string][]model.Distribution {
	probs := make(map[string][]model.Distribution)
	for _, out := range outputs {
		for _, rec := range out.Recommendations {
			probs[rec.CandidateID] = append(probs[rec.CandidateID], rec.Probs)
		}
	}
	return probs
}
