// Package squad builds and validates complete 15-player squads.
package squad

import (
	"sort"

	"pundit/internal/domain/model"
	"pundit/internal/domain/types"
)

// Upside weight applied to the Haulers probability when ranking candidates
// for the greedy fallback.
const haulerWeight = 2.0

// GreedyFallback deterministically assembles a squad from the full aggregated
// pool: candidates are ranked by Tickers + 2*Haulers descending (ties broken
// by input order), then assigned greedily while their position quota is open
// and the cumulative price stays within budget. If some quota cannot be
// filled within budget the squad comes back short; Validate flags that case.
func GreedyFallback(pool []model.AggregatedCandidate, budget float64) model.Selection {
	ranked := make([]model.AggregatedCandidate, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		return upside(ranked[i]) > upside(ranked[j])
	})

	required := types.RequiredCount()
	var (
		team  []model.AggregatedCandidate
		spent float64
	)
	for _, c := range ranked {
		if required[c.Position] <= 0 {
			continue
		}
		if spent+c.Price > budget {
			continue
		}
		team = append(team, c)
		required[c.Position]--
		spent += c.Price

		if filled(required) {
			break
		}
	}

	return model.Selection{
		Selected:            team,
		Bench:               nil,
		Justification:       "Fallback greedy selection based on Tickers + Haulers",
		ConstraintsViolated: []string{},
	}
}

func upside(c model.AggregatedCandidate) float64 {
	return c.Probs[types.Tickers] + haulerWeight*c.Probs[types.Haulers]
}

func filled(required map[types.Position]int) bool {
	for _, n := range required {
		if n > 0 {
			return false
		}
	}
	return true
}
