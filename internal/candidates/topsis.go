package candidates

import (
	"math"
	"sort"

	"pundit/internal/domain/model"
	"pundit/internal/domain/types"
)

// distanceEpsilon guards the score divisor when a candidate coincides with
// both ideal points.
const distanceEpsilon = 1e-9

// criterion is one TOPSIS ranking input.
type criterion struct {
	feature      string
	weight       float64
	higherBetter bool
}

// defaultCriteria ranks on expected output, season value, per-90 output,
// and price (cheaper is better).
var defaultCriteria = []criterion{
	{feature: "expected_points", weight: 0.4, higherBetter: true},
	{feature: "value_season", weight: 0.3, higherBetter: true},
	{feature: "pts_per_90", weight: 0.2, higherBetter: true},
	{feature: "price", weight: 0.1, higherBetter: false},
}

// topsisScores computes a 0-1 closeness score per candidate: columns are
// vector-normalized, weighted, and each candidate is scored by its distance
// to the ideal worst over its total distance to both ideal points.
func topsisScores(cands []model.Candidate, criteria []criterion) []float64 {
	n := len(cands)
	k := len(criteria)
	scores := make([]float64, n)
	if n == 0 || k == 0 {
		return scores
	}

	// Criterion value matrix, price read from the candidate itself.
	mat := make([][]float64, n)
	for i, c := range cands {
		mat[i] = make([]float64, k)
		for j, cr := range criteria {
			if cr.feature == "price" {
				mat[i][j] = c.Price
			} else {
				mat[i][j] = c.Feature(cr.feature)
			}
		}
	}

	// Vector-normalize each column.
	for j := 0; j < k; j++ {
		var norm float64
		for i := 0; i < n; i++ {
			norm += mat[i][j] * mat[i][j]
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			norm = 1.0
		}
		for i := 0; i < n; i++ {
			mat[i][j] /= norm
		}
	}

	// Apply normalized weights.
	var weightSum float64
	for _, cr := range criteria {
		weightSum += cr.weight
	}
	for j, cr := range criteria {
		w := cr.weight / weightSum
		for i := 0; i < n; i++ {
			mat[i][j] *= w
		}
	}

	// Ideal best and worst per column by impact direction.
	best := make([]float64, k)
	worst := make([]float64, k)
	for j, cr := range criteria {
		colMin, colMax := math.Inf(1), math.Inf(-1)
		for i := 0; i < n; i++ {
			colMin = math.Min(colMin, mat[i][j])
			colMax = math.Max(colMax, mat[i][j])
		}
		if cr.higherBetter {
			best[j], worst[j] = colMax, colMin
		} else {
			best[j], worst[j] = colMin, colMax
		}
	}

	for i := 0; i < n; i++ {
		var distBest, distWorst float64
		for j := 0; j < k; j++ {
			distBest += (mat[i][j] - best[j]) * (mat[i][j] - best[j])
			distWorst += (mat[i][j] - worst[j]) * (mat[i][j] - worst[j])
		}
		distBest = math.Sqrt(distBest)
		distWorst = math.Sqrt(distWorst)
		scores[i] = distWorst / (distBest + distWorst + distanceEpsilon)
	}
	return scores
}

// selectPool picks the top poolSize candidates position-aware: per-position
// quotas scale the formation ratio to the pool size, then any remaining
// slots go to the best leftover candidates. The result is sorted by TOPSIS
// score descending; that order is the priority order downstream.
func selectPool(cands []model.Candidate, scores []float64, poolSize int) []model.Candidate {
	type ranked struct {
		cand  model.Candidate
		score float64
	}
	all := make([]ranked, len(cands))
	for i, c := range cands {
		all[i] = ranked{cand: c, score: scores[i]}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	quotas := make(map[types.Position]int, len(types.Positions))
	for pos, slots := range types.Formation {
		q := int(math.Round(float64(poolSize) * float64(slots) / float64(types.SquadSize)))
		if q < 1 {
			q = 1
		}
		quotas[pos] = q
	}

	// Fill quotas in fixed position order so ties in the final score sort
	// resolve the same way on every run.
	chosen := make(map[string]bool, poolSize)
	var pool []ranked
	for _, pos := range types.Positions {
		quota := quotas[pos]
		taken := 0
		for _, r := range all {
			if taken >= quota {
				break
			}
			if r.cand.Position != pos || chosen[r.cand.ID] {
				continue
			}
			chosen[r.cand.ID] = true
			pool = append(pool, r)
			taken++
		}
	}

	for _, r := range all {
		if len(pool) >= poolSize {
			break
		}
		if chosen[r.cand.ID] {
			continue
		}
		chosen[r.cand.ID] = true
		pool = append(pool, r)
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].score > pool[j].score })
	if len(pool) > poolSize {
		pool = pool[:poolSize]
	}

	out := make([]model.Candidate, len(pool))
	for i, r := range pool {
		out[i] = r.cand
	}
	return out
}
