// Package probability normalizes arbitrary probability-like mappings into
// canonical outcome distributions.
package probability

import (
	"encoding/json"
	"math"

	"pundit/internal/domain/model"
	"pundit/internal/domain/types"
)

// Tolerance within which a distribution counts as summing to 1.0.
const Tolerance = 1e-6

// Normalize converts a raw label->value mapping into a canonical 4-outcome
// distribution. Unknown labels are dropped before the positive-sum check, so
// an input carrying only unrecognized keys normalizes to uniform. Values that
// cannot be coerced to a finite number count as 0. A nil input or one whose
// recognized weights sum to <= 0 yields the uniform distribution.
func Normalize(raw map[string]any) model.Distribution {
	if raw == nil {
		return model.Uniform()
	}

	weights := make(map[types.Outcome]float64, len(types.Outcomes))
	var sum float64
	for _, o := range types.Outcomes {
		v := coerce(raw[string(o)])
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		weights[o] = v
		sum += v
	}

	if sum <= 0 {
		return model.Uniform()
	}

	out := make(model.Distribution, len(types.Outcomes))
	for _, o := range types.Outcomes {
		out[o] = weights[o] / sum
	}
	return out
}

// Renormalize scales an existing distribution so its weights sum to 1.0,
// guarding divide-by-zero with a divisor of 1.0 when the raw sum is 0.
func Renormalize(d model.Distribution) model.Distribution {
	sum := d.Sum()
	if sum == 0 {
		sum = 1.0
	}
	out := make(model.Distribution, len(types.Outcomes))
	for _, o := range types.Outcomes {
		out[o] = d[o] / sum
	}
	return out
}

// coerce extracts a float64 from the numeric-like types that survive JSON
// decoding. Anything else is 0.
func coerce(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
