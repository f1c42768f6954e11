// Package model contains domain models passed between layers.
package model

import (
	"pundit/internal/domain/types"
)

// Candidate is one player in the pool produced by the candidate provider.
// The ID is assigned once by the provider and carried unchanged through the
// pipeline; downstream code never re-derives it from display fields.
type Candidate struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Club     string             `json:"club"`
	Position types.Position     `json:"position"`
	Price    float64            `json:"price"`
	Features map[string]float64 `json:"features,omitempty"`
}

// Feature returns the named feature value, or 0 when absent.
func (c Candidate) Feature(name string) float64 {
	return c.Features[name]
}

// Distribution maps the four outcome classes to non-negative weights
// summing to 1.0 within floating tolerance.
type Distribution map[types.Outcome]float64

// Uniform returns the neutral distribution (0.25 each).
func Uniform() Distribution {
	d := make(Distribution, len(types.Outcomes))
	for _, o := range types.Outcomes {
		d[o] = 0.25
	}
	return d
}

// Sum returns the total weight of the distribution.
func (d Distribution) Sum() float64 {
	var s float64
	for _, o := range types.Outcomes {
		s += d[o]
	}
	return s
}

// Clone returns an independent copy of the distribution.
func (d Distribution) Clone() Distribution {
	out := make(Distribution, len(types.Outcomes))
	for _, o := range types.Outcomes {
		out[o] = d[o]
	}
	return out
}

// Recommendation is one expert's verdict on one candidate.
type Recommendation struct {
	CandidateID   string       `json:"candidate_id"`
	Probs         Distribution `json:"probs"`
	Justification string       `json:"justification"`
}

// ExpertOutput bundles every recommendation one expert produced for a request.
type ExpertOutput struct {
	Agent           string           `json:"agent"`
	Persona         string           `json:"persona"`
	Recommendations []Recommendation `json:"recommendations"`
}
