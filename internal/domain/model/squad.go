package model

import (
	"pundit/internal/domain/types"
)

// AggregatedCandidate carries the consensus view of one candidate across
// all experts: the averaged, renormalized distribution plus every expert's
// justification prefixed by the originating agent name.
type AggregatedCandidate struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Club           string         `json:"club"`
	Position       types.Position `json:"position"`
	Price          float64        `json:"price"`
	Probs          Distribution   `json:"probs"`
	Justifications []string       `json:"expert_justifications"`
}

// Selection is the completed squad with its decision metadata. Selected
// holds the full 15 when the squad is valid; ConstraintsViolated is
// non-empty whenever the deterministic fallback was substituted.
type Selection struct {
	Selected            []AggregatedCandidate `json:"selected"`
	Bench               []AggregatedCandidate `json:"bench,omitempty"`
	Justification       string                `json:"justification"`
	ConstraintsViolated []string              `json:"constraints_violated"`
}

// Spend returns the total price of the selected squad.
func (s Selection) Spend() float64 {
	var total float64
	for _, c := range s.Selected {
		total += c.Price
	}
	return total
}

// Explanation bundles the raw expert outputs with the meta decision tag
// returned alongside the squad.
type Explanation struct {
	ExpertOutputs []ExpertOutput `json:"expert_outputs"`
	MetaDecision  string         `json:"meta_decision"`
}

// Meta decision tags.
const (
	DecisionSynthesized = "synthesized"
	DecisionFallback    = "fallback"
)
