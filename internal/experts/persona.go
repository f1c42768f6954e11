// Package experts implements the persona-driven scorers that rate every
// candidate's outcome distribution through the text-generation collaborator.
package experts

import (
	"fmt"

	"pundit/internal/domain/model"
)

// Persona is one of the fixed analyst personas. The set is closed: an
// unrecognized persona is a construction-time error, never a silent default.
type Persona int

// The persona set.
const (
	ValueHunter Persona = iota
	SafeBet
	DifferentialsSpecialist
)

var personaNames = map[Persona]string{
	ValueHunter:             "value_hunter",
	SafeBet:                 "safe_bet",
	DifferentialsSpecialist: "differentials_specialist",
}

// String returns the canonical persona name.
func (p Persona) String() string {
	if name, ok := personaNames[p]; ok {
		return name
	}
	return fmt.Sprintf("persona(%d)", int(p))
}

// ParsePersona resolves a persona name to its variant.
func ParsePersona(name string) (Persona, error) {
	for p, n := range personaNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPersona, name)
}

// AllPersonas lists every persona in canonical order.
func AllPersonas() []Persona {
	return []Persona{ValueHunter, SafeBet, DifferentialsSpecialist}
}

// Instructions returns the system prompt for the persona.
func (p Persona) Instructions() string {
	switch p {
	case ValueHunter:
		return `You are the 'Value Hunter,' an FPL analyst specializing in underpriced high-PPM players.

Analyze candidates using fields like:
value_season, expected_points, pts_per_90, minutes, goals_scored, assists.

Assign probabilities for each of the 4 outcomes:
Zeros (0 pts), Blanks (1-2 pts), Tickers (3-7 pts), Haulers (8+ pts)

For EACH player, include a SHORT justification (max 15-20 words).

Return ONLY a JSON array:
[
  {
    "candidate_id": "saka_arsenal",
    "probs": {"Zeros":0.2,"Blanks":0.3,"Tickers":0.3,"Haulers":0.2},
    "justification": "high output per 90 + underpriced"
  }
]`
	case SafeBet:
		return `You are the 'Safe Bet,' an FPL analyst focused on consistency and reliability.

Use stability signals:
minutes, appearances, pts_per_appearance, total_points.

Assign probabilities for each of the 4 outcomes:
Zeros (0 pts), Blanks (1-2 pts), Tickers (3-7 pts), Haulers (8+ pts)

Include a short justification for each player.

Return ONLY a JSON array:
[
  {
    "candidate_id": "saka_arsenal",
    "probs": {"Zeros":0.25,"Blanks":0.25,"Tickers":0.25,"Haulers":0.25},
    "justification": "nailed starter, safe floor"
  }
]`
	case DifferentialsSpecialist:
		return `You are the 'Differentials Specialist,' targeting low-owned explosive players.

Use fields like:
pts_per_90, goals_scored, assists, expected_points.

Assign probabilities for each of the 4 outcomes:
Zeros (0 pts), Blanks (1-2 pts), Tickers (3-7 pts), Haulers (8+ pts)

Include a short justification for each player.

Return ONLY a JSON array:
[
  {
    "candidate_id": "saka_arsenal",
    "probs": {"Zeros":0.1,"Blanks":0.2,"Tickers":0.4,"Haulers":0.3},
    "justification": "rising form, strong underlying numbers"
  }
]`
	}
	return ""
}

// featureKeys returns the feature-bag keys this persona reads.
func (p Persona) featureKeys() []string {
	switch p {
	case ValueHunter:
		return []string{"value_season", "expected_points", "pts_per_90", "minutes", "goals_scored", "assists"}
	case SafeBet:
		return []string{"minutes", "appearances", "pts_per_appearance", "total_points"}
	case DifferentialsSpecialist:
		return []string{"pts_per_90", "goals_scored", "assists", "expected_points"}
	}
	return nil
}

// project builds the compact candidate view serialized into the prompt:
// identity plus the persona's feature slice.
func (p Persona) project(c model.Candidate) map[string]any {
	compact := map[string]any{
		"candidate_id": c.ID,
		"name":         c.Name,
		"position":     c.Position,
		"club":         c.Club,
		"price":        c.Price,
	}
	for _, key := range p.featureKeys() {
		compact[key] = c.Feature(key)
	}
	return compact
}
