// Package types contains common types used across the application.
package types

// Position is a squad slot category.
type Position string

// Squad positions.
const (
	Goalkeeper Position = "GK"
	Defender   Position = "DEF"
	Midfielder Position = "MID"
	Forward    Position = "FWD"
)

// Positions lists all positions in formation order.
var Positions = []Position{Goalkeeper, Defender, Midfielder, Forward}

// Valid reports whether p is one of the four squad positions.
func (p Position) Valid() bool {
	switch p {
	case Goalkeeper, Defender, Midfielder, Forward:
		return true
	}
	return false
}

// Outcome is a scoring bucket for a player's expected performance tier.
type Outcome string

// Outcome classes, mutually exclusive.
const (
	Zeros   Outcome = "Zeros"   // 0 pts
	Blanks  Outcome = "Blanks"  // 1-2 pts
	Tickers Outcome = "Tickers" // 3-7 pts
	Haulers Outcome = "Haulers" // 8+ pts
)

// Outcomes lists the four outcome classes in canonical order.
var Outcomes = []Outcome{Zeros, Blanks, Tickers, Haulers}

// Formation maps each position to its required slot count in a full squad:
// 2 GK, 5 DEF, 5 MID, 3 FWD, total 15.
var Formation = map[Position]int{
	Goalkeeper: 2,
	Defender:   5,
	Midfielder: 5,
	Forward:    3,
}

// SquadSize is the number of players in a complete squad.
const SquadSize = 15

// RequiredCount returns a fresh mutable copy of the formation requirement.
func RequiredCount() map[Position]int {
	req := make(map[Position]int, len(Formation))
	for pos, n := range Formation {
		req[pos] = n
	}
	return req
}
