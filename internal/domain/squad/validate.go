package squad

import (
	"fmt"
	"sort"

	"pundit/internal/domain/model"
	"pundit/internal/domain/types"
)

// budgetEpsilon absorbs floating error in price sums.
const budgetEpsilon = 1e-6

// DefaultMaxPerClub caps how many players one club may contribute.
const DefaultMaxPerClub = 3

// Validate checks a squad against every hard constraint and reports all
// violations found, never short-circuiting. An empty result means the squad
// is fully valid: exactly 15 players, within budget, formation counts met,
// and no club above the cap.
func Validate(selected []model.AggregatedCandidate, budget float64, maxPerClub int) []string {
	var violations []string

	if len(selected) != types.SquadSize {
		violations = append(violations, fmt.Sprintf("selected_count=%d != %d", len(selected), types.SquadSize))
	}

	var spent float64
	for _, c := range selected {
		spent += c.Price
	}
	if spent > budget+budgetEpsilon {
		violations = append(violations, fmt.Sprintf("budget_exceeded=%.1f > %.1f", spent, budget))
	}

	posCounts := make(map[types.Position]int, len(types.Positions))
	clubCounts := make(map[string]int)
	for _, c := range selected {
		posCounts[c.Position]++
		clubCounts[c.Club]++
	}

	for _, pos := range types.Positions {
		if posCounts[pos] != types.Formation[pos] {
			violations = append(violations, fmt.Sprintf("pos_%s=%d != %d", pos, posCounts[pos], types.Formation[pos]))
		}
	}

	clubs := make([]string, 0, len(clubCounts))
	for club := range clubCounts {
		clubs = append(clubs, club)
	}
	sort.Strings(clubs)
	for _, club := range clubs {
		if clubCounts[club] > maxPerClub {
			violations = append(violations, fmt.Sprintf("club_%s=%d > %d", club, clubCounts[club], maxPerClub))
		}
	}

	return violations
}
