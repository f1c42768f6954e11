// Package candidates produces the ranked candidate pool: it aggregates
// per-gameweek player history from CSV files and ranks players with TOPSIS,
// position-aware so every squad slot can be filled from the pool.
package candidates

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pundit/internal/domain/types"
)

const minutesPerMatch = 90.0

// playerAggregate accumulates one player's history across gameweeks.
type playerAggregate struct {
	name        string
	position    types.Position
	club        string
	price       float64
	totalPoints float64
	minutes     float64
	goals       float64
	assists     float64
	appearances int
}

// elementTypes maps the numeric position encoding used by older exports.
var elementTypes = map[string]types.Position{
	"1": types.Goalkeeper,
	"2": types.Defender,
	"3": types.Midfielder,
	"4": types.Forward,
}

// loadSeason aggregates player stats from gameweek CSVs under
// <root>/<season>/gws/gw<N>.csv for every gameweek before the requested one.
// Gameweek 1 falls back to gw1.csv as its own history. Missing individual
// files are skipped; having no readable file at all is an error.
func loadSeason(root, season string, gameweek int) (map[string]*playerAggregate, error) {
	base := filepath.Join(root, season, "gws")
	if _, err := os.Stat(base); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSeasonNotFound, base)
	}

	gwRange := []int{1}
	if gameweek > 1 {
		gwRange = gwRange[:0]
		for gw := 1; gw < gameweek; gw++ {
			gwRange = append(gwRange, gw)
		}
	}

	players := make(map[string]*playerAggregate)
	loaded := 0
	for _, gw := range gwRange {
		path := filepath.Join(base, fmt.Sprintf("gw%d.csv", gw))
		if err := loadGameweek(path, players); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		loaded++
	}
	if loaded == 0 {
		return nil, fmt.Errorf("%w: season=%s gameweek=%d under %s", ErrNoData, season, gameweek, base)
	}
	return players, nil
}

// loadGameweek folds one gameweek file into the running aggregates.
func loadGameweek(path string, players map[string]*playerAggregate) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}

		name := firstField(row, col, "name", "web_name")
		if name == "" {
			name = "Unknown"
		}
		club := firstField(row, col, "team", "team_name")
		if club == "" {
			club = "Unknown"
		}
		key := name + "_" + club

		p := players[key]
		if p == nil {
			p = &playerAggregate{name: name, club: club}
			players[key] = p
		}

		p.position = parsePosition(row, col)
		p.price = parsePrice(row, col)
		p.totalPoints += fieldFloat(row, col, "total_points", "points")
		p.minutes += fieldFloat(row, col, "minutes")
		p.goals += fieldFloat(row, col, "goals_scored")
		p.assists += fieldFloat(row, col, "assists")
		p.appearances++
	}
	return nil
}

// features derives the scoring proxies used downstream.
func (p *playerAggregate) features() map[string]float64 {
	perAppearance := 0.0
	if p.appearances > 0 {
		perAppearance = p.totalPoints / float64(p.appearances)
	}
	per90 := 0.0
	if p.minutes > 0 {
		per90 = p.totalPoints / (p.minutes / minutesPerMatch)
	}
	if math.IsInf(per90, 0) || math.IsNaN(per90) {
		per90 = 0
	}
	valueSeason := 0.0
	if p.price > 0 {
		valueSeason = p.totalPoints / p.price
	}

	return map[string]float64{
		"total_points":       p.totalPoints,
		"minutes":            p.minutes,
		"goals_scored":       p.goals,
		"assists":            p.assists,
		"appearances":        float64(p.appearances),
		"pts_per_appearance": perAppearance,
		"pts_per_90":         per90,
		"expected_points":    per90,
		"value_season":       valueSeason,
	}
}

func firstField(row []string, col map[string]int, names ...string) string {
	for _, name := range names {
		if i, ok := col[name]; ok && i < len(row) {
			if v := strings.TrimSpace(row[i]); v != "" {
				return v
			}
		}
	}
	return ""
}

func fieldFloat(row []string, col map[string]int, names ...string) float64 {
	v := firstField(row, col, names...)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func parsePosition(row []string, col map[string]int) types.Position {
	if v := firstField(row, col, "position"); v != "" {
		pos := types.Position(strings.ToUpper(v))
		// Some exports use GKP for goalkeepers.
		if pos == "GKP" {
			pos = types.Goalkeeper
		}
		if pos.Valid() {
			return pos
		}
	}
	if v := firstField(row, col, "element_type"); v != "" {
		if pos, ok := elementTypes[v]; ok {
			return pos
		}
	}
	return ""
}

// defaultPrice stands in when an export carries no price column at all.
const defaultPrice = 5.0

func parsePrice(row []string, col map[string]int) float64 {
	// now_cost is in tenths of a million.
	if v := fieldFloat(row, col, "now_cost"); v > 0 {
		return v / 10.0
	}
	if v := fieldFloat(row, col, "price"); v > 0 {
		return v
	}
	return defaultPrice
}
