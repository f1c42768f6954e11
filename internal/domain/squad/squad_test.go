package squad_test

import (
	"fmt"
	"testing"

	"pundit/internal/domain/model"
	"pundit/internal/domain/squad"
	"pundit/internal/domain/types"

	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-6

func dist(zeros, blanks, tickers, haulers float64) model.Distribution {
	return model.Distribution{
		types.Zeros:   zeros,
		types.Blanks:  blanks,
		types.Tickers: tickers,
		types.Haulers: haulers,
	}
}

func agg(id, club string, pos types.Position, price float64, probs model.Distribution) model.AggregatedCandidate {
	return model.AggregatedCandidate{ID: id, Name: id, Club: club, Position: pos, Price: price, Probs: probs}
}

// fullSquad builds a valid 15: 2 GK, 5 DEF, 5 MID, 3 FWD spread over enough
// clubs to stay under the per-club cap, priced uniformly.
func fullSquad(price float64) []model.AggregatedCandidate {
	var team []model.AggregatedCandidate
	i := 0
	add := func(pos types.Position, n int) {
		for k := 0; k < n; k++ {
			club := fmt.Sprintf("CLB%d", i/2)
			team = append(team, agg(fmt.Sprintf("p%d", i), club, pos, price, dist(0.1, 0.2, 0.4, 0.3)))
			i++
		}
	}
	add(types.Goalkeeper, 2)
	add(types.Defender, 5)
	add(types.Midfielder, 5)
	add(types.Forward, 3)
	return team
}

func TestValidate(t *testing.T) {
	Convey("Given candidate squads", t, func() {
		Convey("When the squad satisfies every constraint", func() {
			team := fullSquad(6.0)

			Convey("Then no violations are reported", func() {
				So(squad.Validate(team, 100.0, squad.DefaultMaxPerClub), ShouldBeEmpty)
			})
		})

		Convey("When the squad is short of fifteen players", func() {
			team := fullSquad(6.0)[:13]

			violations := squad.Validate(team, 100.0, squad.DefaultMaxPerClub)

			Convey("Then the count violation is reported", func() {
				So(violations, ShouldContain, "selected_count=13 != 15")
			})
		})

		Convey("When the squad spends past the budget", func() {
			team := fullSquad(8.0) // 15 * 8.0 = 120

			violations := squad.Validate(team, 100.0, squad.DefaultMaxPerClub)

			Convey("Then the budget violation is reported with both amounts", func() {
				So(violations, ShouldContain, "budget_exceeded=120.0 > 100.0")
			})
		})

		Convey("When a position slot count is off", func() {
			team := fullSquad(6.0)
			// Turn one midfielder into a fourth forward.
			for i := range team {
				if team[i].Position == types.Midfielder {
					team[i].Position = types.Forward
					break
				}
			}

			violations := squad.Validate(team, 100.0, squad.DefaultMaxPerClub)

			Convey("Then both affected positions are reported", func() {
				So(violations, ShouldContain, "pos_MID=4 != 5")
				So(violations, ShouldContain, "pos_FWD=4 != 3")
			})
		})

		Convey("When one club exceeds the cap", func() {
			team := fullSquad(6.0)
			for i := 0; i < 4; i++ {
				team[i].Club = "ARS"
			}

			violations := squad.Validate(team, 100.0, squad.DefaultMaxPerClub)

			Convey("Then the club violation is reported", func() {
				So(violations, ShouldContain, "club_ARS=4 > 3")
			})
		})

		Convey("When several constraints fail at once", func() {
			team := fullSquad(9.0)[:12]

			violations := squad.Validate(team, 100.0, squad.DefaultMaxPerClub)

			Convey("Then validation reports all of them without short-circuiting", func() {
				So(len(violations), ShouldBeGreaterThanOrEqualTo, 3)
				So(violations, ShouldContain, "selected_count=12 != 15")
				So(violations, ShouldContain, "budget_exceeded=108.0 > 100.0")
			})
		})

		Convey("When the spend sits exactly at the budget", func() {
			team := fullSquad(100.0 / 15.0)

			Convey("Then floating error does not trip the budget check", func() {
				So(squad.Validate(team, 100.0, squad.DefaultMaxPerClub), ShouldBeEmpty)
			})
		})
	})
}

func TestGreedyFallback(t *testing.T) {
	Convey("Given an aggregated pool deep enough for a full squad", t, func() {
		var pool []model.AggregatedCandidate
		i := 0
		add := func(pos types.Position, n int, price float64, probs model.Distribution) {
			for k := 0; k < n; k++ {
				club := fmt.Sprintf("CLB%d", i/2)
				pool = append(pool, agg(fmt.Sprintf("p%d", i), club, pos, price, probs))
				i++
			}
		}
		strong := dist(0.05, 0.15, 0.5, 0.3)
		weak := dist(0.4, 0.4, 0.15, 0.05)
		add(types.Goalkeeper, 3, 4.5, strong)
		add(types.Defender, 7, 5.0, strong)
		add(types.Midfielder, 7, 6.5, strong)
		add(types.Forward, 5, 7.0, weak)

		Convey("When assembling the fallback squad within a generous budget", func() {
			sel := squad.GreedyFallback(pool, 100.0)

			Convey("Then the squad is complete and valid", func() {
				So(sel.Selected, ShouldHaveLength, types.SquadSize)
				So(squad.Validate(sel.Selected, 100.0, squad.DefaultMaxPerClub), ShouldBeEmpty)
			})

			Convey("And the justification names the greedy strategy", func() {
				So(sel.Justification, ShouldContainSubstring, "greedy")
			})

			Convey("And constraints_violated starts empty, not nil", func() {
				So(sel.ConstraintsViolated, ShouldNotBeNil)
				So(sel.ConstraintsViolated, ShouldBeEmpty)
			})
		})

		Convey("When higher-upside candidates compete for the same slots", func() {
			hot := agg("hot_fwd", "HOT", types.Forward, 7.0, dist(0.0, 0.1, 0.4, 0.5))
			withHot := append([]model.AggregatedCandidate{hot}, pool...)

			sel := squad.GreedyFallback(withHot, 100.0)

			Convey("Then the highest Tickers + 2*Haulers score wins a slot", func() {
				ids := make([]string, 0, len(sel.Selected))
				for _, c := range sel.Selected {
					ids = append(ids, c.ID)
				}
				So(ids, ShouldContain, "hot_fwd")
			})
		})

		Convey("When two candidates score identically", func() {
			sel := squad.GreedyFallback(pool, 100.0)

			Convey("Then input order breaks the tie", func() {
				gks := make([]string, 0, 2)
				for _, c := range sel.Selected {
					if c.Position == types.Goalkeeper {
						gks = append(gks, c.ID)
					}
				}
				So(gks, ShouldResemble, []string{"p0", "p1"})
			})
		})

		Convey("When the budget cannot cover a full squad", func() {
			sel := squad.GreedyFallback(pool, 30.0)

			Convey("Then the squad comes back short and validation flags it", func() {
				So(len(sel.Selected), ShouldBeLessThan, types.SquadSize)
				violations := squad.Validate(sel.Selected, 30.0, squad.DefaultMaxPerClub)
				So(violations, ShouldNotBeEmpty)
			})

			Convey("And the partial squad still respects the budget", func() {
				So(sel.Spend(), ShouldBeLessThanOrEqualTo, 30.0)
			})
		})

		Convey("When the pool itself is too shallow", func() {
			shallow := pool[:4]

			sel := squad.GreedyFallback(shallow, 100.0)

			Convey("Then the selection is short, never padded", func() {
				So(len(sel.Selected), ShouldBeLessThan, types.SquadSize)
			})
		})

		Convey("When the fallback runs twice on the same pool", func() {
			first := squad.GreedyFallback(pool, 100.0)
			second := squad.GreedyFallback(pool, 100.0)

			Convey("Then the result is deterministic", func() {
				So(second.Selected, ShouldResemble, first.Selected)
			})

			Convey("And the input pool order is untouched", func() {
				So(pool[0].ID, ShouldEqual, "p0")
				So(pool[len(pool)-1].ID, ShouldEqual, fmt.Sprintf("p%d", len(pool)-1))
			})
		})
	})
}
