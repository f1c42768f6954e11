package meta_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"pundit/internal/domain/consensus"
	"pundit/internal/domain/model"
	"pundit/internal/domain/squad"
	"pundit/internal/domain/types"
	"pundit/internal/llm"
	"pundit/internal/meta"
	"pundit/pkg/logger"

	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func dist(zeros, blanks, tickers, haulers float64) model.Distribution {
	return model.Distribution{
		types.Zeros:   zeros,
		types.Blanks:  blanks,
		types.Tickers: tickers,
		types.Haulers: haulers,
	}
}

// buildPool returns a deep candidate pool: 3 GK, 6 DEF, 6 MID, 4 FWD, each
// at its own club so the per-club cap never interferes.
func buildPool() []model.Candidate {
	var pool []model.Candidate
	i := 0
	add := func(pos types.Position, n int) {
		for k := 0; k < n; k++ {
			pool = append(pool, model.Candidate{
				ID:       fmt.Sprintf("%s%d_CLB%d", pos, k, i),
				Name:     fmt.Sprintf("%s%d", pos, k),
				Club:     fmt.Sprintf("CLB%d", i),
				Position: pos,
				Price:    5.0,
			})
			i++
		}
	}
	add(types.Goalkeeper, 3)
	add(types.Defender, 6)
	add(types.Midfielder, 6)
	add(types.Forward, 4)
	return pool
}

// coverAll gives every pool candidate the same verdict from each of three
// experts. Tickers 0.4 keeps everyone through the filter while staying below
// the high-vote bar, so nothing gets locked.
func coverAll(pool []model.Candidate) []model.ExpertOutput {
	agents := []string{"value_hunter", "safe_bet", "differentials_specialist"}
	outputs := make([]model.ExpertOutput, len(agents))
	for i, agent := range agents {
		recs := make([]model.Recommendation, len(pool))
		for j, c := range pool {
			recs[j] = model.Recommendation{
				CandidateID:   c.ID,
				Probs:         dist(0.1, 0.2, 0.4, 0.3),
				Justification: "steady pick",
			}
		}
		outputs[i] = model.ExpertOutput{Agent: agent, Persona: agent, Recommendations: recs}
	}
	return outputs
}

// validSelection picks a legal 15 from the pool by formation count.
func validSelection(pool []model.Candidate) []string {
	quota := types.RequiredCount()
	var ids []string
	for _, c := range pool {
		if quota[c.Position] > 0 {
			ids = append(ids, c.ID)
			quota[c.Position]--
		}
	}
	return ids
}

func completionJSON(selected []string, justification string) string {
	wire := map[string]any{
		"selected":             selected,
		"bench":                []string{},
		"justification":        justification,
		"constraints_violated": []string{},
	}
	b, _ := json.Marshal(wire)
	return string(b)
}

func TestCompleter_Synthesize(t *testing.T) {
	Convey("Given a covered candidate pool and a consensus engine", t, func() {
		pool := buildPool()
		outputs := coverAll(pool)
		engine := consensus.NewEngine()
		ctx := context.Background()

		Convey("When the collaborator returns a legal completion", func() {
			ids := validSelection(pool)
			client := &llm.Mock{GenerateFunc: func(context.Context, llm.Request) (llm.Response, error) {
				return llm.Response{Text: completionJSON(ids, "balanced squad within budget")}, nil
			}}
			completer := meta.NewCompleter(client, engine)

			sel, err := completer.Synthesize(ctx, outputs, pool, 100.0, squad.DefaultMaxPerClub)

			Convey("Then the squad is the synthesized 15 with no violations", func() {
				So(err, ShouldBeNil)
				So(sel.Selected, ShouldHaveLength, types.SquadSize)
				So(sel.ConstraintsViolated, ShouldNotBeNil)
				So(sel.ConstraintsViolated, ShouldBeEmpty)
				So(sel.Justification, ShouldEqual, "balanced squad within budget")
			})

			Convey("And the squad passes validation outright", func() {
				So(err, ShouldBeNil)
				So(squad.Validate(sel.Selected, 100.0, squad.DefaultMaxPerClub), ShouldBeEmpty)
			})
		})

		Convey("When the collaborator wraps its answer in a code fence", func() {
			ids := validSelection(pool)
			client := &llm.Mock{GenerateFunc: func(context.Context, llm.Request) (llm.Response, error) {
				return llm.Response{Text: "```json\n" + completionJSON(ids, "fenced") + "\n```"}, nil
			}}
			completer := meta.NewCompleter(client, engine)

			sel, err := completer.Synthesize(ctx, outputs, pool, 100.0, squad.DefaultMaxPerClub)

			Convey("Then the fence is stripped and the squad still parses", func() {
				So(err, ShouldBeNil)
				So(sel.Selected, ShouldHaveLength, types.SquadSize)
				So(sel.ConstraintsViolated, ShouldBeEmpty)
			})
		})

		Convey("When every collaborator call fails", func() {
			client := &llm.Mock{}
			completer := meta.NewCompleter(client, engine)

			sel, err := completer.Synthesize(ctx, outputs, pool, 100.0, squad.DefaultMaxPerClub)

			Convey("Then the deterministic fallback is substituted, tagged exception", func() {
				So(err, ShouldBeNil)
				So(sel.ConstraintsViolated, ShouldContain, "exception")
			})

			Convey("And the fallback squad itself is complete and valid", func() {
				So(err, ShouldBeNil)
				So(sel.Selected, ShouldHaveLength, types.SquadSize)
				So(squad.Validate(sel.Selected, 100.0, squad.DefaultMaxPerClub), ShouldBeEmpty)
			})
		})

		Convey("When the collaborator answer is not JSON", func() {
			client := &llm.Mock{GenerateFunc: func(context.Context, llm.Request) (llm.Response, error) {
				return llm.Response{Text: "here is my squad: the best eleven plus four"}, nil
			}}
			completer := meta.NewCompleter(client, engine)

			sel, err := completer.Synthesize(ctx, outputs, pool, 100.0, squad.DefaultMaxPerClub)

			Convey("Then the fallback is substituted, tagged exception", func() {
				So(err, ShouldBeNil)
				So(sel.ConstraintsViolated, ShouldContain, "exception")
				So(sel.Selected, ShouldHaveLength, types.SquadSize)
			})
		})

		Convey("When the collaborator picks too few players", func() {
			ids := validSelection(pool)[:10]
			client := &llm.Mock{GenerateFunc: func(context.Context, llm.Request) (llm.Response, error) {
				return llm.Response{Text: completionJSON(ids, "ran short")}, nil
			}}
			completer := meta.NewCompleter(client, engine)

			sel, err := completer.Synthesize(ctx, outputs, pool, 100.0, squad.DefaultMaxPerClub)

			Convey("Then validation rejects it and the fallback carries the violations", func() {
				So(err, ShouldBeNil)
				So(sel.ConstraintsViolated, ShouldContain, "selected_count=10 != 15")
				So(sel.Selected, ShouldHaveLength, types.SquadSize)
			})
		})

		Convey("When the collaborator invents identities outside the pool", func() {
			ids := append(validSelection(pool)[:14], "made_up_player_XXX")
			client := &llm.Mock{GenerateFunc: func(context.Context, llm.Request) (llm.Response, error) {
				return llm.Response{Text: completionJSON(ids, "one invention")}, nil
			}}
			completer := meta.NewCompleter(client, engine)

			sel, err := completer.Synthesize(ctx, outputs, pool, 100.0, squad.DefaultMaxPerClub)

			Convey("Then the stray identity is dropped and the short squad falls back", func() {
				So(err, ShouldBeNil)
				So(sel.ConstraintsViolated, ShouldNotBeEmpty)
				for _, c := range sel.Selected {
					So(c.ID, ShouldNotEqual, "made_up_player_XXX")
				}
			})
		})

		Convey("When the collaborator lists the same identity twice", func() {
			ids := validSelection(pool)
			ids[1] = ids[0] // second keeper slot repeats the first keeper
			client := &llm.Mock{GenerateFunc: func(context.Context, llm.Request) (llm.Response, error) {
				return llm.Response{Text: completionJSON(ids, "double counted")}, nil
			}}
			completer := meta.NewCompleter(client, engine)

			sel, err := completer.Synthesize(ctx, outputs, pool, 100.0, squad.DefaultMaxPerClub)

			Convey("Then the repeat is dropped, the shortfall is flagged, and no player appears twice", func() {
				So(err, ShouldBeNil)
				So(sel.ConstraintsViolated, ShouldContain, "selected_count=14 != 15")
				So(sel.Selected, ShouldHaveLength, types.SquadSize)
				counts := make(map[string]int)
				for _, c := range sel.Selected {
					counts[c.ID]++
				}
				for _, n := range counts {
					So(n, ShouldEqual, 1)
				}
			})
		})

		Convey("When an expert output violates the coverage contract", func() {
			broken := coverAll(pool)
			broken[0].Recommendations = broken[0].Recommendations[:1]
			broken[1].Recommendations = nil
			broken[2].Recommendations = nil
			client := &llm.Mock{}
			completer := meta.NewCompleter(client, engine)

			_, err := completer.Synthesize(ctx, broken, pool, 100.0, squad.DefaultMaxPerClub)

			Convey("Then the contract error propagates instead of falling back", func() {
				So(err, ShouldWrap, consensus.ErrMissingRecommendations)
			})
		})
	})
}

func TestCompleter_LockedPicks(t *testing.T) {
	Convey("Given a pool where experts strongly agree on one forward", t, func() {
		pool := buildPool()
		outputs := coverAll(pool)
		star := pool[len(pool)-1] // a forward
		for i := range outputs[:2] {
			recs := outputs[i].Recommendations
			recs[len(recs)-1].Probs = dist(0.0, 0.05, 0.15, 0.8)
		}
		engine := consensus.NewEngine()
		ctx := context.Background()

		Convey("When the collaborator fills the remaining slots", func() {
			client := &llm.Mock{GenerateFunc: func(context.Context, llm.Request) (llm.Response, error) {
				// The locked player must be excluded from the choice set.
				quota := types.RequiredCount()
				quota[types.Forward]--
				var ids []string
				for _, c := range pool {
					if c.ID == star.ID || quota[c.Position] <= 0 {
						continue
					}
					ids = append(ids, c.ID)
					quota[c.Position]--
				}
				return llm.Response{Text: completionJSON(ids, "built around the locked pick")}, nil
			}}
			completer := meta.NewCompleter(client, engine)

			sel, err := completer.Synthesize(ctx, outputs, pool, 100.0, squad.DefaultMaxPerClub)

			Convey("Then the locked forward leads the squad", func() {
				So(err, ShouldBeNil)
				So(sel.Selected, ShouldHaveLength, types.SquadSize)
				So(sel.Selected[0].ID, ShouldEqual, star.ID)
				So(sel.ConstraintsViolated, ShouldBeEmpty)
			})
		})
	})
}

func TestCompleter_DegenerateInput(t *testing.T) {
	Convey("Given a pool far too shallow for a full squad", t, func() {
		pool := buildPool()[:5]
		outputs := coverAll(pool)
		engine := consensus.NewEngine()
		client := &llm.Mock{}
		completer := meta.NewCompleter(client, engine)

		Convey("When synthesis runs end to end", func() {
			sel, err := completer.Synthesize(context.Background(), outputs, pool, 100.0, squad.DefaultMaxPerClub)

			Convey("Then the result is flagged rather than silently invalid", func() {
				So(err, ShouldBeNil)
				So(sel.ConstraintsViolated, ShouldNotBeEmpty)
				So(sel.ConstraintsViolated, ShouldContain, "exception")
				So(len(sel.Selected), ShouldBeLessThan, types.SquadSize)
			})

			Convey("And the fallback's own shortfalls are appended", func() {
				So(err, ShouldBeNil)
				So(sel.ConstraintsViolated, ShouldContain, fmt.Sprintf("selected_count=%d != %d", len(sel.Selected), types.SquadSize))
			})
		})
	})
}

func TestStripCodeFence(t *testing.T) {
	Convey("Given collaborator answers in assorted wrappings", t, func() {
		payload := `{"selected":[],"bench":[],"justification":"x","constraints_violated":[]}`

		Convey("When the payload is bare JSON", func() {
			So(meta.StripCodeFence(payload), ShouldEqual, payload)
		})

		Convey("When the payload sits inside a plain fence", func() {
			So(meta.StripCodeFence("```\n"+payload+"\n```"), ShouldEqual, payload)
		})

		Convey("When the opening fence carries a language tag", func() {
			So(meta.StripCodeFence("```json\n"+payload+"\n```"), ShouldEqual, payload)
		})

		Convey("When surrounding whitespace pads the fence", func() {
			So(meta.StripCodeFence("  \n```json\n"+payload+"\n```\n  "), ShouldEqual, payload)
		})
	})
}
