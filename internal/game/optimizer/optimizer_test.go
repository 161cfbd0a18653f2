package optimizer_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/walkscape/internal/game/activity"
	"github.com/cory-johannsen/walkscape/internal/game/constraint"
	"github.com/cory-johannsen/walkscape/internal/game/gearset"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/optimizer"
)

type recorder struct {
	optimizer.NopObserver
	phases []optimizer.Phase
	swaps  []map[string]float64
}

func (r *recorder) PhaseChanged(p optimizer.Phase) { r.phases = append(r.phases, p) }

func (r *recorder) SwapAccepted(_ int, _ gearset.SlotName, _, _ *item.Item, m map[string]float64) {
	r.swaps = append(r.swaps, m)
}

func valueScore(g *gearset.Gearset) (map[string]float64, error) {
	total := 0.0
	for _, it := range g.Items() {
		total += float64(it.Value)
	}
	return map[string]float64{"value": total, "count": float64(g.Len())}, nil
}

func mk(name string, slot item.Slot, value int, keywords ...string) *item.Item {
	return &item.Item{Name: name, UUID: name, Slot: slot, Value: value, Keywords: keywords}
}

func TestRanking_Better(t *testing.T) {
	r := optimizer.Ranking{{Metric: "steps"}, {Metric: "xp", HigherIsBetter: true}}
	assert.True(t, r.Better(map[string]float64{"steps": 10}, map[string]float64{"steps": 11}))
	assert.True(t, r.Better(map[string]float64{"steps": 10, "xp": 2}, map[string]float64{"steps": 10, "xp": 1}))
	assert.False(t, r.Better(map[string]float64{"steps": 10, "xp": 1}, map[string]float64{"steps": 10, "xp": 1}))
	assert.True(t, r.Better(map[string]float64{"steps": 10}, map[string]float64{}))
}

func TestParseRanking(t *testing.T) {
	dir := func(name string) (bool, bool) { return name == "xp", name == "xp" || name == "steps" }
	r, err := optimizer.ParseRanking("steps, xp, custom:max", dir)
	require.NoError(t, err)
	assert.Equal(t, optimizer.Ranking{{Metric: "steps"}, {Metric: "xp", HigherIsBetter: true}, {Metric: "custom", HigherIsBetter: true}}, r)

	_, err = optimizer.ParseRanking("mystery", dir)
	assert.ErrorIs(t, err, optimizer.ErrUnknownMetric)
	_, err = optimizer.ParseRanking("steps:sideways", dir)
	assert.Error(t, err)
	_, err = optimizer.ParseRanking(" , ", dir)
	assert.Error(t, err)
}

func TestRun_GreedyPicksBestPerSlot(t *testing.T) {
	rec := &recorder{}
	p := optimizer.Problem{
		Slots: []gearset.SlotName{gearset.Head, gearset.Feet, gearset.Neck},
		Candidates: map[gearset.SlotName][]*item.Item{
			gearset.Head: {mk("Cap", item.SlotHead, 1), mk("Crown", item.SlotHead, 9)},
			gearset.Feet: {mk("Boots", item.SlotFeet, 3)},
		},
		Score:    valueScore,
		Ranking:  optimizer.Ranking{{Metric: "value", HigherIsBetter: true}},
		Observer: rec,
	}
	res, err := optimizer.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "Crown", res.Gearset.Get(gearset.Head).Name)
	assert.Equal(t, "Boots", res.Gearset.Get(gearset.Feet).Name)
	assert.Nil(t, res.Gearset.Get(gearset.Neck))
	assert.Equal(t, 12.0, res.Metrics["value"])
	assert.True(t, res.Converged)
	assert.True(t, res.Valid)
	assert.Equal(t, 0, res.Iterations)
	assert.Equal(t, []optimizer.Phase{optimizer.PhaseGreedy, optimizer.PhaseLocalSearch, optimizer.PhaseConverged}, rec.phases)
}

func TestRun_NoCandidates(t *testing.T) {
	_, err := optimizer.Run(context.Background(), optimizer.Problem{
		Slots:   gearset.GearSlots,
		Score:   valueScore,
		Ranking: optimizer.Ranking{{Metric: "value"}},
	})
	assert.ErrorIs(t, err, optimizer.ErrNoCandidates)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := optimizer.Run(ctx, optimizer.Problem{
		Slots:      []gearset.SlotName{gearset.Head},
		Candidates: map[gearset.SlotName][]*item.Item{gearset.Head: {mk("Cap", item.SlotHead, 1)}},
		Score:      valueScore,
		Ranking:    optimizer.Ranking{{Metric: "value"}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ToolsRespectKeywordExclusivity(t *testing.T) {
	tools := []*item.Item{
		mk("Iron Pickaxe", item.SlotTools, 5, "Pickaxe", "Tool"),
		mk("Gold Pickaxe", item.SlotTools, 8, "Pickaxe", "Tool"),
		mk("Lantern", item.SlotTools, 2, "Light Source", "Tool"),
	}
	v := constraint.New(nil, activity.Requirements{})
	res, err := optimizer.Run(context.Background(), optimizer.Problem{
		Slots:      gearset.ToolSlotsFor(3),
		Candidates: map[gearset.SlotName][]*item.Item{gearset.Tool0: tools, gearset.Tool1: tools, gearset.Tool2: tools},
		Score:      valueScore,
		Validate:   v.Validate,
		Ranking:    optimizer.Ranking{{Metric: "value", HigherIsBetter: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Metrics["value"])
	assert.Len(t, res.Gearset.Tools(), 2)
}

func TestRun_RepairAndBoostSatisfyKeywordRequirement(t *testing.T) {
	required := map[string]int{"diving gear": 2}
	validate := func(g *gearset.Gearset, full bool) bool {
		if !constraint.Unique(g, nil).OK {
			return false
		}
		return !full || constraint.KeywordCount(g, "diving gear") >= 2
	}
	p := optimizer.Problem{
		Slots: []gearset.SlotName{gearset.Head, gearset.Chest, gearset.Feet},
		Candidates: map[gearset.SlotName][]*item.Item{
			gearset.Head:  {mk("Crown", item.SlotHead, 100), mk("Diving Helmet", item.SlotHead, 1, "Diving Gear")},
			gearset.Chest: {mk("Plate", item.SlotChest, 100), mk("Diving Suit", item.SlotChest, 1, "Diving Gear")},
			gearset.Feet:  {mk("Boots", item.SlotFeet, 5)},
		},
		Score:            valueScore,
		Validate:         validate,
		Ranking:          optimizer.Ranking{{Metric: "value", HigherIsBetter: true}},
		RequiredKeywords: required,
	}
	res, err := optimizer.Run(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 2, constraint.KeywordCount(res.Gearset, "diving gear"))
}

func TestPropertyLocalSearchNeverRegresses(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		slots := []gearset.SlotName{gearset.Head, gearset.Chest, gearset.Legs}
		cands := make(map[gearset.SlotName][]*item.Item)
		for _, s := range slots {
			n := rapid.IntRange(1, 5).Draw(t, "n")
			for i := 0; i < n; i++ {
				kws := []string{}
				if rapid.Bool().Draw(t, "set") {
					kws = append(kws, "Proper Gear")
				}
				v := rapid.IntRange(0, 50).Draw(t, "value")
				cands[s] = append(cands[s], mk(fmt.Sprintf("%s-%d", s, i), s.Category(), v, kws...))
			}
		}
		// Set pieces interact, so greedy alone is not optimal.
		score := func(g *gearset.Gearset) (map[string]float64, error) {
			m, _ := valueScore(g)
			if c := constraint.KeywordCount(g, "proper gear"); c >= 2 {
				m["value"] += float64(30 * c)
			}
			return m, nil
		}
		rec := &recorder{}
		res, err := optimizer.Run(context.Background(), optimizer.Problem{
			Slots:      slots,
			Candidates: cands,
			Score:      score,
			Ranking:    optimizer.Ranking{{Metric: "value", HigherIsBetter: true}},
			Observer:   rec,
		})
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i < len(rec.swaps); i++ {
			if rec.swaps[i]["value"] <= rec.swaps[i-1]["value"] {
				t.Fatalf("swap %d regressed: %v -> %v", i, rec.swaps[i-1]["value"], rec.swaps[i]["value"])
			}
		}
		if len(rec.swaps) > 0 && rec.swaps[len(rec.swaps)-1]["value"] != res.Metrics["value"] {
			t.Fatalf("result metrics differ from last accepted swap")
		}
	})
}
