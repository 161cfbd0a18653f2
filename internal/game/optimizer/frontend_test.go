package optimizer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/game/activity"
	"github.com/cory-johannsen/walkscape/internal/game/aggregate"
	"github.com/cory-johannsen/walkscape/internal/game/character"
	"github.com/cory-johannsen/walkscape/internal/game/gearset"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/metrics"
	"github.com/cory-johannsen/walkscape/internal/game/optimizer"
	"github.com/cory-johannsen/walkscape/internal/game/skill"
	"github.com/cory-johannsen/walkscape/internal/game/stats"
)

func statItem(name string, slot item.Slot, stat string, v float64, keywords ...string) *item.Item {
	t := stats.NewTable()
	t.Add("mining", "global", stat, v)
	return &item.Item{Name: name, UUID: name, Slot: slot, Stats: t, Keywords: keywords}
}

func miner(t *testing.T) *character.Character {
	t.Helper()
	ch := character.New("miner")
	ch.SetSkillLevel(skill.Mining, 30)
	ch.AddInventory(statItem("Copper Pickaxe", item.SlotTools, "work_efficiency", 10, "Pickaxe"), 1)
	ch.AddInventory(statItem("Iron Pickaxe", item.SlotTools, "work_efficiency", 25, "Pickaxe"), 1)
	ch.AddBank(statItem("Gem Ring", item.SlotRing, "find_gems", 50), 1)
	hat := statItem("Lucky Hat", item.SlotHead, "find_gems", 500)
	hat.Requirements = []item.Requirement{{Type: item.ReqSkill, Skill: "mining", Level: 50}}
	ch.AddBank(hat, 1)
	return ch
}

var rubies = &activity.Activity{
	Name:          "Mining Rubies",
	PrimarySkill:  "mining",
	BaseSteps:     100,
	BaseXP:        20,
	MaxEfficiency: 1,
	Drops: []activity.Drop{
		{Item: "Ruby", Quantity: activity.Quantity{Min: 1, Max: 1}, ChancePercent: 5, Category: item.CategoryGem},
	},
}

func newOptimizer(t *testing.T) *optimizer.Optimizer {
	t.Helper()
	cache, err := stats.NewCache(0)
	require.NoError(t, err)
	return optimizer.New(aggregate.New(cache, zap.NewNop()), zap.NewNop())
}

func TestCandidates(t *testing.T) {
	slots, cands := optimizer.Candidates(miner(t), optimizer.Options{IgnoredItems: []string{"copper pickaxe"}})
	assert.Len(t, slots, len(gearset.GearSlots)+3)
	assert.Empty(t, cands[gearset.Head], "locked hat is excluded")
	require.Len(t, cands[gearset.Tool2], 1)
	assert.Equal(t, "Iron Pickaxe", cands[gearset.Tool2][0].Name)
	assert.Len(t, cands[gearset.Ring1], 1)
}

func TestForActivity_TargetNotFoundSuggests(t *testing.T) {
	_, err := newOptimizer(t).ForActivity(context.Background(), miner(t), rubies, optimizer.Options{Target: "Rubby"})
	require.ErrorIs(t, err, optimizer.ErrTargetNotFound)
	assert.Contains(t, err.Error(), `did you mean "Ruby"`)
}

func TestForActivity_PicksBestGear(t *testing.T) {
	out, err := newOptimizer(t).ForActivity(context.Background(), miner(t), rubies, optimizer.Options{Target: "ruby"})
	require.NoError(t, err)

	assert.Equal(t, "Iron Pickaxe", out.Gearset.Get(gearset.Tool0).Name)
	assert.Len(t, out.Gearset.Tools(), 1)
	assert.Equal(t, "Gem Ring", out.Gearset.Get(gearset.Ring1).Name)
	assert.Nil(t, out.Gearset.Get(gearset.Head))
	assert.InDelta(t, 0.5, out.Stats["work_efficiency"], 1e-12)
	assert.Equal(t, metrics.StepsPerItem, out.Ranking.Primary().Metric)
	require.NotNil(t, out.Baseline)
	assert.Less(t, out.Metrics[metrics.StepsPerItem], out.Baseline[metrics.StepsPerItem])
	assert.True(t, out.Valid)
}

type doubleXP struct{}

func (doubleXP) Name() string { return "double_xp" }
func (doubleXP) Evaluate(m map[string]float64) (float64, error) {
	return 2 * m[metrics.PrimaryXPPerStep], nil
}

func TestForActivity_DerivedMetric(t *testing.T) {
	opts := optimizer.Options{
		Ranking: optimizer.Ranking{{Metric: "double_xp", HigherIsBetter: true}},
		Derived: []optimizer.Derived{doubleXP{}},
	}
	out, err := newOptimizer(t).ForActivity(context.Background(), miner(t), rubies, opts)
	require.NoError(t, err)
	assert.InDelta(t, 2*out.Metrics[metrics.PrimaryXPPerStep], out.Metrics["double_xp"], 1e-12)

	opts.Derived = nil
	_, err = newOptimizer(t).ForActivity(context.Background(), miner(t), rubies, opts)
	assert.ErrorIs(t, err, optimizer.ErrUnknownMetric)
}

func TestForRecipe_NoCandidates(t *testing.T) {
	r := &activity.Recipe{Name: "Iron Bar", Skill: "smithing", BaseSteps: 50, BaseXP: 10, MaxEfficiency: 1}
	_, err := newOptimizer(t).ForRecipe(context.Background(), character.New("empty"), r, optimizer.Options{})
	assert.ErrorIs(t, err, optimizer.ErrNoCandidates)
}
