package item_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/stats"
)

func weTable(v float64) stats.Table {
	t := stats.NewTable()
	t.Add("global", "global", "work_efficiency", v)
	return t
}

func sword() *item.Crafted {
	return &item.Crafted{
		BaseName: "Iron Sword",
		UUID:     "item-iron_sword-00faea2a",
		Slot:     item.SlotPrimary,
		Base:     weTable(1),
		Tiers: map[item.Quality]item.Tier{
			item.Normal:  {Value: 10, Stats: weTable(0)},
			item.Perfect: {Value: 500, Stats: weTable(4)},
		},
	}
}

func TestParseQuality_DisplayAndExportNames(t *testing.T) {
	q, ok := item.ParseQuality("legendary")
	require.True(t, ok)
	assert.Equal(t, item.Perfect, q)
	q, ok = item.ParseQuality("Eternal")
	require.True(t, ok)
	assert.Equal(t, "ethereal", q.ExportName())
	_, ok = item.ParseQuality("shiny")
	assert.False(t, ok)
}

func TestSplitQualitySuffix(t *testing.T) {
	base, q, ok := item.SplitQualitySuffix("Iron Sword (Great)")
	require.True(t, ok)
	assert.Equal(t, "Iron Sword", base)
	assert.Equal(t, item.Great, q)

	base, _, ok = item.SplitQualitySuffix("Cape of Half-Achiever")
	assert.False(t, ok)
	assert.Equal(t, "Cape of Half-Achiever", base)
}

func TestCrafted_TiersLayerOnBase(t *testing.T) {
	c := sword()
	r := item.NewRegistry()
	require.NoError(t, r.RegisterCrafted(c))

	perfect, ok := r.Resolve(c.UUID, item.Perfect, 0)
	require.True(t, ok)
	assert.Equal(t, "Iron Sword (Perfect)", perfect.Name)
	assert.Equal(t, 5.0, perfect.Stats.Get("global", "global", "work_efficiency"))
	assert.Equal(t, 500, perfect.Value)

	good, _ := r.Resolve(c.UUID, item.Good, 0)
	assert.Equal(t, 1.0, good.Stats.Get("global", "global", "work_efficiency"))
	assert.NotEqual(t, perfect.SourceID(), good.SourceID())
	assert.Same(t, perfect, c.Resolve(item.Perfect))
}

func TestAchievement_ResolveSumsReachedThresholds(t *testing.T) {
	a := &item.Achievement{
		Name: "Cape of Half-Achiever",
		UUID: "cape",
		Slot: item.SlotCape,
		Thresholds: stats.Thresholds{
			50:  weTable(1),
			100: weTable(2),
			200: weTable(3),
		},
	}
	at140 := a.Resolve(140)
	assert.Equal(t, 3.0, at140.Stats.Get("global", "global", "work_efficiency"))
	at0 := a.Resolve(0)
	assert.True(t, at0.Stats.IsEmpty())
	assert.NotEqual(t, at0.SourceID(), at140.SourceID())
	assert.Equal(t, at140.SourceID(), a.Resolve(199).SourceID())
}

func TestRegistry_ByExportNameWithQuality(t *testing.T) {
	r := item.NewRegistry()
	require.NoError(t, r.RegisterCrafted(sword()))
	require.NoError(t, r.RegisterItem(&item.Item{Name: "Trusty Tent", UUID: "tent", Slot: item.SlotTools}))

	it, ok := r.ByExportName("iron_sword_perfect", 0)
	require.True(t, ok)
	assert.Equal(t, item.Perfect, it.Quality)

	it, ok = r.ByExportName("iron_sword_legendary", 0)
	require.True(t, ok)
	assert.Equal(t, item.Perfect, it.Quality)

	it, ok = r.ByExportName("iron_sword", 0)
	require.True(t, ok)
	assert.Equal(t, item.Normal, it.Quality)

	it, ok = r.ByExportName("trusty_tent", 0)
	require.True(t, ok)
	assert.Equal(t, "Trusty Tent", it.Name)

	_, ok = r.ByExportName("trusty_tent_perfect", 0)
	assert.False(t, ok)
}

func TestRegistry_DuplicateUUID(t *testing.T) {
	r := item.NewRegistry()
	require.NoError(t, r.RegisterItem(&item.Item{Name: "A", UUID: "u"}))
	assert.Error(t, r.RegisterItem(&item.Item{Name: "B", UUID: "u"}))
}

func TestRegistry_ByName(t *testing.T) {
	r := item.NewRegistry()
	require.NoError(t, r.RegisterCrafted(sword()))
	it, ok := r.ByName("iron sword (excellent)", 0)
	require.True(t, ok)
	assert.Equal(t, item.Excellent, it.Quality)
}

func TestHasKeyword_Substring(t *testing.T) {
	it := &item.Item{Keywords: []string{"Diving Gear", "Proper Gear"}}
	assert.True(t, it.HasKeyword("diving gear"))
	assert.True(t, it.HasKeyword("gear"))
	assert.False(t, it.HasKeyword("light source"))
}

func TestHighestQuality(t *testing.T) {
	c := sword()
	c.Tiers[item.Great] = item.Tier{Value: 50}
	r := item.NewRegistry()
	require.NoError(t, r.RegisterCrafted(c))
	tent := &item.Item{Name: "Trusty Tent", UUID: "tent", Slot: item.SlotTools}
	got := item.HighestQuality([]*item.Item{c.Resolve(item.Good), tent, c.Resolve(item.Perfect), c.Resolve(item.Great)})
	require.Len(t, got, 2)
	assert.Equal(t, tent, got[0])
	assert.Equal(t, item.Perfect, got[1].Quality)
}

func TestExportNameFor(t *testing.T) {
	assert.Equal(t, "cape_of_half_achiever", item.ExportNameFor("Cape of Half-Achiever"))
	assert.Equal(t, "adventurers_hat", item.ExportNameFor("Adventurer's Hat"))
}

func TestPet_AtLevel(t *testing.T) {
	p := &item.Pet{Name: "Sheep", Levels: stats.Thresholds{1: weTable(1), 5: weTable(2)}}
	got, err := stats.Compute(p.AtLevel(5), stats.Query{Skill: "mining"})
	require.NoError(t, err)
	assert.InDelta(t, 0.03, got["work_efficiency"], 1e-12)
}
