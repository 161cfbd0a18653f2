package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/game/aggregate"
	"github.com/cory-johannsen/walkscape/internal/game/character"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/skill"
	"github.com/cory-johannsen/walkscape/internal/game/stats"
)

func properPiece(name, uuid string, slot item.Slot) *item.Item {
	th := stats.Thresholds{}
	for i := 1; i <= 5; i++ {
		t := stats.NewTable()
		t.Add("global", "global", "double_action", 1)
		th[i] = t
	}
	base := stats.NewTable()
	base.Add("mining", "global", "work_efficiency", 5)
	return &item.Item{
		Name:     name,
		UUID:     uuid,
		Slot:     slot,
		Keywords: []string{"Proper Gear"},
		Stats:    base,
		Gated:    &stats.Gated{SetPieces: map[string]stats.Thresholds{"proper gear": th}},
	}
}

func newAggregator(t *testing.T) *aggregate.Aggregator {
	t.Helper()
	cache, err := stats.NewCache(0)
	require.NoError(t, err)
	return aggregate.New(cache, zap.NewNop())
}

func TestSetPieceCounts_DistinctUUIDs(t *testing.T) {
	hat := properPiece("Proper Hat", "hat", item.SlotHead)
	boots := properPiece("Proper Boots", "boots", item.SlotFeet)
	counts := aggregate.SetPieceCounts([]*item.Item{hat, nil, boots, hat})
	assert.Equal(t, 2, counts["proper gear"])
}

func TestAggregate_TwoPiecesGetCumulativeSetBonus(t *testing.T) {
	a := newAggregator(t)
	hat := properPiece("Proper Hat", "hat", item.SlotHead)
	boots := properPiece("Proper Boots", "boots", item.SlotFeet)
	got, err := a.Aggregate(aggregate.Request{Items: []*item.Item{hat, boots}, Skill: "mining"})
	require.NoError(t, err)
	// each piece: thresholds 1 and 2 -> 2% double action
	assert.InDelta(t, 0.04, got["double_action"], 1e-12)
	assert.InDelta(t, 0.10, got["work_efficiency"], 1e-12)
}

func TestAggregate_LevelBonusCapped(t *testing.T) {
	a := newAggregator(t)
	ch := character.New("miner")
	ch.SetSkillLevel(skill.Mining, 60)
	got, err := a.Aggregate(aggregate.Request{
		Skill:             "mining",
		Character:         ch,
		IncludeLevelBonus: true,
		ActivityLevel:     10,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, got["work_efficiency"], 1e-12)
	assert.Equal(t, 50.0, got["quality_outcome"])
}

func TestAggregate_BelowRequirementGetsNothing(t *testing.T) {
	we, qo := aggregate.LevelBonus(character.New("x"), "mining", 30)
	assert.Zero(t, we)
	assert.Zero(t, qo)
}

func TestAggregate_Collectibles(t *testing.T) {
	a := newAggregator(t)
	ch := character.New("collector")
	tbl := stats.NewTable()
	tbl.Add("global", "global", "find_gems", 3)
	ch.Collectibles = []*item.Collectible{{Name: "Lucky Rock", Stats: tbl}}

	got, err := a.Aggregate(aggregate.Request{Skill: "mining", Character: ch, IncludeCollectibles: true})
	require.NoError(t, err)
	assert.InDelta(t, 0.03, got["find_gems"], 1e-12)

	got, err = a.Aggregate(aggregate.Request{Skill: "mining", Character: ch})
	require.NoError(t, err)
	assert.Zero(t, got["find_gems"])
}

func TestAggregate_UnknownSkillIsError(t *testing.T) {
	a := newAggregator(t)
	_, err := a.Aggregate(aggregate.Request{Items: []*item.Item{properPiece("Hat", "hat", item.SlotHead)}, Skill: "juggling"})
	assert.ErrorIs(t, err, skill.ErrUnknownSkill)
}

func TestAggregate_ExtraSources(t *testing.T) {
	a := newAggregator(t)
	tbl := stats.NewTable()
	tbl.Add("mining", "global", "double_rewards", 10)
	got, err := a.Aggregate(aggregate.Request{Skill: "mining", Extra: []stats.Source{&item.Consumable{Name: "Trail Mix", Stats: tbl}}})
	require.NoError(t, err)
	assert.InDelta(t, 0.10, got["double_rewards"], 1e-12)
}
