package constraint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/walkscape/internal/game/activity"
	"github.com/cory-johannsen/walkscape/internal/game/character"
	"github.com/cory-johannsen/walkscape/internal/game/constraint"
	"github.com/cory-johannsen/walkscape/internal/game/gearset"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/skill"
)

func gear(name, uuid string, slot item.Slot, keywords ...string) *item.Item {
	return &item.Item{Name: name, UUID: uuid, Slot: slot, Keywords: keywords}
}

func TestUnique_RejectsSameGearInTwoSlots(t *testing.T) {
	// An item can only be in one gear slot by category, so force the
	// duplicate through two tool positions.
	pick := gear("Pickaxe", "pick", item.SlotTools, "Pickaxe")
	g := gearset.New()
	g.Set(gearset.Tool0, pick)
	g.Set(gearset.Tool1, pick)
	assert.False(t, constraint.Unique(g, nil).OK)
}

func TestUnique_RingsLimitedByOwnedQuantity(t *testing.T) {
	ring := gear("Gold Ring", "ring", item.SlotRing)
	g := gearset.New()
	g.Set(gearset.Ring1, ring)
	g.Set(gearset.Ring2, ring)

	ch := character.New("one-ring")
	ch.AddInventory(ring, 1)
	assert.False(t, constraint.Unique(g, ch).OK)

	ch.AddBank(ring, 1)
	assert.True(t, constraint.Unique(g, ch).OK)
}

func TestValidator_ScenarioDuplicateNonRingAndRings(t *testing.T) {
	ring := gear("Gold Ring", "ring", item.SlotRing)
	ch := character.New("ringbearer")
	ch.AddInventory(ring, 2)
	v := constraint.New(ch, activity.Requirements{})

	rings := gearset.New()
	rings.Set(gearset.Ring1, ring)
	rings.Set(gearset.Ring2, ring)
	assert.True(t, v.Validate(rings, true))

	rod := gear("Fishing Rod", "rod", item.SlotTools, "Fishing Rod")
	dup := rings.With(gearset.Tool0, rod).With(gearset.Tool2, rod)
	assert.False(t, v.Validate(dup, false))
}

func TestToolKeywordsExclusive(t *testing.T) {
	a := gear("Pickaxe", "a", item.SlotTools, "Pickaxe", "Tool")
	b := gear("Better Pickaxe", "b", item.SlotTools, "pickaxe", "tool")
	c := gear("Lantern", "c", item.SlotTools, "Light Source", "Tool")
	d := gear("Torch", "d", item.SlotTools, "Light Source", "Tool")

	g := gearset.New()
	g.Set(gearset.Tool0, a)
	g.Set(gearset.Tool1, c)
	g.Set(gearset.Tool2, d)
	assert.True(t, constraint.ToolKeywordsExclusive(g).OK)

	g.Set(gearset.Tool3, b)
	res := constraint.ToolKeywordsExclusive(g)
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "pickaxe")
}

func TestPropertyToolKeywordCheckIsOrderIndependent(t *testing.T) {
	pool := []string{"pickaxe", "tool", "light source", "chisel", "fishing rod", "regional"}
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, gearset.MaxTools).Draw(t, "n")
		tools := make([]*item.Item, n)
		for i := range tools {
			kws := rapid.SliceOfNDistinct(rapid.SampledFrom(pool), 0, 3, rapid.ID[string]).Draw(t, "kws")
			tools[i] = gear("tool", string(rune('a'+i)), item.SlotTools, kws...)
		}
		perm := rapid.Permutation(tools).Draw(t, "perm")

		g1, g2 := gearset.New(), gearset.New()
		for i := range tools {
			g1.Set(gearset.ToolSlot(i), tools[i])
			g2.Set(gearset.ToolSlot(i), perm[i])
		}
		assert.Equal(t, constraint.ToolKeywordsExclusive(g1).OK, constraint.ToolKeywordsExclusive(g2).OK)
	})
}

func TestRequirementsMet(t *testing.T) {
	ch := character.New("diver")
	ch.SetSkillLevel(skill.Fishing, 40)
	ch.Reputations["jarvonia"] = 100
	ch.AchievementPoints = 50

	req := activity.Requirements{
		Skills:            map[string]int{"fishing": 35},
		Reputation:        map[string]float64{"Jarvonia": 50},
		AchievementPoints: 20,
		KeywordCounts:     map[string]int{"diving gear": 2},
	}
	g := gearset.New()
	g.Set(gearset.Head, gear("Diving Helmet", "h", item.SlotHead, "Diving Gear"))
	res := constraint.RequirementsMet(g, req, ch)
	require.False(t, res.OK)
	assert.Contains(t, res.Reason, "diving gear")

	g.Set(gearset.Feet, gear("Flippers", "f", item.SlotFeet, "Diving Gear"))
	assert.True(t, constraint.RequirementsMet(g, req, ch).OK)

	ch.SetSkillLevel(skill.Fishing, 10)
	assert.False(t, constraint.RequirementsMet(g, req, ch).OK)
}

func TestValidator_PartialSkipsRequirements(t *testing.T) {
	v := constraint.New(character.New("x"), activity.Requirements{KeywordCounts: map[string]int{"diving gear": 3}})
	g := gearset.New()
	assert.True(t, v.Validate(g, false))
	assert.False(t, v.Validate(g, true))
}

func TestItemGearRequirementsMet(t *testing.T) {
	suit := gear("Diving Suit", "s", item.SlotChest, "Diving Gear")
	suit.Requirements = []item.Requirement{{Type: item.ReqKeywordCount, Keyword: "diving gear", Count: 2}}
	g := gearset.New()
	g.Set(gearset.Chest, suit)
	assert.False(t, constraint.ItemGearRequirementsMet(g).OK)
	g.Set(gearset.Head, gear("Diving Helmet", "h", item.SlotHead, "Diving Gear"))
	assert.True(t, constraint.ItemGearRequirementsMet(g).OK)
}

func TestUnlocked(t *testing.T) {
	ch := character.New("smith")
	ch.SetSkillLevel(skill.Smithing, 30)
	ch.RegionAccess["syrenthia"] = false

	hammer := gear("Hammer", "hm", item.SlotTools)
	hammer.Requirements = []item.Requirement{{Type: item.ReqSkill, Skill: "smithing", Level: 25}}
	assert.True(t, constraint.Unlocked(hammer, ch, false))

	hammer.Requirements[0].Level = 31
	assert.False(t, constraint.Unlocked(hammer, ch, false))

	suit := gear("Diving Suit", "s", item.SlotChest)
	suit.Requirements = []item.Requirement{{Type: item.ReqKeywordCount, Keyword: "diving gear", Count: 2}}
	assert.True(t, constraint.Unlocked(suit, ch, true))
	assert.False(t, constraint.Unlocked(suit, ch, false))

	visa := gear("Sea Pass", "sp", item.SlotNeck)
	visa.Requirements = []item.Requirement{{Type: item.ReqAccess, Region: "syrenthia"}}
	assert.False(t, constraint.Unlocked(visa, ch, false))
}
