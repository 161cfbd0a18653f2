package gearset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/walkscape/internal/game/gearset"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/stats"
)

// referenceExport is a gearset exported by the live game client.
const referenceExport = "H4sIAAAAAAAAE63V227jOAwG4HfxdQjoQJ3yKptBQIlUYsSxs7aznaDouw+cAWZRZLp1J3vjC5syPvyiqNemneU8Ndu/Xpv5dpFm2xyFuNk0bc/yvdmqzb2i2Tavu6blXbPd3V+AfJextJPsl/pMPUNSVlsfAiR2GRAtQnRRgKsJ1uuExodds9k1f1+pa+fb/V+dHKRnGm/3LzMdds22v3bdW7NpZByHcbF9e9v84hW6yAreUrYf6v5IXQUqx1b+kRGK8UZsDcDEDJjZAknVUK0r1WinNfvniZnKaQVxKbtQOYG32oUcIyiJCVDXCJlMhqRSYsGkk7f/Q3BHmeYVrPHa921/2E/HdpzBFbRo0YHWBQG1ZUhaC2jCkmLyGAI+2K59Gc7noV9Lu4ztmcbbClw7Dv1+ehlGBqUqCRmCUBQC2uCA2AoUV02JCtkYelo2SRnuKa+wTbNIt8QmHUPKIQSdKyjJy54GCzF4B0U5jkQixacH3UijrJUdqedphWoeRfZToW7Z09LRywQVSxJkB1pZBnRZQ3KewasafYnEFPjp5Do5rOH9223DOE9gvdE2i4VMQoC2GiCfBGoVUykGEalP03r57HwG8sUl5yH4oAAlCyRPFqJYNhSM5iJPM6rIJ+dRBaO4SAFWVABr9kDBVwghKjSBmepjGl9porHtD58k4VIkEy3kFBJgcQ6ouApVZaecZ9H4OJvk0pY/I+iP+mToeH9YHks9GLIpoA/g723ilmAUKrA+cxaXXXWPZ/8rwczD0K06XNdpvu1n6WeIriYlEkH7HAFVYIjaWahaMLucq/GPpq8k9d70YVJnuiwX34FngWxicjobMGVpIHEWsq8acjHKKpcU2sfd+2ofv3eZ37hqEfbBKEC/XCJsLESuFgxGcSmF4Onx2n2OYT+Kp3bDyzJwLkM5yfxCczmC9kVcRA01CQOSEkiuJgjJmmRqCEX/psnno4xC3Z/58D/m9en0E9jJBDkJ22gi2Jw9YHQVKFsDNakaCsZo/HMj4D3L/WIti96v+fb2A+/Qts0uCgAA"

type refItem struct {
	id      string
	name    string
	slot    item.Slot
	crafted bool
}

var referenceItems = []refItem{
	{"item-exercise_headband-90313677-9d5b-4434-858e-df2736194267", "Exercise Headband", item.SlotHead, false},
	{"item-cape_of_half-achiever-c262e3f7-dadd-4bd3-aef1-f35cf21511d6", "Cape of Half-Achiever", item.SlotCape, false},
	{"item-backpack-63157b88-0e89-41f8-ba2b-9099de491963", "Backpack", item.SlotBack, false},
	{"item-running_shirt-5c434345-11c4-413d-911e-1a4c98964774", "Running Shirt", item.SlotChest, false},
	{"item-iron_sword-00faea2a-7c04-4375-ad3e-c5f2c804d22a", "Iron Sword", item.SlotPrimary, true},
	{"item-steel_shield-9b7771bf-0eb9-4173-8765-c05d8aaeec69", "Steel Shield", item.SlotSecondary, true},
	{"item-tree_scaling_claws-f4c9e4d5-103d-45b1-956d-60f86c8ada7d", "Tree Scaling Claws", item.SlotHands, false},
	{"item-running_shorts-36213be3-baea-43f2-a69e-ffe2fa87eeef", "Running Shorts", item.SlotLegs, false},
	{"7a6c5956-7670-4ebe-96a3-8e3d2a721dce", "Silver Necklace", item.SlotNeck, true},
	{"0720dcec-d0ac-4fb6-a76f-7780427ddaff", "Iron Boots", item.SlotFeet, true},
	{"7598a283-b979-4c55-ac5f-f0b5056de143", "Gold Ring", item.SlotRing, true},
	{"item-old_gold_ring-2a397467-6aea-45b6-a040-36bdbe5b5f5a", "Old Gold Ring", item.SlotRing, false},
	{"item-trusty_tent-85f90ee8-16b8-407d-8153-f1e4b5bbf26a", "Trusty Tent", item.SlotTools, false},
	{"item-map_of_gdte-b28951b2-2cac-4e53-b6f1-bc2030590433", "Map of GDTE", item.SlotTools, false},
	{"fced6720-46c4-4d23-8df3-248e599776a6", "Iron Pickaxe", item.SlotTools, true},
	{"item-flowing_pocketwatch-16ce5841-f9ed-4a0e-95f9-793292f77c13", "Flowing Pocketwatch", item.SlotTools, false},
	{"item-trekking_poles-b9ed3828-3bb6-485f-ab32-f90f7c48826f", "Trekking Poles", item.SlotTools, false},
}

func referenceRegistry(t require.TestingT) *item.Registry {
	r := item.NewRegistry()
	for _, ri := range referenceItems {
		if ri.crafted {
			require.NoError(t, r.RegisterCrafted(&item.Crafted{BaseName: ri.name, UUID: ri.id, Slot: ri.slot, Base: stats.NewTable()}))
			continue
		}
		require.NoError(t, r.RegisterItem(&item.Item{Name: ri.name, UUID: ri.id, Slot: ri.slot, Stats: stats.NewTable()}))
	}
	return r
}

func TestDecode_ReferenceExport(t *testing.T) {
	reg := referenceRegistry(t)
	g, skipped, err := gearset.Decode(referenceExport, gearset.RegistryResolver(reg, 0))
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, 17, g.Len())

	assert.Equal(t, "Iron Sword (Good)", g.Get(gearset.Primary).Name)
	assert.Equal(t, "Steel Shield (Great)", g.Get(gearset.Secondary).Name)
	assert.Equal(t, "Gold Ring (Excellent)", g.Get(gearset.Ring1).Name)
	assert.Equal(t, "Old Gold Ring", g.Get(gearset.Ring2).Name)
	assert.Equal(t, "Trekking Poles", g.Get(gearset.Tool4).Name)
	assert.Nil(t, g.Get(gearset.Tool5))
}

func TestDecode_UnknownIDSkipsSlot(t *testing.T) {
	reg := referenceRegistry(t)
	only := gearset.ResolverFunc(func(id string, q item.Quality) (*item.Item, bool) {
		if id == "item-backpack-63157b88-0e89-41f8-ba2b-9099de491963" {
			return nil, false
		}
		return reg.Resolve(id, q, 0)
	})
	g, skipped, err := gearset.Decode(referenceExport, only)
	require.NoError(t, err)
	require.Len(t, skipped, 1)
	assert.Equal(t, "back", skipped[0].Type)
	assert.Nil(t, g.Get(gearset.Back))
	assert.Equal(t, 16, g.Len())
}

func TestDecode_MalformedInput(t *testing.T) {
	for _, bad := range []string{"!!!not-base64", "aGVsbG8", ""} {
		_, _, err := gearset.Decode(bad, gearset.RegistryResolver(item.NewRegistry(), 0))
		require.Error(t, err, bad)
		assert.ErrorIs(t, err, gearset.ErrDecode)
	}
}

func TestDocument_Shape(t *testing.T) {
	reg := referenceRegistry(t)
	g, _, err := gearset.Decode(referenceExport, gearset.RegistryResolver(reg, 0))
	require.NoError(t, err)
	doc, err := g.Document()
	require.NoError(t, err)
	require.Len(t, doc.Items, 18)
	assert.Equal(t, "head", doc.Items[0].Type)
	assert.Equal(t, "ring", doc.Items[10].Type)
	assert.Equal(t, 1, doc.Items[11].Index)
	assert.Equal(t, "tool", doc.Items[17].Type)
	assert.Equal(t, "null", doc.Items[17].Item)
	assert.Equal(t, `{"id":"item-iron_sword-00faea2a-7c04-4375-ad3e-c5f2c804d22a","quality":"uncommon","tag":null}`, doc.Items[4].Item)
	assert.NotNil(t, doc.Items[0].Errors)
}

func TestEncode_ReferenceRoundTrip(t *testing.T) {
	reg := referenceRegistry(t)
	res := gearset.RegistryResolver(reg, 0)
	g, _, err := gearset.Decode(referenceExport, res)
	require.NoError(t, err)
	out, err := gearset.Encode(g)
	require.NoError(t, err)
	again, skipped, err := gearset.Decode(out, res)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.True(t, g.Equal(again))
}

func TestFromMap_RejectsWrongCategory(t *testing.T) {
	ring := &item.Item{Name: "Ring", UUID: "r", Slot: item.SlotRing}
	_, err := gearset.FromMap(map[gearset.SlotName]*item.Item{gearset.Head: ring})
	assert.Error(t, err)
	g, err := gearset.FromMap(map[gearset.SlotName]*item.Item{gearset.Ring2: ring})
	require.NoError(t, err)
	assert.Equal(t, []gearset.SlotName{gearset.Ring2}, g.Occupied())
}

func TestSlotFor(t *testing.T) {
	s, ok := gearset.SlotFor("ring", 1)
	require.True(t, ok)
	assert.Equal(t, gearset.Ring2, s)
	s, ok = gearset.SlotFor("tool", 5)
	require.True(t, ok)
	assert.Equal(t, gearset.Tool5, s)
	_, ok = gearset.SlotFor("head", 1)
	assert.False(t, ok)
	_, ok = gearset.SlotFor("ring1", 0)
	assert.False(t, ok)
}

func TestPropertyEncodeDecode_RoundTrip(t *testing.T) {
	reg := referenceRegistry(t)
	res := gearset.RegistryResolver(reg, 0)
	rapid.Check(t, func(rt *rapid.T) {
		g := gearset.New()
		for _, s := range gearset.AllSlots {
			if !rapid.Bool().Draw(rt, "fill") {
				continue
			}
			var fits []refItem
			for _, ri := range referenceItems {
				if ri.slot == s.Category() {
					fits = append(fits, ri)
				}
			}
			if len(fits) == 0 {
				continue
			}
			ri := rapid.SampledFrom(fits).Draw(rt, "item")
			q := rapid.SampledFrom(item.Qualities).Draw(rt, "quality")
			it, ok := reg.Resolve(ri.id, q, 0)
			require.True(rt, ok)
			g.Set(s, it)
		}
		out, err := gearset.Encode(g)
		require.NoError(rt, err)
		back, skipped, err := gearset.Decode(out, res)
		require.NoError(rt, err)
		assert.Empty(rt, skipped)
		assert.True(rt, g.Equal(back))
	})
}
