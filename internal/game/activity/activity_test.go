package activity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/walkscape/internal/game/activity"
)

func coral() *activity.Activity {
	return &activity.Activity{
		Name:         "Dive for Coral",
		PrimarySkill: "fishing",
		Locations:    []string{"Halfmoon Reef"},
		BaseSteps:    120,
		Requirements: activity.Requirements{Skills: map[string]int{"fishing": 30}},
		Drops: []activity.Drop{
			{Item: "Coral", Quantity: activity.Quantity{Min: 1, Max: 3}, ChancePercent: 80, HasFine: true},
			{Item: "Nothing", ChancePercent: 20},
		},
		SecondaryDrop: []activity.Drop{
			{Item: "Pearl", Quantity: activity.Quantity{Min: 1, Max: 1}, ChancePercent: 1, Category: "gem"},
		},
	}
}

func TestActivity_FindDrop(t *testing.T) {
	a := coral()
	d, fine, ok := a.FindDrop("coral (Fine)")
	require.True(t, ok)
	assert.True(t, fine)
	assert.Equal(t, "Coral", d.Item)

	_, _, ok = a.FindDrop("Pearl (Fine)")
	assert.False(t, ok)
	_, _, ok = a.FindDrop("Nothing")
	assert.False(t, ok)
}

func TestActivity_DropNamesIncludeFine(t *testing.T) {
	assert.Equal(t, []string{"Coral", "Coral (Fine)", "Pearl"}, coral().DropNames())
}

func TestActivity_RequiredLevel(t *testing.T) {
	assert.Equal(t, 30, coral().RequiredLevel())
	assert.Equal(t, 1, (&activity.Activity{PrimarySkill: "mining"}).RequiredLevel())
}

func TestQuantity_Average(t *testing.T) {
	assert.Equal(t, 2.0, activity.Quantity{Min: 1, Max: 3}.Average())
	assert.Equal(t, 4.0, activity.Quantity{Min: 4}.Average())
}

func TestService_Provides(t *testing.T) {
	s := &activity.Service{Name: "Advanced Forge", Kind: "smithing", Tier: "advanced"}
	assert.True(t, s.Provides("smithing"))
	assert.True(t, s.Provides("Advanced Smithing"))
	assert.False(t, s.Provides("basic smithing"))
	assert.False(t, s.Provides("bank"))
}

func TestRegistry_Duplicate(t *testing.T) {
	r := activity.NewRegistry()
	require.NoError(t, r.RegisterActivity(coral()))
	assert.Error(t, r.RegisterActivity(coral()))
	a, ok := r.Activity("dive for coral")
	require.True(t, ok)
	assert.Equal(t, "fishing", a.PrimarySkill)
}
