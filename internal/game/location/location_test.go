package location_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/walkscape/internal/game/location"
)

func TestMatches_GlobalAlwaysMatches(t *testing.T) {
	assert.True(t, location.Matches(nil, "global"))
	assert.True(t, location.Matches(location.New("Kallaheim", "jarvonia"), "GLOBAL"))
}

func TestMatches_NoLocationOnlyGlobal(t *testing.T) {
	assert.False(t, location.Matches(nil, "jarvonia"))
	assert.False(t, location.Matches(nil, "!jarvonia"))
}

func TestMatches_RegionAndNegation(t *testing.T) {
	loc := location.New("Halfmoon Sands", "Jarvonia", "Underwater")
	assert.True(t, location.Matches(loc, "underwater"))
	assert.True(t, location.Matches(loc, "Jarvonia"))
	assert.False(t, location.Matches(loc, "!underwater"))
	assert.True(t, location.Matches(loc, "!syrenthia"))
	assert.False(t, location.Matches(loc, "syrenthia"))
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := location.NewRegistry()
	require.NoError(t, r.Register(location.New("Kallaheim", "jarvonia")))
	err := r.Register(location.New("kallaheim"))
	require.Error(t, err)
	l, ok := r.Get("KALLAHEIM")
	require.True(t, ok)
	assert.Equal(t, "jarvonia", l.PrimaryRegion())
}
