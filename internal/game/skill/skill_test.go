package skill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/walkscape/internal/game/skill"
)

func TestParse_NormalisesCase(t *testing.T) {
	s, err := skill.Parse("  Mining ")
	require.NoError(t, err)
	assert.Equal(t, skill.Mining, s)
}

func TestParse_UnknownSkill(t *testing.T) {
	_, err := skill.Parse("basket weaving")
	require.Error(t, err)
	assert.ErrorIs(t, err, skill.ErrUnknownSkill)
}

func TestMatches_PlainSkill(t *testing.T) {
	assert.True(t, skill.Matches(skill.Mining, "mining"))
	assert.True(t, skill.Matches(skill.Mining, "global"))
	assert.False(t, skill.Matches(skill.Mining, "fishing"))
	assert.False(t, skill.Matches(skill.Mining, "traveling"))
}

func TestMatches_TravelAliases(t *testing.T) {
	for _, key := range []string{"agility", "traveling", "global", "Agility"} {
		assert.True(t, skill.Matches(skill.Travel, key), key)
	}
	assert.False(t, skill.Matches(skill.Travel, "mining"))
}

func TestXPCurve_KnownPoints(t *testing.T) {
	assert.Equal(t, int64(0), skill.XPForLevel(1))
	assert.Equal(t, int64(83), skill.XPForLevel(2))
	assert.Equal(t, 1, skill.LevelForXP(0))
	assert.Equal(t, 1, skill.LevelForXP(82))
	assert.Equal(t, 2, skill.LevelForXP(83))
	assert.Equal(t, skill.MaxLevel, skill.LevelForXP(1<<40))
}

func TestPropertyLevelForXP_InvertsXPForLevel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lvl := rapid.IntRange(1, skill.MaxLevel).Draw(rt, "level")
		assert.Equal(rt, lvl, skill.LevelForXP(skill.XPForLevel(lvl)))
	})
}

func TestPropertyLevelForXP_Monotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.Int64Range(0, 200_000_000).Draw(rt, "a")
		b := rapid.Int64Range(0, 200_000_000).Draw(rt, "b")
		if a > b {
			a, b = b, a
		}
		assert.LessOrEqual(rt, skill.LevelForXP(a), skill.LevelForXP(b))
	})
}
