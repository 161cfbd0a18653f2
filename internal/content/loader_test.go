package content_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/content"
	"github.com/cory-johannsen/walkscape/internal/game/item"
)

func TestLoadDir_BundledContent(t *testing.T) {
	c, err := content.LoadDir(filepath.Join("..", "..", "content"), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, c)

	pick, ok := c.Items.ByName("Iron Pickaxe", 0)
	require.True(t, ok)
	assert.Equal(t, item.SlotTools, pick.Slot)
	assert.Equal(t, "iron_pickaxe", pick.ExportName)

	sickle, ok := c.Items.ByName("Iron Sickle (Perfect)", 0)
	require.True(t, ok)
	assert.Equal(t, item.Perfect, sickle.Quality)
	assert.InDelta(t, 11.0, sickle.Stats.Get("foraging", "global", "work_efficiency"), 1e-9)

	a, ok := c.Activities.Activity("mining copper ore")
	require.True(t, ok)
	assert.Equal(t, "mining", a.PrimarySkill)
	ruby, fine, ok := a.FindDrop("Ruby")
	require.True(t, ok)
	assert.False(t, fine)
	assert.Equal(t, item.CategoryGem, ruby.Category)
	_, fine, ok = a.FindDrop("Copper Ore (Fine)")
	require.True(t, ok)
	assert.True(t, fine)

	_, ok = c.Items.Material("Copper Ore (Fine)")
	assert.True(t, ok)

	r, ok := c.Activities.Recipe("Iron Bar")
	require.True(t, ok)
	assert.Equal(t, "advanced smithing", r.Service)
	assert.Len(t, r.Ingredients, 2)

	assert.Len(t, c.Network.Routes, 8)
	assert.Len(t, c.Network.Shortcuts, 1)
	assert.Len(t, c.Network.Services, 4)
	assert.Len(t, c.Activities.Services(), 4)
	assert.Equal(t, []string{"Azurazera", "Frusenholm", "Halfling Rebels Camp", "Kallaheim", "Vastalume"}, c.Locations.Names())
}

func TestLoadBytes_RejectsBadEntriesAndKeepsTheRest(t *testing.T) {
	doc := []byte(`
locations:
  - {name: Here, regions: [gdte]}
materials:
  - {name: Stone}
items:
  - name: Good Boots
    uuid: u-1
    slot: feet
  - name: Bad Slot
    uuid: u-2
    slot: tail
  - name: Bad Skill
    uuid: u-3
    slot: head
    stats:
      juggling:
        global: {work_efficiency: 5}
activities:
  - name: Quarrying
    skill: mining
    locations: [Here]
    base_steps: 30
    drops:
      - {item: Stone, chance: 100}
      - {item: Moonrock, chance: 1}
  - name: Dancing
    skill: dancing
    locations: [Here]
    base_steps: 10
routes:
  - {from: Here, to: Nowhere, distance: 100}
`)
	c, err := content.LoadBytes(doc, zap.NewNop())
	require.NotNil(t, c)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 5)

	_, ok := c.Items.ByName("Good Boots", 0)
	assert.True(t, ok)
	_, ok = c.Items.ByName("Bad Slot", 0)
	assert.False(t, ok)
	_, ok = c.Items.ByName("Bad Skill", 0)
	assert.False(t, ok)

	q, ok := c.Activities.Activity("Quarrying")
	require.True(t, ok)
	require.Len(t, q.Drops, 1)
	assert.Equal(t, "Stone", q.Drops[0].Item)
	assert.Equal(t, 1.0, q.Drops[0].Quantity.Average())
	_, ok = c.Activities.Activity("Dancing")
	assert.False(t, ok)
	assert.Empty(t, c.Network.Routes)
}

func TestLoadBytes_DuplicateUUID(t *testing.T) {
	doc := []byte(`
items:
  - {name: One, uuid: same, slot: head}
  - {name: Two, uuid: same, slot: head}
`)
	c, err := content.LoadBytes(doc, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, 1, c.Items.Len())
}

func TestLoadBytes_MalformedYAML(t *testing.T) {
	c, err := content.LoadBytes([]byte("items: [unclosed"), zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestLoadDir_NoFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0o644))
	_, err := content.LoadDir(dir, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content files found")
}

func TestLoadDir_MergesFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("locations:\n  - {name: A}\n  - {name: B}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("routes:\n  - {from: a, to: b, distance: 10}\n"), 0o644))
	c, err := content.LoadDir(dir, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, c.Network.Routes, 1)
	assert.Equal(t, "A", c.Network.Routes[0].From)
	assert.Equal(t, "B", c.Network.Routes[0].To)
}
