// Package character models a player's state as read from the game's JSON
// character export: skills, reputation, progression, and owned items.
package character

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/skill"
)

// DefaultToolSlots is the tool slot table used when none is configured:
// three slots from level 1, one more at 20, 50, and 80.
var DefaultToolSlots = ToolSlotTable{1: 3, 20: 4, 50: 5, 80: 6}

// MaxToolSlots is the number of tool slots a gearset can hold.
const MaxToolSlots = 6

// ToolSlotTable maps a character level threshold to the tool slots unlocked at it.
type ToolSlotTable map[int]int

// Slots returns the slot count for the highest threshold at or below level,
// capped at MaxToolSlots.
func (t ToolSlotTable) Slots(level int) int {
	best, slots := -1, 0
	for threshold, n := range t {
		if threshold <= level && threshold > best {
			best, slots = threshold, n
		}
	}
	if slots > MaxToolSlots {
		return MaxToolSlots
	}
	return slots
}

// OwnedItem is an equipment item with the quantity held in one collection.
type OwnedItem struct {
	Item     *item.Item
	Quantity int
}

// Character is read-only during optimisation. Mutators exist for
// construction only.
type Character struct {
	ID                string
	Name              string
	GameVersion       string
	Steps             int64
	AchievementPoints int
	Coins             int64

	SkillXP      map[skill.Skill]int64
	Reputations  map[string]float64
	Completions  map[string]int
	RegionAccess map[string]bool

	// Gear maps an equipped slot name (as exported) to the item.
	Gear      map[string]*item.Item
	Inventory []OwnedItem
	Bank      []OwnedItem

	Materials    map[string]int
	Consumables  map[*item.Consumable]int
	Collectibles []*item.Collectible

	ToolSlotTable ToolSlotTable

	mu         sync.Mutex
	owned      map[string]int
	ownedNames map[string]bool
}

// New returns an empty character with a fresh identity.
//
// Postcondition: all maps are initialised.
func New(name string) *Character {
	return &Character{
		ID:            uuid.New().String(),
		Name:          name,
		SkillXP:       make(map[skill.Skill]int64),
		Reputations:   make(map[string]float64),
		Completions:   make(map[string]int),
		RegionAccess:  make(map[string]bool),
		Gear:          make(map[string]*item.Item),
		Materials:     make(map[string]int),
		Consumables:   make(map[*item.Consumable]int),
		ToolSlotTable: DefaultToolSlots,
	}
}

// Identity implements stats.Context.
func (c *Character) Identity() string {
	return c.ID
}

// SkillLevel returns the level for s from its experience. The travel
// pseudo-skill reads agility.
func (c *Character) SkillLevel(s skill.Skill) int {
	if s == skill.Travel || s == skill.Traveling {
		s = skill.Agility
	}
	return skill.LevelForXP(c.SkillXP[s])
}

// SetSkillLevel sets the experience of s to the minimum for level.
func (c *Character) SetSkillLevel(s skill.Skill, level int) {
	c.SkillXP[s] = skill.XPForLevel(level)
}

// TotalSkillLevel sums the level of every trainable skill.
func (c *Character) TotalSkillLevel() int {
	total := 0
	for _, s := range skill.All() {
		total += c.SkillLevel(s)
	}
	return total
}

// CharacterLevel is one above the level total steps reach on the experience
// curve, capped at skill.MaxLevel.
func (c *Character) CharacterLevel() int {
	return min(1+skill.LevelForXP(c.Steps), skill.MaxLevel)
}

// ToolSlots returns the number of usable tool slots.
func (c *Character) ToolSlots() int {
	table := c.ToolSlotTable
	if table == nil {
		table = DefaultToolSlots
	}
	return table.Slots(c.CharacterLevel())
}

// Reputation implements stats.Context.
func (c *Character) Reputation(faction string) float64 {
	if v, ok := c.Reputations[faction]; ok {
		return v
	}
	for k, v := range c.Reputations {
		if strings.EqualFold(k, faction) {
			return v
		}
	}
	return 0
}

// ActivityCompletions implements stats.Context.
func (c *Character) ActivityCompletions(activity string) int {
	return c.Completions[strings.ToLower(activity)]
}

// HasAccess reports whether the character can enter region. Regions not
// mentioned in the export are accessible.
func (c *Character) HasAccess(region string) bool {
	v, ok := c.RegionAccess[strings.ToLower(region)]
	return !ok || v
}

// Equip places it in the exported slot name, counting it as owned.
func (c *Character) Equip(slot string, it *item.Item) {
	c.Gear[slot] = it
	c.invalidate()
}

// AddInventory adds qty of it to the inventory.
func (c *Character) AddInventory(it *item.Item, qty int) {
	c.Inventory = append(c.Inventory, OwnedItem{Item: it, Quantity: qty})
	c.invalidate()
}

// AddBank adds qty of it to the bank.
func (c *Character) AddBank(it *item.Item, qty int) {
	c.Bank = append(c.Bank, OwnedItem{Item: it, Quantity: qty})
	c.invalidate()
}

func (c *Character) invalidate() {
	c.mu.Lock()
	c.owned, c.ownedNames = nil, nil
	c.mu.Unlock()
}

func (c *Character) index() (map[string]int, map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owned != nil {
		return c.owned, c.ownedNames
	}
	owned := make(map[string]int)
	names := make(map[string]bool)
	add := func(it *item.Item, qty int) {
		if it == nil || qty <= 0 {
			return
		}
		owned[it.UUID] += qty
		names[strings.ToLower(it.Name)] = true
		names[strings.ToLower(it.BaseName)] = true
	}
	for _, it := range c.Gear {
		add(it, 1)
	}
	for _, o := range c.Inventory {
		add(o.Item, o.Quantity)
	}
	for _, o := range c.Bank {
		add(o.Item, o.Quantity)
	}
	for m, qty := range c.Materials {
		if qty > 0 {
			names[strings.ToLower(m)] = true
		}
	}
	for cons, qty := range c.Consumables {
		if qty > 0 {
			names[strings.ToLower(cons.Name)] = true
		}
	}
	c.owned, c.ownedNames = owned, names
	return owned, names
}

// OwnedQuantity returns the total owned across gear, inventory, and bank for
// an item UUID. The index is built once and reused.
func (c *Character) OwnedQuantity(itemUUID string) int {
	owned, _ := c.index()
	return owned[itemUUID]
}

// OwnsItem implements stats.Context: true when an item, material, or
// consumable with that name is held anywhere.
func (c *Character) OwnsItem(name string) bool {
	_, names := c.index()
	return names[strings.ToLower(name)]
}

// EquipmentItems returns every distinct owned equipment item (by tier) with its
// combined quantity, sorted by name.
func (c *Character) EquipmentItems() []OwnedItem {
	qty := make(map[*item.Item]int)
	var order []*item.Item
	add := func(it *item.Item, n int) {
		if it == nil || n <= 0 {
			return
		}
		if _, seen := qty[it]; !seen {
			order = append(order, it)
		}
		qty[it] += n
	}
	slots := make([]string, 0, len(c.Gear))
	for s := range c.Gear {
		slots = append(slots, s)
	}
	sort.Strings(slots)
	for _, s := range slots {
		add(c.Gear[s], 1)
	}
	for _, o := range c.Inventory {
		add(o.Item, o.Quantity)
	}
	for _, o := range c.Bank {
		add(o.Item, o.Quantity)
	}
	out := make([]OwnedItem, 0, len(order))
	for _, it := range order {
		out = append(out, OwnedItem{Item: it, Quantity: qty[it]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Item.Name < out[j].Item.Name })
	return out
}

// TotalValue sums coin value of every owned equipment item.
func (c *Character) TotalValue() int {
	total := 0
	for _, o := range c.EquipmentItems() {
		total += o.Item.Value * o.Quantity
	}
	return total
}
