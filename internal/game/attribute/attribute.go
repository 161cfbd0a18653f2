// Package attribute is the catalog of every tunable stat an item, collectible,
// consumable, or pet can grant.
package attribute

import "strings"

// Internal stat names as they appear in stat tables.
const (
	BonusXPAdd          = "bonus_xp_add"
	BonusXPPercent      = "bonus_xp_percent"
	ChestFinding        = "chest_finding"
	DoubleAction        = "double_action"
	DoubleRewards       = "double_rewards"
	FindBirdNests       = "find_bird_nests"
	FindCollectibles    = "find_collectibles"
	FindGems            = "find_gems"
	FineMaterialFinding = "fine_material_finding"
	InventorySpace      = "inventory_space"
	ItemFinding         = "item_finding"
	NoMaterialsConsumed = "no_materials_consumed"
	QualityOutcome      = "quality_outcome"
	StepsAdd            = "steps_add"
	StepsPercent        = "steps_percent"
	WorkEfficiency      = "work_efficiency"
)

// Attribute is an immutable catalog entry.
type Attribute struct {
	InternalName string
	Abbreviation string
	DisplayName  string
	IsPercentage bool
	Description  string
}

var catalog = []Attribute{
	{BonusXPAdd, "XP", "Bonus Experience (Flat)", false,
		"Changes the base experience rewarded on action completion."},
	{BonusXPPercent, "XP%", "Bonus Experience (%)", true,
		"Changes the percentage of experience rewarded on action completion."},
	{ChestFinding, "CF", "Chest Finding", true,
		"Changes the chance to find chests on action completion."},
	{DoubleAction, "DA", "Double Action", true,
		"On completion, changes the chance for an action to give full rewards twice."},
	{DoubleRewards, "DR", "Double Rewards", true,
		"On completion, changes the chance for an action to give two loot rolls instead of one."},
	{FindBirdNests, "FBN", "Find Bird Nests", true,
		"Changes the chance to find bird nests on action completion."},
	{FindCollectibles, "FC", "Find Collectibles", true,
		"Changes the chance to find collectibles on action completion."},
	{FindGems, "FG", "Find Gems", true,
		"Changes the chance to find gems on action completion."},
	{FineMaterialFinding, "FMF", "Fine Material Finding", true,
		"Changes the chance to find fine materials on action completion."},
	{InventorySpace, "INV", "Inventory Space", false,
		"Adds maximum inventory spaces while the item providing them is equipped."},
	{ItemFinding, "IF", "Item Finding", true,
		"Adds a chance to find the specified object after every action."},
	{NoMaterialsConsumed, "NMC", "No Materials Consumed", true,
		"Adds a chance to not use up the materials required for an activity."},
	{QualityOutcome, "QO", "Quality Outcome", false,
		"Changes the probabilities of getting higher quality crafted items."},
	{StepsAdd, "Flat", "Steps Required (Flat)", false,
		"Adds the listed amount of steps to the activity."},
	{StepsPercent, "Pct", "Steps Required (%)", true,
		"Changes the steps required for the activity by the listed percentage."},
	{WorkEfficiency, "WE", "Work Efficiency", true,
		"Changes the value of work that your steps produce."},
}

var (
	byName   = make(map[string]Attribute, len(catalog))
	byAbbrev = make(map[string]Attribute, len(catalog))
)

func init() {
	for _, a := range catalog {
		byName[a.InternalName] = a
		byAbbrev[strings.ToLower(a.Abbreviation)] = a
	}
}

// All returns every catalog entry in catalog order.
func All() []Attribute {
	out := make([]Attribute, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the attribute with the given internal name.
func Lookup(name string) (Attribute, bool) {
	a, ok := byName[strings.ToLower(name)]
	return a, ok
}

// ByAbbreviation returns the attribute with the given abbreviation (case-insensitive).
func ByAbbreviation(abbr string) (Attribute, bool) {
	a, ok := byAbbrev[strings.ToLower(abbr)]
	return a, ok
}

// IsPercentage reports whether name is a known percentage-valued attribute.
// Unknown names are flat.
func IsPercentage(name string) bool {
	a, ok := Lookup(name)
	return ok && a.IsPercentage
}

// Scale converts a raw accumulated value to its query-time form: percentage
// attributes are divided by 100, everything else (including unknown names)
// is returned unchanged.
func Scale(name string, raw float64) float64 {
	if IsPercentage(name) {
		return raw / 100.0
	}
	return raw
}

// ScaleAll returns a new map with Scale applied to every entry.
//
// Postcondition: the input map is not modified.
func ScaleAll(raw map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		out[k] = Scale(k, v)
	}
	return out
}

// DisplayName returns the catalog display name, or the raw name when unknown.
func DisplayName(name string) string {
	if a, ok := Lookup(name); ok {
		return a.DisplayName
	}
	return name
}
