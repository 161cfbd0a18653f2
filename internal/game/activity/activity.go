// Package activity holds the static reference definitions the optimiser scores
// against: gathering activities, crafting recipes, and services.
package activity

import (
	"strings"

	"github.com/cory-johannsen/walkscape/internal/game/item"
)

// FineSuffix marks the fine variant of a material in drop names.
const FineSuffix = " (Fine)"

// Requirements gates an activity, recipe, or service on character state and
// equipped gear.
type Requirements struct {
	Skills            map[string]int     `yaml:"skills,omitempty"`
	Reputation        map[string]float64 `yaml:"reputation,omitempty"`
	AchievementPoints int                `yaml:"achievement_points,omitempty"`
	// KeywordCounts maps a lower-case gear keyword to the number of equipped
	// items that must carry it.
	KeywordCounts map[string]int `yaml:"keyword_counts,omitempty"`
}

// IsEmpty reports whether nothing is required.
func (r Requirements) IsEmpty() bool {
	return len(r.Skills) == 0 && len(r.Reputation) == 0 && r.AchievementPoints == 0 && len(r.KeywordCounts) == 0
}

// KeywordCount returns the required count for keyword, or zero.
func (r Requirements) KeywordCount(keyword string) int {
	return r.KeywordCounts[strings.ToLower(keyword)]
}

// Quantity is an inclusive drop quantity range.
type Quantity struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Average returns the mean quantity per roll.
func (q Quantity) Average() float64 {
	if q.Max < q.Min {
		return float64(q.Min)
	}
	return float64(q.Min+q.Max) / 2.0
}

// Drop is one drop-table row.
type Drop struct {
	Item     string   `yaml:"item"`
	Quantity Quantity `yaml:"quantity"`
	// ChancePercent is the per-roll chance in percent (5.0 = 5%).
	ChancePercent float64               `yaml:"chance"`
	Category      item.MaterialCategory `yaml:"category,omitempty"`
	HasFine       bool                  `yaml:"has_fine,omitempty"`
}

// IsNothing reports whether the row is the empty "Nothing" roll.
func (d Drop) IsNothing() bool {
	return strings.EqualFold(d.Item, "nothing")
}

// Activity is a gathering or travel-side activity.
type Activity struct {
	Name          string
	PrimarySkill  string
	Locations     []string
	BaseSteps     int
	BaseXP        float64
	SecondaryXP   map[string]float64
	MaxEfficiency float64
	Requirements  Requirements
	Drops         []Drop
	SecondaryDrop []Drop
}

// RequiredLevel returns the primary-skill level required, at least 1.
func (a *Activity) RequiredLevel() int {
	if lvl := a.Requirements.Skills[strings.ToLower(a.PrimarySkill)]; lvl > 0 {
		return lvl
	}
	return 1
}

// AllDrops returns the primary and secondary drop tables without "Nothing" rows.
func (a *Activity) AllDrops() []Drop {
	out := make([]Drop, 0, len(a.Drops)+len(a.SecondaryDrop))
	for _, d := range append(append([]Drop{}, a.Drops...), a.SecondaryDrop...) {
		if !d.IsNothing() {
			out = append(out, d)
		}
	}
	return out
}

// DropNames lists every obtainable drop name, including fine variants.
func (a *Activity) DropNames() []string {
	var out []string
	for _, d := range a.AllDrops() {
		out = append(out, d.Item)
		if d.HasFine {
			out = append(out, d.Item+FineSuffix)
		}
	}
	return out
}

// FindDrop locates target in the drop tables. A name ending in " (Fine)"
// resolves to its base drop with fine=true.
func (a *Activity) FindDrop(target string) (drop Drop, fine bool, ok bool) {
	name := strings.TrimSpace(target)
	if base, cut := strings.CutSuffix(name, FineSuffix); cut {
		name, fine = base, true
	}
	for _, d := range a.AllDrops() {
		if strings.EqualFold(d.Item, name) {
			if fine && !d.HasFine {
				return Drop{}, false, false
			}
			return d, fine, true
		}
	}
	return Drop{}, false, false
}

// AvailableAt reports whether the activity can be performed at location.
func (a *Activity) AvailableAt(location string) bool {
	for _, l := range a.Locations {
		if strings.EqualFold(l, location) {
			return true
		}
	}
	return false
}
