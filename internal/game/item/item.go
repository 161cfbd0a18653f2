// Package item defines every stat-bearing entity loaded from reference data:
// equipment (plain, quality-tiered, achievement-scaled), collectibles,
// consumables, pets, and drop materials.
package item

import (
	"strings"

	"github.com/cory-johannsen/walkscape/internal/game/stats"
)

// RequirementType names an unlock condition on an item or service.
type RequirementType string

const (
	ReqSkill          RequirementType = "skill"
	ReqReputation     RequirementType = "reputation"
	ReqCharacterLevel RequirementType = "character_level"
	// ReqKeywordCount requires Count equipped items carrying Keyword, e.g.
	// three pieces of diving gear.
	ReqKeywordCount RequirementType = "keyword_count"
	ReqAccess       RequirementType = "access"
)

// Requirement is a single unlock condition.
type Requirement struct {
	Type    RequirementType `yaml:"type"`
	Skill   string          `yaml:"skill,omitempty"`
	Level   int             `yaml:"level,omitempty"`
	Faction string          `yaml:"faction,omitempty"`
	Amount  float64         `yaml:"amount,omitempty"`
	Keyword string          `yaml:"keyword,omitempty"`
	Count   int             `yaml:"count,omitempty"`
	Region  string          `yaml:"region,omitempty"`
}

// IsGearRequirement reports whether the requirement depends on other equipped gear.
func (r Requirement) IsGearRequirement() bool {
	return r.Type == ReqKeywordCount
}

// Item is a concrete equippable stat source. Quality-tiered and
// achievement-scaled definitions resolve to Items.
//
// Items are immutable after construction.
type Item struct {
	Name       string
	UUID       string
	ExportName string
	Slot       Slot
	Keywords   []string
	Value      int
	// Crafted is true for quality-tiered items; Quality is then meaningful.
	Crafted bool
	Quality Quality
	// BaseName is the name without a quality suffix.
	BaseName     string
	Stats        stats.Table
	Gated        *stats.Gated
	Requirements []Requirement
	// variant distinguishes resolved forms sharing UUID and Name.
	variant string
}

// SourceID implements stats.Source.
func (i *Item) SourceID() string {
	id := i.UUID + "|" + i.Name
	if i.variant != "" {
		id += "|" + i.variant
	}
	return id
}

// StatTable implements stats.Source.
func (i *Item) StatTable() stats.Table {
	return i.Stats
}

// GatedStats implements stats.Source.
func (i *Item) GatedStats() *stats.Gated {
	return i.Gated
}

// String returns the display name.
func (i *Item) String() string {
	return i.Name
}

// HasKeyword reports whether any of the item's keywords contains kw
// (case-insensitive).
func (i *Item) HasKeyword(kw string) bool {
	kw = strings.ToLower(kw)
	for _, k := range i.Keywords {
		if strings.Contains(strings.ToLower(k), kw) {
			return true
		}
	}
	return false
}

// IsTool reports whether the item goes in a tool slot.
func (i *Item) IsTool() bool {
	return i.Slot == SlotTools
}

// ExportNameFor derives the game's export identifier from a display name:
// lower case, spaces and hyphens to underscores, punctuation dropped.
func ExportNameFor(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r == '\'' || r == '(' || r == ')':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
