package character

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/skill"
)

// ErrInvalidExport is returned when the export is not a well-formed character document.
var ErrInvalidExport = errors.New("invalid character export")

const exportSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "game_version": {"type": "string"},
    "steps": {"type": "integer", "minimum": 0},
    "achievement_points": {"type": "integer", "minimum": 0},
    "coins": {"type": "integer"},
    "skills": {"type": "object", "additionalProperties": {"type": "integer", "minimum": 0}},
    "gear": {"type": "object", "additionalProperties": {"type": ["string", "null"]}},
    "inventory": {"$ref": "#/$defs/quantities"},
    "bank": {"$ref": "#/$defs/quantities"},
    "consumables": {"$ref": "#/$defs/quantities"},
    "collectibles": {"type": "array", "items": {"type": "string"}},
    "reputation": {"type": "object", "additionalProperties": {"type": "number"}},
    "activity_completions": {"$ref": "#/$defs/quantities"},
    "region_access": {"type": "object", "additionalProperties": {"type": "boolean"}}
  },
  "$defs": {
    "quantities": {"type": "object", "additionalProperties": {"type": "integer", "minimum": 0}}
  }
}`

var exportDocSchema = jsonschema.MustCompileString("character_export.json", exportSchema)

// Export is the JSON document produced by the game's character export.
type Export struct {
	Name                string             `json:"name"`
	GameVersion         string             `json:"game_version"`
	Steps               int64              `json:"steps"`
	AchievementPoints   int                `json:"achievement_points"`
	Coins               int64              `json:"coins"`
	Skills              map[string]int64   `json:"skills"`
	Gear                map[string]*string `json:"gear"`
	Inventory           map[string]int     `json:"inventory"`
	Bank                map[string]int     `json:"bank"`
	Consumables         map[string]int     `json:"consumables"`
	Collectibles        []string           `json:"collectibles"`
	Reputation          map[string]float64 `json:"reputation"`
	ActivityCompletions map[string]int     `json:"activity_completions"`
	RegionAccess        map[string]bool    `json:"region_access"`
}

// DecodeExport validates data against the export schema and decodes it.
//
// Postcondition: returns an error wrapping ErrInvalidExport on malformed input.
func DecodeExport(data []byte) (*Export, error) {
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("character: DecodeExport: %w: %v", ErrInvalidExport, err)
	}
	if err := exportDocSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("character: DecodeExport: %w: %v", ErrInvalidExport, err)
	}
	var doc Export
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("character: DecodeExport: %w: %v", ErrInvalidExport, err)
	}
	return &doc, nil
}

// Parse decodes a character export and resolves every referenced name against
// reg. Unknown names are logged and skipped.
//
// Precondition: reg and logger must be non-nil.
// Postcondition: returns a fully indexed Character or an error wrapping ErrInvalidExport.
func Parse(data []byte, reg *item.Registry, tools ToolSlotTable, logger *zap.Logger) (*Character, error) {
	doc, err := DecodeExport(data)
	if err != nil {
		return nil, err
	}
	return FromExport(doc, reg, tools, logger), nil
}

// FromExport builds a Character from a decoded export.
func FromExport(doc *Export, reg *item.Registry, tools ToolSlotTable, logger *zap.Logger) *Character {
	name := doc.Name
	if name == "" {
		name = "Unknown"
	}
	c := New(name)
	c.GameVersion = doc.GameVersion
	c.Steps = doc.Steps
	c.AchievementPoints = doc.AchievementPoints
	c.Coins = doc.Coins
	if tools != nil {
		c.ToolSlotTable = tools
	}

	for name, xp := range doc.Skills {
		s, err := skill.Parse(name)
		if err != nil {
			logger.Warn("skipping unknown skill in export", zap.String("skill", name))
			continue
		}
		c.SkillXP[s] = xp
	}
	for faction, amount := range doc.Reputation {
		c.Reputations[faction] = amount
	}
	for act, n := range doc.ActivityCompletions {
		c.Completions[strings.ToLower(act)] = n
	}
	for region, ok := range doc.RegionAccess {
		c.RegionAccess[strings.ToLower(region)] = ok
	}

	for _, slot := range sortedKeys(doc.Gear) {
		export := doc.Gear[slot]
		if export == nil || *export == "" {
			continue
		}
		it, ok := reg.ByExportName(*export, c.AchievementPoints)
		if !ok {
			logger.Warn("skipping unknown gear item", zap.String("slot", slot), zap.String("item", *export))
			continue
		}
		c.Gear[slot] = it
	}
	c.Inventory = parseCollection(c, doc.Inventory, reg, "inventory", logger)
	c.Bank = parseCollection(c, doc.Bank, reg, "bank", logger)

	for _, export := range sortedKeys(doc.Consumables) {
		cons, ok := reg.Consumable(export)
		if !ok {
			logger.Warn("skipping unknown consumable", zap.String("consumable", export))
			continue
		}
		c.Consumables[cons] += doc.Consumables[export]
	}
	for _, export := range doc.Collectibles {
		col, ok := reg.Collectible(export)
		if !ok {
			logger.Warn("skipping unknown collectible", zap.String("collectible", export))
			continue
		}
		c.Collectibles = append(c.Collectibles, col)
	}
	return c
}

func parseCollection(c *Character, raw map[string]int, reg *item.Registry, where string, logger *zap.Logger) []OwnedItem {
	var out []OwnedItem
	for _, export := range sortedKeys(raw) {
		qty := raw[export]
		if it, ok := reg.ByExportName(export, c.AchievementPoints); ok {
			out = append(out, OwnedItem{Item: it, Quantity: qty})
			continue
		}
		if m, ok := reg.Material(strings.ReplaceAll(export, "_", " ")); ok {
			c.Materials[m.Name] += qty
			continue
		}
		if cons, ok := reg.Consumable(export); ok {
			c.Consumables[cons] += qty
			continue
		}
		logger.Warn("skipping unknown item", zap.String("collection", where), zap.String("item", export))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
