package content

import (
	"github.com/cory-johannsen/walkscape/internal/game/activity"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/route"
	"github.com/cory-johannsen/walkscape/internal/game/stats"
)

// yamlFile is one content file; every section is optional.
type yamlFile struct {
	Items        []yamlItem        `yaml:"items"`
	Crafted      []yamlCrafted     `yaml:"crafted"`
	Achievements []yamlAchievement `yaml:"achievements"`
	Collectibles []yamlCollectible `yaml:"collectibles"`
	Consumables  []yamlConsumable  `yaml:"consumables"`
	Pets         []yamlPet         `yaml:"pets"`
	Materials    []yamlMaterial    `yaml:"materials"`
	Locations    []yamlLocation    `yaml:"locations"`
	Activities   []yamlActivity    `yaml:"activities"`
	Recipes      []yamlRecipe      `yaml:"recipes"`
	Services     []yamlService     `yaml:"services"`
	Routes       []route.Route     `yaml:"routes"`
	Shortcuts    []route.Shortcut  `yaml:"shortcuts"`
}

type yamlItem struct {
	Name         string             `yaml:"name"`
	UUID         string             `yaml:"uuid"`
	ExportName   string             `yaml:"export_name"`
	Slot         string             `yaml:"slot"`
	Keywords     []string           `yaml:"keywords"`
	Value        int                `yaml:"value"`
	Stats        stats.Table        `yaml:"stats"`
	Gated        *stats.Gated       `yaml:"gated"`
	Requirements []item.Requirement `yaml:"requirements"`
}

type yamlTier struct {
	Value int         `yaml:"value"`
	Stats stats.Table `yaml:"stats"`
}

type yamlCrafted struct {
	Name         string              `yaml:"name"`
	UUID         string              `yaml:"uuid"`
	ExportName   string              `yaml:"export_name"`
	Slot         string              `yaml:"slot"`
	Keywords     []string            `yaml:"keywords"`
	Stats        stats.Table         `yaml:"stats"`
	Gated        *stats.Gated        `yaml:"gated"`
	Requirements []item.Requirement  `yaml:"requirements"`
	Tiers        map[string]yamlTier `yaml:"tiers"`
}

type yamlAchievement struct {
	Name         string             `yaml:"name"`
	UUID         string             `yaml:"uuid"`
	ExportName   string             `yaml:"export_name"`
	Slot         string             `yaml:"slot"`
	Keywords     []string           `yaml:"keywords"`
	Value        int                `yaml:"value"`
	Thresholds   stats.Thresholds   `yaml:"thresholds"`
	Gated        *stats.Gated       `yaml:"gated"`
	Requirements []item.Requirement `yaml:"requirements"`
}

type yamlCollectible struct {
	Name       string       `yaml:"name"`
	ExportName string       `yaml:"export_name"`
	Stats      stats.Table  `yaml:"stats"`
	Gated      *stats.Gated `yaml:"gated"`
}

type yamlConsumable struct {
	Name       string       `yaml:"name"`
	ExportName string       `yaml:"export_name"`
	Value      int          `yaml:"value"`
	Duration   int          `yaml:"duration"`
	Stats      stats.Table  `yaml:"stats"`
	Gated      *stats.Gated `yaml:"gated"`
}

type yamlPet struct {
	Name   string           `yaml:"name"`
	Levels stats.Thresholds `yaml:"levels"`
}

type yamlMaterial struct {
	Name       string `yaml:"name"`
	ExportName string `yaml:"export_name"`
	Value      int    `yaml:"value"`
	Category   string `yaml:"category"`
	HasFine    bool   `yaml:"has_fine"`
}

type yamlLocation struct {
	Name    string   `yaml:"name"`
	Regions []string `yaml:"regions"`
}

type yamlActivity struct {
	Name          string                `yaml:"name"`
	Skill         string                `yaml:"skill"`
	Locations     []string              `yaml:"locations"`
	BaseSteps     int                   `yaml:"base_steps"`
	BaseXP        float64               `yaml:"base_xp"`
	SecondaryXP   map[string]float64    `yaml:"secondary_xp"`
	MaxEfficiency float64               `yaml:"max_efficiency"`
	Requirements  activity.Requirements `yaml:"requirements"`
	Drops         []activity.Drop       `yaml:"drops"`
	SecondaryDrop []activity.Drop       `yaml:"secondary_drops"`
}

type yamlRecipe struct {
	Name          string                  `yaml:"name"`
	Skill         string                  `yaml:"skill"`
	Level         int                     `yaml:"level"`
	Service       string                  `yaml:"service"`
	BaseSteps     int                     `yaml:"base_steps"`
	BaseXP        float64                 `yaml:"base_xp"`
	MaxEfficiency float64                 `yaml:"max_efficiency"`
	Output        string                  `yaml:"output"`
	OutputQty     int                     `yaml:"output_quantity"`
	Ingredients   [][]activity.Ingredient `yaml:"ingredients"`
	Requirements  activity.Requirements   `yaml:"requirements"`
}

type yamlService struct {
	Name         string                `yaml:"name"`
	Kind         string                `yaml:"kind"`
	Tier         string                `yaml:"tier"`
	Location     string                `yaml:"location"`
	Requirements activity.Requirements `yaml:"requirements"`
}
