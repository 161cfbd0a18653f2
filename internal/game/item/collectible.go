package item

import (
	"fmt"

	"github.com/cory-johannsen/walkscape/internal/game/stats"
)

// Collectible is a passive stat source granted by owning it.
type Collectible struct {
	Name       string
	ExportName string
	Stats      stats.Table
	Gated      *stats.Gated
}

func (c *Collectible) SourceID() string         { return "collectible|" + c.Name }
func (c *Collectible) StatTable() stats.Table   { return c.Stats }
func (c *Collectible) GatedStats() *stats.Gated { return c.Gated }

// Consumable is a timed stat source.
type Consumable struct {
	Name       string
	ExportName string
	Value      int
	// Duration is the number of steps the effect lasts.
	Duration int
	Stats    stats.Table
	Gated    *stats.Gated
}

func (c *Consumable) SourceID() string         { return "consumable|" + c.Name }
func (c *Consumable) StatTable() stats.Table   { return c.Stats }
func (c *Consumable) GatedStats() *stats.Gated { return c.Gated }

// Pet grants stats that accumulate with its level.
type Pet struct {
	Name   string
	Levels stats.Thresholds
}

// PetLevel is a pet resolved at a level.
type PetLevel struct {
	Pet   *Pet
	Level int
	stats stats.Table
}

// AtLevel resolves the pet's cumulative stats at level.
func (p *Pet) AtLevel(level int) *PetLevel {
	return &PetLevel{Pet: p, Level: level, stats: p.Levels.Upto(level)}
}

func (p *PetLevel) SourceID() string         { return fmt.Sprintf("pet|%s|%d", p.Pet.Name, p.Level) }
func (p *PetLevel) StatTable() stats.Table   { return p.stats }
func (p *PetLevel) GatedStats() *stats.Gated { return nil }

// MaterialCategory drives which find-bonus stat applies to a drop.
type MaterialCategory string

const (
	CategoryNone        MaterialCategory = ""
	CategoryGem         MaterialCategory = "gem"
	CategoryBirdNest    MaterialCategory = "bird_nest"
	CategoryCollectible MaterialCategory = "collectible"
)

// Material is a non-equippable drop or crafting input.
type Material struct {
	Name       string
	ExportName string
	Value      int
	Category   MaterialCategory
	// HasFine is true when a fine counterpart can drop alongside this material.
	HasFine bool
	// FineOf names the base material when this is the fine variant.
	FineOf string
}
