package item

import (
	"fmt"

	"github.com/cory-johannsen/walkscape/internal/game/stats"
)

// Tier carries the quality-specific overrides layered on a crafted item's base stats.
type Tier struct {
	Value int
	Stats stats.Table
}

// Crafted is a quality-tiered item definition. Every tier resolves to a
// distinct Item named "<BaseName> (<Quality>)" sharing the UUID.
type Crafted struct {
	BaseName     string
	UUID         string
	ExportName   string
	Slot         Slot
	Keywords     []string
	Requirements []Requirement
	Base         stats.Table
	Gated        *stats.Gated
	Tiers        map[Quality]Tier

	resolved [len(qualityNames)]*Item
}

// build materialises every tier. Registry calls it once at registration.
func (c *Crafted) build() {
	for _, q := range Qualities {
		tier := c.Tiers[q]
		st := stats.NewTable()
		if c.Base != nil {
			st.AddTable(c.Base)
		}
		if tier.Stats != nil {
			st.AddTable(tier.Stats)
		}
		c.resolved[q] = &Item{
			Name:         fmt.Sprintf("%s (%s)", c.BaseName, q),
			UUID:         c.UUID,
			ExportName:   c.ExportName,
			Slot:         c.Slot,
			Keywords:     c.Keywords,
			Value:        tier.Value,
			Crafted:      true,
			Quality:      q,
			BaseName:     c.BaseName,
			Stats:        st,
			Gated:        c.Gated,
			Requirements: c.Requirements,
		}
	}
}

// Resolve returns the concrete Item for quality q.
//
// Precondition: c was registered (tiers are built).
func (c *Crafted) Resolve(q Quality) *Item {
	if q < Normal || q > Eternal {
		q = Normal
	}
	if c.resolved[q] == nil {
		c.build()
	}
	return c.resolved[q]
}

// All returns every tier from Normal to Eternal.
func (c *Crafted) All() []*Item {
	out := make([]*Item, 0, len(Qualities))
	for _, q := range Qualities {
		out = append(out, c.Resolve(q))
	}
	return out
}
