// Package gearset models a fixed-shape equipment assignment and the game's
// compressed gearset export format.
package gearset

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/walkscape/internal/game/item"
)

// SlotName is one of the 20 named gearset positions.
type SlotName string

const (
	Head      SlotName = "head"
	Cape      SlotName = "cape"
	Back      SlotName = "back"
	Chest     SlotName = "chest"
	Primary   SlotName = "primary"
	Secondary SlotName = "secondary"
	Hands     SlotName = "hands"
	Legs      SlotName = "legs"
	Neck      SlotName = "neck"
	Feet      SlotName = "feet"
	Ring1     SlotName = "ring1"
	Ring2     SlotName = "ring2"
	Tool0     SlotName = "tool0"
	Tool1     SlotName = "tool1"
	Tool2     SlotName = "tool2"
	Tool3     SlotName = "tool3"
	Tool4     SlotName = "tool4"
	Tool5     SlotName = "tool5"
)

// MaxTools is the number of tool positions.
const MaxTools = 6

// GearSlots lists the twelve gear positions in search order.
var GearSlots = []SlotName{Head, Cape, Back, Chest, Primary, Secondary, Hands, Legs, Neck, Feet, Ring1, Ring2}

// ToolSlots lists the tool positions in order.
var ToolSlots = []SlotName{Tool0, Tool1, Tool2, Tool3, Tool4, Tool5}

// AllSlots lists every position: gear first, then tools.
var AllSlots = append(append([]SlotName{}, GearSlots...), ToolSlots...)

// ToolSlot returns the i-th tool position.
//
// Precondition: 0 <= i < MaxTools.
func ToolSlot(i int) SlotName {
	return ToolSlots[i]
}

// ToolSlotsFor returns the first n tool positions, clamped to [0, MaxTools].
func ToolSlotsFor(n int) []SlotName {
	if n < 0 {
		n = 0
	}
	if n > MaxTools {
		n = MaxTools
	}
	return ToolSlots[:n]
}

// Category returns the item slot category this position accepts.
func (s SlotName) Category() item.Slot {
	switch {
	case s.IsRing():
		return item.SlotRing
	case s.IsTool():
		return item.SlotTools
	default:
		return item.Slot(s)
	}
}

// IsRing reports whether s is ring1 or ring2.
func (s SlotName) IsRing() bool {
	return s == Ring1 || s == Ring2
}

// IsTool reports whether s is a tool position.
func (s SlotName) IsTool() bool {
	return strings.HasPrefix(string(s), "tool")
}

// Valid reports whether s names a gearset position.
func (s SlotName) Valid() bool {
	for _, v := range AllSlots {
		if v == s {
			return true
		}
	}
	return false
}

// Accepts reports whether it fits in position s.
func (s SlotName) Accepts(it *item.Item) bool {
	return it != nil && it.Slot == s.Category()
}

// Gearset maps positions to items; absent positions are empty.
type Gearset struct {
	slots map[SlotName]*item.Item
}

// New returns an empty gearset.
func New() *Gearset {
	return &Gearset{slots: make(map[SlotName]*item.Item, len(AllSlots))}
}

// FromMap builds a gearset from a position -> item mapping, rejecting unknown
// positions and items that do not fit.
func FromMap(m map[SlotName]*item.Item) (*Gearset, error) {
	g := New()
	for s, it := range m {
		if !s.Valid() {
			return nil, fmt.Errorf("gearset: FromMap: unknown slot %q", s)
		}
		if it == nil {
			continue
		}
		if !s.Accepts(it) {
			return nil, fmt.Errorf("gearset: FromMap: %q (%s) does not fit slot %s", it.Name, it.Slot, s)
		}
		g.slots[s] = it
	}
	return g, nil
}

// Get returns the item at s, or nil.
func (g *Gearset) Get(s SlotName) *item.Item {
	return g.slots[s]
}

// Set places it at s; a nil item empties the position.
func (g *Gearset) Set(s SlotName, it *item.Item) {
	if it == nil {
		delete(g.slots, s)
		return
	}
	g.slots[s] = it
}

// With returns a copy of g with it placed at s.
func (g *Gearset) With(s SlotName, it *item.Item) *Gearset {
	c := g.Clone()
	c.Set(s, it)
	return c
}

// Clone returns a shallow copy; items are shared and immutable.
func (g *Gearset) Clone() *Gearset {
	c := &Gearset{slots: make(map[SlotName]*item.Item, len(g.slots))}
	for s, it := range g.slots {
		c.slots[s] = it
	}
	return c
}

// Occupied returns the filled positions in AllSlots order.
func (g *Gearset) Occupied() []SlotName {
	out := make([]SlotName, 0, len(g.slots))
	for _, s := range AllSlots {
		if g.slots[s] != nil {
			out = append(out, s)
		}
	}
	return out
}

// Items returns the equipped items in AllSlots order.
func (g *Gearset) Items() []*item.Item {
	out := make([]*item.Item, 0, len(g.slots))
	for _, s := range g.Occupied() {
		out = append(out, g.slots[s])
	}
	return out
}

// Tools returns the equipped tools in position order.
func (g *Gearset) Tools() []*item.Item {
	var out []*item.Item
	for _, s := range ToolSlots {
		if it := g.slots[s]; it != nil {
			out = append(out, it)
		}
	}
	return out
}

// Len returns the number of filled positions.
func (g *Gearset) Len() int {
	return len(g.slots)
}

// Map returns a copy of the position -> item mapping.
func (g *Gearset) Map() map[SlotName]*item.Item {
	out := make(map[SlotName]*item.Item, len(g.slots))
	for s, it := range g.slots {
		out[s] = it
	}
	return out
}

// Equal reports whether both gearsets hold the same items (by source identity)
// in the same positions.
func (g *Gearset) Equal(o *Gearset) bool {
	if g.Len() != o.Len() {
		return false
	}
	for s, it := range g.slots {
		other := o.slots[s]
		if other == nil || other.SourceID() != it.SourceID() {
			return false
		}
	}
	return true
}

// CountKeyword counts equipped items carrying keyword (substring, case-insensitive).
func (g *Gearset) CountKeyword(keyword string) int {
	n := 0
	for _, it := range g.slots {
		if it.HasKeyword(keyword) {
			n++
		}
	}
	return n
}
