package item

import "strings"

// Slot is the equipment category an item fits.
type Slot string

const (
	SlotHead      Slot = "head"
	SlotCape      Slot = "cape"
	SlotBack      Slot = "back"
	SlotChest     Slot = "chest"
	SlotPrimary   Slot = "primary"
	SlotSecondary Slot = "secondary"
	SlotHands     Slot = "hands"
	SlotLegs      Slot = "legs"
	SlotNeck      Slot = "neck"
	SlotFeet      Slot = "feet"
	SlotRing      Slot = "ring"
	SlotTools     Slot = "tools"
	SlotUnknown   Slot = "unknown"
)

var validSlots = map[Slot]bool{
	SlotHead: true, SlotCape: true, SlotBack: true, SlotChest: true,
	SlotPrimary: true, SlotSecondary: true, SlotHands: true, SlotLegs: true,
	SlotNeck: true, SlotFeet: true, SlotRing: true, SlotTools: true,
}

// ParseSlot maps a slot name to its category; "tool" is accepted for tools
// and anything unrecognised is SlotUnknown.
func ParseSlot(s string) Slot {
	sl := Slot(strings.ToLower(strings.TrimSpace(s)))
	if sl == "tool" {
		return SlotTools
	}
	if validSlots[sl] {
		return sl
	}
	return SlotUnknown
}

// Equippable reports whether items of this category can go in a gearset.
func (s Slot) Equippable() bool {
	return validSlots[s]
}
