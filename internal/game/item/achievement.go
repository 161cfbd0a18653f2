package item

import (
	"fmt"

	"github.com/cory-johannsen/walkscape/internal/game/stats"
)

// Achievement is an item whose stats grow with the owner's achievement points:
// owning N points unlocks the sum of every threshold at or below N.
type Achievement struct {
	Name         string
	UUID         string
	ExportName   string
	Slot         Slot
	Keywords     []string
	Value        int
	Requirements []Requirement
	Thresholds   stats.Thresholds
	Gated        *stats.Gated
}

// Resolve returns the concrete Item for an owner holding ap achievement points.
// It is a pure function of ap.
func (a *Achievement) Resolve(ap int) *Item {
	reached := 0
	for k := range a.Thresholds {
		if k <= ap && k > reached {
			reached = k
		}
	}
	return &Item{
		Name:         a.Name,
		UUID:         a.UUID,
		ExportName:   a.ExportName,
		Slot:         a.Slot,
		Keywords:     a.Keywords,
		Value:        a.Value,
		BaseName:     a.Name,
		Stats:        a.Thresholds.Upto(ap),
		Gated:        a.Gated,
		Requirements: a.Requirements,
		variant:      fmt.Sprintf("ap%d", reached),
	}
}
