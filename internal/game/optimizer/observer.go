package optimizer

import (
	"github.com/cory-johannsen/walkscape/internal/game/gearset"
	"github.com/cory-johannsen/walkscape/internal/game/item"
)

// Phase is a search state.
type Phase string

const (
	PhaseGreedy      Phase = "GREEDY_INIT"
	PhaseRepair      Phase = "REPAIR"
	PhaseLocalSearch Phase = "LOCAL_SEARCH"
	PhaseConverged   Phase = "CONVERGED"
)

// Observer receives search progress. Implementations must not modify the
// gearsets or maps they are given.
type Observer interface {
	PhaseChanged(p Phase)
	// SlotFilled reports a greedy pick; it is nil when no candidate fit.
	SlotFilled(slot gearset.SlotName, it *item.Item, primary float64)
	SwapAccepted(iteration int, slot gearset.SlotName, from, to *item.Item, metrics map[string]float64)
	Finished(r *Result)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) PhaseChanged(Phase)                                                             {}
func (NopObserver) SlotFilled(gearset.SlotName, *item.Item, float64)                               {}
func (NopObserver) SwapAccepted(int, gearset.SlotName, *item.Item, *item.Item, map[string]float64) {}
func (NopObserver) Finished(*Result)                                                               {}
