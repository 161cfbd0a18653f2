package metrics

import (
	"math"

	"github.com/cory-johannsen/walkscape/internal/game/attribute"
)

// MinActionSteps is the hard floor on the cost of one action.
const MinActionSteps = 10

// Steps is the step cost of one action.
type Steps struct {
	// Efficiency is the work efficiency after the activity cap.
	Efficiency float64
	// Single is the cost of one action before double action.
	Single float64
	// Expected is the expected cost per paid action with double action.
	Expected int
}

// ActionSteps computes the per-action step cost. maxEfficiency <= 0 leaves work
// efficiency uncapped.
//
// Precondition: baseSteps > 0.
func ActionSteps(baseSteps int, maxEfficiency float64, s map[string]float64) Steps {
	base := float64(baseSteps)
	eff := s[attribute.WorkEfficiency]
	if maxEfficiency > 0 && eff > maxEfficiency {
		eff = maxEfficiency
	}
	withEff := math.Ceil(base / (1 + eff))
	if maxEfficiency > 0 {
		withEff = math.Max(withEff, math.Ceil(base/(1+maxEfficiency)))
	}
	single := withEff*(1+s[attribute.StepsPercent]) + math.Trunc(s[attribute.StepsAdd])
	single = math.Max(single, MinActionSteps)
	return Steps{
		Efficiency: eff,
		Single:     single,
		Expected:   int(math.Ceil(single / (1 + s[attribute.DoubleAction]))),
	}
}

// RewardsPerCompletion is the expected reward rolls per completed action.
// Extra completions from double action can also roll double rewards.
func RewardsPerCompletion(s map[string]float64) float64 {
	return (1 + s[attribute.DoubleRewards]) * (1 + s[attribute.DoubleAction])
}

// XPPerAction returns base XP with bonus XP applied.
func XPPerAction(baseXP float64, s map[string]float64) float64 {
	return baseXP*(1+s[attribute.BonusXPPercent]) + s[attribute.BonusXPAdd]
}

// TravelLevelEfficiency is the work efficiency agility levels grant on travel.
func TravelLevelEfficiency(agilityLevel int) float64 {
	if agilityLevel <= 1 {
		return 0
	}
	return float64(agilityLevel-1) * 0.005
}

// TravelSteps returns the expected steps to walk a route of baseSteps with
// travel stats s. Routes are walked in ten nodes; each node costs at least
// MinActionSteps and double action skips whole nodes.
func TravelSteps(baseSteps int, s map[string]float64, levelEfficiency float64) int {
	eff := 1 + levelEfficiency + s[attribute.WorkEfficiency]
	adjusted := math.Ceil((float64(baseSteps) / eff) * (1 + s[attribute.StepsPercent]))
	perNode := math.Max(MinActionSteps, math.Ceil(adjusted/10+s[attribute.StepsAdd]))
	return int(math.Ceil(10 / (1 + s[attribute.DoubleAction]) * perNode))
}
