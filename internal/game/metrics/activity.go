package metrics

import (
	"math"
	"sort"

	"github.com/cory-johannsen/walkscape/internal/game/activity"
	"github.com/cory-johannsen/walkscape/internal/game/attribute"
	"github.com/cory-johannsen/walkscape/internal/game/item"
)

// Activity holds the figures for one gathering activity.
type Activity struct {
	Steps
	RewardsPerCompletion float64
	StepsPerRewardRoll   float64
	RewardRollsPerStep   float64
	PrimaryXPPerStep     float64
	// SecondaryXPPerStep maps a secondary skill to its XP per step.
	SecondaryXPPerStep map[string]float64
	TotalXPPerStep     float64
	// DropSteps maps each drop name, fine variants included, to the expected
	// steps per item.
	DropSteps map[string]float64
}

// ForActivity computes activity metrics from aggregated stats.
func ForActivity(a *activity.Activity, s map[string]float64) Activity {
	st := ActionSteps(a.BaseSteps, a.MaxEfficiency, s)
	m := Activity{
		Steps:                st,
		RewardsPerCompletion: RewardsPerCompletion(s),
		SecondaryXPPerStep:   make(map[string]float64, len(a.SecondaryXP)),
		DropSteps:            make(map[string]float64),
	}
	m.StepsPerRewardRoll = st.Single / m.RewardsPerCompletion
	if m.StepsPerRewardRoll > 0 {
		m.RewardRollsPerStep = 1 / m.StepsPerRewardRoll
	}
	if st.Expected > 0 {
		m.PrimaryXPPerStep = XPPerAction(a.BaseXP, s) / float64(st.Expected)
		m.TotalXPPerStep = m.PrimaryXPPerStep
		for _, sk := range sortedNames(a.SecondaryXP) {
			v := XPPerAction(a.SecondaryXP[sk], s) / float64(st.Expected)
			m.SecondaryXPPerStep[sk] = v
			m.TotalXPPerStep += v
		}
	}
	for _, d := range a.AllDrops() {
		per := DropSteps(d, st.Single, m.RewardsPerCompletion, s)
		m.DropSteps[d.Item] = per
		if d.HasFine {
			m.DropSteps[d.Item+activity.FineSuffix] = FineSteps(per, s)
		}
	}
	return m
}

// Map returns the ranking view. When target names a drop, StepsPerItem is set.
func (m Activity) Map(target string) map[string]float64 {
	out := map[string]float64{
		StepsPerSingleAction:   m.Single,
		ExpectedStepsPerAction: float64(m.Expected),
		StepsPerRewardRoll:     m.StepsPerRewardRoll,
		RewardRollsPerStep:     m.RewardRollsPerStep,
		PrimaryXPPerStep:       m.PrimaryXPPerStep,
		TotalXPPerStep:         m.TotalXPPerStep,
	}
	if v, ok := m.DropSteps[target]; ok {
		out[StepsPerItem] = v
	}
	return out
}

// FindBonus returns the category-specific find stat for a drop.
func FindBonus(c item.MaterialCategory, s map[string]float64) float64 {
	switch c {
	case item.CategoryGem:
		return s[attribute.FindGems]
	case item.CategoryBirdNest:
		return s[attribute.FindBirdNests]
	case item.CategoryCollectible:
		return s[attribute.FindCollectibles]
	}
	return 0
}

// DropSteps is the expected steps to obtain one unit of d. Impossible drops
// return +Inf.
func DropSteps(d activity.Drop, single, rewardsPerCompletion float64, s map[string]float64) float64 {
	chance := d.ChancePercent / 100
	qty := d.Quantity.Average()
	if chance <= 0 || qty <= 0 || rewardsPerCompletion <= 0 {
		return math.Inf(1)
	}
	return (1 / chance) * single / ((1 + FindBonus(d.Category, s)) * rewardsPerCompletion * qty)
}

// FineSteps converts the steps per base material into steps per fine material:
// a fine drop replaces 1% of base drops, scaled by fine material finding.
func FineSteps(stepsPerItem float64, s map[string]float64) float64 {
	return stepsPerItem / (0.01 * (1 + s[attribute.FineMaterialFinding]))
}

func sortedNames(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
