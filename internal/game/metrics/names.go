// Package metrics turns aggregated stats plus an activity's or recipe's base
// parameters into derived performance figures. Every function is pure.
package metrics

// Metric names usable in optimiser rankings.
const (
	StepsPerSingleAction   = "steps_per_single_action"
	ExpectedStepsPerAction = "expected_steps_per_action"
	StepsPerRewardRoll     = "steps_per_reward_roll"
	RewardRollsPerStep     = "reward_rolls_per_step"
	PrimaryXPPerStep       = "primary_xp_per_step"
	TotalXPPerStep         = "total_xp_per_step"
	StepsPerItem           = "steps_per_item"

	MaterialsPerCraft    = "materials_per_craft"
	CraftsPerMaterial    = "crafts_per_material"
	ExpectedStepsPerItem = "expected_steps_per_item"
	StepsForChest        = "steps_for_chest"
	QualityOutcome       = "quality_outcome"
)

var higherIsBetter = map[string]bool{
	StepsPerSingleAction:   false,
	ExpectedStepsPerAction: false,
	StepsPerRewardRoll:     false,
	RewardRollsPerStep:     true,
	PrimaryXPPerStep:       true,
	TotalXPPerStep:         true,
	StepsPerItem:           false,
	MaterialsPerCraft:      false,
	CraftsPerMaterial:      true,
	ExpectedStepsPerItem:   false,
	StepsForChest:          false,
	QualityOutcome:         true,
}

// HigherIsBetter returns the natural direction of a built-in metric. ok is
// false for names this package does not produce.
func HigherIsBetter(name string) (higher, ok bool) {
	higher, ok = higherIsBetter[name]
	return higher, ok
}

// Known reports whether name is a built-in metric.
func Known(name string) bool {
	_, ok := higherIsBetter[name]
	return ok
}
