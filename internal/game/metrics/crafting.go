package metrics

import (
	"math"

	"github.com/cory-johannsen/walkscape/internal/game/activity"
	"github.com/cory-johannsen/walkscape/internal/game/attribute"
)

// BaseChestRate is the chance per action of finding a chest.
const BaseChestRate = 0.01

// Crafting holds the figures for one recipe.
type Crafting struct {
	Steps
	PrimaryXPPerStep     float64
	CraftsPerMaterial    float64
	MaterialsPerCraft    float64
	ExpectedStepsPerItem float64
	StepsForChest        float64
	QualityOutcome       float64
	// Quality is the output quality distribution, in percent.
	Quality Distribution
}

// ForRecipe computes crafting metrics from aggregated stats.
func ForRecipe(r *activity.Recipe, s map[string]float64) Crafting {
	st := ActionSteps(r.BaseSteps, r.MaxEfficiency, s)
	dr := s[attribute.DoubleRewards]
	m := Crafting{
		Steps:          st,
		QualityOutcome: s[attribute.QualityOutcome],
		Quality:        QualityDistribution(r.RequiredLevel(), s[attribute.QualityOutcome]),
	}
	expected := float64(st.Expected)
	if expected > 0 {
		m.PrimaryXPPerStep = XPPerAction(r.BaseXP, s) / expected
	}
	if nmc := s[attribute.NoMaterialsConsumed]; nmc >= 1 {
		m.CraftsPerMaterial = math.Inf(1)
	} else {
		m.CraftsPerMaterial = (1 + dr) / (1 - nmc)
	}
	if m.CraftsPerMaterial > 0 && !math.IsInf(m.CraftsPerMaterial, 1) {
		m.MaterialsPerCraft = 1 / m.CraftsPerMaterial
	}
	m.ExpectedStepsPerItem = expected / (1 + dr)
	m.StepsForChest = expected / (BaseChestRate * (1 + s[attribute.ChestFinding]) * (1 + dr))
	return m
}

// Map returns the ranking view.
func (m Crafting) Map() map[string]float64 {
	return map[string]float64{
		StepsPerSingleAction:   m.Single,
		ExpectedStepsPerAction: float64(m.Expected),
		PrimaryXPPerStep:       m.PrimaryXPPerStep,
		CraftsPerMaterial:      m.CraftsPerMaterial,
		MaterialsPerCraft:      m.MaterialsPerCraft,
		ExpectedStepsPerItem:   m.ExpectedStepsPerItem,
		StepsForChest:          m.StepsForChest,
		QualityOutcome:         m.QualityOutcome,
	}
}
