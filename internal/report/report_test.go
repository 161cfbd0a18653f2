package report_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/walkscape/internal/game/attribute"
	"github.com/cory-johannsen/walkscape/internal/game/gearset"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/metrics"
	"github.com/cory-johannsen/walkscape/internal/game/optimizer"
	"github.com/cory-johannsen/walkscape/internal/game/route"
	"github.com/cory-johannsen/walkscape/internal/report"
)

func TestFormatStat(t *testing.T) {
	assert.Equal(t, "25%", report.FormatStat(attribute.WorkEfficiency, 0.25))
	assert.Equal(t, "-3.5%", report.FormatStat(attribute.StepsPercent, -0.035))
	assert.Equal(t, "-3", report.FormatStat(attribute.StepsAdd, -3))
	assert.Equal(t, "12.5", report.FormatStat(attribute.QualityOutcome, 12.5))
}

func TestFormatMetric(t *testing.T) {
	assert.Equal(t, "100", report.FormatMetric(100))
	assert.Equal(t, "1.5", report.FormatMetric(1.5))
	assert.Equal(t, "inf", report.FormatMetric(math.Inf(1)))
	assert.Equal(t, "0.001234", report.FormatMetric(0.001234))
}

func TestStats_CatalogOrderAndDisplayNames(t *testing.T) {
	out := report.New(false).Stats("Totals", map[string]float64{
		attribute.WorkEfficiency: 0.3,
		attribute.DoubleAction:   0.05,
		attribute.FindGems:       0,
		"custom_bonus":           2,
	})
	assert.Contains(t, out, "=== Totals ===")
	assert.Contains(t, out, "Work Efficiency")
	assert.NotContains(t, out, "Find Gems")
	da := strings.Index(out, "Double Action")
	we := strings.Index(out, "Work Efficiency")
	custom := strings.Index(out, "custom_bonus")
	assert.Less(t, da, we)
	assert.Less(t, we, custom)
}

func TestStats_Empty(t *testing.T) {
	assert.Contains(t, report.New(false).Stats("None", nil), "(no stats)")
}

func TestOutcome(t *testing.T) {
	g := gearset.New()
	g.Set(gearset.Head, &item.Item{Name: "Miner's Helmet", Slot: item.SlotHead})
	g.Set(gearset.ToolSlot(0), &item.Item{Name: "Iron Pickaxe", Slot: item.SlotTools})
	out := &optimizer.Outcome{
		Result: &optimizer.Result{
			Gearset:    g,
			Metrics:    map[string]float64{metrics.StepsPerItem: 40, metrics.TotalXPPerStep: 0.5},
			Iterations: 2,
			Converged:  true,
			Valid:      false,
		},
		Ranking: optimizer.Ranking{
			{Metric: metrics.StepsPerItem, HigherIsBetter: false},
			{Metric: metrics.TotalXPPerStep, HigherIsBetter: true},
			{Metric: "missing", HigherIsBetter: true},
		},
		Baseline: map[string]float64{metrics.StepsPerItem: 50, metrics.TotalXPPerStep: 0.5},
	}

	colored := report.New(true).Outcome(out)
	plain := report.StripANSI(colored)
	assert.Equal(t, plain, report.New(false).Outcome(out))
	assert.Contains(t, colored, report.Green+"(-10)"+report.Reset, "fewer steps is an improvement")
	assert.Contains(t, plain, "Miner's Helmet")
	assert.Contains(t, plain, "Iron Pickaxe")
	assert.Less(t, strings.Index(plain, "head"), strings.Index(plain, "tool0"))
	assert.Contains(t, plain, "2 swaps, converged")
	assert.Contains(t, plain, "n/a")
	assert.Contains(t, plain, "does not meet")
}

func TestComparison(t *testing.T) {
	a := map[string]float64{attribute.WorkEfficiency: 0.1, attribute.StepsAdd: -1}
	b := map[string]float64{attribute.WorkEfficiency: 0.15, attribute.StepsAdd: -2}
	out := report.New(true).Comparison("Iron Pickaxe", "Steel Pickaxe", a, b)
	assert.Contains(t, out, report.Green+"+5%"+report.Reset)
	assert.Contains(t, out, report.Green+"-1"+report.Reset, "fewer steps is green")

	same := report.New(false).Comparison("A", "B", a, a)
	assert.Contains(t, same, "(identical)")
}

func TestQuality(t *testing.T) {
	var d metrics.Distribution
	d[0] = 75
	d[1] = 25
	out := report.New(false).Quality(d)
	assert.Contains(t, out, "Normal")
	assert.Contains(t, out, "75.00%")
	assert.Contains(t, out, "Eternal")
}

func TestTour(t *testing.T) {
	tour := &route.Tour{
		Path: route.Path{
			Legs: []route.Leg{
				{From: "Kallaheim", To: "Frusenholm", Steps: 900, Gear: "skis"},
				{From: "Frusenholm", To: "Kallaheim", Steps: 0, Teleport: true},
			},
			Steps:     900,
			Teleports: 1,
		},
		Order:         []string{"Frusenholm"},
		ServiceVisits: map[string]string{"bank": "Frusenholm"},
	}
	out := report.New(false).Tour(tour)
	assert.Contains(t, out, "Order: Frusenholm")
	assert.Contains(t, out, "bank at Frusenholm")
	assert.Contains(t, out, "Kallaheim -> Frusenholm  900 steps  [skis]")
	assert.Contains(t, out, "[teleport]")
	assert.Contains(t, out, "Total: 900 steps, 1 teleport(s)")
}

func TestPropertyPlainPaletteNeverEmitsEscapes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.MapOf(rapid.SampledFrom([]string{
			attribute.WorkEfficiency, attribute.DoubleAction, attribute.StepsAdd, attribute.QualityOutcome,
		}), rapid.Float64Range(-5, 5)).Draw(t, "stats")
		out := report.New(false).Stats("x", s)
		if strings.Contains(out, "\033[") {
			t.Fatalf("plain output contains escape codes: %q", out)
		}
		colored := report.New(true).Stats("x", s)
		if report.StripANSI(colored) != out {
			t.Fatalf("stripped coloured output differs from plain")
		}
	})
}
