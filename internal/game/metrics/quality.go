package metrics

import "github.com/cory-johannsen/walkscape/internal/game/item"

const tiers = 6

var (
	startWeights = [tiers]float64{1000, 200, 50, 10, 2.5, 0.05}
	minWeights   = [tiers]float64{4, 4, 4, 4, 2, 0.05}
	bandStarts   = [tiers]float64{0, 100, 200, 300, 400, 500}
)

// Distribution is indexed by item.Quality, Normal through Eternal.
type Distribution [tiers]float64

// Of returns the entry for q.
func (d Distribution) Of(q item.Quality) float64 {
	return d[int(q)]
}

// QualityWeights returns the raw weight of each tier for a recipe level and
// quality outcome. Each tier decays linearly across its band toward its
// minimum and is never rarer than the tier above it.
//
// Postcondition: w[i] >= w[i+1] for every tier.
func QualityWeights(recipeLevel int, qualityOutcome float64) Distribution {
	var w Distribution
	for i := tiers - 1; i >= 0; i-- {
		start, floor, bandStart := startWeights[i], minWeights[i], bandStarts[i]
		bandEnd := float64((100 + recipeLevel) * (i + 1))
		weight := start
		if qualityOutcome > bandStart && bandEnd != bandStart {
			slope := (start - floor) / (bandStart - bandEnd)
			weight = max(floor, start+slope*(qualityOutcome-bandStart))
		}
		if i < tiers-1 {
			weight = max(weight, w[i+1])
		}
		w[i] = weight
	}
	return w
}

// QualityDistribution returns QualityWeights normalised to percentages.
func QualityDistribution(recipeLevel int, qualityOutcome float64) Distribution {
	w := QualityWeights(recipeLevel, qualityOutcome)
	total := 0.0
	for _, v := range w {
		total += v
	}
	var pct Distribution
	for i, v := range w {
		pct[i] = v / total * 100
	}
	return pct
}
