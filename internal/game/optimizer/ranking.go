package optimizer

import (
	"fmt"
	"math"
	"strings"
)

// Criterion is one level of a lexicographic ranking.
type Criterion struct {
	Metric         string
	HigherIsBetter bool
}

func (c Criterion) String() string {
	if c.HigherIsBetter {
		return c.Metric + " (max)"
	}
	return c.Metric + " (min)"
}

// Ranking orders metric maps: the first criterion decides unless tied, then
// the second, and so on.
type Ranking []Criterion

// ParseRanking parses "metric:max,metric:min". A bare metric name uses
// direction to pick its natural direction.
func ParseRanking(s string, direction func(string) (bool, bool)) (Ranking, error) {
	var r Ranking
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, dir, hasDir := strings.Cut(part, ":")
		c := Criterion{Metric: strings.TrimSpace(name)}
		switch {
		case hasDir && strings.EqualFold(dir, "max"):
			c.HigherIsBetter = true
		case hasDir && strings.EqualFold(dir, "min"):
		case hasDir:
			return nil, fmt.Errorf("optimizer: ParseRanking: bad direction %q for %s", dir, c.Metric)
		default:
			higher, ok := direction(c.Metric)
			if !ok {
				return nil, fmt.Errorf("optimizer: ParseRanking: %w: %s needs an explicit :max or :min", ErrUnknownMetric, c.Metric)
			}
			c.HigherIsBetter = higher
		}
		r = append(r, c)
	}
	if len(r) == 0 {
		return nil, fmt.Errorf("optimizer: ParseRanking: empty ranking")
	}
	return r, nil
}

// Primary returns the first criterion.
//
// Precondition: r is non-empty.
func (r Ranking) Primary() Criterion {
	return r[0]
}

// Better reports whether a ranks strictly ahead of b. A missing or NaN metric
// ranks behind any present value.
func (r Ranking) Better(a, b map[string]float64) bool {
	for _, c := range r {
		x, y := worstIfMissing(a, c), worstIfMissing(b, c)
		if x == y {
			continue
		}
		if c.HigherIsBetter {
			return x > y
		}
		return x < y
	}
	return false
}

func worstIfMissing(m map[string]float64, c Criterion) float64 {
	v, ok := m[c.Metric]
	if !ok || math.IsNaN(v) {
		if c.HigherIsBetter {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	return v
}

func (r Ranking) String() string {
	parts := make([]string, len(r))
	for i, c := range r {
		parts[i] = c.String()
	}
	return strings.Join(parts, " > ")
}
