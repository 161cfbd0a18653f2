// Package fuzzy suggests the nearest known name for a mistyped one.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Limit returns the largest edit distance accepted for a name of length n.
func Limit(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return max(3, n/5)
	}
}

// Closest returns the candidate nearest to input, comparing case-insensitively.
// A candidate containing the input outright wins over any edit distance.
// ok is false when nothing is within Limit.
func Closest(input string, candidates []string) (best string, ok bool) {
	matches := Ranked(input, candidates, 1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

// Ranked returns up to n candidates within Limit, nearest first.
func Ranked(input string, candidates []string, n int) []string {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return nil
	}
	type scored struct {
		name string
		dist int
	}
	var results []scored
	for _, c := range candidates {
		lc := strings.ToLower(c)
		var dist int
		switch {
		case lc == in:
			dist = -2
		case strings.Contains(lc, in) && len(in) >= 3:
			dist = -1
		default:
			dist = levenshtein.ComputeDistance(in, lc)
			if dist > Limit(len(lc)) {
				continue
			}
		}
		results = append(results, scored{name: c, dist: dist})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].dist == results[j].dist {
			return results[i].name < results[j].name
		}
		return results[i].dist < results[j].dist
	})
	if n > 0 && len(results) > n {
		results = results[:n]
	}
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.name
	}
	return out
}
