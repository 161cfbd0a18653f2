// Package stats implements the layered stat model shared by every stat-bearing
// entity: a plain skill/location table, gated tables unlocked by character
// state, and the single query that combines them.
package stats

import (
	"sort"
	"strings"
)

// Table maps skill -> location key -> stat name -> raw value. Percentage stats
// are stored as raw percentages (5.0 for 5%). Absent keys read as zero.
type Table map[string]map[string]map[string]float64

// NewTable returns an empty Table.
func NewTable() Table {
	return make(Table)
}

// Add accumulates v into the entry for (skill, loc, stat).
//
// Precondition: t is non-nil.
func (t Table) Add(skill, loc, stat string, v float64) {
	skill, loc = strings.ToLower(skill), strings.ToLower(loc)
	locs, ok := t[skill]
	if !ok {
		locs = make(map[string]map[string]float64)
		t[skill] = locs
	}
	vals, ok := locs[loc]
	if !ok {
		vals = make(map[string]float64)
		locs[loc] = vals
	}
	vals[stat] += v
}

// Get returns the raw value at (skill, loc, stat), or zero.
func (t Table) Get(skill, loc, stat string) float64 {
	return t[strings.ToLower(skill)][strings.ToLower(loc)][stat]
}

// IsEmpty reports whether the table holds no values.
func (t Table) IsEmpty() bool {
	for _, locs := range t {
		for _, vals := range locs {
			if len(vals) > 0 {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy.
func (t Table) Clone() Table {
	out := NewTable()
	out.AddTable(t)
	return out
}

// AddTable accumulates every entry of o into t.
//
// Precondition: t is non-nil.
func (t Table) AddTable(o Table) {
	for sk, locs := range o {
		for loc, vals := range locs {
			for stat, v := range vals {
				t.Add(sk, loc, stat, v)
			}
		}
	}
}

// Merged returns a new table holding the sum of t and o.
func (t Table) Merged(o Table) Table {
	out := t.Clone()
	out.AddTable(o)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Thresholds maps an integer threshold to the stats unlocked at it.
type Thresholds map[int]Table

// ascending returns threshold keys in ascending order.
func (th Thresholds) ascending() []int {
	keys := make([]int, 0, len(th))
	for k := range th {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Upto returns the sum of every threshold table at or below limit.
func (th Thresholds) Upto(limit int) Table {
	out := NewTable()
	for _, k := range th.ascending() {
		if k <= limit {
			out.AddTable(th[k])
		}
	}
	return out
}

// Gated holds stat tables that apply only when an unlock condition holds.
// Threshold gates are cumulative: every satisfied threshold contributes.
type Gated struct {
	SkillLevel         map[string]Thresholds `yaml:"skill_level,omitempty"`
	ActivityCompletion map[string]Thresholds `yaml:"activity_completion,omitempty"`
	Reputation         map[string]Thresholds `yaml:"reputation,omitempty"`
	SetPieces          map[string]Thresholds `yaml:"set_pieces,omitempty"`
	ItemOwnership      map[string]Table      `yaml:"item_ownership,omitempty"`
	Activity           map[string]Table      `yaml:"activity,omitempty"`
}

// IsEmpty reports whether no gate is defined.
func (g *Gated) IsEmpty() bool {
	return g == nil || (len(g.SkillLevel) == 0 && len(g.ActivityCompletion) == 0 &&
		len(g.Reputation) == 0 && len(g.SetPieces) == 0 &&
		len(g.ItemOwnership) == 0 && len(g.Activity) == 0)
}
