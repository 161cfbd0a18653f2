package stats

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/walkscape/internal/game/attribute"
	"github.com/cory-johannsen/walkscape/internal/game/location"
	"github.com/cory-johannsen/walkscape/internal/game/skill"
)

// Context is the read-only view of a character that gate evaluation needs.
type Context interface {
	// Identity distinguishes characters in memoisation keys.
	Identity() string
	SkillLevel(s skill.Skill) int
	Reputation(faction string) float64
	ActivityCompletions(activity string) int
	OwnsItem(name string) bool
}

// Source is any stat-bearing entity: equipment, collectibles, consumables, pets.
type Source interface {
	// SourceID uniquely identifies the source, including quality tier or
	// resolved achievement level.
	SourceID() string
	StatTable() Table
	// GatedStats may return nil.
	GatedStats() *Gated
}

// Query selects which stats of a Source apply.
type Query struct {
	// Skill is the requested skill; empty sums every skill and location with
	// no gates applied.
	Skill string
	// Location nil means only "global" location keys apply.
	Location *location.Location
	// Activity is the activity currently being performed, if any.
	Activity string
	// SetPieceCounts maps lower-case set keyword to equipped unique pieces.
	SetPieceCounts map[string]int
	// Character nil means every character-dependent gate is locked.
	Character Context
}

// Compute returns the scaled stat deltas of src applicable to q. Percentage
// attributes are divided by 100 here and nowhere else.
//
// Precondition: src is non-nil.
// Postcondition: returns an error wrapping skill.ErrUnknownSkill when q.Skill
// is set but not a known skill.
func Compute(src Source, q Query) (map[string]float64, error) {
	raw := make(map[string]float64)
	if q.Skill == "" {
		addAll(raw, src.StatTable())
		return attribute.ScaleAll(raw), nil
	}
	sk, err := skill.Parse(q.Skill)
	if err != nil {
		return nil, fmt.Errorf("stats: Compute %s: %w", src.SourceID(), err)
	}
	addMatching(raw, src.StatTable(), sk, q.Location)
	if g := src.GatedStats(); !g.IsEmpty() {
		addGated(raw, g, sk, q)
	}
	return attribute.ScaleAll(raw), nil
}

func addAll(dst map[string]float64, t Table) {
	for _, sk := range sortedKeys(t) {
		locs := t[sk]
		for _, loc := range sortedKeys(locs) {
			for stat, v := range locs[loc] {
				dst[stat] += v
			}
		}
	}
}

func addMatching(dst map[string]float64, t Table, sk skill.Skill, loc *location.Location) {
	for _, key := range sortedKeys(t) {
		if !skill.Matches(sk, key) {
			continue
		}
		locs := t[key]
		for _, lk := range sortedKeys(locs) {
			if !location.Matches(loc, lk) {
				continue
			}
			for stat, v := range locs[lk] {
				dst[stat] += v
			}
		}
	}
}

func addThresholds(dst map[string]float64, th Thresholds, have int, sk skill.Skill, loc *location.Location) {
	for _, k := range th.ascending() {
		if have >= k {
			addMatching(dst, th[k], sk, loc)
		}
	}
}

func addGated(dst map[string]float64, g *Gated, sk skill.Skill, q Query) {
	ch := q.Character
	if ch != nil {
		for _, gateSkill := range sortedKeys(g.SkillLevel) {
			lvl := 0
			if s, err := skill.Parse(gateSkill); err == nil {
				lvl = ch.SkillLevel(s)
			}
			addThresholds(dst, g.SkillLevel[gateSkill], lvl, sk, q.Location)
		}
		for _, act := range sortedKeys(g.ActivityCompletion) {
			addThresholds(dst, g.ActivityCompletion[act], ch.ActivityCompletions(act), sk, q.Location)
		}
		for _, faction := range sortedKeys(g.Reputation) {
			rep := ch.Reputation(faction)
			for _, k := range g.Reputation[faction].ascending() {
				if rep >= float64(k) {
					addMatching(dst, g.Reputation[faction][k], sk, q.Location)
				}
			}
		}
		for _, name := range sortedKeys(g.ItemOwnership) {
			if ch.OwnsItem(name) {
				addMatching(dst, g.ItemOwnership[name], sk, q.Location)
			}
		}
	}
	if len(q.SetPieceCounts) > 0 {
		for _, set := range sortedKeys(g.SetPieces) {
			addThresholds(dst, g.SetPieces[set], q.SetPieceCounts[strings.ToLower(set)], sk, q.Location)
		}
	}
	if q.Activity != "" {
		for _, act := range sortedKeys(g.Activity) {
			if strings.EqualFold(act, q.Activity) {
				addMatching(dst, g.Activity[act], sk, q.Location)
			}
		}
	}
}

// Sum adds every entry of src into dst.
func Sum(dst, src map[string]float64) {
	for k, v := range src {
		dst[k] += v
	}
}
