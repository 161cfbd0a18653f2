// Package constraint decides whether a gearset is legal for a character and,
// when complete, whether it satisfies an activity's requirements.
//
// Checks are re-run for every candidate the optimiser considers; they
// short-circuit on the first failure and never return errors.
package constraint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/walkscape/internal/game/activity"
	"github.com/cory-johannsen/walkscape/internal/game/character"
	"github.com/cory-johannsen/walkscape/internal/game/gearset"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/skill"
)

// ExcludedToolKeywords may be shared by any number of equipped tools.
var ExcludedToolKeywords = map[string]bool{
	"tool":               true,
	"light source":       true,
	"achievement reward": true,
	"faction reward":     true,
	"activity tool":      true,
	"regional":           true,
}

// Result is the outcome of a check. Reason is empty when OK.
type Result struct {
	OK     bool
	Reason string
}

var pass = Result{OK: true}

func fail(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Validator checks gearsets for one character and one requirement set.
type Validator struct {
	ch  *character.Character
	req activity.Requirements
}

// New creates a Validator. ch may be nil, in which case ring quantities and
// character requirements are not enforced.
func New(ch *character.Character, req activity.Requirements) *Validator {
	return &Validator{ch: ch, req: req}
}

// Validate reports whether g passes. Partial checks cover uniqueness and tool
// keywords; full checks add activity and item requirements.
func (v *Validator) Validate(g *gearset.Gearset, full bool) bool {
	return v.Check(g, full).OK
}

// Check is Validate with the first failure reason.
func (v *Validator) Check(g *gearset.Gearset, full bool) Result {
	if r := Unique(g, v.ch); !r.OK {
		return r
	}
	if r := ToolKeywordsExclusive(g); !r.OK {
		return r
	}
	if !full {
		return pass
	}
	if r := RequirementsMet(g, v.req, v.ch); !r.OK {
		return r
	}
	return ItemGearRequirementsMet(g)
}

// Unique enforces one use per UUID outside ring slots and no more ring uses
// than the character owns.
func Unique(g *gearset.Gearset, ch *character.Character) Result {
	uses := make(map[string]int)
	ringUses := make(map[string]int)
	for _, s := range g.Occupied() {
		it := g.Get(s)
		if s.IsRing() {
			ringUses[it.UUID]++
			continue
		}
		uses[it.UUID]++
		if uses[it.UUID] > 1 {
			return fail("%s is equipped more than once", it.Name)
		}
	}
	for id, n := range ringUses {
		if uses[id] > 0 {
			return fail("ring %s is also equipped outside a ring slot", id)
		}
		if ch != nil && n > ch.OwnedQuantity(id) {
			return fail("ring %s used %d times but %d owned", id, n, ch.OwnedQuantity(id))
		}
	}
	return pass
}

// ToolKeywordsExclusive rejects two tools sharing a non-excluded keyword.
func ToolKeywordsExclusive(g *gearset.Gearset) Result {
	seen := make(map[string]string)
	for _, tool := range g.Tools() {
		own := make(map[string]bool)
		for _, kw := range tool.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if ExcludedToolKeywords[kw] || own[kw] {
				continue
			}
			own[kw] = true
			if other, dup := seen[kw]; dup {
				return fail("tools %s and %s share keyword %q", other, tool.Name, kw)
			}
			seen[kw] = tool.Name
		}
	}
	return pass
}

// KeywordCount counts equipped items carrying keyword.
func KeywordCount(g *gearset.Gearset, keyword string) int {
	n := 0
	for _, it := range g.Items() {
		if it.HasKeyword(keyword) {
			n++
		}
	}
	return n
}

// RequirementsMet checks skill, reputation, achievement point and keyword-count
// requirements. A nil character fails any character requirement.
func RequirementsMet(g *gearset.Gearset, req activity.Requirements, ch *character.Character) Result {
	for _, name := range sortedKeys(req.Skills) {
		s, err := skill.Parse(name)
		if err != nil {
			return fail("unknown required skill %q", name)
		}
		if ch == nil || ch.SkillLevel(s) < req.Skills[name] {
			return fail("requires %s level %d", s.Title(), req.Skills[name])
		}
	}
	for _, faction := range sortedKeys(req.Reputation) {
		if ch == nil || ch.Reputation(faction) < req.Reputation[faction] {
			return fail("requires %.0f %s reputation", req.Reputation[faction], faction)
		}
	}
	if req.AchievementPoints > 0 && (ch == nil || ch.AchievementPoints < req.AchievementPoints) {
		return fail("requires %d achievement points", req.AchievementPoints)
	}
	for _, kw := range sortedKeys(req.KeywordCounts) {
		if have := KeywordCount(g, kw); have < req.KeywordCounts[kw] {
			return fail("requires %d %s, have %d", req.KeywordCounts[kw], kw, have)
		}
	}
	return pass
}

// ItemGearRequirementsMet checks every equipped item's keyword-count
// requirements against the rest of the gearset.
func ItemGearRequirementsMet(g *gearset.Gearset) Result {
	for _, it := range g.Items() {
		for _, r := range it.Requirements {
			if r.Type != item.ReqKeywordCount {
				continue
			}
			if have := KeywordCount(g, r.Keyword); have < r.Count {
				return fail("%s requires %d %s, have %d", it.Name, r.Count, r.Keyword, have)
			}
		}
	}
	return pass
}

// Unlocked reports whether ch meets the item's requirements. Keyword-count
// requirements are skipped when ignoreGear is set, since they depend on what
// else ends up equipped.
func Unlocked(it *item.Item, ch *character.Character, ignoreGear bool) bool {
	for _, r := range it.Requirements {
		switch r.Type {
		case item.ReqSkill:
			s, err := skill.Parse(r.Skill)
			if err != nil || ch.SkillLevel(s) < r.Level {
				return false
			}
		case item.ReqReputation:
			if ch.Reputation(r.Faction) < r.Amount {
				return false
			}
		case item.ReqCharacterLevel:
			if ch.CharacterLevel() < r.Level {
				return false
			}
		case item.ReqKeywordCount:
			if ignoreGear {
				continue
			}
			n := 0
			for _, eq := range ch.Gear {
				if eq != nil && eq.HasKeyword(r.Keyword) {
					n++
				}
			}
			if n < r.Count {
				return false
			}
		case item.ReqAccess:
			if !ch.HasAccess(r.Region) {
				return false
			}
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
