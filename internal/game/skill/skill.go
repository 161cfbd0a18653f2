// Package skill defines skill identities, the skill alias table used by stat
// queries, and the experience curve.
package skill

import (
	"errors"
	"fmt"
	"strings"
)

// Skill is a lower-case skill identifier.
type Skill string

// Trainable skills.
const (
	Agility     Skill = "agility"
	Carpentry   Skill = "carpentry"
	Cooking     Skill = "cooking"
	Crafting    Skill = "crafting"
	Fishing     Skill = "fishing"
	Foraging    Skill = "foraging"
	Mining      Skill = "mining"
	Smithing    Skill = "smithing"
	Trinketry   Skill = "trinketry"
	Woodcutting Skill = "woodcutting"
)

// Pseudo-skills. Global stats apply to every skill; Traveling stats apply
// while moving between locations; Travel is the query-side category that
// combines agility, traveling, and global stats.
const (
	Global    Skill = "global"
	Traveling Skill = "traveling"
	Travel    Skill = "travel"
)

// ErrUnknownSkill is returned by Parse for names outside the skill table.
var ErrUnknownSkill = errors.New("unknown skill")

var trainable = []Skill{
	Agility, Carpentry, Cooking, Crafting, Fishing,
	Foraging, Mining, Smithing, Trinketry, Woodcutting,
}

// aliases maps a requested skill to the stored stat-table keys it reads.
// Requests not listed here read themselves and Global.
var aliases = map[Skill][]Skill{
	Travel:    {Agility, Traveling, Global},
	Traveling: {Traveling, Global},
	Global:    {Global},
}

var known = func() map[Skill]bool {
	m := map[Skill]bool{Global: true, Traveling: true, Travel: true}
	for _, s := range trainable {
		m[s] = true
	}
	return m
}()

// All returns the trainable skills in display order.
func All() []Skill {
	out := make([]Skill, len(trainable))
	copy(out, trainable)
	return out
}

// Parse normalises name and validates it against the skill table.
//
// Postcondition: returns an error wrapping ErrUnknownSkill when name is not a
// trainable skill or pseudo-skill.
func Parse(name string) (Skill, error) {
	s := Skill(strings.ToLower(strings.TrimSpace(name)))
	if !known[s] {
		return "", fmt.Errorf("skill: Parse %q: %w", name, ErrUnknownSkill)
	}
	return s, nil
}

// IsKnown reports whether name parses.
func IsKnown(name string) bool {
	_, err := Parse(name)
	return err == nil
}

// Matches reports whether stats stored under the stat-table key stored apply
// to a query for requested.
func Matches(requested Skill, stored string) bool {
	key := Skill(strings.ToLower(stored))
	if keys, ok := aliases[requested]; ok {
		for _, k := range keys {
			if k == key {
				return true
			}
		}
		return false
	}
	return key == requested || key == Global
}

// String returns the skill identifier.
func (s Skill) String() string { return string(s) }

// Title returns the display form, e.g. "Woodcutting".
func (s Skill) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}
