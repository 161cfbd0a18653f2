// Package aggregate combines the stats of every source that applies to one
// activity context: equipped items with set bonuses, the character level
// bonus, and owned collectibles.
package aggregate

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/game/attribute"
	"github.com/cory-johannsen/walkscape/internal/game/character"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/location"
	"github.com/cory-johannsen/walkscape/internal/game/skill"
	"github.com/cory-johannsen/walkscape/internal/game/stats"
)

const (
	// LevelBonusPerLevel is the work efficiency granted per level above the
	// activity requirement.
	LevelBonusPerLevel = 0.0125
	// MaxBonusLevels caps the levels counted toward the work efficiency bonus.
	MaxBonusLevels = 20
)

// Request describes one aggregation.
type Request struct {
	Items    []*item.Item
	Skill    string
	Location *location.Location
	Activity string
	// Character may be nil; character-gated stats and bonuses are then skipped.
	Character           *character.Character
	IncludeLevelBonus   bool
	IncludeCollectibles bool
	// ActivityLevel is the required primary-skill level; values below 1 mean 1.
	ActivityLevel int
	// Extra holds additional sources such as an active consumable or pet.
	Extra []stats.Source
}

// Aggregator sums stats across sources through a shared memo cache.
type Aggregator struct {
	cache  *stats.Cache
	logger *zap.Logger
}

// New creates an Aggregator. cache may be nil to disable memoisation.
//
// Precondition: logger must be non-nil.
func New(cache *stats.Cache, logger *zap.Logger) *Aggregator {
	return &Aggregator{cache: cache, logger: logger}
}

// SetPieceCounts counts, per lower-case keyword, the distinct item UUIDs
// carrying it.
func SetPieceCounts(items []*item.Item) map[string]int {
	seen := make(map[string]map[string]struct{})
	for _, it := range items {
		if it == nil {
			continue
		}
		for _, kw := range it.Keywords {
			kw = strings.ToLower(kw)
			if seen[kw] == nil {
				seen[kw] = make(map[string]struct{})
			}
			seen[kw][it.UUID] = struct{}{}
		}
	}
	counts := make(map[string]int, len(seen))
	for kw, ids := range seen {
		counts[kw] = len(ids)
	}
	return counts
}

func (a *Aggregator) query(req Request, sets map[string]int) stats.Query {
	q := stats.Query{
		Skill:          req.Skill,
		Location:       req.Location,
		Activity:       req.Activity,
		SetPieceCounts: sets,
	}
	if req.Character != nil {
		q.Character = req.Character
	}
	return q
}

// Aggregate returns the combined, already scaled stats for req.
//
// Postcondition: returns an error only when an item query fails (an unknown
// skill); collectible failures contribute zero.
func (a *Aggregator) Aggregate(req Request) (map[string]float64, error) {
	total := make(map[string]float64)
	sets := SetPieceCounts(req.Items)
	q := a.query(req, sets)

	for _, it := range req.Items {
		if it == nil {
			continue
		}
		got, err := a.cache.Compute(it, q)
		if err != nil {
			return nil, fmt.Errorf("aggregate: %s: %w", it.Name, err)
		}
		stats.Sum(total, got)
	}
	for _, src := range req.Extra {
		got, err := a.cache.Compute(src, q)
		if err != nil {
			return nil, fmt.Errorf("aggregate: %s: %w", src.SourceID(), err)
		}
		stats.Sum(total, got)
	}

	if req.IncludeLevelBonus && req.Character != nil && req.Skill != "" {
		we, qo := LevelBonus(req.Character, req.Skill, req.ActivityLevel)
		total[attribute.WorkEfficiency] += we
		total[attribute.QualityOutcome] += qo
	}

	if req.IncludeCollectibles && req.Character != nil {
		got, err := a.collectibles(req.Character, q)
		if err != nil {
			a.logger.Debug("ignoring collectible stats", zap.String("character", req.Character.Name), zap.Error(err))
		} else {
			stats.Sum(total, got)
		}
	}
	return total, nil
}

func (a *Aggregator) collectibles(ch *character.Character, q stats.Query) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, c := range ch.Collectibles {
		got, err := a.cache.Compute(c, q)
		if err != nil {
			return nil, err
		}
		stats.Sum(out, got)
	}
	return out, nil
}

// LevelBonus returns the work efficiency and quality outcome granted by the
// character's level in skillName above activityLevel. Work efficiency counts at
// most MaxBonusLevels levels; quality outcome is uncapped.
func LevelBonus(ch *character.Character, skillName string, activityLevel int) (we, qo float64) {
	if activityLevel < 1 {
		activityLevel = 1
	}
	s, err := skill.Parse(skillName)
	if err != nil {
		return 0, 0
	}
	above := ch.SkillLevel(s) - activityLevel
	if above <= 0 {
		return 0, 0
	}
	return float64(min(above, MaxBonusLevels)) * LevelBonusPerLevel, float64(above)
}
