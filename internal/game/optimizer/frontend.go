package optimizer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/fuzzy"
	"github.com/cory-johannsen/walkscape/internal/game/activity"
	"github.com/cory-johannsen/walkscape/internal/game/aggregate"
	"github.com/cory-johannsen/walkscape/internal/game/character"
	"github.com/cory-johannsen/walkscape/internal/game/constraint"
	"github.com/cory-johannsen/walkscape/internal/game/gearset"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/location"
	"github.com/cory-johannsen/walkscape/internal/game/metrics"
	"github.com/cory-johannsen/walkscape/internal/game/stats"
)

// Derived computes an additional ranking metric from the built-in ones.
type Derived interface {
	Name() string
	Evaluate(m map[string]float64) (float64, error)
}

// Options configure an activity or recipe optimisation.
type Options struct {
	// Location selects location-gated stats; nil applies only global stats.
	Location *location.Location
	// Target is a drop to optimise for; activities only.
	Target string
	// Ranking overrides the default ranking.
	Ranking            Ranking
	MaxIterations      int
	HighestQualityOnly bool
	// IgnoredItems are item names left out of the candidate pool.
	IgnoredItems []string
	// Extra sources, such as an active consumable or pet, apply to every
	// gearset scored.
	Extra    []stats.Source
	Derived  []Derived
	Observer Observer
}

// Outcome is a search result plus the context needed to report it.
type Outcome struct {
	*Result
	Ranking Ranking
	// Stats are the aggregated stats of the result gearset.
	Stats map[string]float64
	// Baseline holds the metrics of the character's equipped gear.
	Baseline map[string]float64
}

// Optimizer runs searches for a character against reference definitions.
type Optimizer struct {
	agg    *aggregate.Aggregator
	logger *zap.Logger
}

// New creates an Optimizer.
//
// Precondition: agg and logger must be non-nil.
func New(agg *aggregate.Aggregator, logger *zap.Logger) *Optimizer {
	return &Optimizer{agg: agg, logger: logger}
}

// DefaultActivityRanking ranks by steps per target item when a target is set,
// otherwise by XP per step, tie-breaking on steps per reward roll.
func DefaultActivityRanking(target string) Ranking {
	if target != "" {
		return Ranking{{Metric: metrics.StepsPerItem}, {Metric: metrics.PrimaryXPPerStep, HigherIsBetter: true}}
	}
	return Ranking{{Metric: metrics.PrimaryXPPerStep, HigherIsBetter: true}, {Metric: metrics.StepsPerRewardRoll}}
}

// DefaultRecipeRanking ranks by steps per crafted item, then material use,
// then quality outcome.
func DefaultRecipeRanking() Ranking {
	return Ranking{
		{Metric: metrics.ExpectedStepsPerItem},
		{Metric: metrics.MaterialsPerCraft},
		{Metric: metrics.QualityOutcome, HigherIsBetter: true},
	}
}

// Candidates builds the per-slot candidate pool from what ch owns: unlocked
// items (ignoring gear-dependent requirements), optionally reduced to the best
// quality tier, minus ignored names. Every tool position shares the tool pool.
func Candidates(ch *character.Character, opts Options) ([]gearset.SlotName, map[gearset.SlotName][]*item.Item) {
	ignored := make(map[string]bool, len(opts.IgnoredItems))
	for _, n := range opts.IgnoredItems {
		ignored[strings.ToLower(strings.TrimSpace(n))] = true
	}
	var pool []*item.Item
	for _, o := range ch.EquipmentItems() {
		it := o.Item
		if ignored[strings.ToLower(it.Name)] || ignored[strings.ToLower(it.BaseName)] {
			continue
		}
		if !it.Slot.Equippable() || !constraint.Unlocked(it, ch, true) {
			continue
		}
		pool = append(pool, it)
	}
	if opts.HighestQualityOnly {
		pool = item.HighestQuality(pool)
	}

	slots := append(append([]gearset.SlotName{}, gearset.GearSlots...), gearset.ToolSlotsFor(ch.ToolSlots())...)
	cands := make(map[gearset.SlotName][]*item.Item, len(slots))
	for _, slot := range slots {
		for _, it := range pool {
			if slot.Accepts(it) {
				cands[slot] = append(cands[slot], it)
			}
		}
	}
	return slots, cands
}

func (o *Optimizer) checkRanking(r Ranking, derived []Derived) error {
	names := make(map[string]bool)
	for _, d := range derived {
		names[d.Name()] = true
	}
	for _, c := range r {
		if !metrics.Known(c.Metric) && !names[c.Metric] {
			return fmt.Errorf("optimizer: %w: %s", ErrUnknownMetric, c.Metric)
		}
	}
	return nil
}

func (o *Optimizer) withDerived(m map[string]float64, derived []Derived) (map[string]float64, error) {
	for _, d := range derived {
		v, err := d.Evaluate(m)
		if err != nil {
			return nil, fmt.Errorf("optimizer: derived metric %s: %w", d.Name(), err)
		}
		m[d.Name()] = v
	}
	return m, nil
}

type plan struct {
	request  func(items []*item.Item) aggregate.Request
	evaluate func(s map[string]float64) map[string]float64
	req      activity.Requirements
	ranking  Ranking
}

func (o *Optimizer) score(p plan, items []*item.Item, derived []Derived) (map[string]float64, map[string]float64, error) {
	s, err := o.agg.Aggregate(p.request(items))
	if err != nil {
		return nil, nil, err
	}
	m, err := o.withDerived(p.evaluate(s), derived)
	return m, s, err
}

func equipped(ch *character.Character) []*item.Item {
	keys := make([]string, 0, len(ch.Gear))
	for k := range ch.Gear {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*item.Item, 0, len(keys))
	for _, k := range keys {
		if it := ch.Gear[k]; it != nil {
			out = append(out, it)
		}
	}
	return out
}

func (o *Optimizer) run(ctx context.Context, ch *character.Character, p plan, opts Options) (*Outcome, error) {
	if err := o.checkRanking(p.ranking, opts.Derived); err != nil {
		return nil, err
	}
	slots, cands := Candidates(ch, opts)
	validator := constraint.New(ch, p.req)
	res, err := Run(ctx, Problem{
		Slots:      slots,
		Candidates: cands,
		Score: func(g *gearset.Gearset) (map[string]float64, error) {
			m, _, err := o.score(p, g.Items(), opts.Derived)
			return m, err
		},
		Validate:         validator.Validate,
		Ranking:          p.ranking,
		RequiredKeywords: p.req.KeywordCounts,
		MaxIterations:    opts.MaxIterations,
		Observer:         opts.Observer,
	})
	if err != nil {
		return nil, fmt.Errorf("optimizer: %s: %w", ch.Name, err)
	}
	out := &Outcome{Result: res, Ranking: p.ranking}
	if _, out.Stats, err = o.score(p, res.Gearset.Items(), opts.Derived); err != nil {
		return nil, fmt.Errorf("optimizer: %s: scoring result: %w", ch.Name, err)
	}
	if base, _, err := o.score(p, equipped(ch), opts.Derived); err == nil {
		out.Baseline = base
	} else {
		o.logger.Debug("no baseline metrics", zap.String("character", ch.Name), zap.Error(err))
	}
	if !res.Valid {
		o.logger.Warn("optimised gearset does not meet requirements",
			zap.String("character", ch.Name),
			zap.String("reason", validator.Check(res.Gearset, true).Reason))
	}
	return out, nil
}

// ResolveTarget checks that target names a drop of a, suggesting the nearest
// drop name when it does not.
func ResolveTarget(a *activity.Activity, target string) error {
	if target == "" {
		return nil
	}
	if _, _, ok := a.FindDrop(target); ok {
		return nil
	}
	if s, ok := fuzzy.Closest(target, a.DropNames()); ok {
		return fmt.Errorf("optimizer: %w: %q in %s (did you mean %q?)", ErrTargetNotFound, target, a.Name, s)
	}
	return fmt.Errorf("optimizer: %w: %q in %s", ErrTargetNotFound, target, a.Name)
}

// ForActivity optimises ch's gear for a gathering activity.
func (o *Optimizer) ForActivity(ctx context.Context, ch *character.Character, a *activity.Activity, opts Options) (*Outcome, error) {
	if err := ResolveTarget(a, opts.Target); err != nil {
		return nil, err
	}
	target := opts.Target
	if d, fine, ok := a.FindDrop(target); ok {
		target = d.Item
		if fine {
			target += activity.FineSuffix
		}
	}
	ranking := opts.Ranking
	if len(ranking) == 0 {
		ranking = DefaultActivityRanking(target)
	}
	o.logger.Info("optimising activity",
		zap.String("character", ch.Name),
		zap.String("activity", a.Name),
		zap.String("target", target),
		zap.Stringer("ranking", ranking))
	return o.run(ctx, ch, plan{
		request: func(items []*item.Item) aggregate.Request {
			return aggregate.Request{
				Items:               items,
				Skill:               a.PrimarySkill,
				Location:            opts.Location,
				Activity:            a.Name,
				Character:           ch,
				IncludeLevelBonus:   true,
				IncludeCollectibles: true,
				ActivityLevel:       a.RequiredLevel(),
				Extra:               opts.Extra,
			}
		},
		evaluate: func(s map[string]float64) map[string]float64 {
			return metrics.ForActivity(a, s).Map(target)
		},
		req:     a.Requirements,
		ranking: ranking,
	}, opts)
}

// ForRecipe optimises ch's gear for a crafting recipe.
func (o *Optimizer) ForRecipe(ctx context.Context, ch *character.Character, r *activity.Recipe, opts Options) (*Outcome, error) {
	ranking := opts.Ranking
	if len(ranking) == 0 {
		ranking = DefaultRecipeRanking()
	}
	o.logger.Info("optimising recipe",
		zap.String("character", ch.Name),
		zap.String("recipe", r.Name),
		zap.Stringer("ranking", ranking))
	return o.run(ctx, ch, plan{
		request: func(items []*item.Item) aggregate.Request {
			return aggregate.Request{
				Items:               items,
				Skill:               r.Skill,
				Location:            opts.Location,
				Activity:            r.Name,
				Character:           ch,
				IncludeLevelBonus:   true,
				IncludeCollectibles: true,
				ActivityLevel:       r.RequiredLevel(),
				Extra:               opts.Extra,
			}
		},
		evaluate: func(s map[string]float64) map[string]float64 {
			return metrics.ForRecipe(r, s).Map()
		},
		req:     r.Requirements,
		ranking: ranking,
	}, opts)
}
