// Package optimizer searches for a locally optimal gearset: a greedy pass
// fills each slot in turn, then best-of-round single-slot swaps refine the
// result until no swap improves the ranking.
package optimizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/cory-johannsen/walkscape/internal/game/constraint"
	"github.com/cory-johannsen/walkscape/internal/game/gearset"
	"github.com/cory-johannsen/walkscape/internal/game/item"
)

// DefaultMaxIterations bounds local search rounds when a Problem leaves it unset.
const DefaultMaxIterations = 100

// Keyword boosts applied during the greedy pass to candidates carrying a
// keyword the requirements still need.
const (
	boostHigher = 1.5
	boostLower  = 0.5
)

var (
	// ErrNoCandidates is returned when no slot has any candidate item.
	ErrNoCandidates = errors.New("no candidate items")
	// ErrTargetNotFound is returned when an optimisation target names nothing.
	ErrTargetNotFound = errors.New("target not found")
	// ErrUnknownMetric is returned for ranking metrics nothing produces.
	ErrUnknownMetric = errors.New("unknown metric")
)

// ScoreFunc computes the metric map of a gearset. An error skips the gearset.
type ScoreFunc func(g *gearset.Gearset) (map[string]float64, error)

// ValidateFunc reports whether g is legal. full is false for the incomplete
// gearsets of the greedy pass, which skip requirement checks.
type ValidateFunc func(g *gearset.Gearset, full bool) bool

// Problem is a search over per-slot candidates.
type Problem struct {
	// Slots are filled in order.
	Slots      []gearset.SlotName
	Candidates map[gearset.SlotName][]*item.Item
	Score      ScoreFunc
	// Validate may be nil to accept everything.
	Validate ValidateFunc
	Ranking  Ranking
	// RequiredKeywords maps a keyword to the equipped count required; it
	// biases the greedy pass and directs repair.
	RequiredKeywords map[string]int
	MaxIterations    int
	// Observer may be nil.
	Observer Observer
}

// Result is the outcome of a search.
type Result struct {
	Gearset *gearset.Gearset
	Metrics map[string]float64
	// Iterations is the number of accepted swaps.
	Iterations int
	// Converged is false when the iteration limit stopped the search.
	Converged bool
	// Valid reports whether the final gearset passes full validation.
	Valid    bool
	Repaired bool
}

type search struct {
	p   Problem
	obs Observer
}

// Run executes the search. The context is checked between rounds and between
// greedy slots.
//
// Precondition: p.Score is non-nil and p.Ranking is non-empty.
// Postcondition: each accepted swap ranks strictly ahead of the gearset it
// replaced.
func Run(ctx context.Context, p Problem) (*Result, error) {
	if p.Score == nil {
		return nil, fmt.Errorf("optimizer: Run: nil score function")
	}
	if len(p.Ranking) == 0 {
		return nil, fmt.Errorf("optimizer: Run: empty ranking")
	}
	if p.Validate == nil {
		p.Validate = func(*gearset.Gearset, bool) bool { return true }
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = DefaultMaxIterations
	}
	total := 0
	for _, s := range p.Slots {
		total += len(p.Candidates[s])
	}
	if total == 0 {
		return nil, ErrNoCandidates
	}
	s := &search{p: p, obs: p.Observer}
	if s.obs == nil {
		s.obs = NopObserver{}
	}

	s.obs.PhaseChanged(PhaseGreedy)
	current, err := s.greedy(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if !p.Validate(current, true) {
		s.obs.PhaseChanged(PhaseRepair)
		current = s.repair(current)
		res.Repaired = true
	}

	metrics, err := p.Score(current)
	if err != nil {
		return nil, fmt.Errorf("optimizer: Run: scoring initial gearset: %w", err)
	}

	s.obs.PhaseChanged(PhaseLocalSearch)
	for res.Iterations < p.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slot, it, m, ok := s.bestSwap(current, metrics)
		if !ok {
			res.Converged = true
			break
		}
		from := current.Get(slot)
		current.Set(slot, it)
		metrics = m
		res.Iterations++
		s.obs.SwapAccepted(res.Iterations, slot, from, it, m)
	}
	if res.Converged {
		s.obs.PhaseChanged(PhaseConverged)
	}

	res.Gearset = current
	res.Metrics = metrics
	res.Valid = p.Validate(current, true)
	s.obs.Finished(res)
	return res, nil
}

func (s *search) needed(g *gearset.Gearset) []string {
	var out []string
	for kw, n := range s.p.RequiredKeywords {
		if constraint.KeywordCount(g, kw) < n {
			out = append(out, kw)
		}
	}
	return out
}

func (s *search) deficit(g *gearset.Gearset) int {
	d := 0
	for kw, n := range s.p.RequiredKeywords {
		if have := constraint.KeywordCount(g, kw); have < n {
			d += n - have
		}
	}
	return d
}

func carriesAny(it *item.Item, keywords []string) bool {
	for _, kw := range keywords {
		if it.HasKeyword(kw) {
			return true
		}
	}
	return false
}

func (s *search) primaryScore(g *gearset.Gearset, it *item.Item, needed []string) (float64, bool) {
	m, err := s.p.Score(g)
	if err != nil {
		return 0, false
	}
	c := s.p.Ranking.Primary()
	v, ok := m[c.Metric]
	if !ok {
		return 0, false
	}
	if carriesAny(it, needed) {
		if c.HigherIsBetter {
			v *= boostHigher
		} else {
			v *= boostLower
		}
	}
	return v, true
}

func (s *search) greedy(ctx context.Context) (*gearset.Gearset, error) {
	primary := s.p.Ranking.Primary()
	current := gearset.New()
	for _, slot := range s.p.Slots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		needed := s.needed(current)
		var best *item.Item
		var bestScore float64
		for _, it := range s.p.Candidates[slot] {
			if !slot.Accepts(it) {
				continue
			}
			trial := current.With(slot, it)
			if !s.p.Validate(trial, false) {
				continue
			}
			v, ok := s.primaryScore(trial, it, needed)
			if !ok {
				continue
			}
			if best == nil || (primary.HigherIsBetter && v > bestScore) || (!primary.HigherIsBetter && v < bestScore) {
				best, bestScore = it, v
			}
		}
		current.Set(slot, best)
		s.obs.SlotFilled(slot, best, bestScore)
	}
	return current, nil
}

// repair walks the slots once, those with a candidate carrying a needed
// keyword first, and at each takes the best-ranked swap that reduces the
// keyword deficit. It stops as soon as the gearset validates.
func (s *search) repair(g *gearset.Gearset) *gearset.Gearset {
	needed := s.needed(g)
	var first, rest []gearset.SlotName
	for _, slot := range s.p.Slots {
		helps := false
		for _, it := range s.p.Candidates[slot] {
			if carriesAny(it, needed) {
				helps = true
				break
			}
		}
		if helps {
			first = append(first, slot)
		} else {
			rest = append(rest, slot)
		}
	}
	for _, slot := range append(first, rest...) {
		if s.p.Validate(g, true) {
			return g
		}
		before := s.deficit(g)
		var best *gearset.Gearset
		var bestMetrics map[string]float64
		for _, it := range s.p.Candidates[slot] {
			if it == g.Get(slot) || !slot.Accepts(it) {
				continue
			}
			trial := g.With(slot, it)
			if !s.p.Validate(trial, false) {
				continue
			}
			full := s.p.Validate(trial, true)
			if !full && s.deficit(trial) >= before {
				continue
			}
			m, err := s.p.Score(trial)
			if err != nil {
				continue
			}
			if best == nil || s.p.Ranking.Better(m, bestMetrics) {
				best, bestMetrics = trial, m
			}
		}
		if best != nil {
			g = best
		}
	}
	return g
}

// bestSwap finds the single swap that ranks best among all swaps that beat
// the current metrics.
func (s *search) bestSwap(g *gearset.Gearset, current map[string]float64) (gearset.SlotName, *item.Item, map[string]float64, bool) {
	var (
		bestSlot    gearset.SlotName
		bestItem    *item.Item
		bestMetrics map[string]float64
	)
	for _, slot := range s.p.Slots {
		cur := g.Get(slot)
		for _, it := range s.p.Candidates[slot] {
			if it == cur || !slot.Accepts(it) {
				continue
			}
			trial := g.With(slot, it)
			if !s.p.Validate(trial, true) {
				continue
			}
			m, err := s.p.Score(trial)
			if err != nil {
				continue
			}
			if !s.p.Ranking.Better(m, current) {
				continue
			}
			if bestMetrics == nil || s.p.Ranking.Better(m, bestMetrics) {
				bestSlot, bestItem, bestMetrics = slot, it, m
			}
		}
	}
	return bestSlot, bestItem, bestMetrics, bestMetrics != nil
}
