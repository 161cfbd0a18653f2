// Package route plans travel between locations. Edge costs come from the
// traveller's gear evaluated at each edge's starting location, so the graph is
// directed: A to B and B to A may cost different steps.
package route

import (
	"errors"
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
	"github.com/cory-johannsen/walkscape/internal/game/skill"
)

var (
	ErrUnknownLocation = errors.New("unknown location")
	ErrUnreachable     = errors.New("unreachable")
	ErrTooManyStops    = errors.New("too many tour stops")
)

// DefaultMaxTourStops bounds the permutation search.
const DefaultMaxTourStops = 8

// Route is an undirected walkable connection.
type Route struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Distance int    `yaml:"distance"`
	// Requires maps a gear keyword to the number of equipped items that must
	// carry it to walk the route.
	Requires map[string]int `yaml:"requires,omitempty"`
}

// Shortcut is a one-way connection with a fixed step cost.
type Shortcut struct {
	Name  string `yaml:"name"`
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Steps int    `yaml:"steps"`
}

// Network is the static map.
type Network struct {
	Routes    []Route
	Shortcuts []Shortcut
	Services  []*activity.Service
}

// GearOption is a named item set the traveller can switch to per edge.
type GearOption struct {
	Name  string
	Items []*item.Item
}

// Config tunes graph construction and tours.
type Config struct {
	// Home is the teleport destination.
	Home          string
	AllowTeleport bool
	MaxTourStops  int
	// LevelEfficiency is added to work efficiency on every edge.
	LevelEfficiency float64
}

// Leg is one directed edge.
type Leg struct {
	From     string
	To       string
	Steps    int
	Distance int
	// Gear names the option chosen for the edge, or the shortcut.
	Gear     string
	Shortcut bool
	Teleport bool
}

// Graph is an immutable directed travel graph.
type Graph struct {
	adj       map[string][]Leg
	canonical map[string]string
	services  []*activity.Service
	cfg       Config
}

// Builder computes edge costs for one traveller.
type Builder struct {
	agg    *aggregate.Aggregator
	locs   *location.Registry
	ch     *character.Character
	logger *zap.Logger
}

// NewBuilder creates a Builder. ch may be nil; gated stats then stay locked
// and every service counts as unlocked.
func NewBuilder(agg *aggregate.Aggregator, locs *location.Registry, ch *character.Character, logger *zap.Logger) *Builder {
	return &Builder{agg: agg, locs: locs, ch: ch, logger: logger}
}

func (b *Builder) location(name string) *location.Location {
	if l, ok := b.locs.Get(name); ok {
		return l
	}
	return location.New(name)
}

func meets(items []*item.Item, req map[string]int) bool {
	for kw, n := range req {
		seen := make(map[string]bool)
		for _, it := range items {
			if it.HasKeyword(kw) {
				seen[it.UUID] = true
			}
		}
		if len(seen) < n {
			return false
		}
	}
	return true
}

// edgeCost picks the cheapest option satisfying req, evaluated at from.
func (b *Builder) edgeCost(from string, distance int, req map[string]int, options []GearOption, lvl float64) (Leg, bool) {
	loc := b.location(from)
	best := Leg{Steps: -1}
	for _, opt := range options {
		if !meets(opt.Items, req) {
			continue
		}
		s, err := b.agg.Aggregate(aggregate.Request{
			Items:               opt.Items,
			Skill:               string(skill.Travel),
			Location:            loc,
			Character:           b.ch,
			IncludeCollectibles: true,
		})
		if err != nil {
			b.logger.Warn("skipping gear option", zap.String("option", opt.Name), zap.Error(err))
			continue
		}
		steps := metrics.TravelSteps(distance, s, lvl)
		if best.Steps < 0 || steps < best.Steps {
			best = Leg{Steps: steps, Distance: distance, Gear: opt.Name}
		}
	}
	return best, best.Steps >= 0
}

func (b *Builder) serviceUnlocked(s *activity.Service) bool {
	if b.ch == nil {
		return true
	}
	return constraint.RequirementsMet(gearset.New(), s.Requirements, b.ch).OK
}

// Build constructs the graph. With no gear options the traveller walks
// unequipped.
func (b *Builder) Build(net Network, options []GearOption, cfg Config) (*Graph, error) {
	if len(options) == 0 {
		options = []GearOption{{Name: "none"}}
	}
	if cfg.MaxTourStops <= 0 {
		cfg.MaxTourStops = DefaultMaxTourStops
	}
	g := &Graph{adj: make(map[string][]Leg), canonical: make(map[string]string), cfg: cfg}
	edges := make(map[string]map[string]Leg)
	add := func(l Leg) {
		if edges[l.From] == nil {
			edges[l.From] = make(map[string]Leg)
		}
		edges[l.From][l.To] = l
		g.canonical[strings.ToLower(l.From)] = l.From
		g.canonical[strings.ToLower(l.To)] = l.To
	}

	for _, r := range net.Routes {
		for _, dir := range [][2]string{{r.From, r.To}, {r.To, r.From}} {
			leg, ok := b.edgeCost(dir[0], r.Distance, r.Requires, options, cfg.LevelEfficiency)
			if !ok {
				b.logger.Debug("no gear option satisfies route",
					zap.String("from", dir[0]), zap.String("to", dir[1]), zap.Any("requires", r.Requires))
				continue
			}
			leg.From, leg.To = dir[0], dir[1]
			add(leg)
		}
	}
	for _, sc := range net.Shortcuts {
		if cur, ok := edges[sc.From][sc.To]; ok && cur.Steps <= sc.Steps {
			continue
		}
		add(Leg{From: sc.From, To: sc.To, Steps: sc.Steps, Distance: sc.Steps, Gear: sc.Name, Shortcut: true})
	}
	if cfg.AllowTeleport {
		home, ok := g.canonical[strings.ToLower(cfg.Home)]
		if !ok {
			return nil, fmt.Errorf("route: Build: home %q: %w", cfg.Home, ErrUnknownLocation)
		}
		g.cfg.Home = home
		for _, from := range g.Locations() {
			if from != home {
				add(Leg{From: from, To: home, Gear: "teleport", Teleport: true})
			}
		}
	}
	for _, s := range net.Services {
		if b.serviceUnlocked(s) {
			g.services = append(g.services, s)
		}
	}

	for from, out := range edges {
		legs := make([]Leg, 0, len(out))
		for _, l := range out {
			legs = append(legs, l)
		}
		sort.Slice(legs, func(i, j int) bool { return legs[i].To < legs[j].To })
		g.adj[from] = legs
	}
	return g, nil
}

// Locations lists every node, sorted.
func (g *Graph) Locations() []string {
	out := make([]string, 0, len(g.canonical))
	for _, name := range g.canonical {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve maps a case-insensitive name to its node.
func (g *Graph) Resolve(name string) (string, error) {
	if n, ok := g.canonical[strings.ToLower(strings.TrimSpace(name))]; ok {
		return n, nil
	}
	if s, ok := fuzzy.Closest(name, g.Locations()); ok {
		return "", fmt.Errorf("route: %w: %q (did you mean %q?)", ErrUnknownLocation, name, s)
	}
	return "", fmt.Errorf("route: %w: %q", ErrUnknownLocation, name)
}

// Edge returns the directed edge from -> to.
func (g *Graph) Edge(from, to string) (Leg, bool) {
	for _, l := range g.adj[from] {
		if l.To == to {
			return l, true
		}
	}
	return Leg{}, false
}

// ServicesProviding returns the locations with an unlocked service for need.
func (g *Graph) ServicesProviding(need string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range g.services {
		if s.Provides(need) && !seen[s.Location] {
			if loc, ok := g.canonical[strings.ToLower(s.Location)]; ok {
				seen[s.Location] = true
				out = append(out, loc)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (g *Graph) provides(loc, need string) bool {
	for _, s := range g.services {
		if strings.EqualFold(s.Location, loc) && s.Provides(need) {
			return true
		}
	}
	return false
}
