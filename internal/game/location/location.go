// Package location models travel locations and the region tags used to gate
// location-specific stats.
package location

import (
	"fmt"
	"sort"
	"strings"
)

// GlobalKey is the stat-table location key that applies everywhere.
const GlobalKey = "global"

// Location is a named place with region tags (primary region first, then
// faction and terrain tags such as "underwater").
type Location struct {
	Name    string
	Regions []string
}

// New constructs a Location with lower-cased region tags.
func New(name string, regions ...string) *Location {
	l := &Location{Name: name, Regions: make([]string, 0, len(regions))}
	for _, r := range regions {
		l.Regions = append(l.Regions, strings.ToLower(strings.TrimSpace(r)))
	}
	return l
}

// ID is the lower-case lookup key for the location.
func (l *Location) ID() string {
	return strings.ToLower(l.Name)
}

// PrimaryRegion returns the first region tag, or "" when untagged.
func (l *Location) PrimaryRegion() string {
	if len(l.Regions) == 0 {
		return ""
	}
	return l.Regions[0]
}

// InRegion reports whether region is among the location's tags (case-insensitive).
func (l *Location) InRegion(region string) bool {
	region = strings.ToLower(region)
	for _, r := range l.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// Matches reports whether a stat-table location key applies at loc.
// "global" always matches; with no location only "global" matches; a
// "!"-prefixed key matches when the region tag is absent.
func Matches(loc *Location, key string) bool {
	key = strings.ToLower(key)
	if key == GlobalKey {
		return true
	}
	if loc == nil {
		return false
	}
	if neg, ok := strings.CutPrefix(key, "!"); ok {
		return !loc.InRegion(neg)
	}
	return loc.InRegion(key)
}

// Registry holds every known location keyed by lower-case name.
type Registry struct {
	locations map[string]*Location
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{locations: make(map[string]*Location)}
}

// Register adds l.
//
// Precondition: l is non-nil with a non-empty Name.
// Postcondition: returns an error if a location with the same name exists.
func (r *Registry) Register(l *Location) error {
	if l == nil || l.Name == "" {
		return fmt.Errorf("location: Registry.Register: location name must not be empty")
	}
	if _, ok := r.locations[l.ID()]; ok {
		return fmt.Errorf("location: Registry.Register: duplicate location %q", l.Name)
	}
	r.locations[l.ID()] = l
	return nil
}

// Get returns the location with the given name (case-insensitive).
func (r *Registry) Get(name string) (*Location, bool) {
	l, ok := r.locations[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}

// All returns every location sorted by name.
func (r *Registry) All() []*Location {
	out := make([]*Location, 0, len(r.locations))
	for _, l := range r.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns every location name sorted.
func (r *Registry) Names() []string {
	all := r.All()
	out := make([]string, len(all))
	for i, l := range all {
		out[i] = l.Name
	}
	return out
}
