package activity

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds activities, recipes, and services keyed by lower-case name.
type Registry struct {
	activities map[string]*Activity
	recipes    map[string]*Recipe
	services   []*Service
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		activities: make(map[string]*Activity),
		recipes:    make(map[string]*Recipe),
	}
}

// RegisterActivity adds a.
//
// Postcondition: returns an error if an activity with the same name exists.
func (r *Registry) RegisterActivity(a *Activity) error {
	key := strings.ToLower(a.Name)
	if _, exists := r.activities[key]; exists {
		return fmt.Errorf("activity: Registry.RegisterActivity: %q already registered", a.Name)
	}
	r.activities[key] = a
	return nil
}

// RegisterRecipe adds rc.
func (r *Registry) RegisterRecipe(rc *Recipe) error {
	key := strings.ToLower(rc.Name)
	if _, exists := r.recipes[key]; exists {
		return fmt.Errorf("activity: Registry.RegisterRecipe: %q already registered", rc.Name)
	}
	r.recipes[key] = rc
	return nil
}

// RegisterService adds s.
func (r *Registry) RegisterService(s *Service) {
	r.services = append(r.services, s)
}

// Activity returns the named activity.
func (r *Registry) Activity(name string) (*Activity, bool) {
	a, ok := r.activities[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// Recipe returns the named recipe.
func (r *Registry) Recipe(name string) (*Recipe, bool) {
	rc, ok := r.recipes[strings.ToLower(strings.TrimSpace(name))]
	return rc, ok
}

// Services returns every registered service.
func (r *Registry) Services() []*Service {
	return r.services
}

// ActivityNames returns every activity name sorted.
func (r *Registry) ActivityNames() []string {
	out := make([]string, 0, len(r.activities))
	for _, a := range r.activities {
		out = append(out, a.Name)
	}
	sort.Strings(out)
	return out
}

// RecipeNames returns every recipe name sorted.
func (r *Registry) RecipeNames() []string {
	out := make([]string, 0, len(r.recipes))
	for _, rc := range r.recipes {
		out = append(out, rc.Name)
	}
	sort.Strings(out)
	return out
}
