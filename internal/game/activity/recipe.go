package activity

import "strings"

// Ingredient is a material and quantity consumed per craft.
type Ingredient struct {
	Material string `yaml:"material"`
	Quantity int    `yaml:"quantity"`
}

// Recipe is a crafting recipe performed at a service.
type Recipe struct {
	Name          string
	Skill         string
	Level         int
	Service       string
	BaseSteps     int
	BaseXP        float64
	MaxEfficiency float64
	Output        string
	OutputQty     int
	// Ingredients lists alternative material sets; any one satisfies the recipe.
	Ingredients  [][]Ingredient
	Requirements Requirements
}

// RequiredLevel returns the recipe level, at least 1.
func (r *Recipe) RequiredLevel() int {
	if r.Level > 0 {
		return r.Level
	}
	return 1
}

// Service is a crafting station or bank at a location. Tier distinguishes
// basic and advanced stations of the same kind.
type Service struct {
	Name         string
	Kind         string
	Tier         string
	Location     string
	Requirements Requirements
}

// Provides reports whether the service satisfies a need such as "bank",
// "smithing", or "advanced smithing".
func (s *Service) Provides(need string) bool {
	need = strings.ToLower(strings.TrimSpace(need))
	kind := strings.ToLower(s.Kind)
	if need == kind {
		return true
	}
	tier, rest, ok := strings.Cut(need, " ")
	return ok && rest == kind && strings.EqualFold(tier, s.Tier)
}
