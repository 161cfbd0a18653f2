package item

import (
	"fmt"
	"sort"
	"strings"
)

type entryKind int

const (
	kindPlain entryKind = iota
	kindCrafted
	kindAchievement
)

type entry struct {
	kind        entryKind
	plain       *Item
	crafted     *Crafted
	achievement *Achievement
}

func (e entry) name() string {
	switch e.kind {
	case kindCrafted:
		return e.crafted.BaseName
	case kindAchievement:
		return e.achievement.Name
	default:
		return e.plain.Name
	}
}

func (e entry) exportName() string {
	switch e.kind {
	case kindCrafted:
		return e.crafted.ExportName
	case kindAchievement:
		return e.achievement.ExportName
	default:
		return e.plain.ExportName
	}
}

// Registry holds all reference items indexed by UUID, export name, and name.
type Registry struct {
	equipment    map[string]entry
	byExport     map[string]string
	byName       map[string]string
	collectibles map[string]*Collectible
	consumables  map[string]*Consumable
	materials    map[string]*Material
	pets         map[string]*Pet
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		equipment:    make(map[string]entry),
		byExport:     make(map[string]string),
		byName:       make(map[string]string),
		collectibles: make(map[string]*Collectible),
		consumables:  make(map[string]*Consumable),
		materials:    make(map[string]*Material),
		pets:         make(map[string]*Pet),
	}
}

func (r *Registry) registerEntry(uuid string, e entry) error {
	if uuid == "" {
		return fmt.Errorf("item: Registry.Register: %q has no uuid", e.name())
	}
	if _, exists := r.equipment[uuid]; exists {
		return fmt.Errorf("item: Registry.Register: uuid %q already registered", uuid)
	}
	export := e.exportName()
	if export == "" {
		export = ExportNameFor(e.name())
	}
	r.equipment[uuid] = e
	r.byExport[export] = uuid
	r.byName[strings.ToLower(e.name())] = uuid
	return nil
}

// RegisterItem adds a plain item.
//
// Precondition: it must not be nil.
// Postcondition: Resolve(it.UUID, ...) returns it; error if the UUID is taken.
func (r *Registry) RegisterItem(it *Item) error {
	if it.BaseName == "" {
		it.BaseName = it.Name
	}
	if it.ExportName == "" {
		it.ExportName = ExportNameFor(it.Name)
	}
	return r.registerEntry(it.UUID, entry{kind: kindPlain, plain: it})
}

// RegisterCrafted adds a quality-tiered item and materialises its tiers.
//
// Precondition: c must not be nil.
func (r *Registry) RegisterCrafted(c *Crafted) error {
	if c.ExportName == "" {
		c.ExportName = ExportNameFor(c.BaseName)
	}
	c.build()
	return r.registerEntry(c.UUID, entry{kind: kindCrafted, crafted: c})
}

// RegisterAchievement adds an achievement-scaled item.
//
// Precondition: a must not be nil.
func (r *Registry) RegisterAchievement(a *Achievement) error {
	if a.ExportName == "" {
		a.ExportName = ExportNameFor(a.Name)
	}
	return r.registerEntry(a.UUID, entry{kind: kindAchievement, achievement: a})
}

// RegisterCollectible adds c keyed by export name.
func (r *Registry) RegisterCollectible(c *Collectible) error {
	if c.ExportName == "" {
		c.ExportName = ExportNameFor(c.Name)
	}
	if _, exists := r.collectibles[c.ExportName]; exists {
		return fmt.Errorf("item: Registry.RegisterCollectible: %q already registered", c.ExportName)
	}
	r.collectibles[c.ExportName] = c
	return nil
}

// RegisterConsumable adds c keyed by export name.
func (r *Registry) RegisterConsumable(c *Consumable) error {
	if c.ExportName == "" {
		c.ExportName = ExportNameFor(c.Name)
	}
	if _, exists := r.consumables[c.ExportName]; exists {
		return fmt.Errorf("item: Registry.RegisterConsumable: %q already registered", c.ExportName)
	}
	r.consumables[c.ExportName] = c
	return nil
}

// RegisterMaterial adds m keyed by lower-case name.
func (r *Registry) RegisterMaterial(m *Material) error {
	if m.ExportName == "" {
		m.ExportName = ExportNameFor(m.Name)
	}
	key := strings.ToLower(m.Name)
	if _, exists := r.materials[key]; exists {
		return fmt.Errorf("item: Registry.RegisterMaterial: %q already registered", m.Name)
	}
	r.materials[key] = m
	return nil
}

// RegisterPet adds p keyed by lower-case name.
func (r *Registry) RegisterPet(p *Pet) error {
	key := strings.ToLower(p.Name)
	if _, exists := r.pets[key]; exists {
		return fmt.Errorf("item: Registry.RegisterPet: %q already registered", p.Name)
	}
	r.pets[key] = p
	return nil
}

func (r *Registry) resolveEntry(e entry, q Quality, ap int) *Item {
	switch e.kind {
	case kindCrafted:
		return e.crafted.Resolve(q)
	case kindAchievement:
		return e.achievement.Resolve(ap)
	default:
		return e.plain
	}
}

// Resolve returns the concrete item for a gearset export entry. Quality only
// applies to crafted items; ap only applies to achievement items.
func (r *Registry) Resolve(uuid string, q Quality, ap int) (*Item, bool) {
	e, ok := r.equipment[uuid]
	if !ok {
		return nil, false
	}
	return r.resolveEntry(e, q, ap), true
}

// ByExportName resolves a character-export identifier. Crafted items may
// carry a quality suffix ("iron_sword_perfect" or "iron_sword_legendary");
// without one the Normal tier is returned.
func (r *Registry) ByExportName(export string, ap int) (*Item, bool) {
	export = strings.ToLower(strings.TrimSpace(export))
	if uuid, ok := r.byExport[export]; ok {
		return r.resolveEntry(r.equipment[uuid], Normal, ap), true
	}
	cut := strings.LastIndex(export, "_")
	if cut < 0 {
		return nil, false
	}
	q, ok := ParseQuality(export[cut+1:])
	if !ok {
		return nil, false
	}
	uuid, ok := r.byExport[export[:cut]]
	if !ok || r.equipment[uuid].kind != kindCrafted {
		return nil, false
	}
	return r.equipment[uuid].crafted.Resolve(q), true
}

// ByName resolves a display name, honouring a "(Quality)" suffix for crafted
// items.
func (r *Registry) ByName(name string, ap int) (*Item, bool) {
	base, q, _ := SplitQualitySuffix(name)
	uuid, ok := r.byName[strings.ToLower(base)]
	if !ok {
		return nil, false
	}
	return r.resolveEntry(r.equipment[uuid], q, ap), true
}

// Collectible returns the collectible with the given export name.
func (r *Registry) Collectible(export string) (*Collectible, bool) {
	c, ok := r.collectibles[strings.ToLower(export)]
	return c, ok
}

// Consumable returns the consumable with the given export name.
func (r *Registry) Consumable(export string) (*Consumable, bool) {
	c, ok := r.consumables[strings.ToLower(export)]
	return c, ok
}

// Material returns the material with the given name (case-insensitive).
func (r *Registry) Material(name string) (*Material, bool) {
	m, ok := r.materials[strings.ToLower(name)]
	return m, ok
}

// Pet returns the pet with the given name (case-insensitive).
func (r *Registry) Pet(name string) (*Pet, bool) {
	p, ok := r.pets[strings.ToLower(name)]
	return p, ok
}

// Names returns every equipment display name (base names for crafted items), sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.equipment))
	for _, e := range r.equipment {
		out = append(out, e.name())
	}
	sort.Strings(out)
	return out
}

// Len returns the number of equipment definitions.
func (r *Registry) Len() int {
	return len(r.equipment)
}
