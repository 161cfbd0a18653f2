// Package content loads the YAML reference data the optimiser scores against:
// items, collectibles, consumables, pets, materials, locations, activities,
// recipes, services, routes and shortcuts.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/walkscape/internal/game/activity"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/location"
	"github.com/cory-johannsen/walkscape/internal/game/route"
	"github.com/cory-johannsen/walkscape/internal/game/skill"
	"github.com/cory-johannsen/walkscape/internal/game/stats"
)

// Catalog is the fully resolved reference data.
type Catalog struct {
	Items      *item.Registry
	Activities *activity.Registry
	Locations  *location.Registry
	Network    route.Network
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		Items:      item.NewRegistry(),
		Activities: activity.NewRegistry(),
		Locations:  location.NewRegistry(),
	}
}

// LoadDir parses every .yaml/.yml file in dir into one Catalog.
//
// Precondition: dir must be a readable directory; logger must be non-nil.
// Postcondition: a nil Catalog means a file could not be read or parsed.
// A non-nil Catalog with a non-nil error means some entries were rejected;
// the error combines every rejection and the Catalog holds the rest.
func LoadDir(dir string, logger *zap.Logger) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("content: reading directory %s: %w", dir, err)
	}

	var files []*yamlFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("content: reading %s: %w", path, err)
		}
		f, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("content: parsing %s: %w", path, err)
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("content: no content files found in %s", dir)
	}
	return build(files, logger)
}

// LoadBytes builds a Catalog from a single YAML document.
//
// Postcondition: same contract as LoadDir.
func LoadBytes(data []byte, logger *zap.Logger) (*Catalog, error) {
	f, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	return build([]*yamlFile{f}, logger)
}

func parse(data []byte) (*yamlFile, error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return &f, nil
}

// build registers sections in dependency order: locations and materials
// first, since activities, routes and services refer to them.
func build(files []*yamlFile, logger *zap.Logger) (*Catalog, error) {
	c := NewCatalog()
	b := &builder{catalog: c, logger: logger}

	for _, f := range files {
		for _, l := range f.Locations {
			b.location(l)
		}
	}
	for _, f := range files {
		for _, m := range f.Materials {
			b.material(m)
		}
	}
	for _, f := range files {
		for _, it := range f.Items {
			b.item(it)
		}
		for _, cr := range f.Crafted {
			b.crafted(cr)
		}
		for _, a := range f.Achievements {
			b.achievement(a)
		}
		for _, col := range f.Collectibles {
			b.collectible(col)
		}
		for _, cons := range f.Consumables {
			b.consumable(cons)
		}
		for _, p := range f.Pets {
			b.pet(p)
		}
	}
	for _, f := range files {
		for _, s := range f.Services {
			b.service(s)
		}
		for _, a := range f.Activities {
			b.activity(a)
		}
		for _, r := range f.Recipes {
			b.recipe(r)
		}
		for _, r := range f.Routes {
			b.route(r)
		}
		for _, s := range f.Shortcuts {
			b.shortcut(s)
		}
	}
	return c, b.errs
}

type builder struct {
	catalog *Catalog
	logger  *zap.Logger
	errs    error
}

// reject records a problem with one entry and logs it; the entry is omitted.
func (b *builder) reject(kind, name string, err error) {
	b.logger.Warn("skipping invalid content entry",
		zap.String("kind", kind),
		zap.String("name", name),
		zap.Error(err),
	)
	b.errs = multierr.Append(b.errs, fmt.Errorf("%s %q: %w", kind, name, err))
}

func (b *builder) location(y yamlLocation) {
	if err := b.catalog.Locations.Register(location.New(y.Name, y.Regions...)); err != nil {
		b.reject("location", y.Name, err)
	}
}

func (b *builder) material(y yamlMaterial) {
	m := &item.Material{
		Name:       y.Name,
		ExportName: y.ExportName,
		Value:      y.Value,
		Category:   item.MaterialCategory(strings.ToLower(y.Category)),
		HasFine:    y.HasFine,
	}
	if y.Name == "" {
		b.reject("material", y.Name, fmt.Errorf("name must not be empty"))
		return
	}
	if err := b.catalog.Items.RegisterMaterial(m); err != nil {
		b.reject("material", y.Name, err)
		return
	}
	if y.HasFine {
		fine := &item.Material{
			Name:     y.Name + activity.FineSuffix,
			Value:    y.Value,
			Category: m.Category,
			FineOf:   y.Name,
		}
		if err := b.catalog.Items.RegisterMaterial(fine); err != nil {
			b.reject("material", fine.Name, err)
		}
	}
}

// equipment validates the fields shared by every equippable definition.
func equipment(name, uuid, slot string, st stats.Table, gated *stats.Gated, reqs []item.Requirement) (item.Slot, error) {
	var err error
	if name == "" {
		err = multierr.Append(err, fmt.Errorf("name must not be empty"))
	}
	if uuid == "" {
		err = multierr.Append(err, fmt.Errorf("uuid must not be empty"))
	}
	sl := item.ParseSlot(slot)
	if !sl.Equippable() {
		err = multierr.Append(err, fmt.Errorf("unknown slot %q", slot))
	}
	err = multierr.Append(err, checkTable(st))
	err = multierr.Append(err, checkGated(gated))
	err = multierr.Append(err, checkRequirements(reqs))
	return sl, err
}

func (b *builder) item(y yamlItem) {
	sl, err := equipment(y.Name, y.UUID, y.Slot, y.Stats, y.Gated, y.Requirements)
	if err != nil {
		b.reject("item", y.Name, err)
		return
	}
	it := &item.Item{
		Name:         y.Name,
		UUID:         y.UUID,
		ExportName:   y.ExportName,
		Slot:         sl,
		Keywords:     y.Keywords,
		Value:        y.Value,
		BaseName:     y.Name,
		Stats:        orEmpty(y.Stats),
		Gated:        y.Gated,
		Requirements: y.Requirements,
	}
	if err := b.catalog.Items.RegisterItem(it); err != nil {
		b.reject("item", y.Name, err)
	}
}

func (b *builder) crafted(y yamlCrafted) {
	sl, err := equipment(y.Name, y.UUID, y.Slot, y.Stats, y.Gated, y.Requirements)
	tiers := make(map[item.Quality]item.Tier, len(y.Tiers))
	for _, name := range sortedKeys(y.Tiers) {
		q, ok := item.ParseQuality(name)
		if !ok {
			err = multierr.Append(err, fmt.Errorf("unknown quality %q", name))
			continue
		}
		t := y.Tiers[name]
		err = multierr.Append(err, checkTable(t.Stats))
		tiers[q] = item.Tier{Value: t.Value, Stats: t.Stats}
	}
	if err != nil {
		b.reject("crafted item", y.Name, err)
		return
	}
	c := &item.Crafted{
		BaseName:     y.Name,
		UUID:         y.UUID,
		ExportName:   y.ExportName,
		Slot:         sl,
		Keywords:     y.Keywords,
		Requirements: y.Requirements,
		Base:         y.Stats,
		Gated:        y.Gated,
		Tiers:        tiers,
	}
	if err := b.catalog.Items.RegisterCrafted(c); err != nil {
		b.reject("crafted item", y.Name, err)
	}
}

func (b *builder) achievement(y yamlAchievement) {
	sl, err := equipment(y.Name, y.UUID, y.Slot, nil, y.Gated, y.Requirements)
	for _, k := range sortedIntKeys(y.Thresholds) {
		if k < 0 {
			err = multierr.Append(err, fmt.Errorf("negative threshold %d", k))
		}
		err = multierr.Append(err, checkTable(y.Thresholds[k]))
	}
	if err != nil {
		b.reject("achievement item", y.Name, err)
		return
	}
	a := &item.Achievement{
		Name:         y.Name,
		UUID:         y.UUID,
		ExportName:   y.ExportName,
		Slot:         sl,
		Keywords:     y.Keywords,
		Value:        y.Value,
		Requirements: y.Requirements,
		Thresholds:   y.Thresholds,
		Gated:        y.Gated,
	}
	if err := b.catalog.Items.RegisterAchievement(a); err != nil {
		b.reject("achievement item", y.Name, err)
	}
}

func (b *builder) collectible(y yamlCollectible) {
	if err := multierr.Append(checkTable(y.Stats), checkGated(y.Gated)); err != nil {
		b.reject("collectible", y.Name, err)
		return
	}
	c := &item.Collectible{Name: y.Name, ExportName: y.ExportName, Stats: orEmpty(y.Stats), Gated: y.Gated}
	if err := b.catalog.Items.RegisterCollectible(c); err != nil {
		b.reject("collectible", y.Name, err)
	}
}

func (b *builder) consumable(y yamlConsumable) {
	err := multierr.Append(checkTable(y.Stats), checkGated(y.Gated))
	if y.Duration < 0 {
		err = multierr.Append(err, fmt.Errorf("negative duration %d", y.Duration))
	}
	if err != nil {
		b.reject("consumable", y.Name, err)
		return
	}
	c := &item.Consumable{
		Name:       y.Name,
		ExportName: y.ExportName,
		Value:      y.Value,
		Duration:   y.Duration,
		Stats:      orEmpty(y.Stats),
		Gated:      y.Gated,
	}
	if err := b.catalog.Items.RegisterConsumable(c); err != nil {
		b.reject("consumable", y.Name, err)
	}
}

func (b *builder) pet(y yamlPet) {
	var err error
	for _, k := range sortedIntKeys(y.Levels) {
		err = multierr.Append(err, checkTable(y.Levels[k]))
	}
	if err != nil {
		b.reject("pet", y.Name, err)
		return
	}
	if err := b.catalog.Items.RegisterPet(&item.Pet{Name: y.Name, Levels: y.Levels}); err != nil {
		b.reject("pet", y.Name, err)
	}
}

func (b *builder) service(y yamlService) {
	var err error
	if y.Kind == "" {
		err = multierr.Append(err, fmt.Errorf("kind must not be empty"))
	}
	loc, ok := b.catalog.Locations.Get(y.Location)
	if !ok {
		err = multierr.Append(err, fmt.Errorf("unknown location %q", y.Location))
	}
	err = multierr.Append(err, checkActivityRequirements(y.Requirements))
	if err != nil {
		b.reject("service", y.Name, err)
		return
	}
	s := &activity.Service{
		Name:         y.Name,
		Kind:         strings.ToLower(y.Kind),
		Tier:         strings.ToLower(y.Tier),
		Location:     loc.Name,
		Requirements: y.Requirements,
	}
	b.catalog.Activities.RegisterService(s)
	b.catalog.Network.Services = append(b.catalog.Network.Services, s)
}

func (b *builder) activity(y yamlActivity) {
	var err error
	sk, perr := skill.Parse(y.Skill)
	if perr != nil {
		err = multierr.Append(err, perr)
	}
	if y.BaseSteps <= 0 {
		err = multierr.Append(err, fmt.Errorf("base_steps must be positive, got %d", y.BaseSteps))
	}
	locs := make([]string, 0, len(y.Locations))
	for _, name := range y.Locations {
		loc, ok := b.catalog.Locations.Get(name)
		if !ok {
			err = multierr.Append(err, fmt.Errorf("unknown location %q", name))
			continue
		}
		locs = append(locs, loc.Name)
	}
	secondary := make(map[string]float64, len(y.SecondaryXP))
	for _, name := range sortedKeys(y.SecondaryXP) {
		s, serr := skill.Parse(name)
		if serr != nil {
			err = multierr.Append(err, serr)
			continue
		}
		secondary[string(s)] = y.SecondaryXP[name]
	}
	err = multierr.Append(err, checkActivityRequirements(y.Requirements))
	if err != nil {
		b.reject("activity", y.Name, err)
		return
	}
	a := &activity.Activity{
		Name:          y.Name,
		PrimarySkill:  string(sk),
		Locations:     locs,
		BaseSteps:     y.BaseSteps,
		BaseXP:        y.BaseXP,
		SecondaryXP:   secondary,
		MaxEfficiency: y.MaxEfficiency,
		Requirements:  y.Requirements,
		Drops:         b.drops(y.Name, y.Drops),
		SecondaryDrop: b.drops(y.Name, y.SecondaryDrop),
	}
	if err := b.catalog.Activities.RegisterActivity(a); err != nil {
		b.reject("activity", y.Name, err)
	}
}

// drops resolves each row's material, filling category and fine availability
// from the material table. Rows naming unknown materials are dropped.
func (b *builder) drops(owner string, rows []activity.Drop) []activity.Drop {
	out := make([]activity.Drop, 0, len(rows))
	for _, d := range rows {
		if d.IsNothing() {
			out = append(out, d)
			continue
		}
		m, ok := b.catalog.Items.Material(d.Item)
		if !ok {
			b.reject("drop", owner+"/"+d.Item, fmt.Errorf("unknown material %q", d.Item))
			continue
		}
		d.Item = m.Name
		if d.Category == item.CategoryNone {
			d.Category = m.Category
		}
		d.HasFine = d.HasFine || m.HasFine
		if d.Quantity.Min == 0 && d.Quantity.Max == 0 {
			d.Quantity = activity.Quantity{Min: 1, Max: 1}
		}
		out = append(out, d)
	}
	return out
}

func (b *builder) recipe(y yamlRecipe) {
	var err error
	sk, perr := skill.Parse(y.Skill)
	if perr != nil {
		err = multierr.Append(err, perr)
	}
	if y.BaseSteps <= 0 {
		err = multierr.Append(err, fmt.Errorf("base_steps must be positive, got %d", y.BaseSteps))
	}
	for _, set := range y.Ingredients {
		for _, ing := range set {
			if _, ok := b.catalog.Items.Material(ing.Material); !ok {
				err = multierr.Append(err, fmt.Errorf("unknown ingredient %q", ing.Material))
			}
			if ing.Quantity <= 0 {
				err = multierr.Append(err, fmt.Errorf("ingredient %q quantity must be positive", ing.Material))
			}
		}
	}
	err = multierr.Append(err, checkActivityRequirements(y.Requirements))
	if err != nil {
		b.reject("recipe", y.Name, err)
		return
	}
	qty := y.OutputQty
	if qty <= 0 {
		qty = 1
	}
	output := y.Output
	if output == "" {
		output = y.Name
	}
	r := &activity.Recipe{
		Name:          y.Name,
		Skill:         string(sk),
		Level:         y.Level,
		Service:       strings.ToLower(y.Service),
		BaseSteps:     y.BaseSteps,
		BaseXP:        y.BaseXP,
		MaxEfficiency: y.MaxEfficiency,
		Output:        output,
		OutputQty:     qty,
		Ingredients:   y.Ingredients,
		Requirements:  y.Requirements,
	}
	if err := b.catalog.Activities.RegisterRecipe(r); err != nil {
		b.reject("recipe", y.Name, err)
	}
}

func (b *builder) route(r route.Route) {
	name := r.From + " -> " + r.To
	from, fok := b.catalog.Locations.Get(r.From)
	to, tok := b.catalog.Locations.Get(r.To)
	var err error
	if !fok {
		err = multierr.Append(err, fmt.Errorf("unknown location %q", r.From))
	}
	if !tok {
		err = multierr.Append(err, fmt.Errorf("unknown location %q", r.To))
	}
	if r.Distance <= 0 {
		err = multierr.Append(err, fmt.Errorf("distance must be positive, got %d", r.Distance))
	}
	if err != nil {
		b.reject("route", name, err)
		return
	}
	r.From, r.To = from.Name, to.Name
	b.catalog.Network.Routes = append(b.catalog.Network.Routes, r)
}

func (b *builder) shortcut(s route.Shortcut) {
	from, fok := b.catalog.Locations.Get(s.From)
	to, tok := b.catalog.Locations.Get(s.To)
	var err error
	if !fok {
		err = multierr.Append(err, fmt.Errorf("unknown location %q", s.From))
	}
	if !tok {
		err = multierr.Append(err, fmt.Errorf("unknown location %q", s.To))
	}
	if s.Steps <= 0 {
		err = multierr.Append(err, fmt.Errorf("steps must be positive, got %d", s.Steps))
	}
	if err != nil {
		b.reject("shortcut", s.Name, err)
		return
	}
	s.From, s.To = from.Name, to.Name
	b.catalog.Network.Shortcuts = append(b.catalog.Network.Shortcuts, s)
}

// checkTable rejects stat tables keyed by skills outside the skill table.
func checkTable(t stats.Table) error {
	var err error
	for _, name := range sortedKeys(t) {
		if !skill.IsKnown(name) {
			err = multierr.Append(err, fmt.Errorf("%w: %q", skill.ErrUnknownSkill, name))
		}
	}
	return err
}

func checkGated(g *stats.Gated) error {
	if g.IsEmpty() {
		return nil
	}
	var err error
	for _, name := range sortedKeys(g.SkillLevel) {
		if !skill.IsKnown(name) {
			err = multierr.Append(err, fmt.Errorf("%w: %q", skill.ErrUnknownSkill, name))
		}
	}
	for _, group := range []map[string]stats.Thresholds{g.SkillLevel, g.ActivityCompletion, g.Reputation, g.SetPieces} {
		for _, k := range sortedKeys(group) {
			for _, n := range sortedIntKeys(group[k]) {
				err = multierr.Append(err, checkTable(group[k][n]))
			}
		}
	}
	for _, group := range []map[string]stats.Table{g.ItemOwnership, g.Activity} {
		for _, k := range sortedKeys(group) {
			err = multierr.Append(err, checkTable(group[k]))
		}
	}
	return err
}

func checkRequirements(reqs []item.Requirement) error {
	var err error
	for _, r := range reqs {
		switch r.Type {
		case item.ReqSkill:
			if !skill.IsKnown(r.Skill) {
				err = multierr.Append(err, fmt.Errorf("%w: %q", skill.ErrUnknownSkill, r.Skill))
			}
		case item.ReqReputation, item.ReqCharacterLevel, item.ReqAccess:
		case item.ReqKeywordCount:
			if r.Keyword == "" {
				err = multierr.Append(err, fmt.Errorf("keyword_count requirement without keyword"))
			}
		default:
			err = multierr.Append(err, fmt.Errorf("unknown requirement type %q", r.Type))
		}
	}
	return err
}

func checkActivityRequirements(r activity.Requirements) error {
	var err error
	for _, name := range sortedKeys(r.Skills) {
		if !skill.IsKnown(name) {
			err = multierr.Append(err, fmt.Errorf("%w: %q", skill.ErrUnknownSkill, name))
		}
	}
	return err
}

func orEmpty(t stats.Table) stats.Table {
	if t == nil {
		return stats.NewTable()
	}
	return t
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIntKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
