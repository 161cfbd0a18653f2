// Package main plans the cheapest walk through a set of locations, using
// services such as banks on the way and choosing gear per leg.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/app"
	"github.com/cory-johannsen/walkscape/internal/game/character"
	"github.com/cory-johannsen/walkscape/internal/game/metrics"
	"github.com/cory-johannsen/walkscape/internal/game/route"
	"github.com/cory-johannsen/walkscape/internal/game/skill"
	"github.com/cory-johannsen/walkscape/internal/report"
)

// gearFlags collects repeated -gear "name=Item A,Item B" options.
type gearFlags []string

func (g *gearFlags) String() string { return strings.Join(*g, "; ") }

func (g *gearFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf(`gear option must be "name=item,item", got %q`, v)
	}
	*g = append(*g, v)
	return nil
}

type request struct {
	character  string
	from, to   string
	home       string
	noTeleport bool
	noLevel    bool
	gear       gearFlags
	stops      []string
	color      bool
}

func main() {
	var r request
	configPath := flag.String("config", "", "path to configuration file")
	contentDir := flag.String("content", "", "reference data directory; overrides content.dir")
	flag.StringVar(&r.character, "character", "", "optional character export: unlocks gated stats and adds an \"equipped\" gear option")
	flag.StringVar(&r.from, "from", "", "start location; defaults to route.home")
	flag.StringVar(&r.to, "to", "", "optional final location")
	flag.StringVar(&r.home, "home", "", "teleport destination; overrides route.home")
	flag.BoolVar(&r.noTeleport, "no-teleport", false, "disable the home teleport")
	flag.BoolVar(&r.noLevel, "no-level-bonus", false, "ignore the agility level work efficiency bonus")
	flag.Var(&r.gear, "gear", `gear option "name=item,item" (repeatable)`)
	flag.BoolVar(&r.color, "color", true, "colour output")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, `usage: route [flags] stop... where a stop is "Location" or "need,need:Location"`)
		flag.PrintDefaults()
	}
	flag.Parse()
	r.stops = flag.Args()
	if len(r.stops) == 0 && r.to == "" {
		flag.Usage()
		os.Exit(2)
	}

	env, err := app.Bootstrap(*configPath, *contentDir)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer env.Close()

	err = env.Lifecycle.Run(context.Background(), func(context.Context) error {
		return run(env, r)
	})
	if err != nil {
		env.Logger.Error("route planning failed", zap.Error(err))
		env.Close()
		os.Exit(1)
	}
}

func run(env *app.Env, r request) error {
	cat := env.Catalog
	var ch *character.Character
	ap := 0
	if r.character != "" {
		var err error
		if ch, err = env.LoadCharacter(r.character); err != nil {
			return err
		}
		ap = ch.AchievementPoints
	}

	options, err := gearOptions(env, r.gear, ch, ap)
	if err != nil {
		return err
	}
	cfg := route.Config{
		Home:          env.Config.Route.Home,
		AllowTeleport: env.Config.Route.AllowTeleport && !r.noTeleport,
		MaxTourStops:  env.Config.Route.MaxTourStops,
	}
	if r.home != "" {
		cfg.Home = r.home
	}
	if cfg.Home == "" {
		cfg.AllowTeleport = false
	}
	if ch != nil && !r.noLevel {
		cfg.LevelEfficiency = metrics.TravelLevelEfficiency(ch.SkillLevel(skill.Agility))
	}

	agg, err := env.Aggregator()
	if err != nil {
		return err
	}
	g, err := route.NewBuilder(agg, cat.Locations, ch, env.Logger).Build(cat.Network, options, cfg)
	if err != nil {
		return err
	}

	start := r.from
	if start == "" {
		start = cfg.Home
	}
	if start == "" {
		return fmt.Errorf("no start location: pass -from or set route.home")
	}
	stops := make([]route.Stop, 0, len(r.stops))
	for _, s := range r.stops {
		stops = append(stops, route.ParseStop(s))
	}
	t, err := g.Tour(start, stops, r.to)
	if err != nil {
		return err
	}
	fmt.Print(report.New(r.color).Tour(t))
	return nil
}

// gearOptions resolves -gear flags. The character's equipped gear is added as
// "equipped". With no options at all the traveller walks unequipped.
func gearOptions(env *app.Env, flags gearFlags, ch *character.Character, ap int) ([]route.GearOption, error) {
	var out []route.GearOption
	if ch != nil && len(ch.Gear) > 0 {
		slots := make([]string, 0, len(ch.Gear))
		for s := range ch.Gear {
			slots = append(slots, s)
		}
		sort.Strings(slots)
		opt := route.GearOption{Name: "equipped"}
		for _, s := range slots {
			if it := ch.Gear[s]; it != nil {
				opt.Items = append(opt.Items, it)
			}
		}
		out = append(out, opt)
	}
	for _, f := range flags {
		name, list, _ := strings.Cut(f, "=")
		opt := route.GearOption{Name: strings.TrimSpace(name)}
		for _, n := range strings.Split(list, ",") {
			if n = strings.TrimSpace(n); n == "" {
				continue
			}
			it, ok := env.Catalog.Items.ByName(n, ap)
			if !ok {
				return nil, app.NotFound("item", n, env.Catalog.Items.Names())
			}
			opt.Items = append(opt.Items, it)
		}
		out = append(out, opt)
	}
	return out, nil
}
