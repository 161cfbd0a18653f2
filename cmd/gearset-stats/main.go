// Package main prints the combined stats of a gearset export, optionally with
// the activity or recipe metrics it produces.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/app"
	"github.com/cory-johannsen/walkscape/internal/game/aggregate"
	"github.com/cory-johannsen/walkscape/internal/game/character"
	"github.com/cory-johannsen/walkscape/internal/game/gearset"
	"github.com/cory-johannsen/walkscape/internal/game/location"
	"github.com/cory-johannsen/walkscape/internal/game/metrics"
	"github.com/cory-johannsen/walkscape/internal/report"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	contentDir := flag.String("content", "", "reference data directory; overrides content.dir")
	export := flag.String("export", "", "gearset export string")
	exportFile := flag.String("export-file", "", "file holding a gearset export string")
	characterPath := flag.String("character", "", "optional character export for gated stats, collectibles and level bonus")
	skillName := flag.String("skill", "", "skill to evaluate; empty sums every skill")
	locName := flag.String("location", "", "location to evaluate at")
	activityName := flag.String("activity", "", "also print metrics for this activity")
	recipeName := flag.String("recipe", "", "also print metrics for this recipe")
	color := flag.Bool("color", true, "colour output")
	flag.Parse()

	if (*export == "") == (*exportFile == "") {
		fmt.Fprintln(os.Stderr, "usage: gearset-stats (-export <string> | -export-file <path>) [-character <file>] [-skill <name>] [-location <name>] [-activity <name> | -recipe <name>]")
		os.Exit(2)
	}
	if *exportFile != "" {
		data, err := os.ReadFile(*exportFile)
		if err != nil {
			log.Fatalf("reading export: %v", err)
		}
		*export = strings.TrimSpace(string(data))
	}

	env, err := app.Bootstrap(*configPath, *contentDir)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer env.Close()

	err = env.Lifecycle.Run(context.Background(), func(ctx context.Context) error {
		return run(env, request{
			export:    *export,
			character: *characterPath,
			skill:     *skillName,
			location:  *locName,
			activity:  *activityName,
			recipe:    *recipeName,
			color:     *color,
		})
	})
	if err != nil {
		env.Logger.Error("gearset-stats failed", zap.Error(err))
		env.Close()
		os.Exit(1)
	}
}

type request struct {
	export, character, skill, location, activity, recipe string
	color                                                bool
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

	g, skipped, err := gearset.Decode(r.export, gearset.RegistryResolver(cat.Items, ap))
	if err != nil {
		return err
	}
	for _, e := range skipped {
		env.Logger.Warn("skipping unresolved gearset entry",
			zap.String("type", e.Type), zap.Int("index", e.Index), zap.String("item", e.Item))
	}

	req := aggregate.Request{
		Items:               g.Items(),
		Skill:               r.skill,
		Character:           ch,
		IncludeCollectibles: ch != nil,
	}
	if r.location != "" {
		loc, ok := cat.Locations.Get(r.location)
		if !ok {
			return app.NotFound("location", r.location, cat.Locations.Names())
		}
		req.Location = loc
	}

	var evaluate func(map[string]float64) string
	rnd := report.New(r.color)
	switch {
	case r.activity != "":
		a, ok := cat.Activities.Activity(r.activity)
		if !ok {
			return app.NotFound("activity", r.activity, cat.Activities.ActivityNames())
		}
		req.Skill, req.Activity, req.ActivityLevel = a.PrimarySkill, a.Name, a.RequiredLevel()
		req.IncludeLevelBonus = ch != nil
		if req.Location == nil {
			req.Location = firstLocation(cat.Locations, a.Locations)
		}
		evaluate = func(s map[string]float64) string {
			return rnd.Metrics(a.Name, metrics.ForActivity(a, s).Map(""))
		}
	case r.recipe != "":
		rc, ok := cat.Activities.Recipe(r.recipe)
		if !ok {
			return app.NotFound("recipe", r.recipe, cat.Activities.RecipeNames())
		}
		req.Skill, req.Activity, req.ActivityLevel = rc.Skill, rc.Name, rc.RequiredLevel()
		req.IncludeLevelBonus = ch != nil
		evaluate = func(s map[string]float64) string {
			m := metrics.ForRecipe(rc, s)
			return rnd.Metrics(rc.Name, m.Map()) + rnd.Quality(m.Quality)
		}
	}

	agg, err := env.Aggregator()
	if err != nil {
		return err
	}
	s, err := agg.Aggregate(req)
	if err != nil {
		return err
	}

	title := "Stats"
	if req.Skill != "" {
		title = "Stats: " + req.Skill
	}
	if req.Location != nil {
		title += " @ " + req.Location.Name
	}
	fmt.Print(rnd.Gearset(g))
	fmt.Print(rnd.Stats(title, s))
	if evaluate != nil {
		fmt.Print(evaluate(s))
	}
	return nil
}

func firstLocation(reg *location.Registry, names []string) *location.Location {
	for _, n := range names {
		if l, ok := reg.Get(n); ok {
			return l
		}
	}
	return nil
}
