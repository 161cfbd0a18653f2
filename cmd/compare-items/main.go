// Package main compares the stats two items grant for a skill at a location.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/app"
	"github.com/cory-johannsen/walkscape/internal/game/aggregate"
	"github.com/cory-johannsen/walkscape/internal/game/character"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/location"
	"github.com/cory-johannsen/walkscape/internal/report"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	contentDir := flag.String("content", "", "reference data directory; overrides content.dir")
	first := flag.String("a", "", `first item, e.g. "Iron Sickle (Perfect)"`)
	second := flag.String("b", "", "second item")
	skillName := flag.String("skill", "", "skill to compare for; empty sums every skill")
	locName := flag.String("location", "", "location to compare at")
	characterPath := flag.String("character", "", "optional character export for gated stats")
	color := flag.Bool("color", true, "colour output")
	flag.Parse()

	if *first == "" || *second == "" {
		fmt.Fprintln(os.Stderr, "usage: compare-items -a <item> -b <item> [-skill <name>] [-location <name>] [-character <file>]")
		os.Exit(2)
	}

	env, err := app.Bootstrap(*configPath, *contentDir)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer env.Close()

	err = env.Lifecycle.Run(context.Background(), func(context.Context) error {
		return run(env, *first, *second, *skillName, *locName, *characterPath, *color)
	})
	if err != nil {
		env.Logger.Error("comparison failed", zap.Error(err))
		env.Close()
		os.Exit(1)
	}
}

func run(env *app.Env, first, second, skillName, locName, characterPath string, color bool) error {
	cat := env.Catalog
	var ch *character.Character
	ap := 0
	if characterPath != "" {
		var err error
		if ch, err = env.LoadCharacter(characterPath); err != nil {
			return err
		}
		ap = ch.AchievementPoints
	}
	var loc *location.Location
	if locName != "" {
		l, ok := cat.Locations.Get(locName)
		if !ok {
			return app.NotFound("location", locName, cat.Locations.Names())
		}
		loc = l
	}

	lookup := func(name string) (*item.Item, error) {
		it, ok := cat.Items.ByName(name, ap)
		if !ok {
			return nil, app.NotFound("item", name, cat.Items.Names())
		}
		return it, nil
	}
	a, err := lookup(first)
	if err != nil {
		return err
	}
	b, err := lookup(second)
	if err != nil {
		return err
	}

	agg, err := env.Aggregator()
	if err != nil {
		return err
	}
	statsOf := func(it *item.Item) (map[string]float64, error) {
		return agg.Aggregate(aggregate.Request{
			Items:     []*item.Item{it},
			Skill:     skillName,
			Location:  loc,
			Character: ch,
		})
	}
	sa, err := statsOf(a)
	if err != nil {
		return err
	}
	sb, err := statsOf(b)
	if err != nil {
		return err
	}
	fmt.Print(report.New(color).Comparison(a.Name, b.Name, sa, sb))
	return nil
}
