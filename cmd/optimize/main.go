// Package main provides the gearset optimizer binary: it searches a
// character's owned equipment for the best gearset for one activity or recipe.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/app"
	"github.com/cory-johannsen/walkscape/internal/game/character"
	"github.com/cory-johannsen/walkscape/internal/game/gearset"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/metrics"
	"github.com/cory-johannsen/walkscape/internal/game/optimizer"
	"github.com/cory-johannsen/walkscape/internal/game/stats"
	"github.com/cory-johannsen/walkscape/internal/observability"
	"github.com/cory-johannsen/walkscape/internal/report"
	"github.com/cory-johannsen/walkscape/internal/scripting"
	"github.com/cory-johannsen/walkscape/internal/session"
)

type flags struct {
	configPath    string
	contentDir    string
	characterPath string
	sessionID     string
	activity      string
	recipe        string
	target        string
	location      string
	sortBy        string
	metricsDir    string
	ignore        string
	allQualities  bool
	consumable    string
	pet           string
	petLevel      int
	maxIterations int
	saveAs        string
	color         bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "path to configuration file (defaults and WALKSCAPE_* env when empty)")
	flag.StringVar(&f.contentDir, "content", "", "reference data directory; overrides content.dir")
	flag.StringVar(&f.characterPath, "character", "", "path to a character export JSON file")
	flag.StringVar(&f.sessionID, "session", "", "load the character export stored in this session")
	flag.StringVar(&f.activity, "activity", "", "activity to optimise for")
	flag.StringVar(&f.recipe, "recipe", "", "recipe to optimise for")
	flag.StringVar(&f.target, "target", "", "drop to optimise for (activities only)")
	flag.StringVar(&f.location, "location", "", "location the activity is performed at")
	flag.StringVar(&f.sortBy, "sort", "", `ranking, e.g. "steps_per_item,total_xp_per_step:max"`)
	flag.StringVar(&f.metricsDir, "metrics", "", "directory of Lua ranking metrics")
	flag.StringVar(&f.ignore, "ignore", "", "comma-separated item names to leave out")
	flag.BoolVar(&f.allQualities, "all-qualities", false, "consider every quality tier, not only the best owned")
	flag.StringVar(&f.consumable, "consumable", "", "active consumable")
	flag.StringVar(&f.pet, "pet", "", "active pet")
	flag.IntVar(&f.petLevel, "pet-level", 1, "active pet level")
	flag.IntVar(&f.maxIterations, "max-iterations", 0, "local search round limit; overrides optimizer.max_iterations")
	flag.StringVar(&f.saveAs, "save-as", "", "save the result to the session under this name")
	flag.BoolVar(&f.color, "color", true, "colour output")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()
	if (f.activity == "") == (f.recipe == "") {
		fmt.Fprintln(os.Stderr, "usage: optimize (-activity <name> | -recipe <name>) (-character <file> | -session <id>) [flags]")
		os.Exit(2)
	}
	if (f.characterPath == "") == (f.sessionID == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -character or -session is required")
		os.Exit(2)
	}
	if f.saveAs != "" && f.sessionID == "" {
		fmt.Fprintln(os.Stderr, "-save-as requires -session")
		os.Exit(2)
	}

	env, err := app.Bootstrap(f.configPath, f.contentDir)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer env.Close()

	if err := env.Lifecycle.Run(context.Background(), func(ctx context.Context) error {
		return run(ctx, env, f)
	}); err != nil {
		env.Logger.Error("optimisation failed", zap.Error(err))
		env.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, env *app.Env, f flags) error {
	var (
		svc *session.Service
		sid uuid.UUID
		ch  *character.Character
		err error
	)
	if f.sessionID != "" {
		if sid, err = uuid.Parse(f.sessionID); err != nil {
			return fmt.Errorf("invalid session id %q: %w", f.sessionID, err)
		}
		store, err := env.OpenStore(ctx)
		if err != nil {
			return err
		}
		svc = session.NewService(store, env.Logger)
		svc.RecordAccess(ctx, sid, "optimize", "CLI", "walkscape-optimize", "")
		sess, err := svc.Get(ctx, sid)
		if err != nil {
			return err
		}
		if !sess.HasCharacter() {
			return fmt.Errorf("session %s has no character export", sid)
		}
		ch, err = env.ParseCharacter(sess.Character)
		if err != nil {
			return err
		}
	} else if ch, err = env.LoadCharacter(f.characterPath); err != nil {
		return err
	}

	opts, err := options(env, f)
	if err != nil {
		return err
	}
	agg, err := env.Aggregator()
	if err != nil {
		return err
	}
	opt := optimizer.New(agg, env.Logger)

	var out *optimizer.Outcome
	cat := env.Catalog
	if f.activity != "" {
		a, ok := cat.Activities.Activity(f.activity)
		if !ok {
			return app.NotFound("activity", f.activity, cat.Activities.ActivityNames())
		}
		out, err = opt.ForActivity(ctx, ch, a, opts)
	} else {
		r, ok := cat.Activities.Recipe(f.recipe)
		if !ok {
			return app.NotFound("recipe", f.recipe, cat.Activities.RecipeNames())
		}
		out, err = opt.ForRecipe(ctx, ch, r, opts)
	}
	if err != nil {
		return err
	}

	rnd := report.New(f.color)
	fmt.Print(rnd.Outcome(out))
	fmt.Print(rnd.Stats("Stats", out.Stats))
	export, err := gearset.Encode(out.Gearset)
	if err != nil {
		return fmt.Errorf("encoding gearset: %w", err)
	}
	fmt.Printf("\nExport: %s\n", export)

	if f.saveAs != "" {
		slots := make(map[string]string, out.Gearset.Len())
		for s, it := range out.Gearset.Map() {
			slots[string(s)] = it.Name
		}
		g, err := svc.SaveGearSet(ctx, sid, f.saveAs, slots, export, true)
		if err != nil {
			return err
		}
		fmt.Printf("Saved as %q (%s)\n", g.Name, g.ID)
	}
	return nil
}

func options(env *app.Env, f flags) (optimizer.Options, error) {
	cfg := env.Config.Optimizer
	opts := optimizer.Options{
		Target:             f.target,
		MaxIterations:      cfg.MaxIterations,
		HighestQualityOnly: cfg.HighestQualityOnly && !f.allQualities,
		IgnoredItems:       append([]string{}, cfg.IgnoredItems...),
		Observer:           observability.NewSearchObserver(env.Logger),
	}
	if f.maxIterations > 0 {
		opts.MaxIterations = f.maxIterations
	}
	for _, n := range strings.Split(f.ignore, ",") {
		if n = strings.TrimSpace(n); n != "" {
			opts.IgnoredItems = append(opts.IgnoredItems, n)
		}
	}
	cat := env.Catalog
	if f.location != "" {
		loc, ok := cat.Locations.Get(f.location)
		if !ok {
			return opts, app.NotFound("location", f.location, cat.Locations.Names())
		}
		opts.Location = loc
	}
	if f.consumable != "" {
		c, ok := cat.Items.Consumable(item.ExportNameFor(f.consumable))
		if !ok {
			return opts, fmt.Errorf("unknown consumable %q", f.consumable)
		}
		opts.Extra = append(opts.Extra, c)
	}
	if f.pet != "" {
		p, ok := cat.Items.Pet(f.pet)
		if !ok {
			return opts, fmt.Errorf("unknown pet %q", f.pet)
		}
		opts.Extra = append(opts.Extra, stats.Source(p.AtLevel(f.petLevel)))
	}

	custom := make(map[string]bool)
	if f.metricsDir != "" {
		ms, err := scripting.LoadDir(f.metricsDir, cfg.ScriptInstructionLimit, env.Logger)
		if err != nil {
			return opts, err
		}
		for _, m := range ms {
			env.Lifecycle.Add("metric "+m.Name(), func() error { m.Close(); return nil })
			opts.Derived = append(opts.Derived, m)
			custom[m.Name()] = true
		}
	}
	if f.sortBy != "" {
		r, err := optimizer.ParseRanking(f.sortBy, metrics.HigherIsBetter)
		if err != nil {
			if errors.Is(err, optimizer.ErrUnknownMetric) && len(custom) > 0 {
				return opts, fmt.Errorf("%w (custom metrics need :max or :min)", err)
			}
			return opts, err
		}
		opts.Ranking = r
	}
	return opts, nil
}
