// Package main administers the session store: sessions, saved gear sets, bug
// reports and access statistics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/app"
	"github.com/cory-johannsen/walkscape/internal/session"
)

const usage = `usage: sessions [-config file] [-content dir] <command> [args]

commands:
  create                                   start an empty session
  show <session>                           print a session
  set-character <session> <export.json>    attach a character export
  gearsets <session>                       list saved gear sets
  delete-gearset <session> <name>          delete a saved gear set
  rename-gearset <session> <name> <new>    rename a saved gear set
  file-report <session> <description>      snapshot the session and file a bug report
  reports [-reviewed | -open]              list bug reports
  review <report> [-by name] [-notes text] mark a bug report reviewed
  stats [-days n]                          summarise API access
`

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	contentDir := flag.String("content", "", "reference data directory; overrides content.dir")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	env, err := app.Bootstrap(*configPath, *contentDir)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer env.Close()

	err = env.Lifecycle.Run(context.Background(), func(ctx context.Context) error {
		store, err := env.OpenStore(ctx)
		if err != nil {
			return err
		}
		svc := session.NewService(store, env.Logger)
		return dispatch(ctx, env, svc, flag.Arg(0), flag.Args()[1:])
	})
	if err != nil {
		env.Logger.Error("sessions command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		env.Close()
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, env *app.Env, svc *session.Service, cmd string, args []string) error {
	switch cmd {
	case "create":
		s, err := svc.Create(ctx)
		if err != nil {
			return err
		}
		fmt.Println(s.ID)
		return nil
	case "show":
		id, err := argUUID(args, 0, "session")
		if err != nil {
			return err
		}
		s, err := svc.Get(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("Session %s (updated %s)\n", s.ID, s.UpdatedAt.Format(time.RFC3339))
		if s.HasCharacter() {
			if ch, err := env.ParseCharacter(s.Character); err == nil {
				fmt.Printf("  Character: %s, level %d, %d AP\n", ch.Name, ch.CharacterLevel(), ch.AchievementPoints)
			} else {
				fmt.Printf("  Character: unreadable (%v)\n", err)
			}
		} else {
			fmt.Println("  Character: none")
		}
		fmt.Printf("  UI config: %s\n", s.UIConfig)
		return nil
	case "set-character":
		id, err := argUUID(args, 0, "session")
		if err != nil {
			return err
		}
		if len(args) < 2 {
			return fmt.Errorf("set-character needs an export file")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		ch, err := env.ParseCharacter(data)
		if err != nil {
			return err
		}
		if err := svc.SetCharacter(ctx, id, json.RawMessage(data)); err != nil {
			return err
		}
		fmt.Printf("attached %s to %s\n", ch.Name, id)
		return nil
	case "gearsets":
		id, err := argUUID(args, 0, "session")
		if err != nil {
			return err
		}
		sets, err := svc.GearSets(ctx, id)
		if err != nil {
			return err
		}
		printGearSets(sets)
		return nil
	case "delete-gearset", "rename-gearset":
		id, err := argUUID(args, 0, "session")
		if err != nil {
			return err
		}
		if len(args) < 2 {
			return fmt.Errorf("%s needs a gear set name", cmd)
		}
		g, err := svc.GearSet(ctx, id, args[1])
		if err != nil {
			return err
		}
		if cmd == "delete-gearset" {
			if err := svc.DeleteGearSet(ctx, id, g.ID); err != nil {
				return err
			}
			fmt.Printf("deleted %q\n", g.Name)
			return nil
		}
		if len(args) < 3 {
			return fmt.Errorf("rename-gearset needs a new name")
		}
		if _, err := svc.RenameGearSet(ctx, id, g.ID, args[2]); err != nil {
			return err
		}
		fmt.Printf("renamed %q to %q\n", args[1], args[2])
		return nil
	case "file-report":
		id, err := argUUID(args, 0, "session")
		if err != nil {
			return err
		}
		if len(args) < 2 {
			return fmt.Errorf("file-report needs a description")
		}
		r, err := svc.FileBugReport(ctx, id, strings.Join(args[1:], " "), "cli", "walkscape-sessions", nil)
		if err != nil {
			return err
		}
		fmt.Printf("filed %s (snapshot %s)\n", r.ID, r.SnapshotSession)
		return nil
	case "reports":
		fs := flag.NewFlagSet("reports", flag.ContinueOnError)
		reviewed := fs.Bool("reviewed", false, "only reviewed reports")
		open := fs.Bool("open", false, "only unreviewed reports")
		if err := fs.Parse(args); err != nil {
			return err
		}
		var filter *bool
		switch {
		case *reviewed && *open:
			return fmt.Errorf("-reviewed and -open are exclusive")
		case *reviewed:
			filter = reviewed
		case *open:
			no := false
			filter = &no
		}
		reports, err := svc.BugReports(ctx, filter)
		if err != nil {
			return err
		}
		printReports(reports)
		return nil
	case "review":
		id, err := argUUID(args, 0, "report")
		if err != nil {
			return err
		}
		fs := flag.NewFlagSet("review", flag.ContinueOnError)
		by := fs.String("by", os.Getenv("USER"), "reviewer")
		notes := fs.String("notes", "", "review notes")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := svc.Review(ctx, id, *by, *notes); err != nil {
			return err
		}
		fmt.Printf("reviewed %s\n", id)
		return nil
	case "stats":
		fs := flag.NewFlagSet("stats", flag.ContinueOnError)
		days := fs.Int("days", 7, "days to summarise")
		if err := fs.Parse(args); err != nil {
			return err
		}
		st, err := svc.AccessStats(ctx, *days)
		if err != nil {
			return err
		}
		printStats(st, *days)
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func argUUID(args []string, i int, what string) (uuid.UUID, error) {
	if len(args) <= i {
		return uuid.Nil, fmt.Errorf("missing %s id", what)
	}
	id, err := uuid.Parse(args[i])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", what, args[i], err)
	}
	return id, nil
}

func printGearSets(sets []*session.GearSet) {
	if len(sets) == 0 {
		fmt.Println("(no gear sets)")
		return
	}
	for _, g := range sets {
		tag := ""
		if g.Optimized {
			tag = " [optimized]"
		}
		fmt.Printf("%s%s  updated %s\n", g.Name, tag, g.UpdatedAt.Format(time.RFC3339))
		slots := make([]string, 0, len(g.Slots))
		for s := range g.Slots {
			slots = append(slots, s)
		}
		sort.Strings(slots)
		for _, s := range slots {
			fmt.Printf("  %-10s %s\n", s, g.Slots[s])
		}
		if g.Export != "" {
			fmt.Printf("  export: %s\n", g.Export)
		}
	}
}

func printReports(reports []*session.BugReport) {
	if len(reports) == 0 {
		fmt.Println("(no bug reports)")
		return
	}
	for _, r := range reports {
		state := "open"
		if r.ReviewedAt != nil {
			state = fmt.Sprintf("reviewed by %s %s", r.ReviewedBy, r.ReviewedAt.Format(time.RFC3339))
		}
		fmt.Printf("%s  %s  %s\n  %s\n", r.ID, r.FiledAt.Format(time.RFC3339), state, r.Description)
		fmt.Printf("  session %s, snapshot %s\n", r.OriginalSession, r.SnapshotSession)
		if r.Notes != "" {
			fmt.Printf("  notes: %s\n", r.Notes)
		}
	}
}

func printStats(st *session.AccessStats, days int) {
	fmt.Printf("Last %d day(s): %d request(s) from %d session(s)\n", days, st.TotalRequests, st.UniqueSessions)
	printCounts("By endpoint", st.ByEndpoint, false)
	printCounts("By day", st.ByDay, true)
	if len(st.TopSessions) > 0 {
		fmt.Println("Top sessions:")
		for _, sc := range st.TopSessions {
			fmt.Printf("  %s  %d\n", sc.SessionID, sc.Requests)
		}
	}
}

// printCounts prints by key when byKey is set, otherwise by descending count.
func printCounts(title string, m map[string]int, byKey bool) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if !byKey && m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	fmt.Println(title + ":")
	for _, k := range keys {
		fmt.Printf("  %-24s %d\n", k, m[k])
	}
}
