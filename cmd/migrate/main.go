// Package main provides a session-store migration runner.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"

	"github.com/cory-johannsen/walkscape/internal/config"
	"github.com/cory-johannsen/walkscape/internal/storage/migrations"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	var dialect, url string
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		dialect, url = migrations.Postgres, cfg.Database.DSN()
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Store.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Fatalf("creating %s: %v", dir, err)
			}
		}
		dialect, url = migrations.SQLite, migrations.SQLiteURL(cfg.Store.SQLitePath)
	default:
		log.Fatalf("unsupported store driver %q", cfg.Store.Driver)
	}

	m, err := migrations.New(dialect, url)
	if err != nil {
		log.Fatalf("creating migrator: %v", err)
	}
	defer m.Close()

	switch *direction {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	default:
		log.Fatalf("invalid direction %q: must be 'up' or 'down'", *direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	version, dirty, _ := m.Version()
	elapsed := time.Since(start)

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintf(os.Stdout, "%s: no changes (version=%d dirty=%v) [%s]\n", dialect, version, dirty, elapsed)
	} else {
		fmt.Fprintf(os.Stdout, "%s: migrated %s to version=%d dirty=%v [%s]\n", dialect, *direction, version, dirty, elapsed)
	}
}
