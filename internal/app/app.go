// Package app wires configuration, logging, reference data and storage for
// the command-line binaries.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/config"
	"github.com/cory-johannsen/walkscape/internal/content"
	"github.com/cory-johannsen/walkscape/internal/fuzzy"
	"github.com/cory-johannsen/walkscape/internal/game/aggregate"
	"github.com/cory-johannsen/walkscape/internal/game/character"
	"github.com/cory-johannsen/walkscape/internal/game/stats"
	"github.com/cory-johannsen/walkscape/internal/observability"
	"github.com/cory-johannsen/walkscape/internal/session"
	"github.com/cory-johannsen/walkscape/internal/storage/postgres"
	"github.com/cory-johannsen/walkscape/internal/storage/sqlite"
)

// Env holds what every binary needs once started.
type Env struct {
	Config    config.Config
	Logger    *zap.Logger
	Catalog   *content.Catalog
	Lifecycle *Lifecycle
}

// Bootstrap loads configuration, builds the logger and loads reference data.
// A non-empty contentDir overrides the configured directory. Rejected content
// entries are logged and skipped.
//
// Postcondition: the caller must call Close on the returned Env.
func Bootstrap(configPath, contentDir string) (*Env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if contentDir != "" {
		cfg.Content.Dir = contentDir
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return NewEnv(cfg, logger)
}

// NewEnv loads the reference data named by cfg.
func NewEnv(cfg config.Config, logger *zap.Logger) (*Env, error) {
	start := time.Now()
	cat, err := content.LoadDir(cfg.Content.Dir, logger)
	if cat == nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	if err != nil {
		logger.Warn("content loaded with rejected entries",
			zap.Int("rejected", len(multierr.Errors(err))))
	}
	logger.Info("content loaded",
		zap.String("dir", cfg.Content.Dir),
		zap.Int("items", cat.Items.Len()),
		zap.Int("locations", len(cat.Locations.Names())),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Env{Config: cfg, Logger: logger, Catalog: cat, Lifecycle: NewLifecycle(logger)}, nil
}

// Close releases every registered resource and flushes the logger.
func (e *Env) Close() {
	e.Lifecycle.Shutdown()
	_ = e.Logger.Sync()
}

// ToolSlots returns the configured tool slot table, or nil for the built-in one.
func (e *Env) ToolSlots() character.ToolSlotTable {
	t, err := e.Config.Progression.ToolSlotTable()
	if err != nil || t == nil {
		return nil
	}
	return character.ToolSlotTable(t)
}

// ParseCharacter parses a character export against the loaded items.
func (e *Env) ParseCharacter(data []byte) (*character.Character, error) {
	return character.Parse(data, e.Catalog.Items, e.ToolSlots(), e.Logger)
}

// LoadCharacter reads and parses a character export file.
func (e *Env) LoadCharacter(path string) (*character.Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading character export: %w", err)
	}
	return e.ParseCharacter(data)
}

// Aggregator returns an aggregator with a fresh memo cache; create one per
// character.
func (e *Env) Aggregator() (*aggregate.Aggregator, error) {
	cache, err := stats.NewCache(stats.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	return aggregate.New(cache, e.Logger), nil
}

// OpenStore opens the configured session store and registers it for Close.
func (e *Env) OpenStore(ctx context.Context) (session.Store, error) {
	var (
		store session.Store
		err   error
	)
	start := time.Now()
	switch e.Config.Store.Driver {
	case config.DriverPostgres:
		var pool *postgres.Pool
		pool, err = postgres.NewPool(ctx, e.Config.Database)
		if err == nil {
			store = postgres.NewStore(pool)
		}
	case config.DriverSQLite:
		store, err = sqlite.Open(ctx, e.Config.Store.SQLitePath, e.Logger)
	default:
		err = fmt.Errorf("unknown store driver %q", e.Config.Store.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	e.Logger.Info("session store opened",
		zap.String("driver", e.Config.Store.Driver),
		zap.Duration("elapsed", time.Since(start)),
	)
	e.Lifecycle.Add("session store", store.Close)
	return store, nil
}

// NotFound reports an unknown name, suggesting the nearest known one.
func NotFound(kind, name string, known []string) error {
	if s, ok := fuzzy.Closest(name, known); ok {
		return fmt.Errorf("unknown %s %q (did you mean %q?)", kind, name, s)
	}
	return fmt.Errorf("unknown %s %q", kind, name)
}
