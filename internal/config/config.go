// Package config provides Viper-based configuration loading for the
// gearset toolkit binaries.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StoreConfig selects the session store backend.
type StoreConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig locates the reference data.
type ContentConfig struct {
	Dir string `mapstructure:"dir"`
}

// OptimizerConfig holds search defaults.
type OptimizerConfig struct {
	MaxIterations      int      `mapstructure:"max_iterations"`
	HighestQualityOnly bool     `mapstructure:"highest_quality_only"`
	IgnoredItems       []string `mapstructure:"ignored_items"`
	// ScriptInstructionLimit bounds each Lua metric evaluation.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// RouteConfig holds travel planning defaults.
type RouteConfig struct {
	Home          string `mapstructure:"home"`
	AllowTeleport bool   `mapstructure:"allow_teleport"`
	MaxTourStops  int    `mapstructure:"max_tour_stops"`
}

// ProgressionConfig holds character progression tables.
type ProgressionConfig struct {
	// ToolSlots maps a character level threshold to the tool slots unlocked
	// there. Empty selects the built-in table.
	ToolSlots map[string]int `mapstructure:"tool_slots"`
}

// ToolSlotTable converts ToolSlots to integer thresholds.
//
// Postcondition: returns nil when ToolSlots is empty.
func (p ProgressionConfig) ToolSlotTable() (map[int]int, error) {
	if len(p.ToolSlots) == 0 {
		return nil, nil
	}
	out := make(map[int]int, len(p.ToolSlots))
	for k, v := range p.ToolSlots {
		lvl, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("progression.tool_slots key %q is not a level", k)
		}
		out[lvl] = v
	}
	return out, nil
}

// Config is the top-level application configuration.
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Store       StoreConfig       `mapstructure:"store"`
	Content     ContentConfig     `mapstructure:"content"`
	Optimizer   OptimizerConfig   `mapstructure:"optimizer"`
	Route       RouteConfig       `mapstructure:"route"`
	Progression ProgressionConfig `mapstructure:"progression"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStore(c.Store); err != nil {
		errs = append(errs, err.Error())
	}
	// Postgres settings only matter when that driver is selected.
	if c.Store.Driver == DriverPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Content.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	if err := validateOptimizer(c.Optimizer); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Route.MaxTourStops < 1 {
		errs = append(errs, fmt.Sprintf("route.max_tour_stops must be >= 1, got %d", c.Route.MaxTourStops))
	}
	if err := validateProgression(c.Progression); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStore(s StoreConfig) error {
	switch s.Driver {
	case DriverPostgres:
		return nil
	case DriverSQLite:
		if s.SQLitePath == "" {
			return errors.New("store.sqlite_path must not be empty for the sqlite driver")
		}
		return nil
	default:
		return fmt.Errorf("store.driver must be one of [postgres, sqlite], got %q", s.Driver)
	}
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateOptimizer(o OptimizerConfig) error {
	var errs []string
	if o.MaxIterations < 1 {
		errs = append(errs, fmt.Sprintf("optimizer.max_iterations must be >= 1, got %d", o.MaxIterations))
	}
	if o.ScriptInstructionLimit < 1 {
		errs = append(errs, fmt.Sprintf("optimizer.script_instruction_limit must be >= 1, got %d", o.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateProgression(p ProgressionConfig) error {
	table, err := p.ToolSlotTable()
	if err != nil {
		return err
	}
	levels := make([]int, 0, len(table))
	for lvl := range table {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)
	var errs []string
	for _, lvl := range levels {
		if lvl < 1 {
			errs = append(errs, fmt.Sprintf("progression.tool_slots level must be >= 1, got %d", lvl))
		}
		if n := table[lvl]; n < 0 || n > 6 {
			errs = append(errs, fmt.Sprintf("progression.tool_slots[%d] must be 0-6, got %d", lvl, n))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with WALKSCAPE_ prefix
	v.SetEnvPrefix("WALKSCAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "walkscape")
	v.SetDefault("database.password", "walkscape")
	v.SetDefault("database.name", "walkscape")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.sqlite_path", "data/walkscape.db")

	v.SetDefault("content.dir", "content")

	v.SetDefault("optimizer.max_iterations", 100)
	v.SetDefault("optimizer.highest_quality_only", true)
	v.SetDefault("optimizer.ignored_items", []string{})
	v.SetDefault("optimizer.script_instruction_limit", 100_000)

	v.SetDefault("route.home", "")
	v.SetDefault("route.allow_teleport", true)
	v.SetDefault("route.max_tour_stops", 8)
}
