// Package migrations embeds the session-store schema for both supported
// dialects and applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Supported dialects. Each names the embedded directory holding its scripts.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// New returns a migrator for databaseURL using the dialect's embedded scripts.
//
// Precondition: dialect is Postgres or SQLite; databaseURL uses the matching
// scheme ("postgres://..." or "sqlite://<path>").
// Postcondition: the caller must Close the returned migrator.
func New(dialect, databaseURL string) (*migrate.Migrate, error) {
	if dialect != Postgres && dialect != SQLite {
		return nil, fmt.Errorf("migrations: unknown dialect %q", dialect)
	}
	src, err := iofs.New(files, dialect)
	if err != nil {
		return nil, fmt.Errorf("migrations: opening %s scripts: %w", dialect, err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("migrations: creating migrator: %w", err)
	}
	return m, nil
}

// Up applies every pending migration. An up-to-date database is not an error.
func Up(dialect, databaseURL string) error {
	m, err := New(dialect, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: applying %s: %w", dialect, err)
	}
	return nil
}

// SQLiteURL returns the migrate URL for a SQLite database file.
func SQLiteURL(path string) string {
	return "sqlite://" + path
}
