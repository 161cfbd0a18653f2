// Package testutil provides test helpers for the storage backends.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/walkscape/internal/config"
	"github.com/cory-johannsen/walkscape/internal/storage/migrations"
	"github.com/cory-johannsen/walkscape/internal/storage/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL test container. It skips the test
// under -short.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container, or skips or fails the test.
// The container is terminated when the test ends.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in -short mode")
	}
	ctx := context.Background()
	start := time.Now()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	t.Logf("postgres container started [%s]", time.Since(start))
	return &PostgresContainer{
		container: container,
		Config: config.DatabaseConfig{
			Host:            host,
			Port:            mappedPort.Int(),
			User:            "test",
			Password:        "test",
			Name:            "test",
			SSLMode:         "disable",
			MaxConns:        5,
			MinConns:        1,
			MaxConnLifetime: 5 * time.Minute,
		},
	}
}

// ApplyMigrations brings the container's database to the latest schema.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	start := time.Now()
	if err := migrations.Up(migrations.Postgres, pc.DSN()); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

// ResetSchema drops every table and reapplies migrations so each test starts
// from an empty store.
func (pc *PostgresContainer) ResetSchema(t *testing.T) {
	t.Helper()
	m, err := migrations.New(migrations.Postgres, pc.DSN())
	if err != nil {
		t.Fatalf("creating migrator: %v", err)
	}
	if err := m.Drop(); err != nil {
		t.Fatalf("dropping schema: %v", err)
	}
	m.Close()
	pc.ApplyMigrations(t)
}

// NewPool connects a pool to the container. The pool is closed when the test ends
// unless ownership is handed to a store that closes it.
func (pc *PostgresContainer) NewPool(t *testing.T) *postgres.Pool {
	t.Helper()
	pool, err := postgres.NewPool(context.Background(), pc.Config)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v", err)
	}
	return pool
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return pc.Config.DSN()
}
