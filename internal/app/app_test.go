package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/walkscape/internal/app"
	"github.com/cory-johannsen/walkscape/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Logging: config.LoggingConfig{Level: "debug", Format: "console"},
		Store: config.StoreConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "sessions.db"),
		},
		Content:   config.ContentConfig{Dir: "../../content"},
		Optimizer: config.OptimizerConfig{MaxIterations: 10, ScriptInstructionLimit: 1000},
		Route:     config.RouteConfig{Home: "Kallaheim", MaxTourStops: 4},
	}
}

func TestNewEnv_LoadsContentAndCharacter(t *testing.T) {
	env, err := app.NewEnv(testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer env.Close()

	_, ok := env.Catalog.Activities.Activity("Mining Copper Ore")
	assert.True(t, ok)

	ch, err := env.LoadCharacter("../../testdata/wanderer.json")
	require.NoError(t, err)
	assert.Equal(t, "Wanderer", ch.Name)
	assert.NotNil(t, ch.Gear["tool0"])

	_, err = env.LoadCharacter("../../testdata/missing.json")
	assert.Error(t, err)

	agg, err := env.Aggregator()
	require.NoError(t, err)
	assert.NotNil(t, agg)
}

func TestNewEnv_MissingContent(t *testing.T) {
	cfg := testConfig(t)
	cfg.Content.Dir = t.TempDir()
	_, err := app.NewEnv(cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestEnv_ToolSlots(t *testing.T) {
	cfg := testConfig(t)
	env, err := app.NewEnv(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, env.ToolSlots())

	cfg.Progression.ToolSlots = map[string]int{"1": 6}
	env, err = app.NewEnv(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	ch, err := env.LoadCharacter("../../testdata/wanderer.json")
	require.NoError(t, err)
	assert.Equal(t, 6, ch.ToolSlots())
}

func TestEnv_OpenStoreSQLite(t *testing.T) {
	env, err := app.NewEnv(testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)

	store, err := env.OpenStore(context.Background())
	require.NoError(t, err)
	_, err = store.ListBugReports(context.Background(), nil)
	require.NoError(t, err)
	env.Close()
}

func TestEnv_OpenStoreUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "mysql"
	env, err := app.NewEnv(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, err = env.OpenStore(context.Background())
	assert.Error(t, err)
}

func TestNotFound(t *testing.T) {
	err := app.NotFound("activity", "Mining Coper Ore", []string{"Mining Copper Ore", "Mining Iron Ore"})
	assert.EqualError(t, err, `unknown activity "Mining Coper Ore" (did you mean "Mining Copper Ore"?)`)

	err = app.NotFound("activity", "Sailing", []string{"Mining Copper Ore"})
	assert.EqualError(t, err, `unknown activity "Sailing"`)
}
