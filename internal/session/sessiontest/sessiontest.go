// Package sessiontest holds the behaviour suite every session.Store backend
// must pass.
package sessiontest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/session"
)

// Opener returns an empty, migrated store. The suite closes it.
type Opener func(t *testing.T) session.Store

// clock returns a time source that advances one second per call, starting at
// a fixed instant.
func clock() func() time.Time {
	t := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func service(t *testing.T, open Opener) *session.Service {
	t.Helper()
	store := open(t)
	t.Cleanup(func() { _ = store.Close() })
	return session.NewService(store, zap.NewNop()).WithClock(clock())
}

// Run executes the suite against stores produced by open.
func Run(t *testing.T, open Opener) {
	t.Run("SessionLifecycle", func(t *testing.T) { testSessionLifecycle(t, open) })
	t.Run("MissingSession", func(t *testing.T) { testMissingSession(t, open) })
	t.Run("GearSetUpsert", func(t *testing.T) { testGearSetUpsert(t, open) })
	t.Run("GearSetNamesUniquePerSession", func(t *testing.T) { testGearSetUnique(t, open) })
	t.Run("GearSetDelete", func(t *testing.T) { testGearSetDelete(t, open) })
	t.Run("BugReports", func(t *testing.T) { testBugReports(t, open) })
	t.Run("AccessAudit", func(t *testing.T) { testAccessAudit(t, open) })
}

func testSessionLifecycle(t *testing.T, open Opener) {
	ctx := context.Background()
	svc := service(t, open)

	s, err := svc.Create(ctx)
	require.NoError(t, err)
	got, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.HasCharacter())
	assert.JSONEq(t, `{}`, string(got.UIConfig))

	export := json.RawMessage(`{"name":"Tester","steps":1000}`)
	require.NoError(t, svc.SetCharacter(ctx, s.ID, export))
	require.NoError(t, svc.SetUIConfig(ctx, s.ID, json.RawMessage(`{"theme":"dark"}`)))

	got, err = svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.HasCharacter())
	assert.JSONEq(t, string(export), string(got.Character))
	assert.JSONEq(t, `{"theme":"dark"}`, string(got.UIConfig))
	assert.True(t, got.UpdatedAt.After(s.UpdatedAt))

	assert.Error(t, svc.SetCharacter(ctx, s.ID, json.RawMessage(`{not json`)))
}

func testMissingSession(t *testing.T, open Opener) {
	ctx := context.Background()
	svc := service(t, open)
	missing := uuid.New()

	_, err := svc.Get(ctx, missing)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.ErrorIs(t, svc.SetCharacter(ctx, missing, json.RawMessage(`{}`)), session.ErrSessionNotFound)
	_, err = svc.SaveGearSet(ctx, missing, "x", nil, "", false)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	_, err = svc.FileBugReport(ctx, missing, "d", "v", "c", nil)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func testGearSetUpsert(t *testing.T, open Opener) {
	ctx := context.Background()
	svc := service(t, open)
	s, err := svc.Create(ctx)
	require.NoError(t, err)

	first, err := svc.SaveGearSet(ctx, s.ID, "Mining", map[string]string{"tool0": "Iron Pickaxe"}, "H4sI", true)
	require.NoError(t, err)
	second, err := svc.SaveGearSet(ctx, s.ID, "Mining", map[string]string{"tool0": "Steel Pickaxe", "ring1": "Gem Ring"}, "", false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := svc.GearSet(ctx, s.ID, "Mining")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"tool0": "Steel Pickaxe", "ring1": "Gem Ring"}, got.Slots)
	assert.False(t, got.Optimized)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	_, err = svc.SaveGearSet(ctx, s.ID, "Fishing", map[string]string{}, "", false)
	require.NoError(t, err)
	all, err := svc.GearSets(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Fishing", all[0].Name)
	assert.Equal(t, "Mining", all[1].Name)
}

func testGearSetUnique(t *testing.T, open Opener) {
	ctx := context.Background()
	svc := service(t, open)
	a, err := svc.Create(ctx)
	require.NoError(t, err)
	b, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.SaveGearSet(ctx, a.ID, "Travel", nil, "", false)
	require.NoError(t, err)
	_, err = svc.SaveGearSet(ctx, b.ID, "Travel", nil, "", false)
	require.NoError(t, err, "names are scoped to a session")

	other, err := svc.SaveGearSet(ctx, a.ID, "Other", nil, "", false)
	require.NoError(t, err)
	_, err = svc.RenameGearSet(ctx, a.ID, other.ID, "Travel")
	assert.ErrorIs(t, err, session.ErrDuplicateGearSet)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	err = svc.Store().CreateGearSet(ctx, &session.GearSet{
		ID: uuid.New(), SessionID: a.ID, Name: "Travel", CreatedAt: now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, session.ErrDuplicateGearSet)
}

func testGearSetDelete(t *testing.T, open Opener) {
	ctx := context.Background()
	svc := service(t, open)
	s, err := svc.Create(ctx)
	require.NoError(t, err)
	g, err := svc.SaveGearSet(ctx, s.ID, "Temp", nil, "", false)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGearSet(ctx, s.ID, g.ID))
	assert.ErrorIs(t, svc.DeleteGearSet(ctx, s.ID, g.ID), session.ErrGearSetNotFound)
	_, err = svc.GearSet(ctx, s.ID, "Temp")
	assert.ErrorIs(t, err, session.ErrGearSetNotFound)
}

func testBugReports(t *testing.T, open Opener) {
	ctx := context.Background()
	svc := service(t, open)
	s, err := svc.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.SetCharacter(ctx, s.ID, json.RawMessage(`{"name":"Reporter"}`)))

	first, err := svc.FileBugReport(ctx, s.ID, "wrong steps", "1.2.0", "cli", map[string]string{"gear": "aGVsbG8="})
	require.NoError(t, err)
	second, err := svc.FileBugReport(ctx, s.ID, "crash", "1.2.0", "cli", nil)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, first.SnapshotSession)

	require.NoError(t, svc.SetCharacter(ctx, s.ID, json.RawMessage(`{"name":"Changed"}`)))
	snap, err := svc.Get(ctx, first.SnapshotSession)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Reporter"}`, string(snap.Character))

	all, err := svc.BugReports(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")
	assert.Equal(t, map[string]string{"gear": "aGVsbG8="}, all[1].Screenshots)

	require.NoError(t, svc.Review(ctx, first.ID, "maintainer", "fixed in 1.2.1"))
	assert.ErrorIs(t, svc.Review(ctx, uuid.New(), "x", ""), session.ErrBugReportNotFound)

	yes, no := true, false
	reviewed, err := svc.BugReports(ctx, &yes)
	require.NoError(t, err)
	require.Len(t, reviewed, 1)
	assert.Equal(t, first.ID, reviewed[0].ID)
	assert.Equal(t, "maintainer", reviewed[0].ReviewedBy)
	assert.Equal(t, "fixed in 1.2.1", reviewed[0].Notes)
	require.NotNil(t, reviewed[0].ReviewedAt)

	open2, err := svc.BugReports(ctx, &no)
	require.NoError(t, err)
	require.Len(t, open2, 1)
	assert.Equal(t, second.ID, open2[0].ID)
	assert.Nil(t, open2[0].ReviewedAt)

	got, err := svc.Store().GetBugReport(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "crash", got.Description)
	_, err = svc.Store().GetBugReport(ctx, uuid.New())
	assert.ErrorIs(t, err, session.ErrBugReportNotFound)
}

func testAccessAudit(t *testing.T, open Opener) {
	ctx := context.Background()
	store := open(t)
	t.Cleanup(func() { _ = store.Close() })
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := session.NewService(store, zap.NewNop()).WithClock(func() time.Time { return now })

	a, err := svc.Create(ctx)
	require.NoError(t, err)
	b, err := svc.Create(ctx)
	require.NoError(t, err)

	svc.RecordAccess(ctx, a.ID, "/api/optimize", "POST", "cli/1.0", "127.0.0.1")
	svc.RecordAccess(ctx, a.ID, "/api/optimize", "POST", "cli/1.0", "127.0.0.1")
	svc.RecordAccess(ctx, b.ID, "/api/session", "GET", "", "")
	old := &session.AccessLog{SessionID: b.ID, Endpoint: "/api/session", Method: "GET", At: now.AddDate(0, 0, -30)}
	require.NoError(t, store.RecordAccess(ctx, old))
	assert.NotZero(t, old.ID)

	// Missing sessions are logged, not returned.
	svc.RecordAccess(ctx, uuid.New(), "/api/x", "GET", "", "")

	st, err := svc.AccessStats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalRequests)
	assert.Equal(t, 2, st.UniqueSessions)
	assert.Equal(t, map[string]int{"/api/optimize": 2, "/api/session": 1}, st.ByEndpoint)
	assert.Equal(t, map[string]int{"2026-03-14": 3}, st.ByDay)
	require.Len(t, st.TopSessions, 2)
	assert.Equal(t, session.SessionCount{SessionID: a.ID, Requests: 2}, st.TopSessions[0])

	logs, err := store.SessionAccess(ctx, b.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].At.After(logs[1].At))

	logs, err = store.SessionAccess(ctx, a.ID, 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
