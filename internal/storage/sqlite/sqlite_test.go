package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/session"
	"github.com/cory-johannsen/walkscape/internal/session/sessiontest"
	"github.com/cory-johannsen/walkscape/internal/storage/sqlite"
)

func TestStore(t *testing.T) {
	sessiontest.Run(t, func(t *testing.T) session.Store {
		s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "sessions.db"), zap.NewNop())
		require.NoError(t, err)
		return s
	})
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "sessions.db")

	s, err := sqlite.Open(ctx, path, zap.NewNop())
	require.NoError(t, err)
	sess, err := session.NewService(s, zap.NewNop()).Create(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = sqlite.Open(ctx, path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "", zap.NewNop())
	assert.Error(t, err)
}
