package postgres_test

import (
	"testing"

	"github.com/cory-johannsen/walkscape/internal/session"
	"github.com/cory-johannsen/walkscape/internal/session/sessiontest"
	"github.com/cory-johannsen/walkscape/internal/storage/postgres"
	"github.com/cory-johannsen/walkscape/internal/testutil"
)

func TestStore_Conformance(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	sessiontest.Run(t, func(t *testing.T) session.Store {
		pc.ResetSchema(t)
		return postgres.NewStore(pc.NewPool(t))
	})
}
