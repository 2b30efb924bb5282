//go:build integration

package postgres_test

import (
	"testing"

	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/store/storetest"
	"github.com/phrazzld/taskboard-api/internal/testdb"
)

func TestPostgresStoreSuite(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	storetest.Run(t, func(t *testing.T) (store.UserStore, store.TaskStore) {
		testdb.Reset(t, db)
		return postgres.NewPostgresUserStore(db, nil), postgres.NewPostgresTaskStore(db, nil)
	})
}
