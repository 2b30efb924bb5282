//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
)

var migrateOnce sync.Once

// GetTestDBWithT returns a connection pool to the test PostgreSQL database
// with migrations applied, closing it when the test completes. The test is
// skipped when no database is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	url := PostgresURL()
	if url == "" {
		t.Skipf("%s not set - skipping integration test", PostgresURLEnv)
	}

	db, err := postgres.Open(context.Background(), url, TestTimeout)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	var migrateErr error
	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(context.Background(), db, "up", nil)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}

// Reset empties every application table.
func Reset(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.ExecContext(context.Background(), "TRUNCATE TABLE tasks, users")
	require.NoError(t, err, "failed to reset test tables")
}
