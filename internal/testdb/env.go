//go:build integration

package testdb

import (
	"os"
	"time"
)

// Environment variables naming the test servers.
const (
	PostgresURLEnv = "TASKBOARD_TEST_DATABASE_URL"
	MongoURLEnv    = "TASKBOARD_TEST_MONGO_URL"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// PostgresURL returns the PostgreSQL URL for tests, or "".
func PostgresURL() string {
	return os.Getenv(PostgresURLEnv)
}

// MongoURL returns the MongoDB URL for tests, or "".
func MongoURL() string {
	return os.Getenv(MongoURLEnv)
}
