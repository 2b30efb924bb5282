//go:build integration

// Package testdb provides connections to real databases for integration tests.
//
// Tests using it are compiled only with the integration build tag and are
// skipped unless the matching environment variable names a reachable server:
//
//   - TASKBOARD_TEST_DATABASE_URL: PostgreSQL connection string
//   - TASKBOARD_TEST_MONGO_URL: MongoDB connection string
//
// PostgreSQL tests share one migrated database and reset its tables. MongoDB tests get a freshly named database that is dropped on
// cleanup.
package testdb
