//go:build integration

package testdb

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/phrazzld/taskboard-api/internal/platform/mongodb"
)

// GetTestMongoWithT returns a store on a new, uniquely named database that
// is dropped when the test completes. The test is skipped when no server is
// configured.
func GetTestMongoWithT(t *testing.T) *mongodb.Store {
	t.Helper()

	url := MongoURL()
	if url == "" {
		t.Skipf("%s not set - skipping integration test", MongoURLEnv)
	}

	ctx := context.Background()
	client, err := mongodb.Connect(ctx, url, TestTimeout)
	require.NoError(t, err, "failed to connect to test mongodb")

	name := "taskboard_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	db := client.Database(name)
	t.Cleanup(func() {
		dropAndDisconnect(t, client, db)
	})

	s := mongodb.New(db, nil)
	require.NoError(t, s.EnsureIndexes(ctx), "failed to create indexes")
	return s
}

func dropAndDisconnect(t *testing.T, client *mongo.Client, db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	if err := db.Drop(ctx); err != nil {
		t.Logf("failed to drop test database %s: %v", db.Name(), err)
	}
	if err := client.Disconnect(ctx); err != nil {
		t.Logf("failed to disconnect from test mongodb: %v", err)
	}
}
