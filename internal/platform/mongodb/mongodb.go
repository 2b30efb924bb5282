package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	UsersCollection = "users"
	TasksCollection = "tasks"
)

// Connect opens a client for uri and verifies the primary is reachable
// within timeout.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

// Store groups the collection-backed stores of one database.
type Store struct {
	db     *mongo.Database
	logger *slog.Logger
}

// New creates a Store on db. If logger is nil, slog.Default() is used.
func New(db *mongo.Database, logger *slog.Logger) *Store {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Users returns the user store.
func (s *Store) Users() *UserStore {
	return &UserStore{
		coll:   s.db.Collection(UsersCollection),
		logger: s.logger.With(slog.String("component", "user_store")),
	}
}

// Tasks returns the task store.
func (s *Store) Tasks() *TaskStore {
	return &TaskStore{
		coll:   s.db.Collection(TasksCollection),
		logger: s.logger.With(slog.String("component", "task_store")),
	}
}

// EnsureIndexes creates the unique email index on users and the assignee
// index on tasks. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = s.db.Collection(TasksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "assignedUser", Value: 1}},
		Options: options.Index().SetName("assigned_user"),
	})
	if err != nil {
		return fmt.Errorf("failed to create tasks assignee index: %w", err)
	}

	return nil
}

// Drop removes both collections.
func (s *Store) Drop(ctx context.Context) error {
	for _, name := range []string{UsersCollection, TasksCollection} {
		if err := s.db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("failed to drop %s: %w", name, err)
		}
	}
	return nil
}

// validID accepts 24-digit hex ObjectIDs.
func validID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// objectIDs converts the valid ids in ids, skipping the rest.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}
