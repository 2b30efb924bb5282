package mongodb

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// userDocument is the stored form of a domain.User.
type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PendingTasks []string           `bson:"pendingTasks"`
	DateCreated  time.Time          `bson:"dateCreated"`
}

func (d *userDocument) toDomain() *domain.User {
	pending := d.PendingTasks
	if pending == nil {
		pending = []string{}
	}
	return &domain.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PendingTasks: pending,
		DateCreated:  d.DateCreated.UTC(),
	}
}

// UserStore implements store.UserStore on the users collection.
type UserStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// ValidID implements store.IDValidator.
func (s *UserStore) ValidID(id string) bool {
	return validID(id)
}

// Find implements store.UserStore.Find.
func (s *UserStore) Find(ctx context.Context, q *query.Query) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filter, err := filterDocument(q.Filter)
	if err != nil {
		return nil, err
	}

	cursor, err := s.coll.Find(ctx, filter, findOptions(q))
	if err != nil {
		log.Error("failed to query users", slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "find", "query failed", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		log.Error("failed to decode users", slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "find", "decode failed", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, nil
}

// Count implements store.UserStore.Count.
func (s *UserStore) Count(ctx context.Context, f query.Filter) (int64, error) {
	filter, err := filterDocument(f)
	if err != nil {
		return 0, err
	}
	n, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, store.NewStoreError("user", "count", "count failed", err)
	}
	return n, nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrUserNotFound
	}
	return s.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if mapped := mapError(err, store.ErrUserNotFound); mapped == store.ErrUserNotFound {
			return nil, mapped
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "get", "lookup failed", err)
	}
	return doc.toDomain(), nil
}

// Create implements store.UserStore.Create.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pending := user.PendingTasks
	if pending == nil {
		pending = []string{}
	}
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Name:         user.Name,
		Email:        user.Email,
		PendingTasks: pending,
		DateCreated:  user.DateCreated,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn("email already in use during user creation")
			return store.NewStoreError("user", "create", "insert failed", mapError(err, store.ErrUserNotFound))
		}
		log.Error("failed to insert user", slog.String("error", err.Error()))
		return store.NewStoreError("user", "create", "insert failed", err)
	}

	user.ID = doc.ID.Hex()
	user.PendingTasks = pending
	log.Debug("user created", slog.String("user_id", user.ID))
	return nil
}

// Update implements store.UserStore.Update.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return store.ErrUserNotFound
	}

	pending := user.PendingTasks
	if pending == nil {
		pending = []string{}
	}
	res, err := s.coll.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: user.Name},
		{Key: "email", Value: user.Email},
		{Key: "pendingTasks", Value: pending},
	}}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn("email already in use during user update", slog.String("user_id", user.ID))
			return store.NewStoreError("user", "update", "write failed", mapError(err, store.ErrUserNotFound))
		}
		log.Error("failed to update user",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
		return store.NewStoreError("user", "update", "write failed", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// Delete implements store.UserStore.Delete.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrUserNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete user",
			slog.String("user_id", id),
			slog.String("error", err.Error()))
		return store.NewStoreError("user", "delete", "delete failed", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// AddPendingTask implements store.UserStore.AddPendingTask.
func (s *UserStore) AddPendingTask(ctx context.Context, userID, taskID string) error {
	return s.updatePending(ctx, userID, "$addToSet", taskID)
}

// RemovePendingTask implements store.UserStore.RemovePendingTask.
func (s *UserStore) RemovePendingTask(ctx context.Context, userID, taskID string) error {
	return s.updatePending(ctx, userID, "$pull", taskID)
}

func (s *UserStore) updatePending(ctx context.Context, userID, op, taskID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	_, err = s.coll.UpdateByID(ctx, oid, bson.D{{Key: op, Value: bson.D{{Key: "pendingTasks", Value: taskID}}}})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update pending tasks",
			slog.String("user_id", userID),
			slog.String("task_id", taskID),
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return store.NewStoreError("user", "update pending tasks", "write failed", err)
	}
	return nil
}
