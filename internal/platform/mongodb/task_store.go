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

// taskDocument is the stored form of a domain.Task.
type taskDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	Description      string             `bson:"description"`
	Deadline         time.Time          `bson:"deadline"`
	Completed        bool               `bson:"completed"`
	AssignedUser     string             `bson:"assignedUser"`
	AssignedUserName string             `bson:"assignedUserName"`
	DateCreated      time.Time          `bson:"dateCreated"`
}

func (d *taskDocument) toDomain() *domain.Task {
	return &domain.Task{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		Description:      d.Description,
		Deadline:         d.Deadline.UTC(),
		Completed:        d.Completed,
		AssignedUser:     d.AssignedUser,
		AssignedUserName: d.AssignedUserName,
		DateCreated:      d.DateCreated.UTC(),
	}
}

// TaskStore implements store.TaskStore on the tasks collection.
type TaskStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// ValidID implements store.IDValidator.
func (s *TaskStore) ValidID(id string) bool {
	return validID(id)
}

// Find implements store.TaskStore.Find.
func (s *TaskStore) Find(ctx context.Context, q *query.Query) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filter, err := filterDocument(q.Filter)
	if err != nil {
		return nil, err
	}

	cursor, err := s.coll.Find(ctx, filter, findOptions(q))
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "find", "query failed", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		log.Error("failed to decode tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "find", "decode failed", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toDomain())
	}
	return tasks, nil
}

// Count implements store.TaskStore.Count.
func (s *TaskStore) Count(ctx context.Context, f query.Filter) (int64, error) {
	filter, err := filterDocument(f)
	if err != nil {
		return 0, err
	}
	n, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, store.NewStoreError("task", "count", "count failed", err)
	}
	return n, nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *TaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrTaskNotFound
	}

	var doc taskDocument
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if mapped := mapError(err, store.ErrTaskNotFound); mapped == store.ErrTaskNotFound {
			return nil, mapped
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.String("task_id", id),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "get", "lookup failed", err)
	}
	return doc.toDomain(), nil
}

// Create implements store.TaskStore.Create.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	doc := taskDocument{
		ID:               primitive.NewObjectID(),
		Name:             task.Name,
		Description:      task.Description,
		Deadline:         task.Deadline,
		Completed:        task.Completed,
		AssignedUser:     task.AssignedUser,
		AssignedUserName: task.AssignedUserName,
		DateCreated:      task.DateCreated,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert task",
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "create", "insert failed", err)
	}

	task.ID = doc.ID.Hex()
	return nil
}

// Update implements store.TaskStore.Update.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	oid, err := primitive.ObjectIDFromHex(task.ID)
	if err != nil {
		return store.ErrTaskNotFound
	}

	res, err := s.coll.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: task.Name},
		{Key: "description", Value: task.Description},
		{Key: "deadline", Value: task.Deadline},
		{Key: "completed", Value: task.Completed},
		{Key: "assignedUser", Value: task.AssignedUser},
		{Key: "assignedUserName", Value: task.AssignedUserName},
	}}})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			slog.String("task_id", task.ID),
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "update", "write failed", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// Delete implements store.TaskStore.Delete.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrTaskNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.String("task_id", id),
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "delete", "delete failed", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// UnassignUser implements store.TaskStore.UnassignUser.
func (s *TaskStore) UnassignUser(ctx context.Context, userID string, keep []string) (int64, error) {
	filter := unassignFilter(userID, keep)
	res, err := s.coll.UpdateMany(ctx, filter, bson.D{{Key: "$set", Value: bson.D{
		{Key: "assignedUser", Value: ""},
		{Key: "assignedUserName", Value: domain.Unassigned},
	}}})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to unassign tasks",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("task", "unassign", "bulk update failed", err)
	}
	return res.MatchedCount, nil
}

// AssignAll implements store.TaskStore.AssignAll.
func (s *TaskStore) AssignAll(ctx context.Context, ids []string, userID, userName string) (int64, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}

	res, err := s.coll.UpdateMany(ctx,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "assignedUser", Value: userID},
			{Key: "assignedUserName", Value: userName},
		}}})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to assign tasks",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("task", "assign", "bulk update failed", err)
	}
	return res.MatchedCount, nil
}

func unassignFilter(userID string, keep []string) bson.D {
	filter := bson.D{{Key: "assignedUser", Value: userID}}
	if oids := objectIDs(keep); len(oids) > 0 {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$nin", Value: oids}}})
	}
	return filter
}
