package store

import (
	"context"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
)

// TaskSchema describes the queryable fields of the task collection.
var TaskSchema = query.Schema{
	query.IDField:      query.KindID,
	"name":             query.KindString,
	"description":      query.KindString,
	"deadline":         query.KindTime,
	"completed":        query.KindBool,
	"assignedUser":     query.KindString,
	"assignedUserName": query.KindString,
	"dateCreated":      query.KindTime,
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	IDValidator

	// Find returns the tasks matching q, sorted, skipped and limited as q
	// specifies. The projection of q is not applied.
	Find(ctx context.Context, q *query.Query) ([]*domain.Task, error)

	// Count returns the number of tasks matching f.
	Count(ctx context.Context, f query.Filter) (int64, error)

	// GetByID retrieves a task by id.
	// Returns ErrTaskNotFound if the task does not exist or id is malformed.
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// Create inserts task and sets task.ID.
	Create(ctx context.Context, task *domain.Task) error

	// Update replaces every mutable field of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id string) error

	// UnassignUser clears the assignee of every task assigned to userID
	// whose id is not in keep, and returns how many tasks changed.
	UnassignUser(ctx context.Context, userID string, keep []string) (int64, error)

	// AssignAll sets the assignee of every task in ids to userID and
	// userName, and returns how many tasks matched.
	AssignAll(ctx context.Context, ids []string, userID, userName string) (int64, error)
}
