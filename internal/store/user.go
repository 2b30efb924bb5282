package store

import (
	"context"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
)

// IDValidator reports whether a string is a well-formed identifier for a store.
type IDValidator interface {
	// ValidID reports whether id has the syntax of an identifier this store
	// assigns. It does not check that an entity with the id exists.
	ValidID(id string) bool
}

// UserSchema describes the queryable fields of the user collection.
var UserSchema = query.Schema{
	query.IDField:  query.KindID,
	"name":         query.KindString,
	"email":        query.KindString,
	"pendingTasks": query.KindStringList,
	"dateCreated":  query.KindTime,
}

// UserStore defines the interface for user data persistence.
type UserStore interface {
	IDValidator

	// Find returns the users matching q, sorted, skipped and limited as q
	// specifies. The projection of q is not applied.
	Find(ctx context.Context, q *query.Query) ([]*domain.User, error)

	// Count returns the number of users matching f.
	Count(ctx context.Context, f query.Filter) (int64, error)

	// GetByID retrieves a user by id.
	// Returns ErrUserNotFound if the user does not exist or id is malformed.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	// Returns ErrUserNotFound if no user has the email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Create inserts user and sets user.ID.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// Update replaces the name, email and pending tasks of an existing user.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if another user already has the email.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id string) error

	// AddPendingTask appends taskID to the user's pending tasks unless it is
	// already present. A missing user is not an error.
	AddPendingTask(ctx context.Context, userID, taskID string) error

	// RemovePendingTask removes taskID from the user's pending tasks. A
	// missing user or task id is not an error.
	RemovePendingTask(ctx context.Context, userID, taskID string) error
}
