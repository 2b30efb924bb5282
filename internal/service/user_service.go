package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserInput carries the client-supplied fields of a user write.
type UserInput struct {
	Name         string
	Email        string
	PendingTasks []string
}

// UserService provides user operations and keeps the tasks assigned to a
// user in step with its pending-task list.
type UserService interface {
	// List runs a listing request against the user collection.
	List(ctx context.Context, p query.Params) (*ListResult, error)

	// Get returns the user with the given id with sel applied as a projection.
	// A malformed id is reported as store.ErrUserNotFound.
	Get(ctx context.Context, id string, sel map[string]any) (any, error)

	// Create stores a new user with an empty pending-task list.
	Create(ctx context.Context, in UserInput) (*domain.User, error)

	// Update replaces a user's name, email and pending tasks, reassigning
	// tasks to match the new list.
	Update(ctx context.Context, id string, in UserInput) (*domain.User, error)

	// Delete removes a user and unassigns every task assigned to it.
	Delete(ctx context.Context, id string) error

	// ValidID reports whether id is well formed for the user store.
	ValidID(id string) bool
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users   store.UserStore
	tasks   store.TaskStore
	metrics *Metrics
	logger  *slog.Logger
}

// NewUserService creates a new UserService. metrics may be nil.
func NewUserService(
	users store.UserStore,
	tasks store.TaskStore,
	metrics *Metrics,
	logger *slog.Logger,
) UserService {
	if users == nil || tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("stores cannot be nil for UserService")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:   users,
		tasks:   tasks,
		metrics: metrics,
		logger:  logger.With("component", "user_service"),
	}
}

// List runs a listing request against the user collection.
func (s *UserServiceImpl) List(ctx context.Context, p query.Params) (*ListResult, error) {
	return list(ctx, p, store.UserSchema, s.users.Count, s.users.Find)
}

// ValidID reports whether id is well formed for the user store.
func (s *UserServiceImpl) ValidID(id string) bool {
	return s.users.ValidID(id)
}

// Get returns a single user with an optional projection.
func (s *UserServiceImpl) Get(ctx context.Context, id string, sel map[string]any) (any, error) {
	if !s.users.ValidID(id) {
		return nil, store.ErrUserNotFound
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return project(user, sel, store.UserSchema)
}

// Create stores a new user. Email uniqueness is checked up front and again by
// the store's unique index, which catches concurrent duplicates.
func (s *UserServiceImpl) Create(ctx context.Context, in UserInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if in.Name == "" || in.Email == "" {
		return nil, invalid("", MsgUserFieldsRequired, ErrMissingFields)
	}

	if err := s.checkEmailFree(ctx, in.Email, "", MsgEmailTakenOnCreate); err != nil {
		return nil, err
	}

	user, err := domain.NewUser(in.Name, in.Email)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.metrics.mutation("user", "create", err)
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to create user with existing email", "email", in.Email)
			return nil, invalid("email", MsgEmailInUse, store.ErrEmailExists)
		}
		log.Error("failed to save user", "error", err)
		return nil, NewServiceError("create user", "failed to save user", err)
	}

	s.metrics.mutation("user", "create", nil)
	log.Info("user created", "user_id", user.ID)

	return user, nil
}

// Update replaces a user's fields. Tasks dropped from the pending list are
// unassigned, tasks claimed from another user are removed from that user's
// list, and every listed task is assigned to this user before the user itself
// is written.
func (s *UserServiceImpl) Update(ctx context.Context, id string, in UserInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !s.users.ValidID(id) {
		return nil, store.ErrUserNotFound
	}

	if in.Name == "" || in.Email == "" {
		return nil, invalid("", MsgUserFieldsRequired, ErrMissingFields)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user for update: %w", err)
	}

	if err := s.checkEmailFree(ctx, in.Email, user.ID, MsgEmailNotUnique); err != nil {
		return nil, err
	}

	claimed, err := s.resolvePendingTasks(ctx, in.PendingTasks)
	if err != nil {
		log.Debug("rejected pending tasks", "error", err, "user_id", user.ID)
		return nil, err
	}

	pending := make([]string, 0, len(claimed))
	for _, task := range claimed {
		pending = append(pending, task.ID)
	}

	unassigned, err := s.tasks.UnassignUser(ctx, user.ID, pending)
	if err != nil {
		return nil, s.cascadeFailed(log, "unassign dropped tasks", user.ID, err)
	}
	s.metrics.cascade(CascadeTaskUnassign, unassigned)

	for _, task := range claimed {
		if !task.IsAssigned() || task.AssignedUser == user.ID {
			continue
		}
		if err := s.users.RemovePendingTask(ctx, task.AssignedUser, task.ID); err != nil {
			return nil, s.cascadeFailed(log, "detach claimed task", user.ID, err)
		}
		s.metrics.cascade(CascadePendingRemove, 1)
	}

	assigned, err := s.tasks.AssignAll(ctx, pending, user.ID, in.Name)
	if err != nil {
		return nil, s.cascadeFailed(log, "assign pending tasks", user.ID, err)
	}
	s.metrics.cascade(CascadeTaskAssign, assigned)

	user.Name = in.Name
	user.Email = in.Email
	user.PendingTasks = pending

	if err := s.users.Update(ctx, user); err != nil {
		s.metrics.mutation("user", "update", err)
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to update user to an existing email", "user_id", user.ID)
			return nil, invalid("email", MsgEmailInUse, store.ErrEmailExists)
		}
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to save user", "error", err, "user_id", user.ID)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.metrics.mutation("user", "update", nil)
	log.Info("user updated",
		"user_id", user.ID,
		"pending_tasks", len(pending),
		"tasks_unassigned", unassigned)

	return user, nil
}

// Delete unassigns the user's tasks, then removes the user.
func (s *UserServiceImpl) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !s.users.ValidID(id) {
		return store.ErrUserNotFound
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to retrieve user for deletion: %w", err)
	}

	unassigned, err := s.tasks.UnassignUser(ctx, user.ID, nil)
	if err != nil {
		s.metrics.mutation("user", "delete", err)
		log.Error("failed to unassign tasks of deleted user", "error", err, "user_id", user.ID)
		return NewServiceError("delete user", "failed to unassign tasks", err)
	}
	s.metrics.cascade(CascadeTaskUnassign, unassigned)

	if err := s.users.Delete(ctx, user.ID); err != nil {
		s.metrics.mutation("user", "delete", err)
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.metrics.mutation("user", "delete", nil)
	log.Info("user deleted", "user_id", user.ID, "tasks_unassigned", unassigned)
	return nil
}

// checkEmailFree rejects email with message when a user other than selfID
// has it.
func (s *UserServiceImpl) checkEmailFree(ctx context.Context, email, selfID, message string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing.ID == selfID {
		return nil
	}
	return invalid("email", message, ErrEmailTaken)
}

// resolvePendingTasks loads every task in ids, dropping repeats. Each entry
// must be a well-formed id of an existing, incomplete task.
func (s *UserServiceImpl) resolvePendingTasks(ctx context.Context, ids []string) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0, len(ids))
	seen := make(map[string]bool, len(ids))

	for _, id := range ids {
		if !s.tasks.ValidID(id) {
			return nil, invalid("pendingTasks", MsgPendingTaskInvalid, ErrInvalidPendingTask)
		}
		task, err := s.tasks.GetByID(ctx, id)
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, invalid("pendingTasks", MsgPendingTaskNotFound, ErrPendingTaskNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve pending task: %w", err)
		}
		if task.Completed {
			return nil, invalid("pendingTasks", MsgPendingTaskCompleted, ErrPendingTaskCompleted)
		}
		if seen[task.ID] {
			continue
		}
		seen[task.ID] = true
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *UserServiceImpl) cascadeFailed(log *slog.Logger, step, userID string, err error) error {
	s.metrics.mutation("user", "update", err)
	log.Error("user update cascade failed",
		"error", err,
		"step", step,
		"user_id", userID)
	return NewServiceError("update user", step, err)
}
