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

// TaskInput carries the client-supplied fields of a task write. Deadline and
// Completed hold the loosely typed values the client sent.
type TaskInput struct {
	Name             string
	Description      string
	Deadline         any
	Completed        any
	AssignedUser     string
	AssignedUserName string
}

// TaskService provides task operations and keeps assignees' pending tasks in
// step with them.
type TaskService interface {
	// List runs a listing request against the task collection.
	List(ctx context.Context, p query.Params) (*ListResult, error)

	// Get returns the task with the given id with sel applied as a projection.
	// A malformed id is reported as store.ErrTaskNotFound.
	Get(ctx context.Context, id string, sel map[string]any) (any, error)

	// Create validates in, stores a new task and adds it to the assignee's
	// pending tasks when it is assigned and incomplete.
	Create(ctx context.Context, in TaskInput) (*domain.Task, error)

	// Update replaces every mutable field of a task and moves it between
	// pending-task lists as its assignee or completion changes.
	Update(ctx context.Context, id string, in TaskInput) (*domain.Task, error)

	// Delete removes a task and detaches it from its assignee.
	Delete(ctx context.Context, id string) error

	// ValidID reports whether id is well formed for the task store.
	ValidID(id string) bool
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	tasks   store.TaskStore
	users   store.UserStore
	metrics *Metrics
	logger  *slog.Logger
}

// NewTaskService creates a new TaskService. metrics may be nil.
func NewTaskService(
	tasks store.TaskStore,
	users store.UserStore,
	metrics *Metrics,
	logger *slog.Logger,
) TaskService {
	if tasks == nil || users == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("stores cannot be nil for TaskService")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		tasks:   tasks,
		users:   users,
		metrics: metrics,
		logger:  logger.With("component", "task_service"),
	}
}

// List runs a listing request against the task collection.
func (s *TaskServiceImpl) List(ctx context.Context, p query.Params) (*ListResult, error) {
	return list(ctx, p, store.TaskSchema, s.tasks.Count, s.tasks.Find)
}

// ValidID reports whether id is well formed for the task store.
func (s *TaskServiceImpl) ValidID(id string) bool {
	return s.tasks.ValidID(id)
}

// Get returns a single task with an optional projection.
func (s *TaskServiceImpl) Get(ctx context.Context, id string, sel map[string]any) (any, error) {
	if !s.tasks.ValidID(id) {
		return nil, store.ErrTaskNotFound
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	return project(task, sel, store.TaskSchema)
}

// Create stores a new task.
func (s *TaskServiceImpl) Create(ctx context.Context, in TaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := newTaskFromInput(in)
	if err != nil {
		log.Debug("rejected task creation", "error", err)
		return nil, err
	}

	if in.AssignedUser != "" {
		user, err := s.resolveAssignee(ctx, in.AssignedUser)
		if err != nil {
			log.Debug("rejected task assignee", "error", err, "assigned_user", in.AssignedUser)
			return nil, err
		}
		task.AssignTo(user)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.metrics.mutation("task", "create", err)
		log.Error("failed to save task", "error", err)
		return nil, NewServiceError("create task", "failed to save task", err)
	}

	if task.IsPending() {
		if err := s.users.AddPendingTask(ctx, task.AssignedUser, task.ID); err != nil {
			s.metrics.mutation("task", "create", err)
			log.Error("failed to add task to pending tasks",
				"error", err,
				"task_id", task.ID,
				"user_id", task.AssignedUser)
			return nil, NewServiceError("create task", "failed to update assignee", err)
		}
		s.metrics.cascade(CascadePendingAdd, 1)
	}

	s.metrics.mutation("task", "create", nil)
	log.Info("task created",
		"task_id", task.ID,
		"assigned_user", task.AssignedUser)

	return task, nil
}

// Update replaces the mutable fields of a task. The task is detached from its
// previous assignee before it is attached to the new one, and both happen
// before the task itself is written.
func (s *TaskServiceImpl) Update(ctx context.Context, id string, in TaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !s.tasks.ValidID(id) {
		return nil, store.ErrTaskNotFound
	}

	deadline, ok := domain.ParseTime(in.Deadline)
	if in.Name == "" || !ok {
		return nil, invalid("", MsgTaskFieldsRequired, ErrMissingFields)
	}

	old, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task for update: %w", err)
	}

	updated := *old
	updated.Name = in.Name
	updated.Description = in.Description
	updated.Deadline = deadline
	updated.Completed = domain.ParseCompleted(in.Completed)
	updated.Unassign()

	if in.AssignedUser != "" {
		user, err := s.resolveAssignee(ctx, in.AssignedUser)
		if err != nil {
			log.Debug("rejected task assignee", "error", err, "task_id", old.ID)
			return nil, err
		}
		if in.AssignedUserName != "" && in.AssignedUserName != user.Name {
			log.Debug("rejected stale assignee name", "task_id", old.ID, "user_id", user.ID)
			return nil, invalid("assignedUserName", MsgAssigneeNameMismatch, ErrAssigneeNameMismatch)
		}
		updated.AssignTo(user)
	}

	if old.IsAssigned() && (old.AssignedUser != updated.AssignedUser || updated.Completed) {
		if err := s.users.RemovePendingTask(ctx, old.AssignedUser, old.ID); err != nil {
			s.metrics.mutation("task", "update", err)
			log.Error("failed to detach task from previous assignee",
				"error", err,
				"task_id", old.ID,
				"user_id", old.AssignedUser)
			return nil, NewServiceError("update task", "failed to update previous assignee", err)
		}
		s.metrics.cascade(CascadePendingRemove, 1)
	}

	if updated.IsPending() {
		if err := s.users.AddPendingTask(ctx, updated.AssignedUser, old.ID); err != nil {
			s.metrics.mutation("task", "update", err)
			log.Error("failed to attach task to assignee",
				"error", err,
				"task_id", old.ID,
				"user_id", updated.AssignedUser)
			return nil, NewServiceError("update task", "failed to update assignee", err)
		}
		s.metrics.cascade(CascadePendingAdd, 1)
	}

	if err := s.tasks.Update(ctx, &updated); err != nil {
		s.metrics.mutation("task", "update", err)
		if !errors.Is(err, store.ErrTaskNotFound) {
			log.Error("failed to save task", "error", err, "task_id", old.ID)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.metrics.mutation("task", "update", nil)
	log.Info("task updated",
		"task_id", updated.ID,
		"assigned_user", updated.AssignedUser,
		"completed", updated.Completed)

	return &updated, nil
}

// Delete removes a task after detaching it from its assignee.
func (s *TaskServiceImpl) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !s.tasks.ValidID(id) {
		return store.ErrTaskNotFound
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to retrieve task for deletion: %w", err)
	}

	if task.IsAssigned() {
		if err := s.users.RemovePendingTask(ctx, task.AssignedUser, task.ID); err != nil {
			s.metrics.mutation("task", "delete", err)
			log.Error("failed to detach task from assignee",
				"error", err,
				"task_id", task.ID,
				"user_id", task.AssignedUser)
			return NewServiceError("delete task", "failed to update assignee", err)
		}
		s.metrics.cascade(CascadePendingRemove, 1)
	}

	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		s.metrics.mutation("task", "delete", err)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.metrics.mutation("task", "delete", nil)
	log.Info("task deleted", "task_id", task.ID)
	return nil
}

// resolveAssignee loads the user a task is being assigned to.
func (s *TaskServiceImpl) resolveAssignee(ctx context.Context, id string) (*domain.User, error) {
	if !s.users.ValidID(id) {
		return nil, invalid("assignedUser", MsgAssigneeInvalid, ErrInvalidAssignee)
	}

	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, invalid("assignedUser", MsgAssigneeNotFound, ErrAssigneeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve assignee: %w", err)
	}
	return user, nil
}

func newTaskFromInput(in TaskInput) (*domain.Task, error) {
	deadline, ok := domain.ParseTime(in.Deadline)
	if in.Name == "" || !ok {
		return nil, invalid("", MsgTaskFieldsRequired, ErrMissingFields)
	}
	return domain.NewTask(in.Name, in.Description, deadline, domain.ParseCompleted(in.Completed))
}
