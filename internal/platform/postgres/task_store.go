package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface using PostgreSQL
type PostgresTaskStore struct {
	db     DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgresTaskStore.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// ValidID implements store.IDValidator.
func (s *PostgresTaskStore) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		id       uuid.UUID
		task     domain.Task
		deadline time.Time
		created  time.Time
	)
	err := row.Scan(
		&id,
		&task.Name,
		&task.Description,
		&deadline,
		&task.Completed,
		&task.AssignedUser,
		&task.AssignedUserName,
		&created,
	)
	if err != nil {
		return nil, err
	}
	task.ID = id.String()
	task.Deadline = deadline.UTC()
	task.DateCreated = created.UTC()
	return &task, nil
}

// Find implements store.TaskStore.Find.
func (s *PostgresTaskStore) Find(ctx context.Context, q *query.Query) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sqlQuery, args, err := selectQuery(tasksTable, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "find", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "find", "row scan failed", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "find", "row iteration failed", err)
	}

	return tasks, nil
}

// Count implements store.TaskStore.Count.
func (s *PostgresTaskStore) Count(ctx context.Context, f query.Filter) (int64, error) {
	sqlQuery, args, err := countQuery(tasksTable, f)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&n); err != nil {
		return 0, store.NewStoreError("task", "count", "count failed", err)
	}
	return n, nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, store.ErrTaskNotFound
	}

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM tasks WHERE id = $1", tasksTable.selectList), uid)
	task, err := scanTask(row)
	if err != nil {
		mapped := MapError(err, store.ErrTaskNotFound)
		if mapped == store.ErrTaskNotFound {
			return nil, mapped
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.String("task_id", id),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "get", "lookup failed", mapped)
	}
	return task, nil
}

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	id := uuid.New()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, name, description, deadline, completed,
			assigned_user, assigned_user_name, date_created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		id,
		task.Name,
		task.Description,
		task.Deadline,
		task.Completed,
		task.AssignedUser,
		task.AssignedUserName,
		task.DateCreated,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert task",
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "create", "insert failed", MapError(err, store.ErrTaskNotFound))
	}

	task.ID = id.String()
	return nil
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	uid, err := uuid.Parse(task.ID)
	if err != nil {
		return store.ErrTaskNotFound
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET name = $2, description = $3, deadline = $4, completed = $5,
			assigned_user = $6, assigned_user_name = $7
		WHERE id = $1
	`,
		uid,
		task.Name,
		task.Description,
		task.Deadline,
		task.Completed,
		task.AssignedUser,
		task.AssignedUserName,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			slog.String("task_id", task.ID),
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "update", "write failed", err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return store.ErrTaskNotFound
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", uid)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.String("task_id", id),
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "delete", "delete failed", err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// UnassignUser implements store.TaskStore.UnassignUser.
func (s *PostgresTaskStore) UnassignUser(ctx context.Context, userID string, keep []string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET assigned_user = '', assigned_user_name = $2
		WHERE assigned_user = $1 AND NOT (id::text = ANY($3::text[]))
	`, userID, domain.Unassigned, canonicalIDs(keep))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to unassign tasks",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("task", "unassign", "bulk update failed", err)
	}
	return result.RowsAffected()
}

// AssignAll implements store.TaskStore.AssignAll.
func (s *PostgresTaskStore) AssignAll(ctx context.Context, ids []string, userID, userName string) (int64, error) {
	canonical := canonicalIDs(ids)
	if len(canonical) == 0 {
		return 0, nil
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET assigned_user = $1, assigned_user_name = $2
		WHERE id::text = ANY($3::text[])
	`, userID, userName, canonical)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to assign tasks",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("task", "assign", "bulk update failed", err)
	}
	return result.RowsAffected()
}

// canonicalIDs returns the valid ids in ids in the form id::text renders.
func canonicalIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if uid, err := uuid.Parse(id); err == nil {
			out = append(out, uid.String())
		}
	}
	return out
}
