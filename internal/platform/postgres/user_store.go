package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db      DBTX
	logger  *slog.Logger
	typeMap *pgtype.Map
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:      db,
		logger:  logger.With(slog.String("component", "user_store")),
		typeMap: pgtype.NewMap(),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// ValidID implements store.IDValidator.
func (s *PostgresUserStore) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresUserStore) scanUser(row rowScanner) (*domain.User, error) {
	var (
		id      uuid.UUID
		user    domain.User
		pending []string
		created time.Time
	)
	if err := row.Scan(&id, &user.Name, &user.Email, s.typeMap.SQLScanner(&pending), &created); err != nil {
		return nil, err
	}
	if pending == nil {
		pending = []string{}
	}
	user.ID = id.String()
	user.PendingTasks = pending
	user.DateCreated = created.UTC()
	return &user, nil
}

// Find implements store.UserStore.Find.
func (s *PostgresUserStore) Find(ctx context.Context, q *query.Query) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sqlQuery, args, err := selectQuery(usersTable, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		log.Error("failed to query users", slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "find", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	users := []*domain.User{}
	for rows.Next() {
		user, err := s.scanUser(rows)
		if err != nil {
			log.Error("failed to scan user row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("user", "find", "row scan failed", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating user rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "find", "row iteration failed", err)
	}

	return users, nil
}

// Count implements store.UserStore.Count.
func (s *PostgresUserStore) Count(ctx context.Context, f query.Filter) (int64, error) {
	sqlQuery, args, err := countQuery(usersTable, f)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&n); err != nil {
		return 0, store.NewStoreError("user", "count", "count failed", err)
	}
	return n, nil
}

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, store.ErrUserNotFound
	}
	return s.getOne(ctx, "id = $1", uid)
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, "email = $1", email)
}

func (s *PostgresUserStore) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE %s", usersTable.selectList, where), arg)
	user, err := s.scanUser(row)
	if err != nil {
		mapped := MapError(err, store.ErrUserNotFound)
		if mapped == store.ErrUserNotFound {
			return nil, mapped
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "get", "lookup failed", mapped)
	}
	return user, nil
}

// Create implements store.UserStore.Create.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	id := uuid.New()
	pending := user.PendingTasks
	if pending == nil {
		pending = []string{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, pending_tasks, date_created)
		VALUES ($1, $2, $3, $4, $5)
	`, id, user.Name, user.Email, pending, user.DateCreated)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("email already in use during user creation")
		} else {
			log.Error("failed to insert user", slog.String("error", err.Error()))
		}
		return store.NewStoreError("user", "create", "insert failed", MapError(err, store.ErrUserNotFound))
	}

	user.ID = id.String()
	user.PendingTasks = pending
	log.Debug("user created", slog.String("user_id", user.ID))
	return nil
}

// Update implements store.UserStore.Update.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	uid, err := uuid.Parse(user.ID)
	if err != nil {
		return store.ErrUserNotFound
	}
	pending := user.PendingTasks
	if pending == nil {
		pending = []string{}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = $2, email = $3, pending_tasks = $4
		WHERE id = $1
	`, uid, user.Name, user.Email, pending)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("email already in use during user update", slog.String("user_id", user.ID))
		} else {
			log.Error("failed to update user",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()))
		}
		return store.NewStoreError("user", "update", "write failed", MapError(err, store.ErrUserNotFound))
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete.
func (s *PostgresUserStore) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return store.ErrUserNotFound
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", uid)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete user",
			slog.String("user_id", id),
			slog.String("error", err.Error()))
		return store.NewStoreError("user", "delete", "delete failed", err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// AddPendingTask implements store.UserStore.AddPendingTask.
func (s *PostgresUserStore) AddPendingTask(ctx context.Context, userID, taskID string) error {
	return s.updatePending(ctx, userID, taskID, `
		UPDATE users SET pending_tasks = array_append(pending_tasks, $2::text)
		WHERE id = $1 AND NOT ($2::text = ANY(pending_tasks))
	`)
}

// RemovePendingTask implements store.UserStore.RemovePendingTask.
func (s *PostgresUserStore) RemovePendingTask(ctx context.Context, userID, taskID string) error {
	return s.updatePending(ctx, userID, taskID, `
		UPDATE users SET pending_tasks = array_remove(pending_tasks, $2::text)
		WHERE id = $1
	`)
}

func (s *PostgresUserStore) updatePending(ctx context.Context, userID, taskID, stmt string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, stmt, uid, taskID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update pending tasks",
			slog.String("user_id", userID),
			slog.String("task_id", taskID),
			slog.String("error", err.Error()))
		return store.NewStoreError("user", "update pending tasks", "write failed", err)
	}
	return nil
}
