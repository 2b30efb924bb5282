package memory

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, p query.Params, schema query.Schema) *query.Query {
	t.Helper()
	q, err := query.Compile(p, schema)
	require.NoError(t, err)
	return q
}

func mustCreateUser(t *testing.T, users *UserStore, name, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(name, email)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func mustCreateTask(t *testing.T, tasks *TaskStore, name string, deadline time.Time) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(name, "", deadline, false)
	require.NoError(t, err)
	require.NoError(t, tasks.Create(context.Background(), task))
	return task
}

func TestUserStore_CreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := New().Users()

	user := mustCreateUser(t, users, "Ada", "ada@example.com")
	assert.True(t, users.ValidID(user.ID))

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, []string{}, got.PendingTasks)

	byEmail, err := users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = users.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserStore_EmailUnique(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := New().Users()

	first := mustCreateUser(t, users, "Ada", "ada@example.com")
	second := mustCreateUser(t, users, "Bob", "bob@example.com")

	dup, err := domain.NewUser("Eve", "ada@example.com")
	require.NoError(t, err)
	assert.ErrorIs(t, users.Create(ctx, dup), store.ErrEmailExists)

	second.Email = first.Email
	assert.ErrorIs(t, users.Update(ctx, second), store.ErrEmailExists)

	// keeping one's own email is not a conflict
	first.Name = "Ada L."
	assert.NoError(t, users.Update(ctx, first))
}

func TestUserStore_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := New().Users()

	user := mustCreateUser(t, users, "Ada", "ada@example.com")
	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	got.PendingTasks = append(got.PendingTasks, "x")
	got.Name = "changed"

	again, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.Name)
	assert.Empty(t, again.PendingTasks)
}

func TestUserStore_PendingTasks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := New().Users()
	user := mustCreateUser(t, users, "Ada", "ada@example.com")

	require.NoError(t, users.AddPendingTask(ctx, user.ID, "t1"))
	require.NoError(t, users.AddPendingTask(ctx, user.ID, "t2"))
	require.NoError(t, users.AddPendingTask(ctx, user.ID, "t1"))

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, got.PendingTasks)

	require.NoError(t, users.RemovePendingTask(ctx, user.ID, "t1"))
	require.NoError(t, users.RemovePendingTask(ctx, user.ID, "missing"))
	got, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, got.PendingTasks)

	// unknown users are ignored
	assert.NoError(t, users.AddPendingTask(ctx, "bogus", "t1"))
	assert.NoError(t, users.RemovePendingTask(ctx, "00000000-0000-0000-0000-000000000000", "t1"))
}

func TestUserStore_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := New().Users()
	user := mustCreateUser(t, users, "Ada", "ada@example.com")

	require.NoError(t, users.Delete(ctx, user.ID))
	assert.ErrorIs(t, users.Delete(ctx, user.ID), store.ErrUserNotFound)

	all, err := users.Find(ctx, compile(t, query.Params{}, store.UserSchema))
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUserStore_FindFilterSortPage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := New().Users()
	mustCreateUser(t, users, "Carol", "carol@example.com")
	mustCreateUser(t, users, "Ada", "ada@example.com")
	bob := mustCreateUser(t, users, "Bob", "bob@example.com")
	require.NoError(t, users.AddPendingTask(ctx, bob.ID, "t9"))

	names := func(list []*domain.User) []string {
		out := make([]string, 0, len(list))
		for _, u := range list {
			out = append(out, u.Name)
		}
		return out
	}

	all, err := users.Find(ctx, compile(t, query.Params{}, store.UserSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"Carol", "Ada", "Bob"}, names(all))

	sorted, err := users.Find(ctx, compile(t, query.Params{
		Sort: []query.SortKey{{Field: "name", Value: float64(1)}},
	}, store.UserSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Bob", "Carol"}, names(sorted))

	paged, err := users.Find(ctx, compile(t, query.Params{
		Sort:  []query.SortKey{{Field: "name", Value: float64(-1)}},
		Skip:  1,
		Limit: 1,
	}, store.UserSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, names(paged))

	pending, err := users.Find(ctx, compile(t, query.Params{
		Where: map[string]any{"pendingTasks": "t9"},
	}, store.UserSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, names(pending))

	past, err := users.Find(ctx, compile(t, query.Params{Skip: 10}, store.UserSchema))
	require.NoError(t, err)
	assert.Empty(t, past)

	n, err := users.Count(ctx, compile(t, query.Params{
		Where: map[string]any{"name": map[string]any{"$in": []any{"Ada", "Carol"}}},
	}, store.UserSchema).Filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestTaskStore_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tasks := New().Tasks()
	deadline := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	task := mustCreateTask(t, tasks, "write", deadline)
	assert.True(t, tasks.ValidID(task.ID))

	got, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Unassigned, got.AssignedUserName)
	assert.Equal(t, deadline, got.Deadline)

	got.Name = "rewrite"
	got.Completed = true
	got.DateCreated = time.Time{}
	require.NoError(t, tasks.Update(ctx, got))

	updated, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "rewrite", updated.Name)
	assert.True(t, updated.Completed)
	assert.Equal(t, task.DateCreated, updated.DateCreated)

	require.NoError(t, tasks.Delete(ctx, task.ID))
	_, err = tasks.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.ErrorIs(t, tasks.Update(ctx, updated), store.ErrTaskNotFound)
}

func TestTaskStore_FindByDeadlineAndCompleted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tasks := New().Tasks()
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	mustCreateTask(t, tasks, "late", base.Add(48*time.Hour))
	early := mustCreateTask(t, tasks, "early", base)
	early.Completed = true
	require.NoError(t, tasks.Update(ctx, early))
	mustCreateTask(t, tasks, "middle", base.Add(24*time.Hour))

	got, err := tasks.Find(ctx, compile(t, query.Params{
		Where: map[string]any{"completed": false},
		Sort:  []query.SortKey{{Field: "deadline", Value: float64(1)}},
	}, store.TaskSchema))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "middle", got[0].Name)
	assert.Equal(t, "late", got[1].Name)

	n, err := tasks.Count(ctx, compile(t, query.Params{
		Where: map[string]any{"deadline": map[string]any{"$gte": base.Add(time.Hour).Format(time.RFC3339)}},
	}, store.TaskSchema).Filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestTaskStore_UnassignAndAssignAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()
	tasks := s.Tasks()
	users := s.Users()
	user := mustCreateUser(t, users, "Ada", "ada@example.com")
	deadline := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	a := mustCreateTask(t, tasks, "a", deadline)
	b := mustCreateTask(t, tasks, "b", deadline)
	c := mustCreateTask(t, tasks, "c", deadline)

	n, err := tasks.AssignAll(ctx, []string{a.ID, b.ID, "bogus"}, user.ID, user.Name)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = tasks.UnassignUser(ctx, user.ID, []string{b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	gotA, err := tasks.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, gotA.IsAssigned())
	assert.Equal(t, domain.Unassigned, gotA.AssignedUserName)

	gotB, err := tasks.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotB.AssignedUser)
	assert.Equal(t, "Ada", gotB.AssignedUserName)

	gotC, err := tasks.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, gotC.IsAssigned())
}
