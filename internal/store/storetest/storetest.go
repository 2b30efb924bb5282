// Package storetest holds behavioral tests every store backend must pass.
// Backends call Run from their own tests with a factory producing empty
// stores.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Factory returns a pair of empty stores sharing one backend. It may
// register cleanup with t.
type Factory func(t *testing.T) (store.UserStore, store.TaskStore)

// Run executes the suite against the stores produced by factory.
func Run(t *testing.T, factory Factory) {
	t.Run("UserCreateAndGet", func(t *testing.T) { testUserCreateAndGet(t, factory) })
	t.Run("UserEmailUnique", func(t *testing.T) { testUserEmailUnique(t, factory) })
	t.Run("UserUpdateAndDelete", func(t *testing.T) { testUserUpdateAndDelete(t, factory) })
	t.Run("UserPendingTasks", func(t *testing.T) { testUserPendingTasks(t, factory) })
	t.Run("UserFind", func(t *testing.T) { testUserFind(t, factory) })
	t.Run("TaskCRUD", func(t *testing.T) { testTaskCRUD(t, factory) })
	t.Run("TaskFind", func(t *testing.T) { testTaskFind(t, factory) })
	t.Run("TaskAssignment", func(t *testing.T) { testTaskAssignment(t, factory) })
	t.Run("MalformedIDs", func(t *testing.T) { testMalformedIDs(t, factory) })
}

// baseDeadline has millisecond precision so it survives every backend.
var baseDeadline = time.Date(2030, 3, 4, 5, 6, 7, 8_000_000, time.UTC)

func newUser(t *testing.T, users store.UserStore, name, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(name, email)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))
	require.NotEmpty(t, user.ID)
	return user
}

func newTask(t *testing.T, tasks store.TaskStore, name string, deadline time.Time) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(name, "about "+name, deadline, false)
	require.NoError(t, err)
	require.NoError(t, tasks.Create(context.Background(), task))
	require.NotEmpty(t, task.ID)
	return task
}

func compile(t *testing.T, p query.Params, schema query.Schema) *query.Query {
	t.Helper()
	q, err := query.Compile(p, schema)
	require.NoError(t, err)
	return q
}

func userNames(users []*domain.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Name)
	}
	return out
}

func taskNames(tasks []*domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Name)
	}
	return out
}

// missingID returns an id in the store's format that no entity has.
func missingUserID(t *testing.T, users store.UserStore) string {
	t.Helper()
	ctx := context.Background()
	user := newUser(t, users, "Ghost", "ghost@example.com")
	require.NoError(t, users.Delete(ctx, user.ID))
	return user.ID
}

func testUserCreateAndGet(t *testing.T, factory Factory) {
	ctx := context.Background()
	users, _ := factory(t)

	user := newUser(t, users, "Ada", "ada@example.com")
	assert.True(t, users.ValidID(user.ID))

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, []string{}, got.PendingTasks)
	assert.WithinDuration(t, user.DateCreated, got.DateCreated, time.Millisecond)

	byEmail, err := users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = users.GetByID(ctx, missingUserID(t, users))
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func testUserEmailUnique(t *testing.T, factory Factory) {
	ctx := context.Background()
	users, _ := factory(t)

	ada := newUser(t, users, "Ada", "ada@example.com")
	bob := newUser(t, users, "Bob", "bob@example.com")

	dup, err := domain.NewUser("Eve", "ada@example.com")
	require.NoError(t, err)
	assert.ErrorIs(t, users.Create(ctx, dup), store.ErrEmailExists)

	bob.Email = ada.Email
	assert.ErrorIs(t, users.Update(ctx, bob), store.ErrEmailExists)

	ada.Name = "Ada Lovelace"
	assert.NoError(t, users.Update(ctx, ada))
}

func testUserUpdateAndDelete(t *testing.T, factory Factory) {
	ctx := context.Background()
	users, _ := factory(t)

	user := newUser(t, users, "Ada", "ada@example.com")
	user.Name = "Ada L."
	user.Email = "lovelace@example.com"
	user.PendingTasks = []string{"t1", "t2"}
	require.NoError(t, users.Update(ctx, user))

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
	assert.Equal(t, "lovelace@example.com", got.Email)
	assert.Equal(t, []string{"t1", "t2"}, got.PendingTasks)

	require.NoError(t, users.Delete(ctx, user.ID))
	assert.ErrorIs(t, users.Delete(ctx, user.ID), store.ErrUserNotFound)

	user.Name = "again"
	assert.ErrorIs(t, users.Update(ctx, user), store.ErrUserNotFound)
}

func testUserPendingTasks(t *testing.T, factory Factory) {
	ctx := context.Background()
	users, _ := factory(t)
	user := newUser(t, users, "Ada", "ada@example.com")

	require.NoError(t, users.AddPendingTask(ctx, user.ID, "t1"))
	require.NoError(t, users.AddPendingTask(ctx, user.ID, "t2"))
	require.NoError(t, users.AddPendingTask(ctx, user.ID, "t1"))

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, got.PendingTasks)

	require.NoError(t, users.RemovePendingTask(ctx, user.ID, "t1"))
	require.NoError(t, users.RemovePendingTask(ctx, user.ID, "absent"))
	got, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, got.PendingTasks)

	missing := missingUserID(t, users)
	assert.NoError(t, users.AddPendingTask(ctx, missing, "t1"))
	assert.NoError(t, users.RemovePendingTask(ctx, missing, "t1"))
	assert.NoError(t, users.AddPendingTask(ctx, "malformed", "t1"))
}

func testUserFind(t *testing.T, factory Factory) {
	ctx := context.Background()
	users, _ := factory(t)
	newUser(t, users, "Carol", "carol@example.com")
	newUser(t, users, "Ada", "ada@example.com")
	bob := newUser(t, users, "Bob", "bob@example.com")
	require.NoError(t, users.AddPendingTask(ctx, bob.ID, "t9"))

	byName := []query.SortKey{{Field: "name", Value: float64(1)}}

	all, err := users.Find(ctx, compile(t, query.Params{Sort: byName}, store.UserSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Bob", "Carol"}, userNames(all))

	page, err := users.Find(ctx, compile(t, query.Params{
		Sort:  []query.SortKey{{Field: "name", Value: "desc"}},
		Skip:  1,
		Limit: 1,
	}, store.UserSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, userNames(page))

	pending, err := users.Find(ctx, compile(t, query.Params{
		Where: map[string]any{"pendingTasks": "t9"},
	}, store.UserSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, userNames(pending))

	byID, err := users.Find(ctx, compile(t, query.Params{
		Where: map[string]any{"_id": bob.ID},
	}, store.UserSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, userNames(byID))

	either, err := users.Find(ctx, compile(t, query.Params{
		Where: map[string]any{"$or": []any{
			map[string]any{"name": "Ada"},
			map[string]any{"email": "carol@example.com"},
		}},
		Sort: byName,
	}, store.UserSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Carol"}, userNames(either))

	n, err := users.Count(ctx, compile(t, query.Params{
		Where: map[string]any{"name": map[string]any{"$nin": []any{"Ada"}}},
	}, store.UserSchema).Filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	none, err := users.Find(ctx, compile(t, query.Params{Skip: 10}, store.UserSchema))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testTaskCRUD(t *testing.T, factory Factory) {
	ctx := context.Background()
	_, tasks := factory(t)

	task := newTask(t, tasks, "write", baseDeadline)
	assert.True(t, tasks.ValidID(task.ID))

	got, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "write", got.Name)
	assert.Equal(t, "about write", got.Description)
	assert.True(t, baseDeadline.Equal(got.Deadline), "deadline %v", got.Deadline)
	assert.False(t, got.Completed)
	assert.False(t, got.IsAssigned())
	assert.Equal(t, domain.Unassigned, got.AssignedUserName)

	got.Name = "rewrite"
	got.Completed = true
	got.Deadline = baseDeadline.Add(time.Hour)
	require.NoError(t, tasks.Update(ctx, got))

	updated, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "rewrite", updated.Name)
	assert.True(t, updated.Completed)
	assert.True(t, baseDeadline.Add(time.Hour).Equal(updated.Deadline))
	assert.WithinDuration(t, task.DateCreated, updated.DateCreated, time.Millisecond)

	require.NoError(t, tasks.Delete(ctx, task.ID))
	_, err = tasks.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.ErrorIs(t, tasks.Delete(ctx, task.ID), store.ErrTaskNotFound)
	assert.ErrorIs(t, tasks.Update(ctx, updated), store.ErrTaskNotFound)
}

func testTaskFind(t *testing.T, factory Factory) {
	ctx := context.Background()
	_, tasks := factory(t)

	newTask(t, tasks, "late", baseDeadline.Add(48*time.Hour))
	early := newTask(t, tasks, "early", baseDeadline)
	early.Completed = true
	require.NoError(t, tasks.Update(ctx, early))
	newTask(t, tasks, "middle", baseDeadline.Add(24*time.Hour))

	open, err := tasks.Find(ctx, compile(t, query.Params{
		Where: map[string]any{"completed": false},
		Sort:  []query.SortKey{{Field: "deadline", Value: float64(1)}},
	}, store.TaskSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"middle", "late"}, taskNames(open))

	after, err := tasks.Find(ctx, compile(t, query.Params{
		Where: map[string]any{"deadline": map[string]any{
			"$gt": float64(baseDeadline.Add(time.Hour).UnixMilli()),
		}},
		Sort:  []query.SortKey{{Field: "deadline", Value: float64(-1)}},
		Limit: 1,
	}, store.TaskSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, taskNames(after))

	n, err := tasks.Count(ctx, compile(t, query.Params{
		Where: map[string]any{"assignedUser": ""},
	}, store.TaskSchema).Filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func testTaskAssignment(t *testing.T, factory Factory) {
	ctx := context.Background()
	users, tasks := factory(t)
	user := newUser(t, users, "Ada", "ada@example.com")

	a := newTask(t, tasks, "a", baseDeadline)
	b := newTask(t, tasks, "b", baseDeadline)
	c := newTask(t, tasks, "c", baseDeadline)

	n, err := tasks.AssignAll(ctx, []string{a.ID, b.ID}, user.ID, user.Name)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assigned, err := tasks.Find(ctx, compile(t, query.Params{
		Where: map[string]any{"assignedUser": user.ID},
		Sort:  []query.SortKey{{Field: "name", Value: float64(1)}},
	}, store.TaskSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, taskNames(assigned))
	for _, task := range assigned {
		assert.Equal(t, "Ada", task.AssignedUserName)
	}

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

	n, err = tasks.UnassignUser(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	gotC, err := tasks.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, gotC.IsAssigned())
}

func testMalformedIDs(t *testing.T, factory Factory) {
	ctx := context.Background()
	users, tasks := factory(t)

	assert.False(t, users.ValidID("not-an-id"))
	assert.False(t, tasks.ValidID(""))

	_, err := users.GetByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	_, err = tasks.GetByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.ErrorIs(t, users.Delete(ctx, "not-an-id"), store.ErrUserNotFound)
	assert.ErrorIs(t, tasks.Delete(ctx, "not-an-id"), store.ErrTaskNotFound)

	byBadID := compile(t, query.Params{Where: map[string]any{"_id": "not-an-id"}}, store.TaskSchema)
	_, err = tasks.Find(ctx, byBadID)
	assert.ErrorIs(t, err, query.ErrInvalid)
	_, err = tasks.Count(ctx, byBadID.Filter)
	assert.ErrorIs(t, err, query.ErrInvalid)

	inBadIDs := compile(t, query.Params{
		Where: map[string]any{"$or": []any{map[string]any{"_id": map[string]any{"$in": []any{"nope"}}}}},
	}, store.UserSchema)
	_, err = users.Find(ctx, inBadIDs)
	assert.ErrorIs(t, err, query.ErrInvalid)
}
