package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

func TestCreateUser(t *testing.T) {
	a := newTestAPI(t)

	w, env := a.do(t, http.MethodPost, "/api/users", map[string]any{
		"name":         "Ann",
		"email":        "ann@example.com",
		"pendingTasks": []string{uuid.NewString()},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, MsgUserCreated, env.Message)

	user := decodeData[domain.User](t, env)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ann", user.Name)
	assert.Empty(t, user.PendingTasks, "pendingTasks starts empty")
}

func TestCreateUser_Validation(t *testing.T) {
	a := newTestAPI(t)
	a.createUser(t, "Ann", "ann@example.com")

	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"missing name", map[string]any{"email": "x@example.com"}, service.MsgUserFieldsRequired},
		{"missing email", map[string]any{"name": "X"}, service.MsgUserFieldsRequired},
		{"empty body", nil, service.MsgUserFieldsRequired},
		{"duplicate email", map[string]any{"name": "Other", "email": "ann@example.com"}, service.MsgEmailTakenOnCreate},
		{"not an object", `[1, 2]`, MsgInvalidRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, env := a.do(t, http.MethodPost, "/api/users", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.message, env.Message)
			assert.JSONEq(t, `{}`, string(env.Data))
		})
	}

	w, env := a.do(t, http.MethodGet, "/api/users?count=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeData[int](t, env))
}

func TestCreateUser_FormEncoded(t *testing.T) {
	a := newTestAPI(t)

	w, env := a.do(t, http.MethodPost, "/api/users", url.Values{
		"name":  {"Form User"},
		"email": {"form@example.com"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "form@example.com", decodeData[domain.User](t, env).Email)
}

func TestUpdateUser_ReconcilesTasks(t *testing.T) {
	a := newTestAPI(t)
	ann := a.createUser(t, "Ann", "ann@example.com")
	bob := a.createUser(t, "Bob", "bob@example.com")

	kept := a.createTask(t, map[string]any{"name": "kept", "deadline": "2030-01-01", "assignedUser": ann.ID})
	dropped := a.createTask(t, map[string]any{"name": "dropped", "deadline": "2030-01-01", "assignedUser": ann.ID})
	claimed := a.createTask(t, map[string]any{"name": "claimed", "deadline": "2030-01-01", "assignedUser": bob.ID})

	w, env := a.do(t, http.MethodPut, "/api/users/"+ann.ID, map[string]any{
		"name":         "Annie",
		"email":        "ann@example.com",
		"pendingTasks": []string{kept.ID, claimed.ID, kept.ID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, MsgUserUpdated, env.Message)

	user := decodeData[domain.User](t, env)
	assert.Equal(t, "Annie", user.Name)
	assert.Equal(t, []string{kept.ID, claimed.ID}, user.PendingTasks)

	getTask := func(id string) domain.Task {
		_, env := a.do(t, http.MethodGet, "/api/tasks/"+id, nil)
		return decodeData[domain.Task](t, env)
	}
	assert.Equal(t, "Annie", getTask(kept.ID).AssignedUserName)
	assert.Equal(t, ann.ID, getTask(claimed.ID).AssignedUser)
	assert.Equal(t, domain.Unassigned, getTask(dropped.ID).AssignedUserName)
	assert.Empty(t, getTask(dropped.ID).AssignedUser)

	_, env = a.do(t, http.MethodGet, "/api/users/"+bob.ID, nil)
	assert.Empty(t, decodeData[domain.User](t, env).PendingTasks)
}

func TestUpdateUser_LoneStringPendingTask(t *testing.T) {
	a := newTestAPI(t)
	ann := a.createUser(t, "Ann", "ann@example.com")
	task := a.createTask(t, map[string]any{"name": "A", "deadline": "2030-01-01"})

	w, env := a.do(t, http.MethodPut, "/api/users/"+ann.ID, url.Values{
		"name":         {"Ann"},
		"email":        {"ann@example.com"},
		"pendingTasks": {task.ID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{task.ID}, decodeData[domain.User](t, env).PendingTasks)
}

func TestUpdateUser_Validation(t *testing.T) {
	a := newTestAPI(t)
	ann := a.createUser(t, "Ann", "ann@example.com")
	a.createUser(t, "Bob", "bob@example.com")
	done := a.createTask(t, map[string]any{"name": "done", "deadline": "2030-01-01", "completed": true})

	tests := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{"missing email", map[string]any{"name": "Ann"}, service.MsgUserFieldsRequired},
		{"email of another user", map[string]any{"name": "Ann", "email": "bob@example.com"}, service.MsgEmailNotUnique},
		{
			"malformed pending task",
			map[string]any{"name": "Ann", "email": "ann@example.com", "pendingTasks": []any{"nope"}},
			service.MsgPendingTaskInvalid,
		},
		{
			"unknown pending task",
			map[string]any{"name": "Ann", "email": "ann@example.com", "pendingTasks": []any{uuid.NewString()}},
			service.MsgPendingTaskNotFound,
		},
		{
			"completed pending task",
			map[string]any{"name": "Ann", "email": "ann@example.com", "pendingTasks": []any{done.ID}},
			service.MsgPendingTaskCompleted,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, env := a.do(t, http.MethodPut, "/api/users/"+ann.ID, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.message, env.Message)
		})
	}

	w, env := a.do(t, http.MethodPut, "/api/users/"+ann.ID, map[string]any{
		"name":  "Ann B",
		"email": "ann@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code, "keeping one's own email is allowed")
	assert.Equal(t, "Ann B", decodeData[domain.User](t, env).Name)
}

func TestUserNotFound(t *testing.T) {
	a := newTestAPI(t)
	body := map[string]any{"name": "X", "email": "x@example.com"}

	for _, id := range []string{"not-an-id", uuid.NewString()} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			t.Run(fmt.Sprintf("%s %s", method, id), func(t *testing.T) {
				var reqBody any
				if method == http.MethodPut {
					reqBody = body
				}
				w, env := a.do(t, method, "/api/users/"+id, reqBody)
				assert.Equal(t, http.StatusNotFound, w.Code)
				assert.Equal(t, MsgUserNotFound, env.Message)
				assert.JSONEq(t, `{}`, string(env.Data))
			})
		}
	}
}

func TestUpdateUser_MalformedIDBeforeBody(t *testing.T) {
	a := newTestAPI(t)

	for name, body := range map[string]any{
		"empty object": map[string]any{},
		"missing name": map[string]any{"email": "x@example.com"},
		"malformed":    `{"name":`,
	} {
		t.Run(name, func(t *testing.T) {
			w, env := a.do(t, http.MethodPut, "/api/users/not-an-id", body)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, MsgUserNotFound, env.Message)
		})
	}
}

func TestListUsers_Unrestricted(t *testing.T) {
	a := newTestAPI(t)
	ctx := context.Background()

	for i := 0; i < 120; i++ {
		user, err := domain.NewUser(fmt.Sprintf("user %03d", i), fmt.Sprintf("u%d@example.com", i))
		require.NoError(t, err)
		require.NoError(t, a.store.Users().Create(ctx, user))
	}

	w, env := a.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]domain.User](t, env), 120)

	_, env = a.do(t, http.MethodGet, "/api/users?"+listQuery(map[string]string{
		"where": `{"name": {"$in": ["user 001", "user 002"]}}`,
		"sort":  `{"name": "desc"}`,
	}), nil)
	users := decodeData[[]domain.User](t, env)
	require.Len(t, users, 2)
	assert.Equal(t, "user 002", users[0].Name)
}
