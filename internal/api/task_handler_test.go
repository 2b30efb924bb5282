package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/service"
)

func TestTaskAssignmentLifecycle(t *testing.T) {
	a := newTestAPI(t)
	user := a.createUser(t, "Ann", "ann@example.com")

	w, env := a.do(t, http.MethodPost, "/api/tasks", map[string]any{
		"name":     "A",
		"deadline": "2030-01-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, MsgTaskCreated, env.Message)
	task := decodeData[domain.Task](t, env)
	assert.False(t, task.Completed)
	assert.Empty(t, task.AssignedUser)
	assert.Equal(t, domain.Unassigned, task.AssignedUserName)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), task.Deadline)

	w, env = a.do(t, http.MethodPut, "/api/tasks/"+task.ID, map[string]any{
		"name":         "A",
		"deadline":     "2030-01-01",
		"assignedUser": user.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, MsgTaskUpdated, env.Message)
	updated := decodeData[domain.Task](t, env)
	assert.Equal(t, user.ID, updated.AssignedUser)
	assert.Equal(t, "Ann", updated.AssignedUserName)

	w, env = a.do(t, http.MethodGet, "/api/users/"+user.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MsgOK, env.Message)
	assert.Equal(t, []string{task.ID}, decodeData[domain.User](t, env).PendingTasks)

	w, _ = a.do(t, http.MethodDelete, "/api/users/"+user.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())

	w, env = a.do(t, http.MethodGet, "/api/tasks/"+task.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeData[domain.Task](t, env)
	assert.Empty(t, got.AssignedUser)
	assert.Equal(t, domain.Unassigned, got.AssignedUserName)
}

func TestCreateTask_Validation(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name    string
		body    any
		message string
	}{
		{
			name:    "missing name",
			body:    map[string]any{"deadline": "2030-01-01"},
			message: service.MsgTaskFieldsRequired,
		},
		{
			name:    "missing deadline",
			body:    map[string]any{"name": "A"},
			message: service.MsgTaskFieldsRequired,
		},
		{
			name:    "unparseable deadline",
			body:    map[string]any{"name": "A", "deadline": "not a date"},
			message: service.MsgTaskFieldsRequired,
		},
		{
			name:    "malformed assignee",
			body:    map[string]any{"name": "A", "deadline": "2030-01-01", "assignedUser": "nope"},
			message: service.MsgAssigneeInvalid,
		},
		{
			name:    "unknown assignee",
			body:    map[string]any{"name": "A", "deadline": "2030-01-01", "assignedUser": uuid.NewString()},
			message: service.MsgAssigneeNotFound,
		},
		{
			name:    "malformed body",
			body:    `{"name": "A",`,
			message: MsgInvalidRequest,
		},
		{
			name:    "wrongly typed name",
			body:    `{"name": 7, "deadline": "2030-01-01"}`,
			message: MsgInvalidRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, env := a.do(t, http.MethodPost, "/api/tasks", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.message, env.Message)
			assert.JSONEq(t, `{}`, string(env.Data))
		})
	}

	n, err := a.store.Tasks().Count(context.Background(), query.Filter{})
	require.NoError(t, err)
	assert.Zero(t, n, "rejected creations must not persist a task")
}

func TestCreateTask_AssignedPendingTask(t *testing.T) {
	a := newTestAPI(t)
	user := a.createUser(t, "Ann", "ann@example.com")

	task := a.createTask(t, map[string]any{
		"name":             "Report",
		"description":      "quarterly",
		"deadline":         1893456000000,
		"assignedUser":     user.ID,
		"assignedUserName": "someone else",
		"dateCreated":      "1999-01-01",
	})
	assert.Equal(t, "Ann", task.AssignedUserName, "the assignee's name overrides the supplied one")
	assert.Equal(t, "quarterly", task.Description)
	assert.Equal(t, time.UnixMilli(1893456000000).UTC(), task.Deadline)
	assert.WithinDuration(t, time.Now(), task.DateCreated, time.Minute)

	done := a.createTask(t, map[string]any{
		"name":         "Done",
		"deadline":     "2030-01-01",
		"completed":    "true",
		"assignedUser": user.ID,
	})
	assert.True(t, done.Completed)

	_, env := a.do(t, http.MethodGet, "/api/users/"+user.ID, nil)
	assert.Equal(t, []string{task.ID}, decodeData[domain.User](t, env).PendingTasks)
}

func TestCreateTask_FormEncoded(t *testing.T) {
	a := newTestAPI(t)

	w, env := a.do(t, http.MethodPost, "/api/tasks", url.Values{
		"name":      {"Form task"},
		"deadline":  {"1893456000000"},
		"completed": {"1"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	task := decodeData[domain.Task](t, env)
	assert.Equal(t, "Form task", task.Name)
	assert.True(t, task.Completed)
	assert.Equal(t, time.UnixMilli(1893456000000).UTC(), task.Deadline)
}

func TestGetTask(t *testing.T) {
	a := newTestAPI(t)
	task := a.createTask(t, map[string]any{"name": "A", "deadline": "2030-01-01"})

	t.Run("found", func(t *testing.T) {
		w, env := a.do(t, http.MethodGet, "/api/tasks/"+task.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, task.ID, decodeData[domain.Task](t, env).ID)
	})

	t.Run("select", func(t *testing.T) {
		target := "/api/tasks/" + task.ID + "?" + listQuery(map[string]string{"select": `{"name":1}`})
		w, env := a.do(t, http.MethodGet, target, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]any{"_id": task.ID, "name": "A"}, decodeData[map[string]any](t, env))
	})

	t.Run("mixed select", func(t *testing.T) {
		target := "/api/tasks/" + task.ID + "?" + listQuery(map[string]string{"select": `{"name":1,"completed":0}`})
		w, env := a.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.True(t, strings.HasPrefix(env.Message, "invalid query"), env.Message)
	})

	for name, id := range map[string]string{"malformed id": "abc", "unknown id": uuid.NewString()} {
		t.Run(name, func(t *testing.T) {
			w, env := a.do(t, http.MethodGet, "/api/tasks/"+id, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, MsgTaskNotFound, env.Message)
			assert.JSONEq(t, `{}`, string(env.Data))
		})
	}
}

func TestUpdateTask_MalformedIDBeforeBody(t *testing.T) {
	a := newTestAPI(t)

	for name, body := range map[string]any{
		"empty object":     map[string]any{},
		"missing deadline": map[string]any{"name": "A"},
		"malformed":        `{"name":`,
	} {
		t.Run(name, func(t *testing.T) {
			w, env := a.do(t, http.MethodPut, "/api/tasks/not-an-id", body)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, MsgTaskNotFound, env.Message)
		})
	}
}

func TestTaskDeadlineMustBeEncodable(t *testing.T) {
	a := newTestAPI(t)
	task := a.createTask(t, map[string]any{"name": "A", "deadline": "2030-01-01"})

	deadlines := map[string]any{
		"past year 9999":   float64(8e15),
		"zero time string": "0001-01-01T00:00:00Z",
		"zero time millis": float64(-62135596800000),
	}
	for name, deadline := range deadlines {
		t.Run(name, func(t *testing.T) {
			body := map[string]any{"name": "far", "deadline": deadline}

			w, env := a.do(t, http.MethodPost, "/api/tasks", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, service.MsgTaskFieldsRequired, env.Message)

			w, env = a.do(t, http.MethodPut, "/api/tasks/"+task.ID, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, service.MsgTaskFieldsRequired, env.Message)
		})
	}

	w, env := a.do(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decodeData[[]domain.Task](t, env)
	require.Len(t, tasks, 1)
	assert.Equal(t, "A", tasks[0].Name)
}

func TestUpdateTask(t *testing.T) {
	a := newTestAPI(t)
	ann := a.createUser(t, "Ann", "ann@example.com")
	bob := a.createUser(t, "Bob", "bob@example.com")
	task := a.createTask(t, map[string]any{"name": "A", "deadline": "2030-01-01", "assignedUser": ann.ID})

	pending := func(id string) []string {
		_, env := a.do(t, http.MethodGet, "/api/users/"+id, nil)
		return decodeData[domain.User](t, env).PendingTasks
	}

	t.Run("stale assignee name", func(t *testing.T) {
		w, env := a.do(t, http.MethodPut, "/api/tasks/"+task.ID, map[string]any{
			"name":             "A",
			"deadline":         "2030-01-01",
			"assignedUser":     bob.ID,
			"assignedUserName": "Robert",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, service.MsgAssigneeNameMismatch, env.Message)
		assert.Equal(t, []string{task.ID}, pending(ann.ID))
	})

	t.Run("reassign", func(t *testing.T) {
		w, env := a.do(t, http.MethodPut, "/api/tasks/"+task.ID, map[string]any{
			"name":             "A2",
			"deadline":         "2031-06-01",
			"assignedUser":     bob.ID,
			"assignedUserName": "Bob",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decodeData[domain.Task](t, env)
		assert.Equal(t, "A2", got.Name)
		assert.Equal(t, task.DateCreated, got.DateCreated)
		assert.Empty(t, pending(ann.ID))
		assert.Equal(t, []string{task.ID}, pending(bob.ID))
	})

	t.Run("complete", func(t *testing.T) {
		w, _ := a.do(t, http.MethodPut, "/api/tasks/"+task.ID, map[string]any{
			"name":         "A2",
			"deadline":     "2031-06-01",
			"assignedUser": bob.ID,
			"completed":    true,
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, pending(bob.ID))
	})

	t.Run("missing fields", func(t *testing.T) {
		w, env := a.do(t, http.MethodPut, "/api/tasks/"+task.ID, map[string]any{"name": "A"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, service.MsgTaskFieldsRequired, env.Message)
	})

	t.Run("unknown task", func(t *testing.T) {
		w, env := a.do(t, http.MethodPut, "/api/tasks/"+uuid.NewString(), map[string]any{
			"name":     "A",
			"deadline": "2030-01-01",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, MsgTaskNotFound, env.Message)
	})
}

func TestDeleteTask(t *testing.T) {
	a := newTestAPI(t)
	user := a.createUser(t, "Ann", "ann@example.com")
	task := a.createTask(t, map[string]any{"name": "A", "deadline": "2030-01-01", "assignedUser": user.ID})

	w, _ := a.do(t, http.MethodDelete, "/api/tasks/"+task.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())

	_, env := a.do(t, http.MethodGet, "/api/users/"+user.ID, nil)
	assert.Empty(t, decodeData[domain.User](t, env).PendingTasks)

	w, env = a.do(t, http.MethodDelete, "/api/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, MsgTaskNotFound, env.Message)

	w, _ = a.do(t, http.MethodDelete, "/api/tasks/not-an-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListTasks(t *testing.T) {
	a := newTestAPI(t)
	ctx := context.Background()
	deadline := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 105; i++ {
		task, err := domain.NewTask("task", "", deadline.Add(time.Duration(i)*time.Hour), i%5 == 0)
		require.NoError(t, err)
		require.NoError(t, a.store.Tasks().Create(ctx, task))
	}

	list := func(t *testing.T, params map[string]string) (int, envelope) {
		w, env := a.do(t, http.MethodGet, "/api/tasks?"+listQuery(params), nil)
		return w.Code, env
	}

	t.Run("default limit", func(t *testing.T) {
		code, env := list(t, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, MsgOK, env.Message)
		assert.Len(t, decodeData[[]domain.Task](t, env), int(query.DefaultTaskLimit))
	})

	t.Run("explicit limit", func(t *testing.T) {
		_, env := list(t, map[string]string{"limit": "7", "skip": "100"})
		assert.Len(t, decodeData[[]domain.Task](t, env), 5)
	})

	t.Run("count ignores paging", func(t *testing.T) {
		_, env := list(t, map[string]string{"count": "true", "limit": "3", "skip": "1"})
		assert.Equal(t, 105, decodeData[int](t, env))
	})

	t.Run("count with filter", func(t *testing.T) {
		_, env := list(t, map[string]string{"count": "true", "where": `{"completed": true}`})
		assert.Equal(t, 21, decodeData[int](t, env))
	})

	t.Run("count must be the literal true", func(t *testing.T) {
		_, env := list(t, map[string]string{"count": "1", "limit": "2"})
		assert.Len(t, decodeData[[]domain.Task](t, env), 2)
	})

	t.Run("sort and select", func(t *testing.T) {
		_, env := list(t, map[string]string{
			"sort":   `{"deadline": -1}`,
			"select": `{"deadline": 1, "_id": 0}`,
			"limit":  "1",
		})
		items := decodeData[[]map[string]any](t, env)
		require.Len(t, items, 1)
		assert.Equal(t, map[string]any{"deadline": "2030-01-05T08:00:00Z"}, items[0])
	})

	t.Run("malformed where is ignored", func(t *testing.T) {
		_, env := list(t, map[string]string{"where": `{not json`, "count": "true"})
		assert.Equal(t, 105, decodeData[int](t, env))
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		code, env := list(t, map[string]string{"where": `{"colour": "red"}`})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.True(t, strings.HasPrefix(env.Message, "invalid query"), env.Message)
		assert.JSONEq(t, `{}`, string(env.Data))
	})
}

func TestListTasks_EmptyIsArray(t *testing.T) {
	a := newTestAPI(t)

	w, env := a.do(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
