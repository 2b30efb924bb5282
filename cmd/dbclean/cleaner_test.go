package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/api"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/platform/memory"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/service"
)

func TestCleaner_EmptiesEveryResource(t *testing.T) {
	log, _ := logger.GetTestLogger(t)
	ctx := context.Background()

	st := memory.New()
	users := service.NewUserService(st.Users(), st.Tasks(), nil, log)
	tasks := service.NewTaskService(st.Tasks(), st.Users(), nil, log)

	for i := 0; i < 3; i++ {
		user, err := users.Create(ctx, service.UserInput{Name: "u", Email: fmt.Sprintf("u%d@example.com", i)})
		require.NoError(t, err)
		for j := 0; j < 60; j++ {
			_, err := tasks.Create(ctx, service.TaskInput{
				Name:         "t",
				Deadline:     "2030-01-01",
				AssignedUser: user.ID,
			})
			require.NoError(t, err)
		}
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		api.RegisterRoutes(r, api.NewTaskHandler(tasks, log), api.NewUserHandler(users, log))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := newCleaner(srv.URL, &http.Client{Timeout: 5 * time.Second}, 4, log)
	require.NoError(t, c.Run(ctx))

	n, err := st.Users().Count(ctx, query.Filter{})
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = st.Tasks().Count(ctx, query.Filter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCleaner_StopsWhenNothingCanBeDeleted(t *testing.T) {
	log, _ := logger.GetTestLogger(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"message":"OK","data":[{"_id":"a"}]}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newCleaner(srv.URL, srv.Client(), 2, log)
	err := c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users")
}

func TestParseFlags(t *testing.T) {
	var out bytes.Buffer

	opts, err := parseFlags([]string{"-u", "example.com", "-p", "443", "-https"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com:443", opts.baseURL())

	opts, err = parseFlags(nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000", opts.baseURL())

	_, err = parseFlags([]string{"-p", "not-a-port"}, &out)
	assert.Error(t, err)
}

func TestRunPool(t *testing.T) {
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}

	var mu sync.Mutex
	seen := map[string]bool{}
	n := runPool(context.Background(), 5, ids, func(_ context.Context, id string) error {
		mu.Lock()
		defer mu.Unlock()
		seen[id] = true
		if id == "7" {
			return errors.New("boom")
		}
		return nil
	})

	assert.Equal(t, 49, n)
	assert.Len(t, seen, 50)
}

func TestRunPool_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := runPool(ctx, 0, []string{"a", "b", "c"}, func(context.Context, string) error { return nil })
	assert.LessOrEqual(t, n, 3)
}
