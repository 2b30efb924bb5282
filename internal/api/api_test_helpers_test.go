package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/platform/memory"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// envelope mirrors shared.Envelope with the data left undecoded.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testAPI struct {
	router http.Handler
	store  *memory.Store
	logs   *logger.TestLogBuffer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log, buf := logger.GetTestLogger(t)
	st := memory.New()

	tasks := service.NewTaskService(st.Tasks(), st.Users(), nil, log)
	users := service.NewUserService(st.Users(), st.Tasks(), nil, log)

	return &testAPI{
		router: newRouter(NewTaskHandler(tasks, log), NewUserHandler(users, log)),
		store:  st,
		logs:   buf,
	}
}

func newRouter(tasks *TaskHandler, users *UserHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, tasks, users)
	})
	return r
}

// do sends a request with body encoded as JSON. A string body is sent as is
// and url.Values are sent form-encoded.
func (a *testAPI) do(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	contentType := "application/json"
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	case url.Values:
		reader = strings.NewReader(b.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	}
	return w, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), "data: %s", string(env.Data))
	return v
}

func (a *testAPI) createUser(t *testing.T, name, email string) domain.User {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/api/users", map[string]any{"name": name, "email": email})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[domain.User](t, env)
}

func (a *testAPI) createTask(t *testing.T, body map[string]any) domain.Task {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/api/tasks", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[domain.Task](t, env)
}

func listQuery(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}
