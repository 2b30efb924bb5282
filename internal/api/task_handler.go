package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tasks cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /tasks requests.
// Listings are capped at 100 tasks unless the client sends a limit.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	params := query.Parse(r.URL.Query(), query.DefaultTaskLimit)

	result, err := h.tasks.List(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.Respond(w, r, http.StatusOK, MsgOK, result.Data())
}

// GetTask handles GET /tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.Get(r.Context(), pathID(r), selectParam(r))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.Respond(w, r, http.StatusOK, MsgOK, task)
}

// CreateTask handles POST /tasks requests
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req TaskRequest
	if !decodeRequest(w, r, &req, service.MsgTaskFieldsRequired, h.logger) {
		return
	}

	task, err := h.tasks.Create(r.Context(), req.toInput())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Debug("task created via API", slog.String("task_id", task.ID))
	shared.Respond(w, r, http.StatusCreated, MsgTaskCreated, task)
}

// UpdateTask handles PUT /tasks/{id} requests. Every mutable field is
// replaced. A malformed id is not found whatever the body holds.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if !h.tasks.ValidID(id) {
		HandleAPIError(w, r, store.ErrTaskNotFound)
		return
	}

	var req TaskRequest
	if !decodeRequest(w, r, &req, service.MsgTaskFieldsRequired, h.logger) {
		return
	}

	task, err := h.tasks.Update(r.Context(), id, req.toInput())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.Respond(w, r, http.StatusOK, MsgTaskUpdated, task)
}

// DeleteTask handles DELETE /tasks/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.Delete(r.Context(), pathID(r)); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.Respond(w, r, http.StatusNoContent, MsgTaskDeleted, nil)
}
