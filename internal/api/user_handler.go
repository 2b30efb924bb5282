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

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	if users == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users cannot be nil for UserHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}

	return &UserHandler{
		users:  users,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// ListUsers handles GET /users requests. Listings are unrestricted unless
// the client sends a positive limit.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := query.Parse(r.URL.Query(), query.NoLimit)

	result, err := h.users.List(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.Respond(w, r, http.StatusOK, MsgOK, result.Data())
}

// GetUser handles GET /users/{id} requests
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), pathID(r), selectParam(r))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.Respond(w, r, http.StatusOK, MsgOK, user)
}

// CreateUser handles POST /users requests. Any pendingTasks in the body are
// ignored.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req UserRequest
	if !decodeRequest(w, r, &req, service.MsgUserFieldsRequired, h.logger) {
		return
	}

	user, err := h.users.Create(r.Context(), req.toInput())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Debug("user created via API", slog.String("user_id", user.ID))
	shared.Respond(w, r, http.StatusCreated, MsgUserCreated, user)
}

// UpdateUser handles PUT /users/{id} requests. An omitted pendingTasks
// clears the user's pending tasks. A malformed id is not found whatever the
// body holds.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if !h.users.ValidID(id) {
		HandleAPIError(w, r, store.ErrUserNotFound)
		return
	}

	var req UserRequest
	if !decodeRequest(w, r, &req, service.MsgUserFieldsRequired, h.logger) {
		return
	}

	user, err := h.users.Update(r.Context(), id, req.toInput())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.Respond(w, r, http.StatusOK, MsgUserUpdated, user)
}

// DeleteUser handles DELETE /users/{id} requests
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), pathID(r)); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.Respond(w, r, http.StatusNoContent, MsgUserDeleted, nil)
}
