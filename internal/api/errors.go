package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Client-facing messages.
const (
	MsgOK             = "OK"
	MsgTaskCreated    = "Successfully created task"
	MsgTaskUpdated    = "Task updated successfully"
	MsgTaskDeleted    = "Task deleted successfully"
	MsgTaskNotFound   = "Task not found"
	MsgUserCreated    = "Successful user creation"
	MsgUserUpdated    = "User updated successfully"
	MsgUserDeleted    = "User deleted"
	MsgUserNotFound   = "User not found"
	MsgServerError    = "Server error"
	MsgInvalidRequest = "Invalid request format"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, query.ErrInvalid),
		store.IsDuplicateError(err),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgServerError
	}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message

	case errors.Is(err, store.ErrUserNotFound):
		return MsgUserNotFound

	case errors.Is(err, store.ErrTaskNotFound):
		return MsgTaskNotFound

	case errors.Is(err, query.ErrInvalid):
		return queryMessage(err)

	case errors.Is(err, store.ErrEmailExists):
		return service.MsgEmailInUse

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return MsgServerError
	}
}

// queryMessage returns the outermost message in err's chain that describes
// the rejected query, without any context added by the layers above it.
func queryMessage(err error) string {
	prefix := query.ErrInvalid.Error()
	for e := err; e != nil; e = errors.Unwrap(e) {
		if msg := e.Error(); strings.HasPrefix(msg, prefix) {
			return msg
		}
	}
	return prefix
}

// HandleAPIError writes the error response for err: the mapped status code
// with a sanitized message. The full error is only logged.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
