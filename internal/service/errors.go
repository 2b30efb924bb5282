package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Sentinel errors wrapped by the validation errors the services return.
// Callers check them with errors.Is; every one of them is reported as a
// client error together with the matching message below.
var (
	// ErrMissingFields indicates a required field is absent or unparseable.
	ErrMissingFields = errors.New("required fields missing")

	// ErrInvalidAssignee indicates assignedUser is not a well-formed user id.
	ErrInvalidAssignee = errors.New("assignee id is malformed")

	// ErrAssigneeNotFound indicates assignedUser refers to no user.
	ErrAssigneeNotFound = errors.New("assignee does not exist")

	// ErrAssigneeNameMismatch indicates a supplied assignedUserName differs
	// from the assignee's current name.
	ErrAssigneeNameMismatch = errors.New("assignee name does not match")

	// ErrInvalidPendingTask indicates a pendingTasks entry is not a
	// well-formed task id.
	ErrInvalidPendingTask = errors.New("pending task id is malformed")

	// ErrPendingTaskNotFound indicates a pendingTasks entry refers to no task.
	ErrPendingTaskNotFound = errors.New("pending task does not exist")

	// ErrPendingTaskCompleted indicates a pendingTasks entry refers to a
	// completed task.
	ErrPendingTaskCompleted = errors.New("pending task is completed")

	// ErrEmailTaken indicates another user already has the email.
	ErrEmailTaken = errors.New("email already in use")
)

// Client-facing messages for validation failures.
const (
	MsgTaskFieldsRequired   = "name and valid deadline must be included"
	MsgUserFieldsRequired   = "name or email must be included"
	MsgAssigneeInvalid      = "assignedUser is not a valid user id"
	MsgAssigneeNotFound     = "assignedUser does not refer to an existing user"
	MsgAssigneeNameMismatch = "assignedUserName does not match the assigned user's name"
	MsgPendingTaskInvalid   = "pendingTasks contains an invalid task id"
	MsgPendingTaskNotFound  = "pendingTasks contains a non-existent task"
	MsgPendingTaskCompleted = "pendingTasks contains a completed task"
	MsgEmailTakenOnCreate   = "change email to be unique"
	MsgEmailNotUnique       = "email must be unique"
	MsgEmailInUse           = "This email is already in use"
)

// ServiceError wraps an unexpected failure with the operation that hit it.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

func invalid(field, message string, err error) error {
	return domain.NewValidationError(field, message, err)
}
