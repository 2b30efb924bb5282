package api

import (
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// Common request structures

// TaskRequest defines the payload for creating or replacing a task.
type TaskRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`

	// Deadline is an epoch value in milliseconds or a date string.
	Deadline any `json:"deadline"`

	// Completed accepts true/false and the strings "true", "1", "false", "0".
	Completed any `json:"completed"`

	AssignedUser     string `json:"assignedUser"`
	AssignedUserName string `json:"assignedUserName"`
}

// toInput converts the request into service input.
func (r TaskRequest) toInput() service.TaskInput {
	return service.TaskInput{
		Name:             r.Name,
		Description:      r.Description,
		Deadline:         r.Deadline,
		Completed:        r.Completed,
		AssignedUser:     r.AssignedUser,
		AssignedUserName: r.AssignedUserName,
	}
}

// UserRequest defines the payload for creating or replacing a user.
// PendingTasks is ignored on creation.
type UserRequest struct {
	Name         string            `json:"name"         validate:"required"`
	Email        string            `json:"email"        validate:"required"`
	PendingTasks shared.StringList `json:"pendingTasks"`
}

// toInput converts the request into service input.
func (r UserRequest) toInput() service.UserInput {
	return service.UserInput{
		Name:         r.Name,
		Email:        r.Email,
		PendingTasks: []string(r.PendingTasks),
	}
}
