package domain

import (
	"time"
)

// Unassigned is the display name stored on tasks without an assignee.
const Unassigned = "unassigned"

// Task is a unit of work with a deadline that may be assigned to one user.
//
// AssignedUser is empty when the task is unassigned. AssignedUserName is a
// copy of the assignee's name, or Unassigned.
type Task struct {
	ID               string    `json:"_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Deadline         time.Time `json:"deadline"`
	Completed        bool      `json:"completed"`
	AssignedUser     string    `json:"assignedUser"`
	AssignedUserName string    `json:"assignedUserName"`
	DateCreated      time.Time `json:"dateCreated"`
}

// NewTask creates an unassigned Task with the creation timestamp set.
func NewTask(name, description string, deadline time.Time, completed bool) (*Task, error) {
	task := &Task{
		Name:             name,
		Description:      description,
		Deadline:         deadline.UTC(),
		Completed:        completed,
		AssignedUserName: Unassigned,
		DateCreated:      time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks the fields every stored task must have.
func (t *Task) Validate() error {
	if t.Name == "" {
		return NewValidationError("name", "name is required", ErrEmptyName)
	}
	if t.Deadline.IsZero() {
		return NewValidationError("deadline", "deadline is required", ErrInvalidDeadline)
	}
	return nil
}

// AssignTo records user as the assignee, copying the user's current name.
func (t *Task) AssignTo(user *User) {
	t.AssignedUser = user.ID
	t.AssignedUserName = user.Name
}

// Unassign clears the assignee.
func (t *Task) Unassign() {
	t.AssignedUser = ""
	t.AssignedUserName = Unassigned
}

// IsAssigned reports whether the task has an assignee.
func (t *Task) IsAssigned() bool {
	return t.AssignedUser != ""
}

// IsPending reports whether the task belongs in its assignee's pending list.
func (t *Task) IsPending() bool {
	return t.IsAssigned() && !t.Completed
}
