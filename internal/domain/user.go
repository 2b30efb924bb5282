package domain

import (
	"time"
)

// User is a person tasks can be assigned to.
//
// PendingTasks lists the ids of the incomplete tasks currently assigned to the
// user, in the order they were added.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PendingTasks []string  `json:"pendingTasks"`
	DateCreated  time.Time `json:"dateCreated"`
}

// NewUser creates a User with an empty pending-task list and the creation
// timestamp set. The id is assigned by the store on insert.
func NewUser(name, email string) (*User, error) {
	user := &User{
		Name:         name,
		Email:        email,
		PendingTasks: []string{},
		DateCreated:  time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks the fields every stored user must have.
func (u *User) Validate() error {
	if u.Name == "" {
		return NewValidationError("name", "name is required", ErrEmptyName)
	}
	if u.Email == "" {
		return NewValidationError("email", "email is required", ErrEmptyEmail)
	}
	return nil
}

// HasPendingTask reports whether taskID is in the user's pending list.
func (u *User) HasPendingTask(taskID string) bool {
	for _, id := range u.PendingTasks {
		if id == taskID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	c := *u
	c.PendingTasks = append([]string{}, u.PendingTasks...)
	return &c
}
