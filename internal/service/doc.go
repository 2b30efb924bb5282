// Package service contains the use cases of the task board. It orchestrates
// the user and task stores defined in internal/store to fulfil API requests.
//
// The services own every cross-entity cascade. A task's assignee and a user's
// pending-task list are kept consistent here, as a sequence of independent
// store writes:
//
//   - Creating an assigned, incomplete task adds it to the assignee's pending
//     tasks.
//   - Updating a task first detaches it from its previous assignee, then
//     attaches it to the new one, then writes the task.
//   - Deleting a task detaches it from its assignee.
//   - Updating a user's pending tasks unassigns dropped tasks, moves claimed
//     tasks away from their previous owners, assigns the list to the user and
//     finally writes the user.
//   - Deleting a user unassigns every task pointing at it.
//
// Client errors are returned as *domain.ValidationError values carrying the
// message to show, wrapping one of the sentinels declared in errors.go.
// Unexpected store failures are wrapped with %w and left for the API layer to
// report generically.
package service
