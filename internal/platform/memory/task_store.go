package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskStore implements store.TaskStore in memory.
type TaskStore struct {
	s *Store
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// ValidID implements store.IDValidator.
func (t *TaskStore) ValidID(id string) bool {
	return validID(id)
}

func taskGetter(task *domain.Task) query.Getter {
	return func(field string) any {
		switch field {
		case query.IDField:
			return task.ID
		case "name":
			return task.Name
		case "description":
			return task.Description
		case "deadline":
			return task.Deadline
		case "completed":
			return task.Completed
		case "assignedUser":
			return task.AssignedUser
		case "assignedUserName":
			return task.AssignedUserName
		case "dateCreated":
			return task.DateCreated
		}
		return nil
	}
}

// Find implements store.TaskStore.Find.
func (t *TaskStore) Find(ctx context.Context, q *query.Query) ([]*domain.Task, error) {
	if err := checkIDs(q.Filter); err != nil {
		return nil, err
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	docs := make([]*domain.Task, 0, len(t.s.taskOrder))
	for _, id := range t.s.taskOrder {
		docs = append(docs, t.s.tasks[id])
	}

	selected := selectDocs(docs, q, taskGetter)
	out := make([]*domain.Task, 0, len(selected))
	for _, task := range selected {
		c := *task
		out = append(out, &c)
	}
	return out, nil
}

// Count implements store.TaskStore.Count.
func (t *TaskStore) Count(ctx context.Context, f query.Filter) (int64, error) {
	if err := checkIDs(f); err != nil {
		return 0, err
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	var n int64
	for _, task := range t.s.tasks {
		if f.Match(taskGetter(task)) {
			n++
		}
	}
	return n, nil
}

// GetByID implements store.TaskStore.GetByID.
func (t *TaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	key, ok := canonicalID(id)
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	task, ok := t.s.tasks[key]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	c := *task
	return &c, nil
}

// Create implements store.TaskStore.Create.
func (t *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	task.ID = uuid.New().String()
	c := *task
	t.s.tasks[task.ID] = &c
	t.s.taskOrder = append(t.s.taskOrder, task.ID)
	return nil
}

// Update implements store.TaskStore.Update.
func (t *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	key, ok := canonicalID(task.ID)
	if !ok {
		return store.ErrTaskNotFound
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	existing, ok := t.s.tasks[key]
	if !ok {
		return store.ErrTaskNotFound
	}
	created := existing.DateCreated
	*existing = *task
	existing.ID = key
	existing.DateCreated = created
	return nil
}

// Delete implements store.TaskStore.Delete.
func (t *TaskStore) Delete(ctx context.Context, id string) error {
	key, ok := canonicalID(id)
	if !ok {
		return store.ErrTaskNotFound
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, ok := t.s.tasks[key]; !ok {
		return store.ErrTaskNotFound
	}
	delete(t.s.tasks, key)
	t.s.taskOrder = removeString(t.s.taskOrder, key)
	return nil
}

// UnassignUser implements store.TaskStore.UnassignUser.
func (t *TaskStore) UnassignUser(ctx context.Context, userID string, keep []string) (int64, error) {
	kept := make(map[string]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var n int64
	for id, task := range t.s.tasks {
		if task.AssignedUser == userID && !kept[id] {
			task.Unassign()
			n++
		}
	}
	return n, nil
}

// AssignAll implements store.TaskStore.AssignAll.
func (t *TaskStore) AssignAll(ctx context.Context, ids []string, userID, userName string) (int64, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var n int64
	for _, id := range ids {
		key, ok := canonicalID(id)
		if !ok {
			continue
		}
		if task, ok := t.s.tasks[key]; ok {
			task.AssignedUser = userID
			task.AssignedUserName = userName
			n++
		}
	}
	return n, nil
}
