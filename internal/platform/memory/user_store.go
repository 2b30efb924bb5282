package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserStore implements store.UserStore in memory.
type UserStore struct {
	s *Store
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// ValidID implements store.IDValidator.
func (u *UserStore) ValidID(id string) bool {
	return validID(id)
}

func userGetter(user *domain.User) query.Getter {
	return func(field string) any {
		switch field {
		case query.IDField:
			return user.ID
		case "name":
			return user.Name
		case "email":
			return user.Email
		case "pendingTasks":
			return user.PendingTasks
		case "dateCreated":
			return user.DateCreated
		}
		return nil
	}
}

// Find implements store.UserStore.Find.
func (u *UserStore) Find(ctx context.Context, q *query.Query) ([]*domain.User, error) {
	if err := checkIDs(q.Filter); err != nil {
		return nil, err
	}

	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	docs := make([]*domain.User, 0, len(u.s.userOrder))
	for _, id := range u.s.userOrder {
		docs = append(docs, u.s.users[id])
	}

	selected := selectDocs(docs, q, userGetter)
	out := make([]*domain.User, 0, len(selected))
	for _, user := range selected {
		out = append(out, user.Clone())
	}
	return out, nil
}

// Count implements store.UserStore.Count.
func (u *UserStore) Count(ctx context.Context, f query.Filter) (int64, error) {
	if err := checkIDs(f); err != nil {
		return 0, err
	}

	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	var n int64
	for _, user := range u.s.users {
		if f.Match(userGetter(user)) {
			n++
		}
	}
	return n, nil
}

// GetByID implements store.UserStore.GetByID.
func (u *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	key, ok := canonicalID(id)
	if !ok {
		return nil, store.ErrUserNotFound
	}

	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[key]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user.Clone(), nil
}

// GetByEmail implements store.UserStore.GetByEmail.
func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	for _, id := range u.s.userOrder {
		if user := u.s.users[id]; user.Email == email {
			return user.Clone(), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Create implements store.UserStore.Create.
func (u *UserStore) Create(ctx context.Context, user *domain.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if u.emailTaken(user.Email, "") {
		return store.ErrEmailExists
	}

	user.ID = uuid.New().String()
	if user.PendingTasks == nil {
		user.PendingTasks = []string{}
	}
	u.s.users[user.ID] = user.Clone()
	u.s.userOrder = append(u.s.userOrder, user.ID)
	return nil
}

// Update implements store.UserStore.Update.
func (u *UserStore) Update(ctx context.Context, user *domain.User) error {
	key, ok := canonicalID(user.ID)
	if !ok {
		return store.ErrUserNotFound
	}

	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	existing, ok := u.s.users[key]
	if !ok {
		return store.ErrUserNotFound
	}
	if u.emailTaken(user.Email, key) {
		return store.ErrEmailExists
	}

	existing.Name = user.Name
	existing.Email = user.Email
	existing.PendingTasks = append([]string{}, user.PendingTasks...)
	return nil
}

// Delete implements store.UserStore.Delete.
func (u *UserStore) Delete(ctx context.Context, id string) error {
	key, ok := canonicalID(id)
	if !ok {
		return store.ErrUserNotFound
	}

	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, ok := u.s.users[key]; !ok {
		return store.ErrUserNotFound
	}
	delete(u.s.users, key)
	u.s.userOrder = removeString(u.s.userOrder, key)
	return nil
}

// AddPendingTask implements store.UserStore.AddPendingTask.
func (u *UserStore) AddPendingTask(ctx context.Context, userID, taskID string) error {
	key, ok := canonicalID(userID)
	if !ok {
		return nil
	}

	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[key]
	if !ok || user.HasPendingTask(taskID) {
		return nil
	}
	user.PendingTasks = append(user.PendingTasks, taskID)
	return nil
}

// RemovePendingTask implements store.UserStore.RemovePendingTask.
func (u *UserStore) RemovePendingTask(ctx context.Context, userID, taskID string) error {
	key, ok := canonicalID(userID)
	if !ok {
		return nil
	}

	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if user, ok := u.s.users[key]; ok {
		user.PendingTasks = removeString(user.PendingTasks, taskID)
	}
	return nil
}

// emailTaken must be called with the lock held.
func (u *UserStore) emailTaken(email, exceptID string) bool {
	for id, user := range u.s.users {
		if id != exceptID && user.Email == email {
			return true
		}
	}
	return false
}
