package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
)

// Store holds the user and task collections.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*domain.User
	userOrder []string
	tasks     map[string]*domain.Task
	taskOrder []string
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users: make(map[string]*domain.User),
		tasks: make(map[string]*domain.Task),
	}
}

// Users returns the user collection.
func (s *Store) Users() *UserStore {
	return &UserStore{s: s}
}

// Tasks returns the task collection.
func (s *Store) Tasks() *TaskStore {
	return &TaskStore{s: s}
}

// validID accepts the UUIDs this package assigns.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// canonicalID returns the form of id used as a map key.
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// checkIDs rejects identity operands that are not ids this store assigns.
func checkIDs(f query.Filter) error {
	for _, c := range f.Conds {
		if c.Kind != query.KindID {
			continue
		}
		operands := c.Values
		if c.Value != nil {
			operands = []any{c.Value}
		}
		for _, v := range operands {
			if s, _ := v.(string); !validID(s) {
				return fmt.Errorf("%w: %q is not a valid id for %q", query.ErrInvalid, v, c.Field)
			}
		}
	}
	for _, subs := range [][]query.Filter{f.And, f.Or} {
		for _, sub := range subs {
			if err := checkIDs(sub); err != nil {
				return err
			}
		}
	}
	return nil
}

// selectDocs filters, sorts, skips and limits the documents in insertion
// order. get returns the field getter of a document.
func selectDocs[T any](docs []T, q *query.Query, get func(T) query.Getter) []T {
	var matched []T
	for _, d := range docs {
		if q.Filter.Match(get(d)) {
			matched = append(matched, d)
		}
	}

	if len(q.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			gi, gj := get(matched[i]), get(matched[j])
			for _, sf := range q.Sort {
				c := compareField(gi(sf.Field), gj(sf.Field))
				if c == 0 {
					continue
				}
				if sf.Descending {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if q.Skip > 0 {
		if q.Skip >= int64(len(matched)) {
			return nil
		}
		matched = matched[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < int64(len(matched)) {
		matched = matched[:q.Limit]
	}
	return matched
}

// compareField orders scalar values with query.Compare and lists by length
// and then element-wise.
func compareField(a, b any) int {
	la, aList := a.([]string)
	lb, bList := b.([]string)
	if !aList || !bList {
		return query.Compare(a, b)
	}
	for i := 0; i < len(la) && i < len(lb); i++ {
		if c := query.Compare(la[i], lb[i]); c != 0 {
			return c
		}
	}
	return len(la) - len(lb)
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
