package memory

import (
	"testing"

	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/store/storetest"
)

func TestStoreSuite(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (store.UserStore, store.TaskStore) {
		s := New()
		return s.Users(), s.Tasks()
	})
}
