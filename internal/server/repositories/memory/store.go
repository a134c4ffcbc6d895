// Package memory keeps users and bookmarks in process memory. It backs the
// service and HTTP tests; nothing survives a restart.
package memory

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/gophmarks/internal/server/models"
)

// Store is the shared state behind the in-memory repositories. Repositories
// vended for different DBTX handles all see the same Store.
type Store struct {
	mu        sync.RWMutex
	users     map[string]models.User
	bookmarks map[string]models.Bookmark
	// insertion order, so listings are stable
	order []string

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]models.User),
		bookmarks: make(map[string]models.Bookmark),
		now:       func() time.Time { return time.Now().UTC() },
	}
}
