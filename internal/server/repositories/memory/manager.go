package memory

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophmarks/internal/dbx"
	"github.com/dmitrijs2005/gophmarks/internal/server/repositories/bookmarks"
	"github.com/dmitrijs2005/gophmarks/internal/server/repositories/users"
)

// Manager vends in-memory repositories. The DBTX argument is ignored.
type Manager struct {
	store *Store
}

func NewManager() *Manager {
	return &Manager{store: NewStore()}
}

func (m *Manager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *Manager) Users(db dbx.DBTX) users.Repository {
	return &UsersRepository{s: m.store}
}

func (m *Manager) Bookmarks(db dbx.DBTX) bookmarks.Repository {
	return &BookmarksRepository{s: m.store}
}

// Runner satisfies dbx.Runner without a database. WithTx just calls fn;
// there is no rollback.
type Runner struct{}

func (Runner) Conn() dbx.DBTX {
	return nil
}

func (Runner) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}
