package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophmarks/internal/dbx"
	"github.com/dmitrijs2005/gophmarks/internal/server/auth"
	"github.com/dmitrijs2005/gophmarks/internal/server/repositories/bookmarks"
	"github.com/dmitrijs2005/gophmarks/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophmarks/internal/server/repositories/users"
)

var testArgon2 = auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

type fixture struct {
	runner    *countingRunner
	manager   *memory.Manager
	issuer    *auth.TokenIssuer
	auth      *AuthService
	users     *UserService
	bookmarks *BookmarkService
}

func newFixture(t *testing.T, store ObjectStore) *fixture {
	t.Helper()
	runner := &countingRunner{}
	m := memory.NewManager()
	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Minute)
	return &fixture{
		runner:    runner,
		manager:   m,
		issuer:    issuer,
		auth:      NewAuthService(runner, m, auth.NewPasswordHasher(testArgon2), issuer),
		users:     NewUserService(runner, m),
		bookmarks: NewBookmarkService(runner, m, store),
	}
}

// signUp registers email and returns its user id.
func (f *fixture) signUp(t *testing.T, email string) string {
	t.Helper()
	tok, err := f.auth.SignUp(context.Background(), email, "pw")
	if err != nil {
		t.Fatalf("SignUp(%s): %v", email, err)
	}
	id, err := f.issuer.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return id.Subject
}

type countingRunner struct {
	memory.Runner
	txCalls int
}

func (r *countingRunner) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	r.txCalls++
	return r.Runner.WithTx(ctx, fn)
}

// fakeManager hands out whatever repositories a test plugs in.
type fakeManager struct {
	users     users.Repository
	bookmarks bookmarks.Repository
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeManager) Bookmarks(dbx.DBTX) bookmarks.Repository      { return m.bookmarks }
