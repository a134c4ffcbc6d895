// Package dbx holds the small database seam repositories and services share.
// Repositories accept a DBTX so the same code runs on a pool or inside a
// transaction; services get handles from a Runner.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Runner interface {
	// Conn returns a handle outside any transaction.
	Conn() DBTX
	// WithTx runs fn in one transaction. fn must use tx, not Conn.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLRunner implements Runner on a *sql.DB pool.
type SQLRunner struct {
	db   *sql.DB
	opts *sql.TxOptions
}

type RunnerOption func(*SQLRunner)

// WithTxOptions sets the options every WithTx call begins with.
func WithTxOptions(opts *sql.TxOptions) RunnerOption {
	return func(r *SQLRunner) { r.opts = opts }
}

func NewSQLRunner(db *sql.DB, opts ...RunnerOption) *SQLRunner {
	r := &SQLRunner{db: db}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *SQLRunner) Conn() DBTX {
	return r.db
}

func (r *SQLRunner) WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return WithTx(ctx, r.db, r.opts, fn)
}

// WithTx commits when fn returns nil and rolls back otherwise. A panic in fn
// rolls back and is re-raised.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
