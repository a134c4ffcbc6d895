package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openBookmarksDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE bookmarks (id INTEGER PRIMARY KEY, title TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func titles(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT title FROM bookmarks ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		require.NoError(t, rows.Scan(&s))
		out = append(out, s)
	}
	require.NoError(t, rows.Err())
	return out
}

func insert(title string) func(context.Context, DBTX) error {
	return func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO bookmarks(title) VALUES (?)`, title)
		return err
	}
}

func TestWithTx(t *testing.T) {
	errAbort := errors.New("abort")

	tests := []struct {
		name    string
		fn      func(context.Context, DBTX) error
		wantErr error
		want    []string
	}{
		{
			name: "commit",
			fn:   insert("go.dev"),
			want: []string{"go.dev"},
		},
		{
			name: "rollback on error",
			fn: func(ctx context.Context, tx DBTX) error {
				if err := insert("lost")(ctx, tx); err != nil {
					return err
				}
				return errAbort
			},
			wantErr: errAbort,
			want:    []string{},
		},
		{
			name: "several statements",
			fn: func(ctx context.Context, tx DBTX) error {
				if err := insert("a")(ctx, tx); err != nil {
					return err
				}
				return insert("b")(ctx, tx)
			},
			want: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openBookmarksDB(t)

			err := WithTx(context.Background(), db, nil, tt.fn)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, titles(t, db))
		})
	}
}

func TestWithTx_PanicRollsBack(t *testing.T) {
	db := openBookmarksDB(t)

	assert.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, insert("panic")(ctx, tx))
			panic("kaput")
		})
	})
	assert.Empty(t, titles(t, db))
}

func TestWithTx_BeginFails(t *testing.T) {
	db := openBookmarksDB(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(context.Context, DBTX) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestSQLRunner(t *testing.T) {
	db := openBookmarksDB(t)
	r := NewSQLRunner(db, WithTxOptions(&sql.TxOptions{}))
	ctx := context.Background()

	require.NoError(t, insert("direct")(ctx, r.Conn()))
	require.NoError(t, r.WithTx(ctx, insert("tx")))
	require.Error(t, r.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insert("dropped")(ctx, tx))
		return errors.New("abort")
	}))

	assert.Equal(t, []string{"direct", "tx"}, titles(t, db))
	assert.NotNil(t, r.opts)
}
