// Package bookmarks provides the PostgreSQL-backed bookmark repository.
package bookmarks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophmarks/internal/common"
	"github.com/dmitrijs2005/gophmarks/internal/dbx"
	"github.com/dmitrijs2005/gophmarks/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, bookmark *models.Bookmark) (*models.Bookmark, error) {
	query :=
		`INSERT INTO bookmarks (user_id, title, link, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		bookmark.UserID, bookmark.Title, bookmark.Link, bookmark.Description).
		Scan(&bookmark.ID, &bookmark.CreatedAt, &bookmark.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return bookmark, nil
}

// ListByOwner returns the owner's bookmarks, oldest first. The result is
// never nil.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Bookmark, error) {
	query :=
		`SELECT id, user_id, title, link, description, created_at, updated_at FROM bookmarks
		 WHERE user_id = $1
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select bookmarks: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Bookmark, 0)
	for rows.Next() {
		var b models.Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.Title, &b.Link, &b.Description, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetForOwner(ctx context.Context, id, userID string) (*models.Bookmark, error) {
	query :=
		`SELECT id, user_id, title, link, description, created_at, updated_at FROM bookmarks
		 WHERE id = $1 AND user_id = $2
		 FOR UPDATE
		 `

	return scanOne(r.db.QueryRowContext(ctx, query, id, userID))
}

// Update writes title, link and description of bookmark. The row is matched
// by both id and owner, so a bookmark cannot be moved between users.
func (r *PostgresRepository) Update(ctx context.Context, bookmark *models.Bookmark) (*models.Bookmark, error) {
	query :=
		`UPDATE bookmarks SET title = $3, link = $4, description = $5, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		bookmark.ID, bookmark.UserID, bookmark.Title, bookmark.Link, bookmark.Description).
		Scan(&bookmark.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return bookmark, nil
}

// DeleteForOwner removes the bookmark and returns the deleted row.
func (r *PostgresRepository) DeleteForOwner(ctx context.Context, id, userID string) (*models.Bookmark, error) {
	query :=
		`DELETE FROM bookmarks
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, title, link, description, created_at, updated_at
		 `

	return scanOne(r.db.QueryRowContext(ctx, query, id, userID))
}

func scanOne(row *sql.Row) (*models.Bookmark, error) {
	b := &models.Bookmark{}
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Link, &b.Description, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}
