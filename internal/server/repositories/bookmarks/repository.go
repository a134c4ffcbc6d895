package bookmarks

import (
	"context"

	"github.com/dmitrijs2005/gophmarks/internal/server/models"
)

// Repository persists bookmarks. Every by-id method is scoped to an owner:
// a row that exists but belongs to someone else is reported exactly like a
// missing row, with common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, bookmark *models.Bookmark) (*models.Bookmark, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Bookmark, error)
	GetForOwner(ctx context.Context, id, userID string) (*models.Bookmark, error)
	Update(ctx context.Context, bookmark *models.Bookmark) (*models.Bookmark, error)
	DeleteForOwner(ctx context.Context, id, userID string) (*models.Bookmark, error)
}
