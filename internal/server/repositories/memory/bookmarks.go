package memory

import (
	"context"

	"github.com/dmitrijs2005/gophmarks/internal/common"
	"github.com/dmitrijs2005/gophmarks/internal/server/models"
	"github.com/google/uuid"
)

type BookmarksRepository struct {
	s *Store
}

func (r *BookmarksRepository) Create(ctx context.Context, bookmark *models.Bookmark) (*models.Bookmark, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[bookmark.UserID]; !ok {
		return nil, common.ErrorNotFound
	}

	bookmark.ID = uuid.NewString()
	bookmark.CreatedAt = r.s.now()
	bookmark.UpdatedAt = bookmark.CreatedAt
	r.s.bookmarks[bookmark.ID] = *bookmark
	r.s.order = append(r.s.order, bookmark.ID)

	return bookmark, nil
}

func (r *BookmarksRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Bookmark, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*models.Bookmark, 0)
	for _, id := range r.s.order {
		b, ok := r.s.bookmarks[id]
		if !ok || b.UserID != userID {
			continue
		}
		result = append(result, &b)
	}
	return result, nil
}

func (r *BookmarksRepository) GetForOwner(ctx context.Context, id, userID string) (*models.Bookmark, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookmarks[id]
	if !ok || b.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return &b, nil
}

func (r *BookmarksRepository) Update(ctx context.Context, bookmark *models.Bookmark) (*models.Bookmark, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.bookmarks[bookmark.ID]
	if !ok || cur.UserID != bookmark.UserID {
		return nil, common.ErrorNotFound
	}

	cur.Title = bookmark.Title
	cur.Link = bookmark.Link
	cur.Description = bookmark.Description
	cur.UpdatedAt = r.s.now()
	r.s.bookmarks[cur.ID] = cur

	bookmark.UpdatedAt = cur.UpdatedAt
	return bookmark, nil
}

func (r *BookmarksRepository) DeleteForOwner(ctx context.Context, id, userID string) (*models.Bookmark, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookmarks[id]
	if !ok || b.UserID != userID {
		return nil, common.ErrorNotFound
	}
	delete(r.s.bookmarks, id)
	for i, oid := range r.s.order {
		if oid == id {
			r.s.order = append(r.s.order[:i], r.s.order[i+1:]...)
			break
		}
	}
	return &b, nil
}
