package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophmarks/internal/common"
	"github.com/dmitrijs2005/gophmarks/internal/dbx"
	"github.com/dmitrijs2005/gophmarks/internal/server/models"
	"github.com/dmitrijs2005/gophmarks/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ExportLinkTTL is how long a presigned export link stays valid.
const ExportLinkTTL = 15 * time.Minute

// NewBookmark is what a caller may supply when creating a bookmark. The
// owner always comes from the verified identity.
type NewBookmark struct {
	Title       string
	Link        string
	Description *string
}

// Export describes an uploaded bookmark dump.
type Export struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// BookmarkService manages bookmarks on behalf of their owner. Someone else's
// bookmark and a missing one both yield common.ErrNotFoundOrForbidden.
type BookmarkService struct {
	db          dbx.Runner
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	now         func() time.Time
}

// NewBookmarkService wires the service. store may be nil, which disables
// Export.
func NewBookmarkService(db dbx.Runner, m repomanager.RepositoryManager, store ObjectStore) *BookmarkService {
	return &BookmarkService{
		db:          db,
		repomanager: m,
		store:       store,
		now:         time.Now,
	}
}

func (s *BookmarkService) Create(ctx context.Context, userID string, in NewBookmark) (*models.Bookmark, error) {
	b := &models.Bookmark{
		UserID:      userID,
		Title:       in.Title,
		Link:        in.Link,
		Description: in.Description,
	}
	out, err := s.repomanager.Bookmarks(s.db.Conn()).Create(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("error creating bookmark: %w", err)
	}
	return out, nil
}

func (s *BookmarkService) List(ctx context.Context, userID string) ([]*models.Bookmark, error) {
	list, err := s.repomanager.Bookmarks(s.db.Conn()).ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing bookmarks: %w", err)
	}
	if list == nil {
		list = []*models.Bookmark{}
	}
	return list, nil
}

func (s *BookmarkService) Get(ctx context.Context, userID, id string) (*models.Bookmark, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, common.ErrNotFoundOrForbidden
	}
	b, err := s.repomanager.Bookmarks(s.db.Conn()).GetForOwner(ctx, id, userID)
	if err != nil {
		return nil, ownershipError(err)
	}
	return b, nil
}

// Edit applies patch inside one transaction; the row stays locked between
// read and write.
func (s *BookmarkService) Edit(ctx context.Context, userID, id string, patch models.BookmarkPatch) (*models.Bookmark, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, common.ErrNotFoundOrForbidden
	}

	var out *models.Bookmark
	err := s.db.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Bookmarks(tx)

		b, err := repo.GetForOwner(ctx, id, userID)
		if err != nil {
			return ownershipError(err)
		}

		patch.Apply(b)

		out, err = repo.Update(ctx, b)
		if err != nil {
			return ownershipError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the bookmark and returns what was deleted.
func (s *BookmarkService) Delete(ctx context.Context, userID, id string) (*models.Bookmark, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, common.ErrNotFoundOrForbidden
	}
	b, err := s.repomanager.Bookmarks(s.db.Conn()).DeleteForOwner(ctx, id, userID)
	if err != nil {
		return nil, ownershipError(err)
	}
	return b, nil
}

type exportedBookmark struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Export uploads the caller's bookmarks as a JSON array and returns a
// presigned link to it.
func (s *BookmarkService) Export(ctx context.Context, userID string) (*Export, error) {
	if s.store == nil {
		return nil, common.ErrExportDisabled
	}

	list, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]exportedBookmark, 0, len(list))
	for _, b := range list {
		items = append(items, exportedBookmark{
			ID:          b.ID,
			Title:       b.Title,
			Link:        b.Link,
			Description: b.Description,
			CreatedAt:   b.CreatedAt,
			UpdatedAt:   b.UpdatedAt,
		})
	}

	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("error encoding export: %w", err)
	}

	key := ExportKey(userID)
	if err := s.store.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, fmt.Errorf("error uploading export: %w", err)
	}

	issued := s.now()
	url, err := s.store.PresignGet(ctx, key, ExportLinkTTL)
	if err != nil {
		return nil, fmt.Errorf("error signing export link: %w", err)
	}

	return &Export{Key: key, URL: url, ExpiresAt: issued.Add(ExportLinkTTL)}, nil
}

// ExportKey is the object key for a fresh export of userID's bookmarks.
func ExportKey(userID string) string {
	return fmt.Sprintf("users/%s/exports/%v.json", userID, uuid.New())
}

// canonicalID accepts only the 36-character hyphenated form, in either case,
// and returns it lowercased.
func canonicalID(id string) (string, bool) {
	if len(id) != 36 || uuid.Validate(id) != nil {
		return "", false
	}
	return strings.ToLower(id), true
}

func ownershipError(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrNotFoundOrForbidden
	}
	return fmt.Errorf("bookmark storage: %w", err)
}
