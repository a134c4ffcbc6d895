package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophmarks/internal/common"
	"github.com/dmitrijs2005/gophmarks/internal/server/models"
	"github.com/dmitrijs2005/gophmarks/internal/server/repositories/bookmarks"
	"github.com/dmitrijs2005/gophmarks/internal/server/repositories/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	putKey   string
	putType  string
	putBody  []byte
	putErr   error
	signTTL  time.Duration
	signErr  error
	signedAs string
}

func (s *fakeStore) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	s.putKey, s.putType, s.putBody = key, contentType, body
	return s.putErr
}

func (s *fakeStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.signedAs, s.signTTL = key, ttl
	if s.signErr != nil {
		return "", s.signErr
	}
	return "https://s3.example/" + key + "?sig=1", nil
}

type failingBookmarks struct {
	bookmarks.Repository
	err error
}

func (f failingBookmarks) ListByOwner(ctx context.Context, userID string) ([]*models.Bookmark, error) {
	return nil, f.err
}

func (f failingBookmarks) GetForOwner(ctx context.Context, id, userID string) (*models.Bookmark, error) {
	return nil, f.err
}

func TestBookmarkLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signUp(t, "a@x.com")

	list, err := f.bookmarks.List(ctx, owner)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	b, err := f.bookmarks.Create(ctx, owner, NewBookmark{Title: "Go", Link: "https://go.dev"})
	require.NoError(t, err)
	assert.Equal(t, owner, b.UserID)
	assert.Nil(t, b.Description)

	got, err := f.bookmarks.Get(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Title)

	edited, err := f.bookmarks.Edit(ctx, owner, b.ID, models.BookmarkPatch{Description: strPtr("docs")})
	require.NoError(t, err)
	assert.Equal(t, "Go", edited.Title)
	assert.Equal(t, "docs", *edited.Description)
	assert.Equal(t, 1, f.runner.txCalls)

	// repeating the same edit changes nothing
	again, err := f.bookmarks.Edit(ctx, owner, b.ID, models.BookmarkPatch{Description: strPtr("docs")})
	require.NoError(t, err)
	assert.Equal(t, edited.Title, again.Title)
	assert.Equal(t, *edited.Description, *again.Description)

	deleted, err := f.bookmarks.Delete(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, deleted.ID)

	list, err = f.bookmarks.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.bookmarks.Delete(ctx, owner, b.ID)
	assert.ErrorIs(t, err, common.ErrNotFoundOrForbidden)
}

func TestBookmarks_ForeignLooksMissing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.signUp(t, "alice@x.com")
	bob := f.signUp(t, "bob@x.com")

	b, err := f.bookmarks.Create(ctx, alice, NewBookmark{Title: "private", Link: "https://a"})
	require.NoError(t, err)

	missing := uuid.NewString()
	for _, id := range []string{b.ID, missing} {
		_, errGet := f.bookmarks.Get(ctx, bob, id)
		_, errEdit := f.bookmarks.Edit(ctx, bob, id, models.BookmarkPatch{Title: strPtr("pwned")})
		_, errDel := f.bookmarks.Delete(ctx, bob, id)

		assert.ErrorIs(t, errGet, common.ErrNotFoundOrForbidden)
		assert.ErrorIs(t, errEdit, common.ErrNotFoundOrForbidden)
		assert.ErrorIs(t, errDel, common.ErrNotFoundOrForbidden)
	}

	still, err := f.bookmarks.Get(ctx, alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", still.Title)

	bobs, err := f.bookmarks.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobs)
}

func TestBookmarks_MalformedID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signUp(t, "a@x.com")

	for _, id := range []string{"", "1", "not-a-uuid", "urn:uuid:" + uuid.NewString()} {
		_, err := f.bookmarks.Get(ctx, owner, id)
		assert.ErrorIs(t, err, common.ErrNotFoundOrForbidden, id)
		_, err = f.bookmarks.Edit(ctx, owner, id, models.BookmarkPatch{})
		assert.ErrorIs(t, err, common.ErrNotFoundOrForbidden, id)
		_, err = f.bookmarks.Delete(ctx, owner, id)
		assert.ErrorIs(t, err, common.ErrNotFoundOrForbidden, id)
	}
	assert.Equal(t, 0, f.runner.txCalls)
}

func TestBookmarks_UppercaseID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signUp(t, "a@x.com")

	b, err := f.bookmarks.Create(ctx, owner, NewBookmark{Title: "Go", Link: "https://go.dev", Description: strPtr("d")})
	require.NoError(t, err)
	upper := strings.ToUpper(b.ID)

	got, err := f.bookmarks.Get(ctx, owner, upper)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	edited, err := f.bookmarks.Edit(ctx, owner, upper, models.BookmarkPatch{ClearDescription: true})
	require.NoError(t, err)
	assert.Nil(t, edited.Description)

	deleted, err := f.bookmarks.Delete(ctx, owner, upper)
	require.NoError(t, err)
	assert.Equal(t, b.ID, deleted.ID)
}

func TestBookmarks_StorageErrorsAreNotOwnershipErrors(t *testing.T) {
	s := NewBookmarkService(memory.Runner{}, &fakeManager{bookmarks: failingBookmarks{err: errors.New("db down")}}, nil)
	ctx := context.Background()

	_, err := s.List(ctx, "u1")
	assert.ErrorContains(t, err, "db down")

	_, err = s.Get(ctx, "u1", uuid.NewString())
	assert.ErrorContains(t, err, "db down")
	assert.NotErrorIs(t, err, common.ErrNotFoundOrForbidden)
}

func TestExport_Disabled(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.bookmarks.Export(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrExportDisabled)
}

func TestExport_UploadsOwnBookmarks(t *testing.T) {
	store := &fakeStore{}
	f := newFixture(t, store)
	ctx := context.Background()
	alice := f.signUp(t, "alice@x.com")
	bob := f.signUp(t, "bob@x.com")

	_, err := f.bookmarks.Create(ctx, alice, NewBookmark{Title: "mine", Link: "https://a"})
	require.NoError(t, err)
	_, err = f.bookmarks.Create(ctx, bob, NewBookmark{Title: "theirs", Link: "https://b"})
	require.NoError(t, err)

	fixed := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	f.bookmarks.now = func() time.Time { return fixed }

	exp, err := f.bookmarks.Export(ctx, alice)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(exp.Key, "users/"+alice+"/exports/"), exp.Key)
	assert.True(t, strings.HasSuffix(exp.Key, ".json"), exp.Key)
	assert.Equal(t, exp.Key, store.putKey)
	assert.Equal(t, exp.Key, store.signedAs)
	assert.Equal(t, "application/json", store.putType)
	assert.Equal(t, ExportLinkTTL, store.signTTL)
	assert.Equal(t, fixed.Add(ExportLinkTTL), exp.ExpiresAt)
	assert.Contains(t, exp.URL, exp.Key)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(store.putBody, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "mine", items[0]["title"])
	assert.NotContains(t, items[0], "userId")
}

func TestExport_StoreFailures(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, &fakeStore{putErr: errors.New("bucket gone")})
	_, err := f.bookmarks.Export(ctx, f.signUp(t, "a@x.com"))
	assert.ErrorContains(t, err, "bucket gone")

	f = newFixture(t, &fakeStore{signErr: errors.New("no creds")})
	_, err = f.bookmarks.Export(ctx, f.signUp(t, "a@x.com"))
	assert.ErrorContains(t, err, "no creds")
}
