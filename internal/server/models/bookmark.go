package models

import "time"

type Bookmark struct {
	ID          string
	UserID      string
	Title       string
	Link        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookmarkPatch lists the bookmark fields that may be edited. Nil means
// "keep"; ClearDescription sets the description to NULL.
type BookmarkPatch struct {
	Title            *string
	Link             *string
	Description      *string
	ClearDescription bool
}

// Apply copies the non-nil fields of p onto b.
func (p BookmarkPatch) Apply(b *Bookmark) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Link != nil {
		b.Link = *p.Link
	}
	switch {
	case p.ClearDescription:
		b.Description = nil
	case p.Description != nil:
		b.Description = p.Description
	}
}
