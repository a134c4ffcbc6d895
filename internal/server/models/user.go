// Package models holds the persistence-side shapes of users and bookmarks.
// They are never serialised directly to API clients.
package models

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch lists the profile fields a user may change. Nil means "keep";
// the Clear flags set a name to NULL.
type UserPatch struct {
	Email          *string
	FirstName      *string
	LastName       *string
	ClearFirstName bool
	ClearLastName  bool
}

// Apply copies the non-nil fields of p onto u.
func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	switch {
	case p.ClearFirstName:
		u.FirstName = nil
	case p.FirstName != nil:
		u.FirstName = p.FirstName
	}
	switch {
	case p.ClearLastName:
		u.LastName = nil
	case p.LastName != nil:
		u.LastName = p.LastName
	}
}
