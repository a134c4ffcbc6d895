// Package common defines shared constants and sentinel errors used across
// the gophmarks server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	ErrorUnauthorized = errors.New("unauthorized")
	ErrValidation     = errors.New("validation error")

	// Auth flow errors. Unknown email and wrong password both yield
	// ErrInvalidCredentials.
	ErrDuplicateCredential = errors.New("credentials already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")

	// Ownership errors. A missing bookmark and someone else's bookmark
	// are reported the same way.
	ErrNotFoundOrForbidden = errors.New("bookmark not found")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Bookmark export is unavailable without object storage.
	ErrExportDisabled = errors.New("export disabled")
)
