package rest

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophmarks/internal/server/models"
	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report JSON names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// nullableString tells an absent field from an explicit null. Absent leaves
// set false; null sets set with a nil value.
type nullableString struct {
	set   bool
	value *string
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.set = true
	if bytes.Equal(data, []byte("null")) {
		n.value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.value = &s
	return nil
}

// isNull reports an explicit JSON null.
func (n nullableString) isNull() bool {
	return n.set && n.value == nil
}

type editUserRequest struct {
	Email     *string        `json:"email" validate:"omitnil,email"`
	FirstName nullableString `json:"firstName"`
	LastName  nullableString `json:"lastName"`
}

func (r editUserRequest) patch() models.UserPatch {
	return models.UserPatch{
		Email:          r.Email,
		FirstName:      r.FirstName.value,
		LastName:       r.LastName.value,
		ClearFirstName: r.FirstName.isNull(),
		ClearLastName:  r.LastName.isNull(),
	}
}

// userResponse is the only shape a user leaves the server in; it has no
// password hash field.
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type createBookmarkRequest struct {
	Title       string  `json:"title" validate:"required"`
	Link        string  `json:"link" validate:"required"`
	Description *string `json:"description"`
}

type editBookmarkRequest struct {
	Title       *string        `json:"title" validate:"omitnil,min=1"`
	Link        *string        `json:"link" validate:"omitnil,min=1"`
	Description nullableString `json:"description"`
}

func (r editBookmarkRequest) patch() models.BookmarkPatch {
	return models.BookmarkPatch{
		Title:            r.Title,
		Link:             r.Link,
		Description:      r.Description.value,
		ClearDescription: r.Description.isNull(),
	}
}

type bookmarkResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newBookmarkResponse(b *models.Bookmark) bookmarkResponse {
	return bookmarkResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		Title:       b.Title,
		Link:        b.Link,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

type exportResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type healthResponse struct {
	Status string `json:"status"`
}
