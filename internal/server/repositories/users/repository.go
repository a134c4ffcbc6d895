package users

import (
	"context"

	"github.com/dmitrijs2005/gophmarks/internal/server/models"
)

// Repository persists user accounts. Lookups return common.ErrorNotFound for
// missing rows; writes that collide on email return
// common.ErrDuplicateCredential.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
}
