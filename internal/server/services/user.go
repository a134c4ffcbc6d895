package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophmarks/internal/common"
	"github.com/dmitrijs2005/gophmarks/internal/dbx"
	"github.com/dmitrijs2005/gophmarks/internal/server/models"
	"github.com/dmitrijs2005/gophmarks/internal/server/repositories/repomanager"
)

// UserService reads and edits the caller's own profile.
type UserService struct {
	db          dbx.Runner
	repomanager repomanager.RepositoryManager
}

func NewUserService(db dbx.Runner, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// GetMe returns the user behind a verified token. A token whose user has
// since disappeared is treated as unauthorized.
func (s *UserService) GetMe(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db.Conn()).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// Edit applies patch to the caller's profile. Moving to an email another
// account holds yields common.ErrDuplicateCredential.
func (s *UserService) Edit(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error) {
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		patch.Email = &email
	}

	var out *models.User
	err := s.db.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error loading user: %w", err)
		}

		patch.Apply(user)

		out, err = repo.Update(ctx, user)
		switch {
		case errors.Is(err, common.ErrDuplicateCredential):
			return common.ErrDuplicateCredential
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrorUnauthorized
		case err != nil:
			return fmt.Errorf("error updating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
