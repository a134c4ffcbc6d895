package memory

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophmarks/internal/common"
	"github.com/dmitrijs2005/gophmarks/internal/server/models"
	"github.com/google/uuid"
)

type UsersRepository struct {
	s *Store
}

func (r *UsersRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTakenLocked(user.Email, "") {
		return nil, common.ErrDuplicateCredential
	}

	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = u

	out := u
	return &out, nil
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UsersRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *UsersRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[user.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if r.emailTakenLocked(user.Email, user.ID) {
		return nil, common.ErrDuplicateCredential
	}

	cur.Email = user.Email
	cur.FirstName = user.FirstName
	cur.LastName = user.LastName
	cur.UpdatedAt = r.s.now()
	r.s.users[cur.ID] = cur

	user.UpdatedAt = cur.UpdatedAt
	return user, nil
}

func (r *UsersRepository) emailTakenLocked(email, exceptID string) bool {
	for id, u := range r.s.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
