package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophmarks/internal/common"
	"github.com/dmitrijs2005/gophmarks/internal/dbx"
	"github.com/dmitrijs2005/gophmarks/internal/server/models"
	"github.com/dmitrijs2005/gophmarks/internal/server/repositories/repomanager"
)

// fallbackDecoyHash is a well-formed argon2id hash with the default cost. It
// stands in when a random decoy cannot be built, so unknown emails still pay
// for a full key derivation.
const fallbackDecoyHash = "$argon2id$v=19$m=65536,t=1,p=4$Z29waG1hcmtzLWRlY295IQ$AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8"

// AuthService registers users and exchanges credentials for session tokens.
// Sign-in failures never reveal whether the email exists.
type AuthService struct {
	db          dbx.Runner
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenSigner

	decoyOnce sync.Once
	decoyHash string
}

func NewAuthService(db dbx.Runner, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenSigner) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
	}
}

// SignUp stores a new user and returns a token for it. A taken email yields
// common.ErrDuplicateCredential.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	repo := s.repomanager.Users(s.db.Conn())
	user, err := repo.Create(ctx, &models.User{Email: normalizeEmail(email), PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateCredential) {
			return "", common.ErrDuplicateCredential
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	return s.issue(user)
}

// SignIn checks the credentials. Unknown email and wrong password both yield
// common.ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db.Conn())
	user, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn the same hashing cost as a real check
			_, _ = s.hasher.Verify(password, s.decoy())
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("error loading user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return "", common.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (string, error) {
	token, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return token, nil
}

func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		s.decoyHash = fallbackDecoyHash
		pw, err := common.MakeRandHexString(16)
		if err != nil {
			return
		}
		if h, err := s.hasher.Hash(pw); err == nil {
			s.decoyHash = h
		}
	})
	return s.decoyHash
}
