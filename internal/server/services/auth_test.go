package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophmarks/internal/common"
	"github.com/dmitrijs2005/gophmarks/internal/server/auth"
	"github.com/dmitrijs2005/gophmarks/internal/server/models"
	"github.com/dmitrijs2005/gophmarks/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophmarks/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsersRepo struct {
	users.Repository
	getErr    error
	createErr error
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, f.getErr
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return nil, f.getErr
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	return nil, f.createErr
}

type fakeHasher struct {
	hashErr error
}

func (f fakeHasher) Hash(password string) (string, error) { return "h:" + password, f.hashErr }
func (f fakeHasher) Verify(password, encoded string) (bool, error) {
	return encoded == "h:"+password, nil
}

type fakeSigner struct{ err error }

func (f fakeSigner) Sign(userID, email string) (string, error) { return "", f.err }

func TestSignUp_IssuesTokenForNewUser(t *testing.T) {
	f := newFixture(t, nil)

	tok, err := f.auth.SignUp(context.Background(), "a@x.com", "secret")
	require.NoError(t, err)

	id, err := f.issuer.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", id.Email)

	stored, err := f.manager.Users(nil).GetByID(context.Background(), id.Subject)
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.PasswordHash)
	assert.Contains(t, stored.PasswordHash, "$argon2id$")
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.auth.SignUp(ctx, "a@x.com", "one")
	require.NoError(t, err)

	_, err = f.auth.SignUp(ctx, "A@x.com ", "two")
	assert.ErrorIs(t, err, common.ErrDuplicateCredential)
}

func TestSignUp_Failures(t *testing.T) {
	ctx := context.Background()

	s := NewAuthService(memory.Runner{}, memory.NewManager(), fakeHasher{hashErr: errors.New("rng")}, fakeSigner{})
	_, err := s.SignUp(ctx, "a@x.com", "pw")
	assert.ErrorContains(t, err, "rng")

	s = NewAuthService(memory.Runner{}, &fakeManager{users: &fakeUsersRepo{createErr: errors.New("db down")}}, fakeHasher{}, fakeSigner{})
	_, err = s.SignUp(ctx, "a@x.com", "pw")
	assert.ErrorContains(t, err, "db down")
	assert.NotErrorIs(t, err, common.ErrDuplicateCredential)

	s = NewAuthService(memory.Runner{}, memory.NewManager(), fakeHasher{}, fakeSigner{err: errors.New("sign")})
	_, err = s.SignUp(ctx, "a@x.com", "pw")
	assert.ErrorContains(t, err, "sign")
}

func TestSignIn_Success(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	userID := f.signUp(t, "  Bob@X.com")

	tok, err := f.auth.SignIn(ctx, "bob@x.com", "pw")
	require.NoError(t, err)

	id, err := f.issuer.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, userID, id.Subject)
}

func TestSignIn_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.signUp(t, "a@x.com")

	_, errUnknown := f.auth.SignIn(ctx, "nobody@x.com", "pw")
	_, errWrong := f.auth.SignIn(ctx, "a@x.com", "wrong")

	assert.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, common.ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrong)
}

func TestSignIn_CorruptStoredHash(t *testing.T) {
	m := memory.NewManager()
	_, err := m.Users(nil).Create(context.Background(), &models.User{Email: "a@x.com", PasswordHash: "garbage"})
	require.NoError(t, err)

	s := NewAuthService(memory.Runner{}, m, auth.NewPasswordHasher(testArgon2), fakeSigner{})
	_, err = s.SignIn(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestSignIn_StorageError(t *testing.T) {
	s := NewAuthService(memory.Runner{}, &fakeManager{users: &fakeUsersRepo{getErr: errors.New("conn reset")}}, fakeHasher{}, fakeSigner{})

	_, err := s.SignIn(context.Background(), "a@x.com", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
	assert.ErrorContains(t, err, "conn reset")
}

type decoyHasher struct {
	verified []string
}

func (h *decoyHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }

func (h *decoyHasher) Verify(password, encoded string) (bool, error) {
	h.verified = append(h.verified, encoded)
	return auth.NewPasswordHasher(testArgon2).Verify(password, encoded)
}

func TestSignIn_DecoyFallsBackToFixedHash(t *testing.T) {
	h := &decoyHasher{}
	s := NewAuthService(memory.Runner{}, memory.NewManager(), h, fakeSigner{})

	for range 2 {
		_, err := s.SignIn(context.Background(), "ghost@x.com", "pw")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	}

	require.Len(t, h.verified, 2)
	assert.Equal(t, fallbackDecoyHash, h.verified[0])
	assert.Equal(t, fallbackDecoyHash, h.verified[1])

	ok, err := auth.NewPasswordHasher(auth.DefaultArgon2Params).Verify("pw", fallbackDecoyHash)
	require.NoError(t, err, "fallback decoy must be a well-formed hash")
	assert.False(t, ok)
}
