package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) *UserService {
	s := NewUserService(setupTestDB(t))
	s.cost = bcrypt.MinCost
	return s
}

func TestUserRegisterAndAuthenticate(t *testing.T) {
	s := newUserService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, Signup{Email: "  Rado@Example.com ", Name: "Rado", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, "rado@example.com", u.Email)
	assert.NotEqual(t, "s3cretpass", u.Password)

	got, err := s.Authenticate(ctx, "RADO@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate(ctx, "rado@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate(ctx, "nobody@example.com", "s3cretpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.True(t, s.Exists(ctx, u.ID))
	assert.False(t, s.Exists(ctx, u.ID+1))
}

func TestUserRegisterDuplicate(t *testing.T) {
	s := newUserService(t)
	ctx := context.Background()
	_, err := s.Register(ctx, Signup{Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)
	_, err = s.Register(ctx, Signup{Email: "A@example.com", Password: "password2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserRegisterValidation(t *testing.T) {
	s := newUserService(t)
	_, err := s.Register(context.Background(), Signup{Email: "not-an-email", Password: "short"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid_email", verr.Violations["email"])
	assert.Equal(t, "too_short", verr.Violations["password"])
}

func TestUserGet(t *testing.T) {
	s := newUserService(t)
	_, err := s.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
