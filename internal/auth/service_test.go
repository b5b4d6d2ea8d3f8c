package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"booksapi/internal/entity"
	"booksapi/internal/platform/crypto"
	"booksapi/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	secret   = "auth-test-secret"
	password = "Sup3r!secret"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(secret, time.Hour, user.NewService(user.NewMemoryRepo()), zaptest.NewLogger(t))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Reader@Example.com ", "Reader", password)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", u.Email)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.NotEqual(t, password, u.PasswordHash)

	token, got, err := svc.Login(ctx, "reader@example.com", password)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := crypto.ParseToken(secret, token.Value)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID())
	assert.Equal(t, entity.RoleUser, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)
}

func TestRegister_Errors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@example.com", "A", "weak")
	assert.ErrorIs(t, err, crypto.ErrPasswordTooShort)

	_, err = svc.Register(ctx, "a@example.com", "A", password)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "A@example.com", "A", password)
	assert.ErrorIs(t, err, user.ErrAlreadyExists)
}

func TestCreateAdmin(t *testing.T) {
	svc := newService(t)

	u, err := svc.CreateAdmin(context.Background(), "boss@example.com", "Boss", password)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)
}

func TestLogin_Unauthorized(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@example.com", "A", password)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@example.com", "Wrong!pass1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = svc.Login(ctx, "nobody@example.com", password)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestChangePassword(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, "a@example.com", "A", password)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, password, password), ErrSamePassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "Wrong!pass1", "N3w!Password"), ErrInvalidPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, password, "short"), crypto.ErrPasswordTooShort)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "missing", password, "N3w!Password"), ErrUnauthorized)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, password, "N3w!Password"))
	_, _, err = svc.Login(ctx, "a@example.com", "N3w!Password")
	assert.NoError(t, err)
	_, _, err = svc.Login(ctx, "a@example.com", password)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestDeleteAccount(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, "a@example.com", "A", password)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, u.ID))
	assert.ErrorIs(t, svc.DeleteAccount(ctx, u.ID), ErrUnauthorized)

	_, _, err = svc.Login(ctx, "a@example.com", password)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
