package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepo(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	u := &User{Email: "a@example.com", FullName: "A", PasswordHash: "h", Role: "User"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	assert.ErrorIs(t, repo.Create(ctx, &User{Email: "A@example.com"}), ErrAlreadyExists)

	got, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "h2"))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "h2", got.PasswordHash)

	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err = repo.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, u.ID), ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePassword(ctx, u.ID, "x"), ErrNotFound)
}

func TestService_RegisterNormalizesEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, " Mixed@Example.COM ", "M", "hash", "User")
	require.NoError(t, err)
	assert.Equal(t, "mixed@example.com", u.Email)

	_, err = svc.Register(ctx, "mixed@example.com", "M", "hash", "User")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	got, err := svc.GetByEmail(ctx, "MIXED@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}
