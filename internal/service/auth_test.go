package service

import (
	"context"
	"testing"

	"github.com/aman-churiwal/mailing-lists/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_RegisterAndLogin(t *testing.T) {
	users := newFakeUsers()
	svc := NewAuthService(users, "jwt-secret", 1)
	ctx := context.Background()

	user, err := svc.Register(ctx, " Admin@Example.org ", "s3cret!", "Admin", "")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.org", user.Email)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NotEqual(t, "s3cret!", user.PasswordHash)

	_, err = svc.Register(ctx, "admin@example.org", "other", "Dup", models.RoleEditor)
	assert.ErrorIs(t, err, ErrUserExists)

	token, err := svc.Login(ctx, "ADMIN@example.org", "s3cret!")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims["user_id"])
	assert.Equal(t, models.RoleAdmin, claims["role"])

	found, err := svc.GetUserByID(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)
}

func TestAuth_LoginFailures(t *testing.T) {
	svc := NewAuthService(newFakeUsers(), "jwt-secret", 1)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ed@example.org", "pw", "Ed", models.RoleEditor)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ed@example.org", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ghost@example.org", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, "x@example.org", "pw", "X", "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuth_ValidateTokenRejectsForeignSecret(t *testing.T) {
	users := newFakeUsers()
	issuer := NewAuthService(users, "one", 1)
	verifier := NewAuthService(users, "two", 1)
	ctx := context.Background()

	_, err := issuer.Register(ctx, "a@example.org", "pw", "A", "")
	require.NoError(t, err)
	token, err := issuer.Login(ctx, "a@example.org", "pw")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}
