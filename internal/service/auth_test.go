package service

import (
	"context"
	"testing"

	"github.com/SantaVM/bank-rest/internal/apperrors"
	"github.com/SantaVM/bank-rest/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, "kate@example.com", "12345678", "Kate", "Brown")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "12345678", user.PasswordHash)

	userID, token, err := svc.Login(ctx, "kate@example.com", "12345678")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, "1", claims.Subject)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, "kate@example.com", "12345678", "Kate", "Brown")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "kate@example.com", "87654321", "Other", "Kate")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestLogin_BadCredentials(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, "kate@example.com", "12345678", "Kate", "Brown")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "kate@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	_, _, err = svc.Login(ctx, "nobody@example.com", "12345678")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
}
