package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salatech/promotion-service/internal/config"
	"github.com/salatech/promotion-service/internal/model"
)

func newTestAuthService(secret string) *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:  secret,
		JWTExpiry:  time.Hour,
		BcryptCost: 4, // minimum cost keeps the test fast
	})
}

func TestPasswordHashRoundTrip(t *testing.T) {
	svc := newTestAuthService("test-secret")

	hash, err := svc.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, svc.CheckPassword(hash, "s3cret-pass"))
	assert.ErrorIs(t, svc.CheckPassword(hash, "wrong-pass"), ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService("test-secret")

	admin := &model.Admin{
		ID:       uuid.New(),
		SchoolID: uuid.New(),
		Email:    "admin@example.com",
		Name:     "Admin",
	}

	token, err := svc.GenerateToken(admin, model.AllPermissions)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, admin.ID, claims.UserID)
	assert.Equal(t, admin.SchoolID, claims.SchoolID)
	assert.True(t, claims.HasPermission(string(model.PermissionPromotionExecute)))
	assert.False(t, claims.HasPermission("promotion:delete"))
}

func TestTokenRejectedWithWrongSecret(t *testing.T) {
	issuer := newTestAuthService("secret-a")
	verifier := newTestAuthService("secret-b")

	admin := &model.Admin{ID: uuid.New(), SchoolID: uuid.New()}
	token, err := issuer.GenerateToken(admin, nil)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenRejectedWhenMalformed(t *testing.T) {
	svc := newTestAuthService("test-secret")

	_, err := svc.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}
