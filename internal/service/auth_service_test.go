package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/solicitudes-service/internal/config"
	"github.com/spec-kit/solicitudes-service/internal/domain"
	"github.com/spec-kit/solicitudes-service/internal/service"
)

func newAuthFixture(t *testing.T) (*service.AuthService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	users := service.NewUserService(repo, testBcryptCost)
	_, err := users.Create(context.Background(), service.UserCreateInput{
		Username: "admin",
		Password: "secreto",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)

	cfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: testBcryptCost}
	return service.NewAuthService(cfg, repo), repo
}

func TestLoginIssuesRoleBearingToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	user, token, exp, err := svc.Login(ctx, "admin", "secreto")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.False(t, exp.IsZero())

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, _, _, err := svc.Login(ctx, "admin", "incorrecto")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))

	// unknown usernames produce the same error as wrong passwords
	_, _, _, err = svc.Login(ctx, "desconocido", "secreto")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))

	_, _, _, err = svc.Login(ctx, "ad", "secreto")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestLogoutIsStateless(t *testing.T) {
	svc, _ := newAuthFixture(t)
	assert.NoError(t, svc.Logout(context.Background(), "any-token"))
}
