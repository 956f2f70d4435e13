package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/solicitudes-service/internal/auth"
	"github.com/spec-kit/solicitudes-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("secret", 60)
	user := &domain.User{ID: 7, Username: "usuario1", Role: domain.RoleUser}

	token, exp, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.False(t, exp.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "usuario1", claims.Username)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := auth.NewTokenManager("secret", 60)
	other := auth.NewTokenManager("another", 60)

	token, _, err := tm.GenerateToken(&domain.User{ID: 1, Username: "admin", Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := auth.NewTokenManager("secret", 60)
	_, err := tm.ParseToken("not-a-token")
	assert.Error(t, err)
}
