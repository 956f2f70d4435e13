package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/solicitudes-service/internal/auth"
	"github.com/spec-kit/solicitudes-service/internal/config"
	"github.com/spec-kit/solicitudes-service/internal/domain"
	"github.com/spec-kit/solicitudes-service/internal/repository"
	apperrors "github.com/spec-kit/solicitudes-service/pkg/util"
)

// AuthService coordinates the login flow.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:    users,
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// Login authenticates an account and issues a role-bearing token. Unknown
// usernames and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("usuario and password are required", nil)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Logout currently no-ops for the stateless JWT approach; clients discard
// the token.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
