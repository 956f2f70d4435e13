package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/solicitudes-service/internal/auth"
	"github.com/spec-kit/solicitudes-service/internal/domain"
	"github.com/spec-kit/solicitudes-service/internal/repository"
	apperrors "github.com/spec-kit/solicitudes-service/pkg/util"
)

// UserService manages account administration.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// UserCreateInput describes account creation payload.
type UserCreateInput struct {
	Username string
	Password string
	Role     domain.Role
}

// UserUpdateInput is a partial update over an account. Only the supplied
// fields change.
type UserUpdateInput struct {
	Username *string
	Password *string
	Role     *domain.Role
}

// Create registers a new account with a hashed credential.
func (s *UserService) Create(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if len(username) < 3 {
		return nil, apperrors.NewValidationError("usuario must be at least 3 characters", nil)
	}
	if input.Password == "" {
		return nil, apperrors.NewValidationError("password is required", nil)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid rol", map[string]any{"rol": role})
	}

	inUse, err := s.users.UsernameInUse(ctx, username, 0)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, apperrors.NewConflict("usuario already exists", map[string]any{"usuario": username})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("usuario already exists", nil)
		}
		return nil, err
	}
	return user, nil
}

// Update applies the supplied fields to an existing account.
func (s *UserService) Update(ctx context.Context, id int64, input UserUpdateInput) error {
	if input.Username == nil && input.Password == nil && input.Role == nil {
		return apperrors.NewValidationError("no fields to update", nil)
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	var update repository.UserUpdate

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if len(username) < 3 {
			return apperrors.NewValidationError("usuario must be at least 3 characters", nil)
		}
		inUse, err := s.users.UsernameInUse(ctx, username, id)
		if err != nil {
			return err
		}
		if inUse {
			return apperrors.NewConflict("usuario already in use", map[string]any{"usuario": username})
		}
		update.Username = &username
	}
	if input.Password != nil {
		if *input.Password == "" {
			return apperrors.NewValidationError("password must not be empty", nil)
		}
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return err
		}
		update.PasswordHash = &hash
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return apperrors.NewValidationError("invalid rol", map[string]any{"rol": *input.Role})
		}
		update.Role = input.Role
	}

	if err := s.users.Apply(ctx, id, update); err != nil {
		if repository.IsUniqueViolation(err) {
			return apperrors.NewConflict("usuario already in use", nil)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("usuario", map[string]any{"id": id})
		}
		return err
	}
	return nil
}

// Delete removes an account permanently. There is no cascade check against
// records the account created.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("usuario", map[string]any{"id": id})
		}
		return err
	}
	return nil
}

// GetByID fetches an account.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("usuario", map[string]any{"id": id})
		}
		return nil, err
	}
	return user, nil
}

// List returns all accounts, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}
