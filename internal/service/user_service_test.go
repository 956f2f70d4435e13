package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/solicitudes-service/internal/auth"
	"github.com/spec-kit/solicitudes-service/internal/domain"
	"github.com/spec-kit/solicitudes-service/internal/repository"
	"github.com/spec-kit/solicitudes-service/internal/service"
)

const testBcryptCost = 4

// fakeUserRepo is an in-memory implementation of repository.UserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	clock  time.Time
	rows   map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		rows:  make(map[int64]*domain.User),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	r.clock = r.clock.Add(time.Second)
	user.CreatedAt = r.clock
	clone := *user
	r.rows[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *row
	return &clone, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Username == username {
			clone := *row
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.User, 0, len(r.rows))
	for _, row := range r.rows {
		result = append(result, *row)
	}
	return result, nil
}

func (r *fakeUserRepo) Apply(_ context.Context, id int64, update repository.UserUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.Username != nil {
		row.Username = *update.Username
	}
	if update.PasswordHash != nil {
		row.PasswordHash = *update.PasswordHash
	}
	if update.Role != nil {
		row.Role = *update.Role
	}
	return nil
}

func (r *fakeUserRepo) UsernameInUse(_ context.Context, username string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID != excludeID && row.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.rows, id)
	return nil
}

func TestUserCreateDefaultsAndHashing(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(repo, testBcryptCost)
	ctx := context.Background()

	user, err := svc.Create(ctx, service.UserCreateInput{Username: "usuario1", Password: "secreto"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "secreto", user.PasswordHash)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "secreto"))
}

func TestUserCreateValidationAndConflict(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(repo, testBcryptCost)
	ctx := context.Background()

	_, err := svc.Create(ctx, service.UserCreateInput{Username: "ab", Password: "x"})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = svc.Create(ctx, service.UserCreateInput{Username: "usuario1", Password: ""})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = svc.Create(ctx, service.UserCreateInput{Username: "usuario1", Password: "x", Role: "Gerente"})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = svc.Create(ctx, service.UserCreateInput{Username: "usuario1", Password: "x"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, service.UserCreateInput{Username: "usuario1", Password: "y"})
	assert.Equal(t, "CONFLICT", domainCode(t, err))
}

func TestUserUpdatePartial(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(repo, testBcryptCost)
	ctx := context.Background()

	user, err := svc.Create(ctx, service.UserCreateInput{Username: "usuario1", Password: "x"})
	require.NoError(t, err)

	err = svc.Update(ctx, user.ID, service.UserUpdateInput{})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	adminRole := domain.RoleAdmin
	require.NoError(t, svc.Update(ctx, user.ID, service.UserUpdateInput{Role: &adminRole}))

	got, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)
	assert.Equal(t, "usuario1", got.Username)

	// renaming to the current name is not a conflict with itself
	name := "usuario1"
	require.NoError(t, svc.Update(ctx, user.ID, service.UserUpdateInput{Username: &name}))

	other, err := svc.Create(ctx, service.UserCreateInput{Username: "usuario2", Password: "x"})
	require.NoError(t, err)

	taken := "usuario1"
	err = svc.Update(ctx, other.ID, service.UserUpdateInput{Username: &taken})
	assert.Equal(t, "CONFLICT", domainCode(t, err))

	err = svc.Update(ctx, 999, service.UserUpdateInput{Role: &adminRole})
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestUserDelete(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(repo, testBcryptCost)
	ctx := context.Background()

	user, err := svc.Create(ctx, service.UserCreateInput{Username: "usuario1", Password: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user.ID))

	err = svc.Delete(ctx, user.ID)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}
