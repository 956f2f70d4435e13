package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/solicitudes-service/internal/domain"
)

// UserUpdate is a typed partial update for an account. Only non-nil slots are
// applied.
type UserUpdate struct {
	Username     *string
	PasswordHash *string
	Role         *domain.Role
}

// Empty reports whether no slot is set.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.PasswordHash == nil && u.Role == nil
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Apply(ctx context.Context, id int64, update UserUpdate) error
	UsernameInUse(ctx context.Context, username string, excludeID int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO usuarios (usuario, rol, password)
        VALUES ($1, $2, $3)
        RETURNING id, fecha_creacion`

	return r.pool.QueryRow(ctx, query,
		user.Username,
		user.Role,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
        SELECT id, usuario, rol, password, fecha_creacion
        FROM usuarios WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
        SELECT id, usuario, rol, password, fecha_creacion
        FROM usuarios WHERE usuario=$1`
	return r.fetchSingle(ctx, query, username)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `
        SELECT id, usuario, rol, password, fecha_creacion
        FROM usuarios ORDER BY fecha_creacion DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Role,
			&user.PasswordHash,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

// Apply updates only the slots present in update.
func (r *userRepository) Apply(ctx context.Context, id int64, update UserUpdate) error {
	sets := []string{}
	args := []any{}

	if update.Username != nil {
		args = append(args, *update.Username)
		sets = append(sets, fmt.Sprintf("usuario=$%d", len(args)))
	}
	if update.PasswordHash != nil {
		args = append(args, *update.PasswordHash)
		sets = append(sets, fmt.Sprintf("password=$%d", len(args)))
	}
	if update.Role != nil {
		args = append(args, *update.Role)
		sets = append(sets, fmt.Sprintf("rol=$%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE usuarios SET %s WHERE id=$%d", strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) UsernameInUse(ctx context.Context, username string, excludeID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM usuarios WHERE usuario=$1 AND id<>$2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, username, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM usuarios WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
