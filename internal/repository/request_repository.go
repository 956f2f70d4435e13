package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/solicitudes-service/internal/domain"
)

// RequestUpdate is a typed partial update for a solicitud/orden row. Only the
// non-nil slots are applied; an absent slot never resets a column.
type RequestUpdate struct {
	RequestNumber *string
	OrderNumber   *string
	RequestStatus *domain.Status
	OrderStatus   *domain.Status
}

// Empty reports whether no slot is set.
func (u RequestUpdate) Empty() bool {
	return u.RequestNumber == nil && u.OrderNumber == nil &&
		u.RequestStatus == nil && u.OrderStatus == nil
}

// RequestRepository encapsulates solicitud persistence.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.Request) error
	GetByID(ctx context.Context, id int64) (*domain.Request, error)
	ListAll(ctx context.Context) ([]domain.Request, error)
	ListByCreator(ctx context.Context, username string) ([]domain.Request, error)
	Apply(ctx context.Context, id int64, update RequestUpdate, updatedBy string) error
	RequestNumberInUse(ctx context.Context, number string, excludeID int64) (bool, error)
	OrderNumberInUse(ctx context.Context, number string, excludeID int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.Request) error {
	const query = `
        INSERT INTO solicitudes_ordenes (empleado, tipo_solicitud, numero_solicitud, estado_solicitud, estado_orden, creado_por, actualizado_por)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, fecha_creacion, fecha_actualizacion`
	return r.pool.QueryRow(ctx, query,
		req.Employee,
		req.Type,
		req.RequestNumber,
		req.RequestStatus,
		req.OrderStatus,
		req.CreatedBy,
		req.UpdatedBy,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *requestRepository) GetByID(ctx context.Context, id int64) (*domain.Request, error) {
	const query = `
        SELECT id, empleado, tipo_solicitud, numero_solicitud, estado_solicitud,
               numero_orden, estado_orden, fecha_creacion, fecha_actualizacion, creado_por, actualizado_por
        FROM solicitudes_ordenes WHERE id=$1`
	var req domain.Request
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.Employee,
		&req.Type,
		&req.RequestNumber,
		&req.RequestStatus,
		&req.OrderNumber,
		&req.OrderStatus,
		&req.CreatedAt,
		&req.UpdatedAt,
		&req.CreatedBy,
		&req.UpdatedBy,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) ListAll(ctx context.Context) ([]domain.Request, error) {
	const query = `
        SELECT id, empleado, tipo_solicitud, numero_solicitud, estado_solicitud,
               numero_orden, estado_orden, fecha_creacion, fecha_actualizacion, creado_por, actualizado_por
        FROM solicitudes_ordenes ORDER BY fecha_creacion DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *requestRepository) ListByCreator(ctx context.Context, username string) ([]domain.Request, error) {
	const query = `
        SELECT id, empleado, tipo_solicitud, numero_solicitud, estado_solicitud,
               numero_orden, estado_orden, fecha_creacion, fecha_actualizacion, creado_por, actualizado_por
        FROM solicitudes_ordenes WHERE creado_por=$1 ORDER BY fecha_creacion DESC`
	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

// Apply updates only the slots present in update, always refreshing the
// editor and the update timestamp.
func (r *requestRepository) Apply(ctx context.Context, id int64, update RequestUpdate, updatedBy string) error {
	sets := []string{}
	args := []any{}

	if update.RequestNumber != nil {
		args = append(args, *update.RequestNumber)
		sets = append(sets, fmt.Sprintf("numero_solicitud=$%d", len(args)))
	}
	if update.OrderNumber != nil {
		args = append(args, *update.OrderNumber)
		sets = append(sets, fmt.Sprintf("numero_orden=$%d", len(args)))
	}
	if update.RequestStatus != nil {
		args = append(args, *update.RequestStatus)
		sets = append(sets, fmt.Sprintf("estado_solicitud=$%d", len(args)))
	}
	if update.OrderStatus != nil {
		args = append(args, *update.OrderStatus)
		sets = append(sets, fmt.Sprintf("estado_orden=$%d", len(args)))
	}

	args = append(args, updatedBy)
	sets = append(sets, fmt.Sprintf("actualizado_por=$%d", len(args)), "fecha_actualizacion=NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE solicitudes_ordenes SET %s WHERE id=$%d",
		strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) RequestNumberInUse(ctx context.Context, number string, excludeID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM solicitudes_ordenes WHERE numero_solicitud=$1 AND id<>$2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, number, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *requestRepository) OrderNumberInUse(ctx context.Context, number string, excludeID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM solicitudes_ordenes WHERE numero_orden=$1 AND id<>$2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, number, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *requestRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM solicitudes_ordenes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanRequests(rows pgx.Rows) ([]domain.Request, error) {
	var result []domain.Request
	for rows.Next() {
		var req domain.Request
		if err := rows.Scan(
			&req.ID,
			&req.Employee,
			&req.Type,
			&req.RequestNumber,
			&req.RequestStatus,
			&req.OrderNumber,
			&req.OrderStatus,
			&req.CreatedAt,
			&req.UpdatedAt,
			&req.CreatedBy,
			&req.UpdatedBy,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation. The UNIQUE columns on the table close the race between the
// in-use check and the write.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
