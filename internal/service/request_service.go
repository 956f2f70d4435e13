package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/solicitudes-service/internal/domain"
	"github.com/spec-kit/solicitudes-service/internal/events"
	"github.com/spec-kit/solicitudes-service/internal/repository"
	apperrors "github.com/spec-kit/solicitudes-service/pkg/util"
)

const maxNumberLength = 50

// Actor identifies the caller of a lifecycle operation, taken from verified
// token claims.
type Actor struct {
	Username string
	Role     domain.Role
}

// IsAdmin reports whether the actor holds the administrator role.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// RequestService owns the solicitud/orden lifecycle: creation, numbering
// under global uniqueness, role-gated status changes, deletion and reports.
type RequestService struct {
	requests   repository.RequestRepository
	dispatcher events.Dispatcher
}

// RequestDependencies bundles requirements for the request service.
type RequestDependencies struct {
	RequestRepo repository.RequestRepository
	Dispatcher  events.Dispatcher
}

// RequestCreateInput describes solicitud creation payload.
type RequestCreateInput struct {
	Employee      string
	Type          domain.RequestType
	RequestNumber *string
}

// StatusChangeInput is a partial update over the two status fields. An
// absent field is left untouched, never reset.
type StatusChangeInput struct {
	RequestStatus *domain.Status
	OrderStatus   *domain.Status
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.RequestRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create validates and persists a new solicitud with both statuses pending.
func (s *RequestService) Create(ctx context.Context, actor Actor, input RequestCreateInput) (*domain.Request, error) {
	employee := strings.TrimSpace(input.Employee)
	if len(employee) < 3 || len(employee) > 100 {
		return nil, apperrors.NewValidationError("empleado must be between 3 and 100 characters", nil)
	}
	if !input.Type.Valid() {
		return nil, apperrors.NewValidationError("invalid tipo_solicitud", map[string]any{"tipo_solicitud": input.Type})
	}

	var requestNumber *string
	if input.RequestNumber != nil {
		if number := strings.TrimSpace(*input.RequestNumber); number != "" {
			if len(number) > maxNumberLength {
				return nil, apperrors.NewValidationError("numero_solicitud exceeds 50 characters", nil)
			}
			inUse, err := s.requests.RequestNumberInUse(ctx, number, 0)
			if err != nil {
				return nil, err
			}
			if inUse {
				return nil, apperrors.NewConflict("numero_solicitud already in use", map[string]any{"numero_solicitud": number})
			}
			requestNumber = &number
		}
	}

	req := &domain.Request{
		Employee:      employee,
		Type:          input.Type,
		RequestNumber: requestNumber,
		RequestStatus: domain.StatusPending,
		OrderStatus:   domain.StatusPending,
		CreatedBy:     actor.Username,
		UpdatedBy:     actor.Username,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("numero_solicitud already in use", nil)
		}
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: req.ID,
		Actor:     actor.Username,
		Payload: events.RequestCreatedPayload{
			Employee: req.Employee,
			Type:     req.Type,
		},
	})
	return req, nil
}

// AssignRequestNumber sets the solicitud-side tracking number. Re-invoking
// with the same value is allowed; the record itself never collides with its
// own number.
func (s *RequestService) AssignRequestNumber(ctx context.Context, actor Actor, id int64, number string) error {
	return s.assignNumber(ctx, actor, id, number, true)
}

// AssignOrderNumber sets the orden-side tracking number under the same rules
// as AssignRequestNumber, in an independent uniqueness namespace.
func (s *RequestService) AssignOrderNumber(ctx context.Context, actor Actor, id int64, number string) error {
	return s.assignNumber(ctx, actor, id, number, false)
}

func (s *RequestService) assignNumber(ctx context.Context, actor Actor, id int64, number string, requestSide bool) error {
	req, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && req.CreatedBy != actor.Username {
		return apperrors.NewForbidden("only the creator or an administrator may assign numbers")
	}

	number = strings.TrimSpace(number)
	if number == "" {
		return apperrors.NewValidationError("numero is required", nil)
	}
	if len(number) > maxNumberLength {
		return apperrors.NewValidationError("numero exceeds 50 characters", nil)
	}

	var (
		inUse     bool
		update    repository.RequestUpdate
		eventType events.EventType
	)
	if requestSide {
		inUse, err = s.requests.RequestNumberInUse(ctx, number, id)
		update.RequestNumber = &number
		eventType = events.EventRequestNumberSet
	} else {
		inUse, err = s.requests.OrderNumberInUse(ctx, number, id)
		update.OrderNumber = &number
		eventType = events.EventOrderNumberSet
	}
	if err != nil {
		return err
	}
	if inUse {
		return apperrors.NewConflict("numero already in use", map[string]any{"numero": number})
	}

	if err := s.requests.Apply(ctx, id, update, actor.Username); err != nil {
		if repository.IsUniqueViolation(err) {
			return apperrors.NewConflict("numero already in use", map[string]any{"numero": number})
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("solicitud", map[string]any{"id": id})
		}
		return err
	}

	s.publishEvent(ctx, events.Event{
		Type:      eventType,
		RequestID: id,
		Actor:     actor.Username,
		Payload:   events.NumberAssignedPayload{Number: number},
	})
	return nil
}

// ChangeStatus applies a partial update over the two status fields.
// Administrator only. Transitions are unconstrained beyond enumeration
// membership; an approved orden may move back to pending.
func (s *RequestService) ChangeStatus(ctx context.Context, actor Actor, id int64, input StatusChangeInput) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("administrator role required")
	}
	if input.RequestStatus == nil && input.OrderStatus == nil {
		return apperrors.NewValidationError("at least one of estado_solicitud, estado_orden is required", nil)
	}
	if input.RequestStatus != nil && !input.RequestStatus.Valid() {
		return apperrors.NewValidationError("invalid estado_solicitud", map[string]any{"estado_solicitud": *input.RequestStatus})
	}
	if input.OrderStatus != nil && !input.OrderStatus.Valid() {
		return apperrors.NewValidationError("invalid estado_orden", map[string]any{"estado_orden": *input.OrderStatus})
	}

	update := repository.RequestUpdate{
		RequestStatus: input.RequestStatus,
		OrderStatus:   input.OrderStatus,
	}
	if err := s.requests.Apply(ctx, id, update, actor.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("solicitud", map[string]any{"id": id})
		}
		return err
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestStatusChanged,
		RequestID: id,
		Actor:     actor.Username,
		Payload: events.StatusChangedPayload{
			RequestStatus: input.RequestStatus,
			OrderStatus:   input.OrderStatus,
		},
	})
	return nil
}

// Delete removes a record permanently. Administrator only; no referential
// checks.
func (s *RequestService) Delete(ctx context.Context, actor Actor, id int64) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("administrator role required")
	}
	if err := s.requests.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("solicitud", map[string]any{"id": id})
		}
		return err
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestDeleted,
		RequestID: id,
		Actor:     actor.Username,
	})
	return nil
}

// Report returns the full record, eligible only while the orden is approved.
func (s *RequestService) Report(ctx context.Context, id int64) (*domain.Request, error) {
	req, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.OrderStatus != domain.StatusApproved {
		return nil, apperrors.NewPreconditionFailed("reports are only available for approved orders")
	}
	return req, nil
}

// GetByID fetches a single record.
func (s *RequestService) GetByID(ctx context.Context, id int64) (*domain.Request, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("solicitud", map[string]any{"id": id})
		}
		return nil, err
	}
	return req, nil
}

// ListAll returns every record, newest first.
func (s *RequestService) ListAll(ctx context.Context) ([]domain.Request, error) {
	return s.requests.ListAll(ctx)
}

// ListByCreator returns the records created by username, newest first.
func (s *RequestService) ListByCreator(ctx context.Context, username string) ([]domain.Request, error) {
	return s.requests.ListByCreator(ctx, username)
}

func (s *RequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
