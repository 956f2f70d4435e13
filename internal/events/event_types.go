package events

import (
	"time"

	"github.com/spec-kit/solicitudes-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventRequestNumberSet     EventType = "request_number_assigned"
	EventOrderNumberSet       EventType = "order_number_assigned"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestDeleted       EventType = "request_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID int64       `json:"request_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	Employee string             `json:"empleado"`
	Type     domain.RequestType `json:"tipo_solicitud"`
}

// NumberAssignedPayload payload.
type NumberAssignedPayload struct {
	Number string `json:"numero"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	RequestStatus *domain.Status `json:"estado_solicitud,omitempty"`
	OrderStatus   *domain.Status `json:"estado_orden,omitempty"`
}
