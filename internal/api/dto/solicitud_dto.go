package dto

import (
	"time"

	"github.com/spec-kit/solicitudes-service/internal/domain"
)

// CreateSolicitudRequest payload.
type CreateSolicitudRequest struct {
	Empleado        string             `json:"empleado"`
	TipoSolicitud   domain.RequestType `json:"tipo_solicitud"`
	NumeroSolicitud *string            `json:"numero_solicitud,omitempty"`
}

// NumeroSolicitudRequest payload.
type NumeroSolicitudRequest struct {
	NumeroSolicitud string `json:"numero_solicitud"`
}

// NumeroOrdenRequest payload.
type NumeroOrdenRequest struct {
	NumeroOrden string `json:"numero_orden"`
}

// CambiarEstadoRequest is a partial update; absent fields stay untouched.
type CambiarEstadoRequest struct {
	EstadoSolicitud *domain.Status `json:"estado_solicitud,omitempty"`
	EstadoOrden     *domain.Status `json:"estado_orden,omitempty"`
}

// SolicitudResponse mirrors the persisted record on the wire.
type SolicitudResponse struct {
	ID                 int64              `json:"id"`
	Empleado           string             `json:"empleado"`
	TipoSolicitud      domain.RequestType `json:"tipo_solicitud"`
	NumeroSolicitud    *string            `json:"numero_solicitud"`
	EstadoSolicitud    domain.Status      `json:"estado_solicitud"`
	NumeroOrden        *string            `json:"numero_orden"`
	EstadoOrden        domain.Status      `json:"estado_orden"`
	FechaCreacion      time.Time          `json:"fecha_creacion"`
	FechaActualizacion time.Time          `json:"fecha_actualizacion"`
	CreadoPor          string             `json:"creado_por"`
	ActualizadoPor     string             `json:"actualizado_por"`
}
