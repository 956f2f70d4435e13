package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/solicitudes-service/internal/api/dto"
	"github.com/spec-kit/solicitudes-service/internal/auth"
	"github.com/spec-kit/solicitudes-service/internal/domain"
	"github.com/spec-kit/solicitudes-service/internal/service"
	apperrors "github.com/spec-kit/solicitudes-service/pkg/util"
)

// SolicitudesHandler manages the solicitud/orden endpoints.
type SolicitudesHandler struct {
	service *service.RequestService
}

// NewSolicitudesHandler constructs handler.
func NewSolicitudesHandler(requestService *service.RequestService) *SolicitudesHandler {
	return &SolicitudesHandler{service: requestService}
}

// List GET /api/solicitudes.
func (h *SolicitudesHandler) List(c *fiber.Ctx) error {
	requests, err := h.service.ListAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(solicitudResponses(requests))
}

// Get GET /api/solicitudes/:id.
func (h *SolicitudesHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(solicitudResponse(req))
}

// ListByUsuario GET /api/solicitudes/usuario/:usuario.
func (h *SolicitudesHandler) ListByUsuario(c *fiber.Ctx) error {
	requests, err := h.service.ListByCreator(c.Context(), c.Params("usuario"))
	if err != nil {
		return err
	}
	return c.JSON(solicitudResponses(requests))
}

// Create POST /api/solicitudes.
func (h *SolicitudesHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateSolicitudRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	created, err := h.service.Create(c.Context(), actor, service.RequestCreateInput{
		Employee:      req.Empleado,
		Type:          req.TipoSolicitud,
		RequestNumber: req.NumeroSolicitud,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":   "solicitud created",
		"id":        created.ID,
		"solicitud": solicitudResponse(created),
	})
}

// SetNumeroSolicitud PUT /api/solicitudes/:id/numero-solicitud.
func (h *SolicitudesHandler) SetNumeroSolicitud(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.NumeroSolicitudRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.AssignRequestNumber(c.Context(), actor, id, req.NumeroSolicitud); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "numero_solicitud assigned"})
}

// SetNumeroOrden PUT /api/solicitudes/:id/numero-orden.
func (h *SolicitudesHandler) SetNumeroOrden(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.NumeroOrdenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.AssignOrderNumber(c.Context(), actor, id, req.NumeroOrden); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "numero_orden assigned"})
}

// CambiarEstado PUT /api/solicitudes/:id/estado.
func (h *SolicitudesHandler) CambiarEstado(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.CambiarEstadoRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.ChangeStatus(c.Context(), actor, id, service.StatusChangeInput{
		RequestStatus: req.EstadoSolicitud,
		OrderStatus:   req.EstadoOrden,
	}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "estado updated"})
}

// Delete DELETE /api/solicitudes/:id.
func (h *SolicitudesHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "solicitud deleted"})
}

// Reporte GET /api/solicitudes/:id/reporte.
func (h *SolicitudesHandler) Reporte(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, err := h.service.Report(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "report generated",
		"datos":   solicitudResponse(req),
	})
}

func actorFromContext(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{Username: principal.Username, Role: principal.Role}, nil
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func solicitudResponse(req *domain.Request) dto.SolicitudResponse {
	return dto.SolicitudResponse{
		ID:                 req.ID,
		Empleado:           req.Employee,
		TipoSolicitud:      req.Type,
		NumeroSolicitud:    req.RequestNumber,
		EstadoSolicitud:    req.RequestStatus,
		NumeroOrden:        req.OrderNumber,
		EstadoOrden:        req.OrderStatus,
		FechaCreacion:      req.CreatedAt,
		FechaActualizacion: req.UpdatedAt,
		CreadoPor:          req.CreatedBy,
		ActualizadoPor:     req.UpdatedBy,
	}
}

func solicitudResponses(requests []domain.Request) []dto.SolicitudResponse {
	items := make([]dto.SolicitudResponse, 0, len(requests))
	for i := range requests {
		items = append(items, solicitudResponse(&requests[i]))
	}
	return items
}
