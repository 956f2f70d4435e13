package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/solicitudes-service/internal/api/dto"
	"github.com/spec-kit/solicitudes-service/internal/domain"
	"github.com/spec-kit/solicitudes-service/internal/service"
	apperrors "github.com/spec-kit/solicitudes-service/pkg/util"
)

// UsuariosHandler exposes the admin-only account endpoints.
type UsuariosHandler struct {
	users *service.UserService
}

// NewUsuariosHandler constructs handler.
func NewUsuariosHandler(userService *service.UserService) *UsuariosHandler {
	return &UsuariosHandler{users: userService}
}

// List GET /api/usuarios.
func (h *UsuariosHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UsuarioResponse, 0, len(users))
	for i := range users {
		items = append(items, usuarioResponse(&users[i]))
	}
	return c.JSON(items)
}

// Get GET /api/usuarios/:id.
func (h *UsuariosHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(usuarioResponse(user))
}

// Create POST /api/usuarios.
func (h *UsuariosHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUsuarioRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.Create(c.Context(), service.UserCreateInput{
		Username: req.Usuario,
		Password: req.Password,
		Role:     req.Rol,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "usuario created",
		"id":      user.ID,
		"usuario": usuarioResponse(user),
	})
}

// Update PUT /api/usuarios/:id.
func (h *UsuariosHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUsuarioRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.users.Update(c.Context(), id, service.UserUpdateInput{
		Username: req.Usuario,
		Password: req.Password,
		Role:     req.Rol,
	}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "usuario updated"})
}

// Delete DELETE /api/usuarios/:id.
func (h *UsuariosHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "usuario deleted"})
}

func usuarioResponse(user *domain.User) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:            user.ID,
		Usuario:       user.Username,
		Rol:           user.Role,
		FechaCreacion: user.CreatedAt,
	}
}
