package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/solicitudes-service/internal/api/dto"
	"github.com/spec-kit/solicitudes-service/internal/service"
	apperrors "github.com/spec-kit/solicitudes-service/pkg/util"
)

// AuthHandler exposes the login/logout endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Usuario, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "login successful",
		"token":   token,
		"usuario": dto.UsuarioResponse{
			ID:            user.ID,
			Usuario:       user.Username,
			Rol:           user.Role,
			FechaCreacion: user.CreatedAt,
		},
		"expires_at": exp,
	})
}

// Logout handles POST /api/auth/logout. The token is simply discarded by the
// client.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.Context(), ""); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "logout successful"})
}
