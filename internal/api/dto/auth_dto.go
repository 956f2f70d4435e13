package dto

import (
	"time"

	"github.com/spec-kit/solicitudes-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Usuario  string `json:"usuario"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UsuarioResponse is the public view of an account; the credential hash is
// never serialized.
type UsuarioResponse struct {
	ID            int64       `json:"id"`
	Usuario       string      `json:"usuario"`
	Rol           domain.Role `json:"rol"`
	FechaCreacion time.Time   `json:"fecha_creacion"`
}
