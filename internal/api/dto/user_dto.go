package dto

import "github.com/spec-kit/solicitudes-service/internal/domain"

// CreateUsuarioRequest payload.
type CreateUsuarioRequest struct {
	Usuario  string      `json:"usuario"`
	Password string      `json:"password"`
	Rol      domain.Role `json:"rol"`
}

// UpdateUsuarioRequest is a partial update; absent fields stay untouched.
type UpdateUsuarioRequest struct {
	Usuario  *string      `json:"usuario,omitempty"`
	Password *string      `json:"password,omitempty"`
	Rol      *domain.Role `json:"rol,omitempty"`
}
