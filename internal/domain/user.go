package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleUser  Role = "Usuario"
	RoleAdmin Role = "Administrador"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the domain model for accounts that log in and file solicitudes.
type User struct {
	ID           int64
	Username     string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}
