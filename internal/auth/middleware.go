package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/solicitudes-service/internal/domain"
	apperrors "github.com/spec-kit/solicitudes-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. It is built from the
// verified token claims alone; role checks never re-read the account row.
type Principal struct {
	UserID   int64
	Username string
	Role     domain.Role
}

// IsAdmin reports whether the caller holds the administrator role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == domain.RoleAdmin
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	c.Locals(principalKey, &Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
