package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/solicitudes-service/internal/api/http/handlers"
	"github.com/spec-kit/solicitudes-service/internal/auth"
	apperrors "github.com/spec-kit/solicitudes-service/pkg/util"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Solicitudes    *handlers.SolicitudesHandler
	Usuarios       *handlers.UsuariosHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")

	api.Get("/health", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	solicitudes := api.Group("/solicitudes", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	solicitudes.Get("/", cfg.Solicitudes.List)
	solicitudes.Get("/usuario/:usuario", cfg.Solicitudes.ListByUsuario)
	solicitudes.Post("/", cfg.Solicitudes.Create)
	solicitudes.Get("/:id/reporte", cfg.Solicitudes.Reporte)
	solicitudes.Put("/:id/numero-solicitud", cfg.Solicitudes.SetNumeroSolicitud)
	solicitudes.Put("/:id/numero-orden", cfg.Solicitudes.SetNumeroOrden)
	solicitudes.Put("/:id/estado", auth.RequireAdmin(), cfg.Solicitudes.CambiarEstado)
	solicitudes.Delete("/:id", auth.RequireAdmin(), cfg.Solicitudes.Delete)
	solicitudes.Get("/:id", cfg.Solicitudes.Get)

	usuarios := api.Group("/usuarios", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	usuarios.Get("/", cfg.Usuarios.List)
	usuarios.Post("/", cfg.Usuarios.Create)
	usuarios.Get("/:id", cfg.Usuarios.Get)
	usuarios.Put("/:id", cfg.Usuarios.Update)
	usuarios.Delete("/:id", cfg.Usuarios.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("route", map[string]any{"path": c.Path()})
	})
}
