package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/access-service/internal/api/http/handlers"
	"github.com/spec-kit/access-service/internal/auth"
	"github.com/spec-kit/access-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	Availability    *handlers.AvailabilityHandler
	Users           *handlers.UsersHandler
	BlockedAttempts *handlers.BlockedAttemptsHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle)

	// Mode control and the blocked-attempt audit trail belong to the IT dashboard.
	itOnly := admin.Group("", auth.RequireRole(domain.RoleIT))
	itOnly.Get("/maintenance/status", cfg.Availability.MaintenanceStatus)
	itOnly.Post("/maintenance/enable", cfg.Availability.EnableMaintenance)
	itOnly.Post("/maintenance/disable", cfg.Availability.DisableMaintenance)
	itOnly.Get("/system-lock/status", cfg.Availability.SystemLockStatus)
	itOnly.Post("/system-lock/enable", cfg.Availability.EnableSystemLock)
	itOnly.Post("/system-lock/disable", cfg.Availability.DisableSystemLock)
	itOnly.Get("/blocked-attempts/maintenance", cfg.BlockedAttempts.ListMaintenance)
	itOnly.Get("/blocked-attempts/system-lock", cfg.BlockedAttempts.ListSystemLock)

	userAdmin := admin.Group("/users", auth.RequireRole(domain.RoleIT, domain.RoleAdmin))
	userAdmin.Patch("/:id/unlock", cfg.Users.Unlock)
	userAdmin.Patch("/:id/status", cfg.Users.UpdateStatus)
}
