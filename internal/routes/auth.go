package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taskflow/accounts/internal/auth"
)

// RegisterAuthRoutes wires the public registration and token endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	group.Post("/login", h.Login)
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", h.Logout)
}
