package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taskflow/accounts/internal/identity"
)

// RegisterProfileRoutes wires the authenticated profile endpoints.
func RegisterProfileRoutes(r fiber.Router, h *identity.Handler) {
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.UpdateProfile)
	r.Patch("/profile", h.PatchProfile)
}
