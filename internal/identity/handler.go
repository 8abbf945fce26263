package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the profile endpoints. The caller's identity is resolved
// by the bearer-token middleware into c.Locals("user_id") before these run.
type Handler struct {
	service *Service
}

// NewHandler constructs a profile HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type profileRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// GetProfile returns the authenticated caller's profile.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	user, err := h.service.GetProfile(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusUnauthorized, "authentication required")
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(user.Profile())
}

// UpdateProfile handles PUT: a whole-resource update that requires the
// email to be present in the body.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	return h.update(c, false)
}

// PatchProfile handles PATCH: absent fields are left untouched.
func (h *Handler) PatchProfile(c *fiber.Ctx) error {
	return h.update(c, true)
}

func (h *Handler) update(c *fiber.Ctx, partial bool) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	upd := ProfileUpdate{Email: req.Email, FirstName: req.FirstName, LastName: req.LastName}
	user, err := h.service.UpdateProfile(c.UserContext(), uid, upd, partial)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return c.Status(http.StatusBadRequest).JSON(ve.Fields)
		}
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusUnauthorized, "authentication required")
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(user.Profile())
}
