package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/taskflow/accounts/internal/identity"
)

// Handler exposes the registration, login, refresh and logout endpoints.
type Handler struct {
	ids *identity.Service
	svc *Service
}

// NewHandler constructs the auth HTTP handler.
func NewHandler(ids *identity.Service, svc *Service) *Handler {
	return &Handler{ids: ids, svc: svc}
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

type credentialResponse struct {
	AccessToken  string           `json:"access"`
	RefreshToken string           `json:"refresh"`
	User         identity.Profile `json:"user"`
}

// Register creates an account and returns a token pair with the profile.
// Validation failures come back as a field-keyed 400 body and create
// nothing.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.ids.Register(c.UserContext(), identity.Registration{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		var ve *identity.ValidationError
		if errors.As(err, &ve) {
			return c.Status(http.StatusBadRequest).JSON(ve.Fields)
		}
		return err
	}

	pair, err := h.svc.IssuePair(user)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(credentialResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user.Profile(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates credentials and returns a fresh token pair. Unknown email
// and wrong password produce the same body.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.ids.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		var ve *identity.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.Status(http.StatusBadRequest).JSON(ve.Fields)
		case errors.Is(err, identity.ErrInvalidCredentials):
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"non_field_errors": []string{"Invalid email or password."},
			})
		case errors.Is(err, identity.ErrAccountDisabled):
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"non_field_errors": []string{"User account is disabled."},
			})
		default:
			return err
		}
	}

	pair, err := h.svc.IssuePair(user)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(credentialResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user.Profile(),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh"`
}

// Refresh exchanges a valid refresh token for a new access token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.RefreshToken == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"refresh": []string{"This field is required."},
		})
	}

	access, expiresIn, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return fiber.NewError(http.StatusUnauthorized, ErrInvalidToken.Error())
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access": access, "expires_in": expiresIn})
}

// Logout revokes the presented refresh token.
func (h *Handler) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.RefreshToken == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"refresh": []string{"This field is required."},
		})
	}

	if err := h.svc.Logout(c.UserContext(), req.RefreshToken); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return fiber.NewError(http.StatusUnauthorized, ErrInvalidToken.Error())
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}
