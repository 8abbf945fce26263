package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/taskflow/accounts/internal/auth"
	"github.com/taskflow/accounts/internal/config"
	"github.com/taskflow/accounts/internal/identity"
)

// JWTAuth returns a middleware that validates bearer access tokens and
// resolves the caller into c.Locals("user_id"). Refresh tokens and tokens
// of disabled accounts are rejected. Failures are generic 401s.
func JWTAuth(cfg config.Config, repo identity.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		claims, err := auth.VerifyAccess(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		user, err := repo.FindByID(c.UserContext(), claims.Subject)
		if err != nil || !user.IsActive {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", user.ID)
		return c.Next()
	}
}
