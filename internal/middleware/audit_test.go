package middleware

import (
	"bytes"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestAuditLogsAuthenticatedSubject(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New()
	app.Use(RequestID())
	app.Use(Audit(logger))
	app.Get("/me", func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-42")
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/me", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	out := buf.String()
	if !strings.Contains(out, `"user_id":"user-42"`) {
		t.Fatalf("audit log missing user_id: %s", out)
	}
	if !strings.Contains(out, `"request_id"`) {
		t.Fatalf("audit log missing request_id: %s", out)
	}
}

func TestAuditAnonymousRequestOmitsSubject(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New()
	app.Use(Audit(logger))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	if _, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil)); err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if strings.Contains(buf.String(), `"user_id"`) {
		t.Fatalf("unexpected user_id in anonymous audit log: %s", buf.String())
	}
}
