package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taskflow/accounts/internal/auth"
	"github.com/taskflow/accounts/internal/config"
	"github.com/taskflow/accounts/internal/identity"
	"github.com/taskflow/accounts/internal/middleware"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var repo identity.Repository
	if d.DB != nil {
		repo = identity.NewPostgresRepository(d.DB)
	} else {
		repo = identity.NewMemoryRepository()
	}
	identitySvc := identity.NewService(repo)
	authSvc := auth.NewService(d.Cfg, repo, d.Cache)

	authHandler := auth.NewHandler(identitySvc, authSvc)
	profileHandler := identity.NewHandler(identitySvc)

	api := app.Group("/api/v1")

	// Public routes
	RegisterAuthRoutes(api, authHandler)

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(d.Cfg, repo))
	RegisterProfileRoutes(protected, profileHandler)

	return nil
}
