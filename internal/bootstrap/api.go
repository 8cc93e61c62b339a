package bootstrap

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"mailpilot/adapter/in/http"
	"mailpilot/adapter/out/provider"
	"mailpilot/config"
	"mailpilot/infra/middleware"
	"mailpilot/pkg/logger"
)

// NewAPI builds the fiber application with every route registered.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "mailpilot-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize dependencies")
		return nil, cleanup, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		BodyLimit:             10 * 1024 * 1024,

		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})

	// Global middleware stack (order matters).
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.ClientURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: true,
	}))

	// Public routes.
	http.NewHealthHandler(deps.Pool).Register(app)
	http.NewAuthHandler(
		deps.OAuthConfig,
		deps.AuthService,
		provider.FetchIdentity,
		deps.StateStore,
		cfg.ClientURL,
	).Register(app)

	// Authenticated API.
	api := app.Group("/api", middleware.BearerAuth(deps.AuthService))
	http.NewUserHandler(deps.UserRepo).Register(api)
	http.NewMailHandler(deps.GmailProvider, deps.Extractor, deps.Orchestrator, cfg.InboxMaxResults).Register(api)
	http.NewAIHandler(deps.Orchestrator, deps.GmailProvider).Register(api)
	http.NewCalendarHandler(deps.Orchestrator, deps.CalendarService).Register(api)

	return app, cleanup, nil
}
