package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/lostfound-service/internal/observability"
)

// AppOptions configures the fiber application.
type AppOptions struct {
	Name           string
	BodyLimit      int
	Timeout        time.Duration
	AllowedOrigins string
}

// NewApp creates the fiber application with the global middleware chain.
// Routes are registered separately with RegisterRoutes.
func NewApp(opts AppOptions, logger *zap.Logger, metrics *observability.Metrics) *fiber.App {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               opts.Name,
		BodyLimit:             opts.BodyLimit,
		ErrorHandler:          ErrorHandler(logger),
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, metrics, MiddlewareConfig{
		Timeout:        opts.Timeout,
		AllowedOrigins: opts.AllowedOrigins,
	})
	return app
}
