package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lostfound-service/internal/api/http/handlers"
	"github.com/spec-kit/lostfound-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration. RateLimiter,
// Uploads and Metrics are optional.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Items          *handlers.ItemsHandler
	AdminItems     *handlers.AdminItemsHandler
	Contact        *handlers.ContactHandler
	Notifications  *handlers.NotificationsHandler
	Stats          *handlers.StatsHandler
	Uploads        *handlers.UploadsHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *auth.RateLimiter
	Metrics        fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	api := app.Group("/api")
	api.Get("/test", cfg.Health.Test)
	api.Get("/stats", cfg.Stats.Summary)
	if cfg.Uploads != nil {
		api.Get("/uploads/*", cfg.Uploads.Get)
	}

	throttle := func(c *fiber.Ctx) error { return c.Next() }
	if cfg.RateLimiter != nil {
		throttle = cfg.RateLimiter.Handler()
	}
	authenticated := cfg.AuthMiddleware.Handle

	authGroup := api.Group("/auth")
	authGroup.Post("/register", throttle, cfg.Auth.Register)
	authGroup.Post("/login", throttle, cfg.Auth.Login)
	authGroup.Post("/forgot-password", throttle, cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", throttle, cfg.Auth.ResetPassword)
	authGroup.Post("/logout", authenticated, cfg.Auth.Logout)
	authGroup.Post("/change-password", authenticated, cfg.Auth.ChangePassword)

	items := api.Group("/items")
	items.Get("/", cfg.Items.List)
	items.Get("/search", cfg.Items.Search)
	items.Post("/upload", authenticated, cfg.Items.Upload)
	items.Get("/:id", cfg.Items.Get)
	items.Get("/:id/matches", cfg.Items.Matches)
	items.Post("/", authenticated, cfg.Items.Report)
	items.Put("/:id", authenticated, cfg.Items.Update)
	items.Delete("/:id", authenticated, cfg.Items.Cancel)
	items.Post("/:id/claim", authenticated, cfg.Items.Claim)

	users := api.Group("/users", authenticated)
	users.Get("/me", cfg.Users.Me)
	users.Put("/me", cfg.Users.UpdateMe)

	contact := api.Group("/contact", authenticated)
	contact.Post("/send", cfg.Contact.Send)
	contact.Get("/messages", cfg.Contact.Inbox)

	notifications := api.Group("/notifications", authenticated)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	admin := api.Group("/admin", authenticated, auth.RequireAdmin())
	admin.Get("/stats", cfg.Stats.Summary)

	admin.Get("/items", cfg.AdminItems.List)
	admin.Post("/items", cfg.AdminItems.Create)
	admin.Put("/items/:id", cfg.AdminItems.Update)
	admin.Patch("/items/:id/status", cfg.AdminItems.UpdateStatus)
	admin.Post("/items/:id/approve", cfg.AdminItems.Approve)
	admin.Post("/items/:id/reject", cfg.AdminItems.Reject)
	admin.Delete("/items/:id", cfg.AdminItems.Delete)

	admin.Get("/users", cfg.Users.List)
	admin.Post("/users", cfg.Users.Create)
	admin.Get("/users/:id", cfg.Users.Get)
	admin.Put("/users/:id", cfg.Users.Update)
	admin.Delete("/users/:id", cfg.Users.Delete)

	admin.Get("/messages", cfg.Contact.AdminList)
	admin.Post("/messages/:id/archive", cfg.Contact.Archive)
	admin.Delete("/messages/:id", cfg.Contact.Delete)
}
