package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers bundles every HTTP handler the route table needs.
type Handlers struct {
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Alert     *handlers.AlertHandler
	Threshold *handlers.ThresholdHandler
	Channel   *handlers.ChannelHandler
	Lab       *handlers.LabHandler
	Access    *handlers.AccessHandler
	Activity  *handlers.ActivityHandler
	Ingest    *handlers.IngestHandler
	Health    *handlers.HealthHandler
}

var (
	adminOnly   = []models.UserRole{models.RoleAdmin}
	writerRoles = []models.UserRole{models.RoleAdmin, models.RoleSuperUser}
	alertRoles  = []models.UserRole{models.RoleAdmin, models.RoleSuperUser, models.RoleStandardUser}
)

func Setup(app *fiber.App, cfg *config.Config, sessions *services.SessionStore, h Handlers) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Device ingestion authenticates with X-API-Key, not a session.
	api.Post("/ingest/:channelId", h.Ingest.Reading)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	authGroup := api.Group("/auth")
	authGroup.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	authGroup.Post("/signup", h.Auth.SignUp)
	authGroup.Post("/signin", h.Auth.SignIn)
	authGroup.Post("/refresh", h.Auth.Refresh)
	authGroup.Post("/forgot-password", h.Auth.ForgotPassword)
	authGroup.Post("/reset-password", h.Auth.ResetPassword)

	jwt := middleware.JWTProtected(cfg, sessions)
	writers := middleware.RequireRoles(writerRoles...)
	admins := middleware.RequireRoles(adminOnly...)
	alertUsers := middleware.RequireRoles(alertRoles...)

	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Post("/auth/change-password", jwt, h.Auth.ChangePassword)
	api.Get("/profile", jwt, h.Auth.GetProfile)
	api.Put("/profile", jwt, h.Auth.UpdateProfile)
	api.Get("/profile/organisation", jwt, h.Auth.GetOrganisation)
	api.Put("/profile/organisation", jwt, h.Auth.UpdateOrganisation)

	// Alerts
	api.Post("/alerts", jwt, h.Alert.Create)
	api.Get("/alerts", jwt, alertUsers, h.Alert.List)
	api.Get("/alerts/export.csv", jwt, alertUsers, h.Alert.ExportCSV)
	api.Get("/alerts/export.xlsx", jwt, alertUsers, h.Alert.ExportXLSX)
	api.Patch("/alerts/:id/resolve", jwt, alertUsers, h.Alert.Resolve)
	api.Delete("/alerts/:id", jwt, admins, h.Alert.Delete)

	// Thresholds and global defaults
	api.Get("/thresholds", jwt, h.Threshold.List)
	api.Post("/thresholds", jwt, writers, h.Threshold.Save)
	api.Get("/settings", jwt, h.Threshold.ListDefaults)
	api.Post("/settings", jwt, writers, h.Threshold.SaveDefaults)

	// Channels and feeds
	api.Get("/channels", jwt, h.Channel.List)
	api.Get("/channels/:id", jwt, h.Channel.Get)
	api.Get("/channels/:id/feeds", jwt, h.Channel.Feeds)
	api.Post("/channels", jwt, admins, h.Channel.Create)
	api.Delete("/channels/:id", jwt, admins, h.Channel.Delete)

	// Labs and API keys
	api.Get("/labs", jwt, h.Lab.List)
	api.Post("/labs", jwt, admins, h.Lab.Create)
	api.Get("/labs/:id/keys", jwt, admins, h.Lab.ListKeys)
	api.Post("/keys", jwt, admins, h.Lab.CreateKey)
	api.Delete("/keys/:id", jwt, admins, h.Lab.RevokeKey)

	// Access grants
	api.Get("/access", jwt, h.Access.List)
	api.Post("/access", jwt, admins, h.Access.Grant)
	api.Delete("/access", jwt, admins, h.Access.Remove)

	// Activity logs
	api.Get("/activity-logs", jwt, h.Activity.List)
	api.Post("/activity-logs", jwt, h.Activity.Create)

	// User administration
	users := api.Group("/users", jwt, admins)
	users.Get("/", h.User.List)
	users.Put("/:id/role", h.User.SetRole)
	users.Post("/activate", h.User.Activate)
	users.Post("/deactivate", h.User.Deactivate)
	api.Get("/usage-history", jwt, admins, h.Activity.UsageHistory)

	// Dashboard pages
	app.Use(middleware.PageGuard(auth.NewPolicy(cfg.GuardPrefixes), cfg, sessions))
	if cfg.WebRoot != "" {
		app.Static("/", cfg.WebRoot, fiber.Static{Index: "index.html"})
	}
}
