package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/ingest"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	db := database.DB

	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log sink (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(db)
	logging.WithDatabase(dbLogHandler)

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)

	// Redis session revocation (optional)
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("redis ping failed", "addr", cfg.RedisAddr, "error", err)
			cancel()
			os.Exit(1)
		}
		cancel()
		slog.Info("redis connected", "addr", cfg.RedisAddr)
	} else {
		slog.Warn("REDIS_ADDR not set; sessions stay valid until their tokens expire")
	}
	sessions := services.NewSessionStore(rdb, cfg.JWTAccessExpiry)

	// Services
	authService := services.NewAuthService(db, cfg, sessions, services.LogResetNotifier{Development: cfg.IsDevelopment()})
	userService := services.NewUserService(db, sessions)
	channelService := services.NewChannelService(db)
	thresholdService := services.NewThresholdService(db)
	alertService := services.NewAlertService(db)
	feedService := services.NewFeedService(db)
	accessService := services.NewAccessService(db)
	labService := services.NewLabService(db)
	apiKeyService := services.NewApiKeyService(db)
	activityService := services.NewActivityService(db)

	pipeline := ingest.NewPipeline(channelService, thresholdService, alertService, feedService)

	// MQTT device feeds (optional)
	var subscriber *ingest.MQTTSubscriber
	if cfg.MQTTBroker != "" {
		subscriber = ingest.NewMQTTSubscriber(cfg, pipeline)
		if err := subscriber.Start(); err != nil {
			slog.Error("mqtt start failed", "broker", cfg.MQTTBroker, "error", err)
			os.Exit(1)
		}
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, sessions, routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, cfg),
		User:      handlers.NewUserHandler(userService),
		Alert:     handlers.NewAlertHandler(alertService, channelService),
		Threshold: handlers.NewThresholdHandler(thresholdService),
		Channel:   handlers.NewChannelHandler(channelService, feedService),
		Lab:       handlers.NewLabHandler(labService, apiKeyService),
		Access:    handlers.NewAccessHandler(accessService),
		Activity:  handlers.NewActivityHandler(activityService),
		Ingest:    handlers.NewIngestHandler(apiKeyService, pipeline),
		Health:    handlers.NewHealthHandler(db, rdb),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if subscriber != nil {
		subscriber.Stop()
	}

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

// errorHandler catches errors that escape a handler, mostly fiber's own
// 404/405 and body-limit errors. 5xx details stay in the log.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, message = fe.Code, fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error",
			"request_id", fmt.Sprint(c.Locals("requestid")),
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error(),
		)
		message = "Internal server error"
	}
	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}
