package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/checkinhq/checkin-backend/internal/cache"
	"github.com/checkinhq/checkin-backend/internal/config"
	"github.com/checkinhq/checkin-backend/internal/database"
	"github.com/checkinhq/checkin-backend/internal/handlers"
	"github.com/checkinhq/checkin-backend/internal/logging"
	"github.com/checkinhq/checkin-backend/internal/middleware"
	"github.com/checkinhq/checkin-backend/internal/routes"
	"github.com/checkinhq/checkin-backend/internal/services"
	"github.com/checkinhq/checkin-backend/internal/storage"
	"github.com/checkinhq/checkin-backend/internal/stores"
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
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	ctx := context.Background()

	// Image blob store
	blobs, err := storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		slog.Error("blob store init failed", "endpoint", cfg.MinioEndpoint, "error", err)
		os.Exit(1)
	}

	// Optional Redis cache for authorized-ID sets
	var authzCache services.AuthzCache
	var redisCache *cache.AuthzCache
	if cfg.RedisAddr != "" {
		redisCache, err = cache.NewAuthzCache(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			slog.Error("redis init failed, continuing without cache", "addr", cfg.RedisAddr, "error", err)
		} else {
			authzCache = redisCache
		}
	}

	// Stores and services
	userStore := stores.NewUserStore(database.DB)
	reportStore := stores.NewReportStore(database.DB)
	imageStore := stores.NewImageStore(database.DB)

	authService := services.NewAuthService(database.DB, cfg)
	relationshipService := services.NewRelationshipService(userStore, authzCache)
	timelineService := services.NewTimelineService(relationshipService, reportStore)
	reportService := services.NewReportService(reportStore, userStore)
	imageService := services.NewImageService(imageStore, reportStore, blobs, relationshipService, cfg.MaxImageBytes)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler()
	userHandler := handlers.NewUserHandler(authService, reportService)
	followingHandler := handlers.NewFollowingHandler(relationshipService)
	followersHandler := handlers.NewFollowersHandler(relationshipService)
	timelineHandler := handlers.NewTimelineHandler(timelineService)
	reportHandler := handlers.NewReportHandler(reportService)
	imageHandler := handlers.NewImageHandler(imageService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.MaxImageBytes) + 64*1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
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
	app.Use(middleware.ClientHeader())

	// Routes
	routes.Setup(app, cfg, userStore, authHandler, healthHandler, userHandler, followingHandler, followersHandler, timelineHandler, reportHandler, imageHandler)

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

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
