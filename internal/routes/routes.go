package routes

import (
	"time"

	"github.com/checkinhq/checkin-backend/internal/config"
	"github.com/checkinhq/checkin-backend/internal/handlers"
	"github.com/checkinhq/checkin-backend/internal/middleware"
	"github.com/checkinhq/checkin-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	users services.UserStore,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	userHandler *handlers.UserHandler,
	followingHandler *handlers.FollowingHandler,
	followersHandler *handlers.FollowersHandler,
	timelineHandler *handlers.TimelineHandler,
	reportHandler *handlers.ReportHandler,
	imageHandler *handlers.ImageHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// POST /users doubles as registration (no token) and profile update
	// (bearer token); the handler branches on the Authorization header.
	api.Post("/users", userHandler.Save)

	// Protected routes (JWT required) - apply middleware to individual routes
	// so it never affects public routes
	jwt := middleware.JWTProtected(cfg)
	user := middleware.CurrentUser(users)

	api.Get("/users", jwt, user, userHandler.Profile)

	api.Post("/following/:username", jwt, user, followingHandler.Create)
	api.Get("/following", jwt, user, followingHandler.List)
	api.Delete("/following/:id", jwt, user, followingHandler.Remove)

	api.Get("/followers", jwt, user, followersHandler.List)
	api.Post("/followers/:id", jwt, user, followersHandler.Update)

	api.Post("/timeline/from/:timefrom/to/:timeto", jwt, user, timelineHandler.ByTime)
	api.Post("/timeline/:time/:number", jwt, user, timelineHandler.ByPage)

	api.Post("/reports", jwt, user, reportHandler.Create)
	api.Get("/reports/:skip/:number", jwt, user, reportHandler.List)
	api.Post("/reports/:id", jwt, user, reportHandler.Update)
	api.Delete("/reports/:id", jwt, user, reportHandler.Remove)

	api.Put("/images", jwt, user, imageHandler.Create)
	api.Get("/images/:id", jwt, user, imageHandler.Retrieve)
	api.Delete("/images/:id", jwt, user, imageHandler.Remove)
}
