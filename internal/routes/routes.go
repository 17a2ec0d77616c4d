package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"

	"github.com/myflix/movie-api/internal/auth"
	"github.com/myflix/movie-api/internal/config"
	"github.com/myflix/movie-api/internal/metrics"
	"github.com/myflix/movie-api/internal/middleware"
	"github.com/myflix/movie-api/internal/service"
	"github.com/myflix/movie-api/internal/store"
)

// Setup configures all API routes
func Setup(app *fiber.App, cfg *config.Config, logger *logrus.Logger, middlewareManager *middleware.Manager, users store.UserStore, movies store.MovieStore, codec *auth.Codec) {
	favorites := service.NewFavoritesService(users, movies, logger)

	// Create route handlers
	authHandler := NewAuthHandler(users, codec, logger)
	userHandler := NewUserHandler(users, favorites, logger)
	movieHandler := NewMovieHandler(movies, logger)

	// Health check endpoints (no auth required)
	app.Get("/healthz", healthCheck)
	app.Get("/readyz", readinessCheck(middlewareManager, users))
	app.Get("/version", versionHandler)

	// Metrics endpoint (no auth required)
	app.Get(cfg.Observability.MetricsPath, metrics.PrometheusHandler())

	// Swagger documentation endpoint (no auth required)
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Welcome page (no auth required)
	app.Get("/", welcomeHandler)

	// Global middleware for API routes
	app.Use(metrics.HTTPMetricsMiddleware())
	app.Use(middlewareManager.ErrorLogger.Handle())
	app.Use(middlewareManager.Idempotency.Handle())
	app.Use(middlewareManager.Idempotency.ResponseCapture())

	// Public endpoints: login and registration
	app.Post("/login", authHandler.Login)
	app.Post("/users", userHandler.Register)

	// Protected routes (require authentication)
	protected := app.Group("", middlewareManager.Auth.Authenticate())

	// User routes
	protected.Get("/users", userHandler.List)
	protected.Get("/users/:id", userHandler.Get)
	protected.Get("/users/:id/favorites", userHandler.GetFavorites)
	protected.Put("/users/:id", userHandler.Update)
	protected.Delete("/users/:id", userHandler.Delete)

	// Favorites relation
	protected.Post("/users/:id/movies/:movieId", userHandler.AddFavorite)
	protected.Delete("/users/:id/movies/:movieId", userHandler.RemoveFavorite)

	// Catalog routes. Genre and director come before :id so the
	// literal segments match first.
	protected.Get("/movies/genre/:name", movieHandler.GetGenre)
	protected.Get("/movies/director/:name", movieHandler.GetDirector)
	protected.Get("/movies", movieHandler.List)
	protected.Get("/movies/:id", movieHandler.Get)

	// 404 handler
	app.Use(notFoundHandler)
}

// healthCheck returns the health status of the service
// @Summary Health check
// @Description Check if the service is healthy
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Healthy"
// @Router /healthz [get]
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "movie-api",
	})
}

// readinessCheck checks if the service is ready to accept traffic
// @Summary Readiness check
// @Description Check if the service is ready to accept traffic
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Ready"
// @Failure 503 {object} map[string]interface{} "Not ready"
// @Router /readyz [get]
func readinessCheck(middlewareManager *middleware.Manager, users store.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		redisHealthCheck := middleware.RedisHealthCheck(middlewareManager.RedisClient, middlewareManager.Logger)
		if err := redisHealthCheck(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":    "not ready",
				"reason":    "redis unavailable",
				"error":     err.Error(),
				"timestamp": time.Now().UTC(),
			})
		}

		// Store implementations expose a health probe when the engine
		// supports one.
		if hc, ok := users.(interface{ HealthCheck(context.Context) error }); ok {
			if err := hc.HealthCheck(c.Context()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status":    "not ready",
					"reason":    "store unavailable",
					"error":     err.Error(),
					"timestamp": time.Now().UTC(),
				})
			}
		}

		return c.JSON(fiber.Map{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "movie-api",
		})
	}
}

// versionHandler returns version information
// @Summary Version information
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Version info"
// @Router /version [get]
func versionHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "movie-api",
		"version": getVersion(),
		"commit":  getCommit(),
		"built":   getBuildTime(),
	})
}

// welcomeHandler greets unauthenticated visitors
func welcomeHandler(c *fiber.Ctx) error {
	return c.SendString("Welcome to the movie api!")
}

// notFoundHandler handles 404 errors
func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": fiber.Map{
			"code":     "NOT_FOUND",
			"message":  "The requested resource was not found",
			"path":     c.Path(),
			"trace_id": c.Get("X-Request-ID"),
		},
	})
}

// Helper functions for version info
func getVersion() string {
	// This would typically be set during build
	return "dev"
}

func getCommit() string {
	// This would typically be set during build
	return "unknown"
}

func getBuildTime() string {
	// This would typically be set during build
	return "unknown"
}
