package routes

import (
	"time"

	"github.com/findmypaw/backend/internal/config"
	"github.com/findmypaw/backend/internal/handlers"
	"github.com/findmypaw/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Health   *handlers.HealthHandler
	Legal    *handlers.LegalHandler
	Reports  *handlers.ReportHandler
	Claims   *handlers.ClaimHandler
	Classify *handlers.ClassifyHandler
}

// Options tune the HTTP surface. Zero values mean production defaults.
type Options struct {
	// MediaDir, when set, is served under /media for the local media store.
	MediaDir string
	// Limiter is where rate-limit counters live; nil keeps them in memory.
	Limiter fiber.Storage
	// DisableRateLimit turns the limiters off, for tests.
	DisableRateLimit bool
}

// LimiterStorage returns Redis-backed limiter storage when REDIS_HOST is set.
func LimiterStorage(cfg *config.Config) fiber.Storage {
	if cfg.RedisHost == "" {
		return nil
	}
	return redis.New(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		Database: 2,
		Reset:    false,
	})
}

func rateLimit(max int, opts Options) fiber.Handler {
	if opts.DisableRateLimit {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Storage:           opts.Limiter,
	})
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers, opts Options) {
	if opts.MediaDir != "" {
		app.Static("/media", opts.MediaDir, fiber.Static{MaxAge: 3600})
	}

	app.Get("/legal/privacy", h.Legal.PrivacyPolicy)
	app.Get("/legal/terms", h.Legal.TermsOfService)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(rateLimit(60, opts))

	api.Get("/health", h.Health.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(rateLimit(10, opts))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	// JWT is applied per group so public routes above stay public.
	protect := []fiber.Handler{middleware.JWTProtected(cfg), middleware.ActorRequired()}

	api.Post("/auth/logout", append(protect, h.Auth.Logout)...)
	api.Delete("/auth/account", append(protect, h.Auth.DeleteAccount)...)

	reports := api.Group("/reports", protect...)
	reports.Post("/", h.Reports.Create)
	reports.Get("/", h.Reports.Browse)
	reports.Get("/mine", h.Reports.ListMine)
	reports.Get("/stats", h.Reports.Stats)
	reports.Get("/scan", h.Reports.Scan)
	reports.Get("/:id", h.Reports.Get)
	reports.Delete("/:id", h.Reports.Delete)
	reports.Post("/:id/claims", h.Claims.File)

	claims := api.Group("/claims", protect...)
	claims.Get("/incoming", h.Claims.ListIncoming)
	claims.Get("/mine", h.Claims.ListMine)
	claims.Put("/:id/decision", h.Claims.Decide)

	api.Post("/predict", append(protect, h.Classify.Predict)...)
}
