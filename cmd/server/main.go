package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/findmypaw/backend/internal/config"
	"github.com/findmypaw/backend/internal/database"
	"github.com/findmypaw/backend/internal/handlers"
	"github.com/findmypaw/backend/internal/logging"
	"github.com/findmypaw/backend/internal/mail"
	"github.com/findmypaw/backend/internal/middleware"
	"github.com/findmypaw/backend/internal/routes"
	"github.com/findmypaw/backend/internal/services"
	"github.com/findmypaw/backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdoutHandler := logging.Setup(cfg.AppEnv)

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
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// DB log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdoutHandler, dbLogHandler)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, logging.DefaultRetention, cleanupDone)

	// Media store
	media, mediaDir, err := newMediaStore(cfg)
	if err != nil {
		slog.Error("media store setup failed", "error", err)
		os.Exit(1)
	}

	// Mail relay for claim notifications
	var mailer mail.Mailer = mail.LogMailer{}
	switch {
	case cfg.SendGridEnabled():
		mailer = mail.NewSendGridMailer(mail.SendGridConfig{
			APIKey: cfg.SendGridAPIKey,
			Sender: cfg.SendGridSender,
		})
	case cfg.SMTPEnabled():
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Sender:   cfg.SMTPSender,
		})
	default:
		slog.Warn("neither SENDGRID_API_KEY nor SMTP_HOST set, claim notifications will only be logged")
	}

	// Services
	authService := services.NewAuthService(database.DB, cfg)
	dispatcher := services.NewNotificationDispatcher(database.DB, authService, mailer, cfg.NotifyInterval)
	reportService := services.NewReportService(database.DB, media)
	claimService := services.NewClaimService(database.DB, media, dispatcher)
	scanService := services.NewScanService(database.DB)
	classifyService := services.NewClassifyService(cfg.ClassifierURL, cfg.ClassifierTimeout)

	dispatcher.Start()

	maxUpload := int64(cfg.MaxUploadBytes())

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
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
		BodyLimit:    int(maxUpload) + 1024*1024,
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
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, cfg, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Health:   handlers.NewHealthHandler(database.DB),
		Legal:    handlers.NewLegalHandler("FindMyPaw", cfg.SupportEmail),
		Reports:  handlers.NewReportHandler(reportService, scanService, maxUpload),
		Claims:   handlers.NewClaimHandler(claimService, maxUpload),
		Classify: handlers.NewClassifyHandler(classifyService, maxUpload),
	}, routes.Options{
		MediaDir: mediaDir,
		Limiter:  routes.LimiterStorage(cfg),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "s3", cfg.S3Enabled(), "sendgrid", cfg.SendGridEnabled(), "smtp", cfg.SMTPEnabled())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	dispatcher.Stop()
	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// newMediaStore picks S3 when a bucket is configured and the local disk
// otherwise. The returned directory is non-empty only for the local store.
func newMediaStore(cfg *config.Config) (storage.MediaStore, string, error) {
	if cfg.S3Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	}

	slog.Warn("S3_BUCKET not set, storing media on local disk", "dir", cfg.MediaDir)
	store, err := storage.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		return nil, "", err
	}
	return store, store.Root(), nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
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
