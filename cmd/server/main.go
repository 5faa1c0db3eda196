package main

import (
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/tariff"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	// Structured logging (stdout until the DB handler is attached)
	logging.Setup(cfg.Env)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}
	if cfg.TelegramBotToken == "" {
		slog.Warn("TELEGRAM_BOT_TOKEN is not set: Telegram sign-in is disabled and notifications are only logged")
	}

	// Tariff catalog
	catalog, err := tariff.LoadFromFile(cfg.TariffsConfigPath, cfg.SilverTopDays)
	if err != nil {
		slog.Error("failed to load tariff catalog", "path", cfg.TariffsConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("tariff catalog loaded", "plans", len(catalog.All()))

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.StdoutHandler(cfg.Env),
		pgLogHandler,
	)))

	// Log and outbox cleanup
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Notification outbox
	var sender notify.Sender = notify.LogSender{}
	if cfg.TelegramBotToken != "" {
		client, err := notify.NewTelegramClient(cfg.TelegramAPIURL, cfg.TelegramBotToken)
		if err != nil {
			slog.Error("telegram bot unavailable, notifications will only be logged", "error", err)
		} else {
			sender = client
		}
	}
	dispatcherDone := make(chan struct{})
	notify.NewDispatcher(database.DB, sender, cfg.NotifyInterval, cfg.NotifyMaxAttempts, float64(cfg.NotifyRate)).
		Start(dispatcherDone)

	// Services
	moderationService := services.NewModerationService(database.DB)
	entitlementService := services.NewEntitlementService(database.DB)
	chatService := services.NewChatService(database.DB, moderationService, cfg.ChatDuration())
	matchService := services.NewMatchService(database.DB, entitlementService, chatService, moderationService,
		services.PolicyFromConfig(cfg), cfg.ChatDurationDays)
	paymentService := services.NewPaymentService(database.DB, cfg, catalog, entitlementService)
	listingService := services.NewListingService(database.DB, entitlementService)
	feedService := services.NewFeedService(database.DB, entitlementService)
	favoriteService := services.NewFavoriteService(database.DB, moderationService)
	authService := services.NewAuthService(database.DB, cfg)
	settingService := services.NewSettingService(database.DB)
	adminService := services.NewAdminService(database.DB)

	slog.Info("seeding public settings")
	if err := settingService.SeedDefaults(defaultSettings(cfg)); err != nil {
		slog.Error("failed to seed settings", "error", err)
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(metrics.Middleware())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Health:     handlers.NewHealthHandler(catalog),
		Listing:    handlers.NewListingHandler(listingService, feedService),
		Match:      handlers.NewMatchHandler(matchService),
		Chat:       handlers.NewChatHandler(chatService),
		Tariff:     handlers.NewTariffHandler(cfg, catalog, entitlementService, paymentService),
		Moderation: handlers.NewModerationHandler(moderationService),
		Favorite:   handlers.NewFavoriteHandler(favoriteService),
		Settings:   handlers.NewSettingsHandler(settingService),
		Admin:      handlers.NewAdminHandler(adminService, paymentService),
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

	close(dispatcherDone)
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func defaultSettings(cfg *config.Config) []models.Setting {
	return []models.Setting{
		{Key: "payment_card_number", Value: cfg.PaymentCardNumber, Type: "string"},
		{Key: "payment_card_name", Value: cfg.PaymentCardName, Type: "string"},
		{Key: "bot_username", Value: cfg.TelegramBotUsername, Type: "string"},
		{Key: "chat_duration_days", Value: strconv.Itoa(cfg.ChatDurationDays), Type: "int"},
		{Key: "maintenance_mode", Value: "false", Type: "bool"},
		{Key: "announcement_message", Value: "", Type: "string"},
	}
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
