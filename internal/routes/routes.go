package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Health     *handlers.HealthHandler
	Listing    *handlers.ListingHandler
	Match      *handlers.MatchHandler
	Chat       *handlers.ChatHandler
	Tariff     *handlers.TariffHandler
	Moderation *handlers.ModerationHandler
	Favorite   *handlers.FavoriteHandler
	Settings   *handlers.SettingsHandler
	Admin      *handlers.AdminHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)
	api.Get("/config", h.Settings.GetConfig)
	api.Get("/tariffs", h.Tariff.List)

	// Auth: stricter limit, 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/telegram", h.Auth.Telegram)

	// Admin: admin token or an admin user's JWT
	admin := api.Group("/admin",
		middleware.AdminToken(cfg),
		middleware.AdminJWT(cfg),
		middleware.ActiveUser(db),
		middleware.AdminRequired(cfg),
	)
	admin.Get("/stats", h.Admin.Stats)
	admin.Get("/payments", h.Admin.ListPayments)
	admin.Post("/payments/:id/approve", h.Admin.ApprovePayment)
	admin.Post("/payments/:id/reject", h.Admin.RejectPayment)
	admin.Get("/users", h.Admin.ListUsers)
	admin.Post("/users/:id/block", h.Admin.BlockUser)
	admin.Post("/users/:id/unblock", h.Admin.UnblockUser)
	admin.Get("/moderation/reports", h.Moderation.ListReports)
	admin.Put("/moderation/reports/:id", h.Moderation.ActionReport)
	admin.Put("/config/:key", h.Settings.SetConfigKey)
	admin.Delete("/config/:key", h.Settings.DeleteConfigKey)

	// Protected user routes
	protected := api.Group("", middleware.JWTProtected(cfg), middleware.ActiveUser(db))
	protected.Get("/me", h.Auth.Me)

	protected.Get("/listings", h.Listing.ListOwn)
	protected.Post("/listings", h.Listing.Create)
	protected.Get("/listings/:id", h.Listing.Get)
	protected.Put("/listings/:id", h.Listing.Update)
	protected.Post("/listings/:id/publish", h.Listing.Publish)
	protected.Post("/listings/:id/unpublish", h.Listing.Unpublish)
	protected.Get("/feed", h.Listing.Feed)

	// Request creation: 20 req/hour per user on top of the IP limit
	protected.Post("/requests", limiter.New(limiter.Config{
		Max:               20,
		Expiration:        1 * time.Hour,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      userKey,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Code: "rate-limited", Message: "Too many requests, try again later",
			})
		},
	}), h.Match.Create)
	protected.Get("/requests/sent", h.Match.ListSent)
	protected.Get("/requests/received", h.Match.ListReceived)
	protected.Post("/requests/:id/accept", h.Match.Accept)
	protected.Post("/requests/:id/reject", h.Match.Reject)
	protected.Post("/requests/:id/cancel", h.Match.Cancel)

	protected.Get("/chats", h.Chat.List)
	protected.Get("/chats/:id", h.Chat.Get)
	protected.Get("/chats/:id/messages", h.Chat.Messages)
	protected.Post("/chats/:id/messages", h.Chat.Post)
	protected.Post("/chats/:id/read", h.Chat.MarkRead)

	protected.Get("/tariffs/status", h.Tariff.Status)
	protected.Get("/tariffs/history", h.Tariff.History)
	protected.Get("/payments", h.Tariff.ListPayments)
	protected.Post("/payments", h.Tariff.SubmitPayment)

	protected.Post("/reports", h.Moderation.CreateReport)
	protected.Get("/blocks", h.Moderation.ListBlocked)
	protected.Post("/blocks", h.Moderation.BlockUser)
	protected.Delete("/blocks/:id", h.Moderation.UnblockUser)

	protected.Get("/favorites", h.Favorite.List)
	protected.Post("/favorites", h.Favorite.Add)
	protected.Delete("/favorites/:id", h.Favorite.Remove)
}

func userKey(c *fiber.Ctx) string {
	if user, err := identity.CurrentUser(c); err == nil {
		return "user:" + user.ID.String()
	}
	return c.IP()
}
