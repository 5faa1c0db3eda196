package middleware

import (
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS admits the Mini App origins. Init data and the admin token travel in
// custom headers, so both are allowed explicitly.
func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Telegram-Init-Data, X-Admin-Token",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "X-Request-ID",
		MaxAge:        600,
	})
}
