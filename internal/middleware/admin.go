package middleware

import (
	"crypto/subtle"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
)

const adminTokenKey = "admin_token"

// AdminToken marks requests carrying a valid X-Admin-Token. Later middleware
// in the admin chain skip JWT handling for them.
func AdminToken(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" {
			got := c.Get("X-Admin-Token")
			if got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(cfg.AdminToken)) == 1 {
				c.Locals(adminTokenKey, true)
			}
		}
		return c.Next()
	}
}

func hasAdminToken(c *fiber.Ctx) bool {
	ok, _ := c.Locals(adminTokenKey).(bool)
	return ok
}

// AdminRequired admits the admin token, users flagged is_admin, and users
// whose Telegram id is listed in ADMIN_TELEGRAM_IDS.
func AdminRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hasAdminToken(c) {
			return c.Next()
		}

		user, err := identity.CurrentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if user.IsAdmin || cfg.IsAdminTelegramID(user.TelegramID) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}
