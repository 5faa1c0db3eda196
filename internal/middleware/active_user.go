package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const touchInterval = 5 * time.Minute

// ActiveUser loads the JWT subject, refuses blocked accounts and records
// activity. Requests already authorized by the admin token pass through.
func ActiveUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hasAdminToken(c) {
			return c.Next()
		}

		userID, err := identity.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		var user models.User
		if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: true, Message: "Unauthorized",
				})
			}
			slog.Error("failed to load user", "user_id", userID.String(), "error", err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Internal server error",
			})
		}
		if user.IsBlocked {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Code: "user-blocked", Message: "Your account has been blocked",
			})
		}

		now := time.Now().UTC()
		if now.Sub(user.LastActiveAt) > touchInterval {
			if err := db.Model(&models.User{}).Where("id = ?", user.ID).
				UpdateColumn("last_active_at", now).Error; err != nil {
				slog.Warn("failed to touch last_active_at", "user_id", user.ID.String(), "error", err)
			}
			user.LastActiveAt = now
		}

		identity.SetUser(c, &user)
		return c.Next()
	}
}
