package middleware

import (
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtConfig(cfg, nil)
}

// AdminJWT is JWTProtected that lets requests already authorized by the
// admin token through without a bearer token.
func AdminJWT(cfg *config.Config) fiber.Handler {
	return jwtConfig(cfg, hasAdminToken)
}

func jwtConfig(cfg *config.Config, filter func(*fiber.Ctx) bool) fiber.Handler {
	return jwtware.New(jwtware.Config{
		Filter:     filter,
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}
