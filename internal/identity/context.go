package identity

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const currentUserKey = "current_user"

var ErrNoIdentity = errors.New("no authenticated user in context")

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

// SetUser stores the loaded, non-blocked user for downstream handlers.
func SetUser(c *fiber.Ctx, user *models.User) {
	c.Locals(currentUserKey, user)
}

// CurrentUser returns the user stored by the ActiveUser middleware.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(currentUserKey).(*models.User)
	if !ok || user == nil {
		return nil, ErrNoIdentity
	}
	return user, nil
}
