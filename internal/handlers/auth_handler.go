package handlers

import (
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Telegram signs a mini app user in with WebApp init data.
func (h *AuthHandler) Telegram(c *fiber.Ctx) error {
	var req dto.TelegramAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.InitData == "" {
		req.InitData = c.Get("X-Telegram-Init-Data")
	}

	resp, err := h.authService.Authenticate(&req)
	if err != nil {
		return respondError(c, err, "auth.telegram")
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := identity.CurrentUser(c)
	if err != nil {
		return unauthorized(c)
	}
	return c.JSON(services.ToUserResponse(user))
}
