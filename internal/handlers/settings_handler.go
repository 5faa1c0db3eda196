package handlers

import (
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	settings *services.SettingService
}

func NewSettingsHandler(settings *services.SettingService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetConfig returns the public settings (no auth).
func (h *SettingsHandler) GetConfig(c *fiber.Ctx) error {
	result, err := h.settings.Public()
	if err != nil {
		return respondError(c, err, "settings.get")
	}
	return c.JSON(result)
}

// SetConfigKey sets or updates a key (admin only).
func (h *SettingsHandler) SetConfigKey(c *fiber.Ctx) error {
	var payload dto.SettingRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "Invalid request body")
	}

	setting, err := h.settings.Set(c.Params("key"), payload.Value, payload.Type)
	if err != nil {
		return respondError(c, err, "settings.set")
	}
	return c.JSON(fiber.Map{
		"error":   false,
		"message": "Config updated successfully",
		"config":  setting,
	})
}

// DeleteConfigKey deletes a key (admin only).
func (h *SettingsHandler) DeleteConfigKey(c *fiber.Ctx) error {
	deleted, err := h.settings.Delete(c.Params("key"))
	if err != nil {
		return respondError(c, err, "settings.delete")
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Code: "not-found", Message: "Config not found",
		})
	}
	return c.JSON(fiber.Map{
		"error":   false,
		"message": "Config deleted successfully",
	})
}
