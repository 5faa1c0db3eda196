package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var rejectionStatus = map[string]int{
	"not-found":         fiber.StatusNotFound,
	"not-participant":   fiber.StatusNotFound,
	"not-pending":       fiber.StatusConflict,
	"already-connected": fiber.StatusConflict,
	"already-requested": fiber.StatusConflict,
	"already-blocked":   fiber.StatusConflict,
	"already-reported":  fiber.StatusConflict,
	"already-favorited": fiber.StatusConflict,
	"payment-pending":   fiber.StatusConflict,
	"not-reviewable":    fiber.StatusConflict,
	"quota-exhausted":   fiber.StatusForbidden,
	"no-entitlement":    fiber.StatusForbidden,
	"blocked":           fiber.StatusForbidden,
	"user-blocked":      fiber.StatusForbidden,
	"chat-expired":      fiber.StatusGone,
	"invalid-init-data": fiber.StatusUnauthorized,
}

// publicCode hides reason codes that would confirm a resource exists to
// someone who may not see it.
var publicCode = map[string]string{
	"not-participant": "not-found",
}

// respondError writes a service error. Rejections carry their code and
// message; anything else is logged and hidden behind a 5xx.
func respondError(c *fiber.Ctx, err error, action string) error {
	var connected *services.AlreadyConnectedError
	if errors.As(err, &connected) {
		chatID := connected.ChatID
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error:   true,
			Code:    services.ErrAlreadyConnected.Code,
			Message: services.ErrAlreadyConnected.Message,
			ChatID:  &chatID,
		})
	}

	var rej *services.Rejection
	if errors.As(err, &rej) {
		status, ok := rejectionStatus[rej.Code]
		if !ok {
			status = fiber.StatusBadRequest
		}
		code := rej.Code
		if public, ok := publicCode[code]; ok {
			code = public
		}
		return c.Status(status).JSON(dto.ErrorResponse{
			Error: true, Code: code, Message: rej.Message,
		})
	}

	if errors.Is(err, services.ErrConflict) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Code: "conflict", Message: err.Error(),
		})
	}

	slog.Error("request failed", "action", action, "error", err.Error(), "path", c.Path())
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Code: services.ErrInvalidInput.Code, Message: message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

// currentUserID is the id of the user loaded by the ActiveUser middleware.
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	user, err := identity.CurrentUser(c)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}
