package handlers

import (
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
}

func NewModerationHandler(moderationService *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.moderationService.CreateReport(userID, &req)
	if err != nil {
		return respondError(c, err, "report.create")
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ModerationHandler) BlockUser(c *fiber.Ctx) error {
	blockerID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.BlockUserRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == uuid.Nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.moderationService.BlockUser(blockerID, req.UserID); err != nil {
		return respondError(c, err, "block.create")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"blocked": true, "user_id": req.UserID})
}

func (h *ModerationHandler) UnblockUser(c *fiber.Ctx) error {
	blockerID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	blockedID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	removed, err := h.moderationService.UnblockUser(blockerID, blockedID)
	if err != nil {
		return respondError(c, err, "block.delete")
	}
	return c.JSON(fiber.Map{"unblocked": removed, "user_id": blockedID})
}

func (h *ModerationHandler) ListBlocked(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	blocks, err := h.moderationService.ListBlocked(userID)
	if err != nil {
		return respondError(c, err, "block.list")
	}
	return c.JSON(fiber.Map{"blocks": blocks})
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	status := c.Query("status", models.ReportPending)
	if status == "all" {
		status = ""
	}
	limit, offset := pagination(c)

	reports, total, err := h.moderationService.ListReports(status, limit, offset)
	if err != nil {
		return respondError(c, err, "report.list")
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *ModerationHandler) ActionReport(c *fiber.Ctx) error {
	reportID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	var req dto.ActionReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.moderationService.ActionReport(reportID, &req)
	if err != nil {
		return respondError(c, err, "report.action")
	}
	return c.JSON(report)
}
