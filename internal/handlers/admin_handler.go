package handlers

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	admin    *services.AdminService
	payments *services.PaymentService
}

func NewAdminHandler(admin *services.AdminService, payments *services.PaymentService) *AdminHandler {
	return &AdminHandler{admin: admin, payments: payments}
}

// reviewer is the acting admin user, or nil when the static admin token was
// used.
func reviewer(c *fiber.Ctx) *uuid.UUID {
	user, err := identity.CurrentUser(c)
	if err != nil {
		return nil
	}
	id := user.ID
	return &id
}

func pagination(c *fiber.Ctx) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats()
	if err != nil {
		return respondError(c, err, "admin.stats")
	}
	return c.JSON(stats)
}

func (h *AdminHandler) ListPayments(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	payments, total, err := h.payments.List(c.Query("status", "pending"), limit, offset)
	if err != nil {
		return respondError(c, err, "admin.payments")
	}
	return c.JSON(fiber.Map{
		"payments": payments,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *AdminHandler) ApprovePayment(c *fiber.Ctx) error {
	paymentID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid payment ID")
	}
	var in dto.ReviewPaymentRequest
	_ = c.BodyParser(&in)

	payment, entry, err := h.payments.Approve(paymentID, reviewer(c), in.Comment)
	if err != nil {
		return respondError(c, err, "payment.approve")
	}
	return c.JSON(dto.PaymentApprovalResponse{Payment: *payment, Entitlement: *entry})
}

func (h *AdminHandler) RejectPayment(c *fiber.Ctx) error {
	paymentID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid payment ID")
	}
	var in dto.ReviewPaymentRequest
	_ = c.BodyParser(&in)

	payment, err := h.payments.Reject(paymentID, reviewer(c), in.Comment)
	if err != nil {
		return respondError(c, err, "payment.reject")
	}
	return c.JSON(payment)
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	users, total, err := h.admin.ListUsers(limit, offset)
	if err != nil {
		return respondError(c, err, "admin.users")
	}
	return c.JSON(fiber.Map{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *AdminHandler) BlockUser(c *fiber.Ctx) error {
	return h.setBlocked(c, true)
}

func (h *AdminHandler) UnblockUser(c *fiber.Ctx) error {
	return h.setBlocked(c, false)
}

func (h *AdminHandler) setBlocked(c *fiber.Ctx, blocked bool) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}
	user, err := h.admin.SetUserBlocked(userID, blocked)
	if err != nil {
		return respondError(c, err, "admin.block_user")
	}
	return c.JSON(user)
}
