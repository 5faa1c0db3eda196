package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/tariff"
	"github.com/gofiber/fiber/v2"
)

type TariffHandler struct {
	cfg          *config.Config
	catalog      *tariff.Catalog
	entitlements *services.EntitlementService
	payments     *services.PaymentService
}

func NewTariffHandler(cfg *config.Config, catalog *tariff.Catalog, entitlements *services.EntitlementService, payments *services.PaymentService) *TariffHandler {
	return &TariffHandler{cfg: cfg, catalog: catalog, entitlements: entitlements, payments: payments}
}

func (h *TariffHandler) List(c *fiber.Ctx) error {
	return c.JSON(dto.TariffsResponse{
		Plans:           h.catalog.All(),
		BoostDailyPrice: h.catalog.BoostDailyPrice(),
		CardNumber:      h.cfg.PaymentCardNumber,
		CardName:        h.cfg.PaymentCardName,
	})
}

func (h *TariffHandler) Status(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	current, err := h.entitlements.Current(userID)
	if err != nil {
		return respondError(c, err, "tariff.status")
	}
	boosted, err := h.entitlements.IsBoosted(userID)
	if err != nil {
		return respondError(c, err, "tariff.status")
	}

	resp := dto.TariffStatusResponse{IsBoosted: boosted}
	if current != nil {
		resp.Active = true
		resp.Entitlement = current
		resp.RequestsLeft = current.RequestsLeft
		resp.DaysRemaining = current.DaysRemaining(time.Now().UTC())
	}
	return c.JSON(resp)
}

func (h *TariffHandler) History(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	entries, err := h.entitlements.History(userID)
	if err != nil {
		return respondError(c, err, "tariff.history")
	}
	return c.JSON(fiber.Map{"entitlements": entries})
}

func (h *TariffHandler) SubmitPayment(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var in dto.SubmitPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	payment, err := h.payments.Submit(userID, &in)
	if err != nil {
		return respondError(c, err, "payment.submit")
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

func (h *TariffHandler) ListPayments(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	payments, err := h.payments.ListOwn(userID)
	if err != nil {
		return respondError(c, err, "payment.list_own")
	}
	return c.JSON(fiber.Map{"payments": payments})
}
