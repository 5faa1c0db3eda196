package handlers

import (
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type MatchHandler struct {
	matches *services.MatchService
}

func NewMatchHandler(matches *services.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

func (h *MatchHandler) Create(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var in dto.CreateMatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req, err := h.matches.Create(userID, &in)
	if err != nil {
		return respondError(c, err, "match_request.create")
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *MatchHandler) Accept(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	requestID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid request ID")
	}
	req, chat, err := h.matches.Accept(requestID, userID)
	if err != nil {
		return respondError(c, err, "match_request.accept")
	}
	return c.JSON(dto.AcceptMatchResponse{Request: *req, ChatID: chat.ID})
}

func (h *MatchHandler) Reject(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	requestID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid request ID")
	}
	req, err := h.matches.Reject(requestID, userID)
	if err != nil {
		return respondError(c, err, "match_request.reject")
	}
	return c.JSON(req)
}

func (h *MatchHandler) Cancel(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	requestID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid request ID")
	}
	cancelled, err := h.matches.Cancel(requestID, userID)
	if err != nil {
		return respondError(c, err, "match_request.cancel")
	}
	return c.JSON(dto.CancelMatchResponse{Cancelled: cancelled})
}

func (h *MatchHandler) ListSent(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	requests, err := h.matches.ListSent(userID, c.Query("status"))
	if err != nil {
		return respondError(c, err, "match_request.list_sent")
	}
	return c.JSON(fiber.Map{"requests": requests})
}

func (h *MatchHandler) ListReceived(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	requests, err := h.matches.ListReceived(userID, c.Query("status"))
	if err != nil {
		return respondError(c, err, "match_request.list_received")
	}
	return c.JSON(fiber.Map{"requests": requests})
}
