package handlers

import (
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ChatHandler struct {
	chats *services.ChatService
}

func NewChatHandler(chats *services.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

func (h *ChatHandler) List(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	chats, err := h.chats.ListChats(userID)
	if err != nil {
		return respondError(c, err, "chat.list")
	}
	return c.JSON(fiber.Map{"chats": chats})
}

func (h *ChatHandler) Get(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	chatID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid chat ID")
	}
	chat, err := h.chats.Get(chatID, userID)
	if err != nil {
		return respondError(c, err, "chat.get")
	}
	return c.JSON(chat)
}

func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	chatID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid chat ID")
	}
	limit := c.QueryInt("limit", services.DefaultMessageLimit)
	messages, err := h.chats.ListMessages(chatID, userID, limit, c.Query("order", "asc"))
	if err != nil {
		return respondError(c, err, "chat.messages")
	}
	return c.JSON(fiber.Map{"messages": messages})
}

func (h *ChatHandler) Post(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	chatID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid chat ID")
	}
	var in dto.PostMessageRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	msg, err := h.chats.PostMessage(chatID, userID, in.Content)
	if err != nil {
		return respondError(c, err, "chat.post")
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	chatID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid chat ID")
	}
	updated, err := h.chats.MarkRead(chatID, userID)
	if err != nil {
		return respondError(c, err, "chat.mark_read")
	}
	return c.JSON(dto.MarkReadResponse{Updated: updated})
}
