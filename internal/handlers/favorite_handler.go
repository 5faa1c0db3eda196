package handlers

import (
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FavoriteHandler struct {
	favorites *services.FavoriteService
}

func NewFavoriteHandler(favorites *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	favorites, err := h.favorites.List(userID)
	if err != nil {
		return respondError(c, err, "favorite.list")
	}
	return c.JSON(fiber.Map{"favorites": favorites, "count": len(favorites)})
}

func (h *FavoriteHandler) Add(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.AddFavoriteRequest
	if err := c.BodyParser(&req); err != nil || req.ListingID == uuid.Nil {
		return badRequest(c, "listing_id is required")
	}
	fav, err := h.favorites.Add(userID, req.ListingID)
	if err != nil {
		return respondError(c, err, "favorite.add")
	}
	return c.Status(fiber.StatusCreated).JSON(fav)
}

func (h *FavoriteHandler) Remove(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	listingID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid listing ID")
	}
	removed, err := h.favorites.Remove(userID, listingID)
	if err != nil {
		return respondError(c, err, "favorite.remove")
	}
	return c.JSON(fiber.Map{"removed": removed, "listing_id": listingID})
}
