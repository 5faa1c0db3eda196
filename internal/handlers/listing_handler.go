package handlers

import (
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ListingHandler struct {
	listings *services.ListingService
	feed     *services.FeedService
}

func NewListingHandler(listings *services.ListingService, feed *services.FeedService) *ListingHandler {
	return &ListingHandler{listings: listings, feed: feed}
}

func (h *ListingHandler) ListOwn(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	listings, err := h.listings.ListOwn(userID)
	if err != nil {
		return respondError(c, err, "listing.list")
	}
	return c.JSON(fiber.Map{"listings": listings})
}

func (h *ListingHandler) Get(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	listingID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid listing ID")
	}
	listing, err := h.listings.Get(listingID, userID)
	if err != nil {
		return respondError(c, err, "listing.get")
	}
	return c.JSON(listing)
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var in dto.ListingInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	listing, err := h.listings.Create(userID, &in)
	if err != nil {
		return respondError(c, err, "listing.create")
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	listingID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid listing ID")
	}
	var in dto.ListingInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	listing, err := h.listings.Update(listingID, userID, &in)
	if err != nil {
		return respondError(c, err, "listing.update")
	}
	return c.JSON(listing)
}

func (h *ListingHandler) Publish(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	listingID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid listing ID")
	}
	listing, err := h.listings.Publish(listingID, userID)
	if err != nil {
		return respondError(c, err, "listing.publish")
	}
	return c.JSON(listing)
}

func (h *ListingHandler) Unpublish(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	listingID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid listing ID")
	}
	listing, err := h.listings.Unpublish(listingID, userID)
	if err != nil {
		return respondError(c, err, "listing.unpublish")
	}
	return c.JSON(listing)
}

func (h *ListingHandler) Feed(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var q dto.FeedQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query")
	}
	resp, err := h.feed.List(userID, q)
	if err != nil {
		return respondError(c, err, "feed.list")
	}
	return c.JSON(resp)
}
