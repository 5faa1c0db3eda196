package dto

import (
	"time"

	"github.com/google/uuid"
)

type AddFavoriteRequest struct {
	ListingID uuid.UUID `json:"listing_id"`
}

// FavoriteView is a bookmark with the listing it points to. Listing is nil
// once the listing is unpublished or its owner is blocked.
type FavoriteView struct {
	ID        uuid.UUID        `json:"id"`
	ListingID uuid.UUID        `json:"listing_id"`
	CreatedAt time.Time        `json:"created_at"`
	Available bool             `json:"available"`
	Listing   *ListingResponse `json:"listing,omitempty"`
}
