package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite is a listing bookmarked by a user. It is private to that user and
// never notifies the listing owner.
type Favorite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_pair,priority:1" json:"user_id"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_pair,priority:2;index" json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}
