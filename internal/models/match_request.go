package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RequestPending   = "pending"
	RequestAccepted  = "accepted"
	RequestRejected  = "rejected"
	RequestCancelled = "cancelled"
)

// MatchRequest is a directed proposal from a sender to a receiver, scoped to
// the listing the sender acts for and the receiver listing it targets.
// Status only ever leaves pending; terminal states are final.
type MatchRequest struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_match_requests_pair,priority:1" json:"sender_id"`
	ReceiverID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_match_requests_pair,priority:2;index" json:"receiver_id"`
	SenderListingID uuid.UUID  `gorm:"type:uuid;not null;index:idx_match_requests_listings,priority:1" json:"sender_listing_id"`
	TargetListingID uuid.UUID  `gorm:"type:uuid;not null;index:idx_match_requests_listings,priority:2" json:"target_listing_id"`
	Message         string     `gorm:"type:text" json:"message"`
	Status          string     `gorm:"size:20;not null;index" json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	RespondedAt     *time.Time `json:"responded_at"`
}

func (r *MatchRequest) IsPending() bool {
	return r.Status == RequestPending
}
