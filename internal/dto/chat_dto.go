package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/google/uuid"
)

type PostMessageRequest struct {
	Content string `json:"content"`
}

type ChatSummary struct {
	ID             uuid.UUID       `json:"id"`
	OtherUserID    uuid.UUID       `json:"other_user_id"`
	OtherListingID uuid.UUID       `json:"other_listing_id"`
	OtherName      string          `json:"other_name"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	ExpiresAt      time.Time       `json:"expires_at"`
	DaysRemaining  int             `json:"days_remaining"`
	HoursRemaining int             `json:"hours_remaining"`
	UnreadCount    int64           `json:"unread_count"`
	LastMessage    *models.Message `json:"last_message,omitempty"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}
