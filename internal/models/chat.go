package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat is the fixed-duration conversation opened by an accepted request.
// ExpiresAt is set once at creation; IsActive is flipped lazily on access.
type Chat struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MatchRequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"match_request_id"`
	User1ID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user1_id"`
	User2ID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user2_id"`
	Listing1ID     uuid.UUID `gorm:"type:uuid" json:"listing1_id"`
	Listing2ID     uuid.UUID `gorm:"type:uuid" json:"listing2_id"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `gorm:"not null" json:"expires_at"`
	IsActive       bool      `gorm:"not null" json:"is_active"`
}

func (c *Chat) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

func (c *Chat) HasParticipant(userID uuid.UUID) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherUser returns the participant that is not userID.
func (c *Chat) OtherUser(userID uuid.UUID) uuid.UUID {
	if userID == c.User1ID {
		return c.User2ID
	}
	return c.User1ID
}

// ListingOf returns the listing the given participant matched under.
func (c *Chat) ListingOf(userID uuid.UUID) uuid.UUID {
	if userID == c.User1ID {
		return c.Listing1ID
	}
	return c.Listing2ID
}

// DaysRemaining is never negative.
func (c *Chat) DaysRemaining(now time.Time) int {
	return int(c.remaining(now) / (24 * time.Hour))
}

// HoursRemaining is never negative.
func (c *Chat) HoursRemaining(now time.Time) int {
	return int(c.remaining(now) / time.Hour)
}

func (c *Chat) remaining(now time.Time) time.Duration {
	d := c.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Message is one chat utterance. Only the read flag changes after creation.
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_chat_created,priority:1" json:"chat_id"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsRead    bool      `gorm:"not null" json:"is_read"`
	CreatedAt time.Time `gorm:"index:idx_messages_chat_created,priority:2" json:"created_at"`
}
