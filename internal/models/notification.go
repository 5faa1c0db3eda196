package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

// Notification is an outbox row written in the same transaction as the state
// change it reports. Delivery happens later in the dispatcher.
type Notification struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	TelegramID int64      `gorm:"not null" json:"telegram_id"`
	Kind       string     `gorm:"size:50;not null" json:"kind"`
	Text       string     `gorm:"type:text;not null" json:"text"`
	Status     string     `gorm:"size:20;not null;index" json:"status"`
	Attempts   int        `gorm:"not null" json:"attempts"`
	LastError  string     `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
}
