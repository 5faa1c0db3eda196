package models

import (
	"time"

	"github.com/google/uuid"
)

// User is one Telegram account. Users are never deleted; blocking is a flag.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TelegramID   int64     `gorm:"not null;uniqueIndex" json:"telegram_id"`
	Username     string    `gorm:"size:100" json:"username"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LanguageCode string    `gorm:"size:10" json:"language_code"`
	IsAdmin      bool      `gorm:"not null" json:"is_admin"`
	IsBlocked    bool      `gorm:"not null;index" json:"is_blocked"`
	LastActiveAt time.Time `json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
