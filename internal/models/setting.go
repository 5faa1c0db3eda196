package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Setting is a public key/value pair served to the mini app (card details,
// bot username, chat duration and the like).
type Setting struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Key       string    `gorm:"size:100;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	Type      string    `gorm:"size:20;not null" json:"type"` // string, bool, int, json
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Setting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Type == "" {
		s.Type = "string"
	}
	return nil
}

func (Setting) TableName() string {
	return "settings"
}
