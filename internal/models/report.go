package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReportPending   = "pending"
	ReportActioned  = "actioned"
	ReportDismissed = "dismissed"
)

// Report is a complaint about another member, optionally pointing at the
// listing or chat message that triggered it.
type Report struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"reporter_id"`
	ReportedUserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"reported_user_id"`
	ListingID      *uuid.UUID `gorm:"type:uuid" json:"listing_id,omitempty"`
	MessageID      *uuid.UUID `gorm:"type:uuid" json:"message_id,omitempty"`
	Reason         string     `gorm:"size:30;not null" json:"reason"`
	Details        string     `gorm:"size:1000" json:"details,omitempty"`
	Status         string     `gorm:"size:20;not null;index" json:"status"`
	AdminNote      string     `gorm:"size:1000" json:"admin_note,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
