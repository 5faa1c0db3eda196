package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentPending  = "pending"
	PaymentApproved = "approved"
	PaymentRejected = "rejected"
)

// PaymentRequest is a manually reviewed receipt for a tariff purchase.
type PaymentRequest struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	TariffName    string     `gorm:"size:50;not null" json:"tariff_name"`
	Amount        int64      `gorm:"not null" json:"amount"`
	ReceiptFileID string     `gorm:"size:255" json:"receipt_file_id"`
	ReceiptNote   string     `gorm:"type:text" json:"receipt_note"`
	Status        string     `gorm:"size:20;not null;index" json:"status"`
	ReviewedBy    *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewComment string     `gorm:"type:text" json:"review_comment,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
