package models

import (
	"time"

	"github.com/google/uuid"
)

// Entitlement is one purchased tariff instance: a request quota with a listing
// window and an optional TOP (boost) window. Rows are never deleted; only the
// quota counter and the lazy expiry flags change after creation.
type Entitlement struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_entitlements_user_active,priority:1" json:"user_id"`
	PaymentID     *uuid.UUID `gorm:"type:uuid;index" json:"payment_id,omitempty"`
	TariffName    string     `gorm:"size:50;not null" json:"tariff_name"`
	RequestsLeft  int        `gorm:"not null" json:"requests_left"`
	TotalRequests int        `gorm:"not null" json:"total_requests"`
	ListingDays   int        `gorm:"not null" json:"listing_days"`
	TopDays       int        `gorm:"not null" json:"top_days"`
	IsActive      bool       `gorm:"not null;index:idx_entitlements_user_active,priority:2" json:"is_active"`
	IsTop         bool       `gorm:"not null" json:"is_top"`
	ActivatedAt   time.Time  `json:"activated_at"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`
	TopExpiresAt  time.Time  `json:"top_expires_at"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
}

// Expired reports whether the listing window has closed. An entitlement is
// live only while ExpiresAt is strictly after now.
func (e *Entitlement) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// TopExpired reports whether the boost window has closed.
func (e *Entitlement) TopExpired(now time.Time) bool {
	return now.After(e.TopExpiresAt)
}

// IsBoosted is true while the entry carries TOP and the boost window is open.
func (e *Entitlement) IsBoosted(now time.Time) bool {
	return e.IsTop && !e.TopExpired(now)
}

// DaysRemaining is the number of whole days left in the listing window.
func (e *Entitlement) DaysRemaining(now time.Time) int {
	if e.Expired(now) {
		return 0
	}
	return int(e.ExpiresAt.Sub(now) / (24 * time.Hour))
}
