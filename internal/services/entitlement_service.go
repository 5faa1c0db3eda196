package services

import (
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/tariff"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntitlementService is the ledger of purchased tariffs. "Current" is always
// derived from the log of entries; there is no stored pointer to it. Expiry
// is evaluated lazily on read and at the point of consumption.
type EntitlementService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewEntitlementService(db *gorm.DB) *EntitlementService {
	return &EntitlementService{db: db, now: utcNow}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// Grant mints a new active entry from plan. It is only called by the payment
// approval path, inside that transaction.
func (s *EntitlementService) Grant(tx *gorm.DB, userID uuid.UUID, plan tariff.Plan, paymentID *uuid.UUID) (*models.Entitlement, error) {
	now := s.now()
	e := models.Entitlement{
		ID:            uuid.New(),
		UserID:        userID,
		PaymentID:     paymentID,
		TariffName:    plan.Name,
		RequestsLeft:  plan.Requests,
		TotalRequests: plan.Requests,
		ListingDays:   plan.ListingDays,
		TopDays:       plan.TopDays,
		IsActive:      true,
		IsTop:         plan.Boost && plan.TopDays > 0,
		ActivatedAt:   now,
		ExpiresAt:     now.Add(days(plan.ListingDays)),
		TopExpiresAt:  now.Add(days(plan.TopDays)),
		CreatedAt:     now,
	}
	if err := tx.Create(&e).Error; err != nil {
		return nil, fmt.Errorf("failed to create entitlement: %w", err)
	}
	return &e, nil
}

// Current returns the most recent live entry, or nil when the user has none.
func (s *EntitlementService) Current(userID uuid.UUID) (*models.Entitlement, error) {
	return s.current(s.db, userID)
}

// current is Current inside tx. Only this entry's quota can be spent: a newer
// boost-only purchase replaces an older plan's remaining requests.
func (s *EntitlementService) current(tx *gorm.DB, userID uuid.UUID) (*models.Entitlement, error) {
	entries, err := s.live(tx, userID)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

// live loads active entries newest first, flips the ones whose windows have
// closed, and returns the rest.
func (s *EntitlementService) live(tx *gorm.DB, userID uuid.UUID) ([]models.Entitlement, error) {
	var entries []models.Entitlement
	if err := tx.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}

	now := s.now()
	live := entries[:0]
	for i := range entries {
		if err := s.refresh(tx, &entries[i], now); err != nil {
			return nil, err
		}
		if entries[i].IsActive {
			live = append(live, entries[i])
		}
	}
	return live, nil
}

// refresh persists the lazy expiry flips for e.
func (s *EntitlementService) refresh(tx *gorm.DB, e *models.Entitlement, now time.Time) error {
	updates := map[string]interface{}{}
	if e.IsActive && e.Expired(now) {
		updates["is_active"] = false
		e.IsActive = false
	}
	if e.IsTop && e.TopExpired(now) {
		updates["is_top"] = false
		e.IsTop = false
	}
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&models.Entitlement{}).Where("id = ?", e.ID).Updates(updates).Error
}

// Consume takes one request off the entry. The quota check and the decrement
// are a single conditional UPDATE, so concurrent senders cannot drive it
// negative. Returns false without mutating when the entry is expired or has
// no quota left.
func (s *EntitlementService) Consume(tx *gorm.DB, entitlementID uuid.UUID) (bool, error) {
	var e models.Entitlement
	if err := tx.Where("id = ?", entitlementID).First(&e).Error; err != nil {
		return false, err
	}
	now := s.now()
	if err := s.refresh(tx, &e, now); err != nil {
		return false, err
	}
	if !e.IsActive {
		return false, nil
	}

	result := tx.Model(&models.Entitlement{}).
		Where("id = ? AND is_active = ? AND requests_left > 0", entitlementID, true).
		UpdateColumn("requests_left", gorm.Expr("requests_left - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IsBoosted reports whether any live entry of the user carries an open TOP
// window.
func (s *EntitlementService) IsBoosted(userID uuid.UUID) (bool, error) {
	boosted, err := s.BoostedUsers([]uuid.UUID{userID})
	if err != nil {
		return false, err
	}
	return boosted[userID], nil
}

// BoostedUsers returns the subset of userIDs currently boosted.
func (s *EntitlementService) BoostedUsers(userIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var entries []models.Entitlement
	if err := s.db.Where("user_id IN ? AND is_active = ? AND is_top = ?", userIDs, true, true).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	now := s.now()
	for i := range entries {
		e := &entries[i]
		if err := s.refresh(s.db, e, now); err != nil {
			return nil, err
		}
		if e.IsActive && e.IsBoosted(now) {
			result[e.UserID] = true
		}
	}
	return result, nil
}

// History lists every entry of the user, newest first, with expiry flags
// brought up to date.
func (s *EntitlementService) History(userID uuid.UUID) ([]models.Entitlement, error) {
	var entries []models.Entitlement
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	now := s.now()
	for i := range entries {
		if err := s.refresh(s.db, &entries[i], now); err != nil {
			return nil, err
		}
	}
	return entries, nil
}
