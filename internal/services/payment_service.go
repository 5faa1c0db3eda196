package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/tariff"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentService handles manually reviewed receipts. Approval is the only
// path that mints entitlements.
type PaymentService struct {
	db           *gorm.DB
	cfg          *config.Config
	catalog      *tariff.Catalog
	entitlements *EntitlementService
	now          func() time.Time
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, catalog *tariff.Catalog, entitlements *EntitlementService) *PaymentService {
	return &PaymentService{db: db, cfg: cfg, catalog: catalog, entitlements: entitlements, now: utcNow}
}

// Submit records a receipt for review. A user has at most one pending
// payment at a time.
func (s *PaymentService) Submit(userID uuid.UUID, in *dto.SubmitPaymentRequest) (*models.PaymentRequest, error) {
	plan, err := s.catalog.ResolveName(strings.TrimSpace(in.Tariff))
	if err != nil {
		return nil, ErrUnknownTier
	}
	if strings.TrimSpace(in.ReceiptFileID) == "" && strings.TrimSpace(in.Note) == "" {
		return nil, invalid("a receipt is required")
	}

	var payment models.PaymentRequest
	err = withRetry("payment.submit", func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			var pending int64
			if err := tx.Model(&models.PaymentRequest{}).
				Where("user_id = ? AND status = ?", userID, models.PaymentPending).
				Count(&pending).Error; err != nil {
				return err
			}
			if pending > 0 {
				return ErrPaymentPending
			}

			user, err := loadUser(tx, userID)
			if err != nil {
				return err
			}

			now := s.now()
			payment = models.PaymentRequest{
				ID:            uuid.New(),
				UserID:        userID,
				TariffName:    plan.Name,
				Amount:        plan.Price,
				ReceiptFileID: strings.TrimSpace(in.ReceiptFileID),
				ReceiptNote:   strings.TrimSpace(in.Note),
				Status:        models.PaymentPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return fmt.Errorf("failed to create payment: %w", err)
			}

			name := user.FirstName
			if user.Username != "" {
				name += " (@" + user.Username + ")"
			}
			text := notify.PaymentSubmittedText(name, plan.Name, plan.Price)
			admins := make([]notify.Outgoing, 0)
			for _, id := range s.cfg.AdminIDs() {
				admins = append(admins, notify.Outgoing{TelegramID: id, Kind: notify.KindPaymentSubmitted, Text: text})
			}
			return notify.Enqueue(tx, admins...)
		})
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) loadPending(tx *gorm.DB, paymentID uuid.UUID) (*models.PaymentRequest, error) {
	var p models.PaymentRequest
	if err := tx.Where("id = ?", paymentID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if p.Status != models.PaymentPending {
		return nil, ErrNotReviewable
	}
	return &p, nil
}

// review flips a pending payment in one conditional UPDATE.
func (s *PaymentService) review(tx *gorm.DB, p *models.PaymentRequest, status string, adminID *uuid.UUID, comment string, now time.Time) error {
	result := tx.Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", p.ID, models.PaymentPending).
		Updates(map[string]interface{}{
			"status":         status,
			"reviewed_by":    adminID,
			"review_comment": comment,
			"reviewed_at":    now,
			"updated_at":     now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotReviewable
	}
	p.Status = status
	p.ReviewedBy = adminID
	p.ReviewComment = comment
	p.ReviewedAt = &now
	return nil
}

// Approve marks the payment approved and grants the purchased tariff in the
// same transaction.
func (s *PaymentService) Approve(paymentID uuid.UUID, adminID *uuid.UUID, comment string) (*models.PaymentRequest, *models.Entitlement, error) {
	var (
		payment *models.PaymentRequest
		entry   *models.Entitlement
	)
	err := withRetry("payment.approve", func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			var err error
			payment, err = s.loadPending(tx, paymentID)
			if err != nil {
				return err
			}
			plan, err := s.catalog.ResolveName(payment.TariffName)
			if err != nil {
				return ErrUnknownTier
			}

			if err := s.review(tx, payment, models.PaymentApproved, adminID, comment, s.now()); err != nil {
				return err
			}
			entry, err = s.entitlements.Grant(tx, payment.UserID, plan, &payment.ID)
			if err != nil {
				return err
			}

			user, err := loadUser(tx, payment.UserID)
			if err != nil {
				return err
			}
			return notify.Enqueue(tx, notify.To(user, notify.KindPaymentApproved,
				notify.PaymentApprovedText(plan.Name, plan.Requests, plan.ListingDays)))
		})
	})
	if err != nil {
		return nil, nil, err
	}
	metrics.PaymentsReviewedTotal.WithLabelValues(models.PaymentApproved).Inc()
	metrics.EntitlementsGrantedTotal.WithLabelValues(entry.TariffName).Inc()
	slog.Info("payment approved", "action", "payment.approve", "payment_id", payment.ID.String(),
		"user_id", payment.UserID.String(), "tariff", payment.TariffName)
	return payment, entry, nil
}

func (s *PaymentService) Reject(paymentID uuid.UUID, adminID *uuid.UUID, comment string) (*models.PaymentRequest, error) {
	var payment *models.PaymentRequest
	err := withRetry("payment.reject", func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			var err error
			payment, err = s.loadPending(tx, paymentID)
			if err != nil {
				return err
			}
			if err := s.review(tx, payment, models.PaymentRejected, adminID, comment, s.now()); err != nil {
				return err
			}
			user, err := loadUser(tx, payment.UserID)
			if err != nil {
				return err
			}
			return notify.Enqueue(tx, notify.To(user, notify.KindPaymentRejected, notify.PaymentRejectedText(comment)))
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.PaymentsReviewedTotal.WithLabelValues(models.PaymentRejected).Inc()
	return payment, nil
}

func (s *PaymentService) List(status string, limit, offset int) ([]models.PaymentRequest, int64, error) {
	var payments []models.PaymentRequest
	var total int64

	query := s.db.Model(&models.PaymentRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (s *PaymentService) ListOwn(userID uuid.UUID) ([]models.PaymentRequest, error) {
	var payments []models.PaymentRequest
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}
