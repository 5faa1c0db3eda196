package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/notify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxRequestMessageLength = 500

// MatchPolicy decides which earlier requests stop a new one.
type MatchPolicy struct {
	// Scope is config.RequestScopePair or config.RequestScopeListing.
	Scope string
	// ClosedBlock keeps rejected and cancelled requests effective.
	ClosedBlock bool
}

func PolicyFromConfig(cfg *config.Config) MatchPolicy {
	return MatchPolicy{Scope: cfg.RequestScope, ClosedBlock: cfg.ClosedRequestsBlock}
}

func (p MatchPolicy) effectiveStatuses() []string {
	statuses := []string{models.RequestPending, models.RequestAccepted}
	if p.ClosedBlock {
		statuses = append(statuses, models.RequestRejected, models.RequestCancelled)
	}
	return statuses
}

// MatchService runs the request state machine: pending, then exactly one of
// accepted, rejected or cancelled.
type MatchService struct {
	db           *gorm.DB
	entitlements *EntitlementService
	chats        *ChatService
	moderation   *ModerationService
	policy       MatchPolicy
	chatDays     int
	now          func() time.Time
}

func NewMatchService(db *gorm.DB, entitlements *EntitlementService, chats *ChatService, moderation *ModerationService, policy MatchPolicy, chatDays int) *MatchService {
	return &MatchService{
		db:           db,
		entitlements: entitlements,
		chats:        chats,
		moderation:   moderation,
		policy:       policy,
		chatDays:     chatDays,
		now:          utcNow,
	}
}

// Create sends a request and spends one unit of the sender's quota in the
// same transaction.
func (s *MatchService) Create(senderID uuid.UUID, in *dto.CreateMatchRequest) (*models.MatchRequest, error) {
	if in.ReceiverID == nil && in.TargetListingID == nil {
		return nil, invalid("receiver_id or target_listing_id is required")
	}
	if in.ReceiverID != nil && *in.ReceiverID == senderID {
		return nil, ErrSelfTarget
	}

	message := strings.TrimSpace(in.Message)
	if utf8.RuneCountInString(message) > MaxRequestMessageLength {
		return nil, ErrMessageTooLong
	}
	if ok, reason := s.moderation.FilterContent(message); !ok {
		return nil, reject(ErrInappropriateContent.Code, s.moderation.GetRejectionMessage(reason))
	}

	var req models.MatchRequest
	err := withRetry("match_request.create", func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			target, err := s.resolveTarget(tx, in)
			if err != nil {
				return err
			}
			receiverID := target.UserID
			if receiverID == senderID {
				return ErrSelfTarget
			}

			sender, err := loadUser(tx, senderID)
			if err != nil {
				return err
			}
			receiver, err := loadUser(tx, receiverID)
			if err != nil {
				return err
			}
			if receiver.IsBlocked || !target.Visible() {
				return ErrListingInactive
			}

			senderListing, err := s.resolveSenderListing(tx, senderID, in.SenderListingID)
			if err != nil {
				return err
			}
			if !senderListing.Complete() {
				return ErrListingIncomplete
			}
			if senderListing.Gender != nil && target.Gender != nil &&
				*senderListing.Gender != "" && *senderListing.Gender == *target.Gender {
				return ErrIncompatibleListing
			}

			blocked, err := s.moderation.isBlockedBetween(tx, senderID, receiverID)
			if err != nil {
				return err
			}
			if blocked {
				return ErrBlocked
			}

			if err := s.checkEffective(tx, senderID, receiverID, senderListing.ID, target.ID); err != nil {
				return err
			}

			entry, err := s.entitlements.current(tx, senderID)
			if err != nil {
				return err
			}
			if entry == nil {
				return ErrNoEntitlement
			}
			ok, err := s.entitlements.Consume(tx, entry.ID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrQuotaExhausted
			}

			req = models.MatchRequest{
				ID:              uuid.New(),
				SenderID:        senderID,
				ReceiverID:      receiverID,
				SenderListingID: senderListing.ID,
				TargetListingID: target.ID,
				Message:         message,
				Status:          models.RequestPending,
				CreatedAt:       s.now(),
			}
			if err := tx.Create(&req).Error; err != nil {
				return fmt.Errorf("failed to create match request: %w", err)
			}

			return notify.Enqueue(tx,
				notify.To(receiver, notify.KindRequestReceived,
					notify.RequestReceivedText(senderListing.DisplayName(), message)),
				notify.To(sender, notify.KindRequestSent,
					notify.RequestSentText(target.DisplayName(), entry.RequestsLeft-1)),
			)
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.MatchRequestsTotal.WithLabelValues(models.RequestPending).Inc()
	return &req, nil
}

func (s *MatchService) resolveTarget(tx *gorm.DB, in *dto.CreateMatchRequest) (*models.Listing, error) {
	if in.TargetListingID == nil {
		return primaryListing(tx, *in.ReceiverID)
	}
	target, err := loadListing(tx, *in.TargetListingID)
	if err != nil {
		return nil, err
	}
	if in.ReceiverID != nil && *in.ReceiverID != target.UserID {
		return nil, ErrListingNotFound
	}
	return target, nil
}

func (s *MatchService) resolveSenderListing(tx *gorm.DB, senderID uuid.UUID, listingID *uuid.UUID) (*models.Listing, error) {
	if listingID == nil {
		return primaryListing(tx, senderID)
	}
	l, err := loadListing(tx, *listingID)
	if err != nil {
		return nil, err
	}
	if l.UserID != senderID {
		return nil, ErrListingNotFound
	}
	return l, nil
}

// checkEffective looks for an earlier request in either direction that
// blocks a new one. An accepted one yields the chat to redirect to.
func (s *MatchService) checkEffective(tx *gorm.DB, senderID, receiverID, senderListingID, targetListingID uuid.UUID) error {
	q := tx.Where("status IN ?", s.policy.effectiveStatuses())
	if s.policy.Scope == config.RequestScopePair {
		q = q.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			senderID, receiverID, receiverID, senderID)
	} else {
		q = q.Where("(sender_listing_id = ? AND target_listing_id = ?) OR (sender_listing_id = ? AND target_listing_id = ?)",
			senderListingID, targetListingID, targetListingID, senderListingID)
	}

	var existing []models.MatchRequest
	if err := q.Order("created_at DESC").Find(&existing).Error; err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}
	for _, r := range existing {
		if r.Status != models.RequestAccepted {
			continue
		}
		var chat models.Chat
		if err := tx.Where("match_request_id = ?", r.ID).First(&chat).Error; err != nil {
			return err
		}
		return &AlreadyConnectedError{ChatID: chat.ID}
	}
	return ErrAlreadyRequested
}

// loadForActor loads a request the actor is allowed to act on. Any other
// caller gets the same not-found as a missing request.
func (s *MatchService) loadForActor(tx *gorm.DB, requestID, actorID uuid.UUID, asReceiver bool) (*models.MatchRequest, error) {
	var req models.MatchRequest
	if err := tx.Where("id = ?", requestID).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if asReceiver && req.ReceiverID != actorID {
		return nil, ErrRequestNotFound
	}
	if !asReceiver && req.SenderID != actorID {
		return nil, ErrRequestNotFound
	}
	return &req, nil
}

// transition moves a pending request to status. The status re-check and the
// write are one conditional UPDATE, so a duplicate call loses.
func (s *MatchService) transition(tx *gorm.DB, req *models.MatchRequest, status string, now time.Time) (bool, error) {
	result := tx.Model(&models.MatchRequest{}).
		Where("id = ? AND status = ?", req.ID, models.RequestPending).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	req.Status = status
	req.RespondedAt = &now
	return true, nil
}

// Accept marks the request accepted and opens its chat atomically.
func (s *MatchService) Accept(requestID, actorID uuid.UUID) (*models.MatchRequest, *models.Chat, error) {
	var (
		req  *models.MatchRequest
		chat *models.Chat
	)
	err := withRetry("match_request.accept", func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			var err error
			req, err = s.loadForActor(tx, requestID, actorID, true)
			if err != nil {
				return err
			}
			if !req.IsPending() {
				return ErrNotPending
			}

			now := s.now()
			moved, err := s.transition(tx, req, models.RequestAccepted, now)
			if err != nil {
				return err
			}
			if !moved {
				return ErrNotPending
			}

			chat, err = s.chats.open(tx, req, now)
			if err != nil {
				return err
			}

			sender, err := loadUser(tx, req.SenderID)
			if err != nil {
				return err
			}
			receiver, err := loadUser(tx, req.ReceiverID)
			if err != nil {
				return err
			}
			senderName := listingName(tx, req.SenderListingID, sender.FirstName)
			receiverName := listingName(tx, req.TargetListingID, receiver.FirstName)
			return notify.Enqueue(tx,
				notify.To(sender, notify.KindRequestAccepted, notify.RequestAcceptedText(receiverName, s.chatDays)),
				notify.To(receiver, notify.KindRequestAccepted, notify.RequestAcceptedText(senderName, s.chatDays)),
			)
		})
	})
	if err != nil {
		return nil, nil, err
	}
	metrics.MatchRequestsTotal.WithLabelValues(models.RequestAccepted).Inc()
	metrics.ChatsOpenedTotal.Inc()
	return req, chat, nil
}

// Reject closes the request without a chat. The spent quota is not refunded.
func (s *MatchService) Reject(requestID, actorID uuid.UUID) (*models.MatchRequest, error) {
	var req *models.MatchRequest
	err := withRetry("match_request.reject", func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			var err error
			req, err = s.loadForActor(tx, requestID, actorID, true)
			if err != nil {
				return err
			}
			if !req.IsPending() {
				return ErrNotPending
			}
			moved, err := s.transition(tx, req, models.RequestRejected, s.now())
			if err != nil {
				return err
			}
			if !moved {
				return ErrNotPending
			}

			sender, err := loadUser(tx, req.SenderID)
			if err != nil {
				return err
			}
			name := listingName(tx, req.TargetListingID, "User")
			return notify.Enqueue(tx, notify.To(sender, notify.KindRequestRejected, notify.RequestRejectedText(name)))
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.MatchRequestsTotal.WithLabelValues(models.RequestRejected).Inc()
	return req, nil
}

// Cancel withdraws the sender's own pending request. It reports false,
// without error, when the request is no longer pending.
func (s *MatchService) Cancel(requestID, actorID uuid.UUID) (bool, error) {
	var cancelled bool
	err := withRetry("match_request.cancel", func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			req, err := s.loadForActor(tx, requestID, actorID, false)
			if err != nil {
				return err
			}
			if !req.IsPending() {
				cancelled = false
				return nil
			}
			cancelled, err = s.transition(tx, req, models.RequestCancelled, s.now())
			return err
		})
	})
	if cancelled && err == nil {
		metrics.MatchRequestsTotal.WithLabelValues(models.RequestCancelled).Inc()
	}
	return cancelled, err
}

func (s *MatchService) ListSent(userID uuid.UUID, status string) ([]dto.MatchRequestView, error) {
	return s.list("sender_id", userID, status, func(r *models.MatchRequest) uuid.UUID { return r.TargetListingID })
}

func (s *MatchService) ListReceived(userID uuid.UUID, status string) ([]dto.MatchRequestView, error) {
	return s.list("receiver_id", userID, status, func(r *models.MatchRequest) uuid.UUID { return r.SenderListingID })
}

func (s *MatchService) list(column string, userID uuid.UUID, status string, other func(*models.MatchRequest) uuid.UUID) ([]dto.MatchRequestView, error) {
	q := s.db.Where(column+" = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var requests []models.MatchRequest
	if err := q.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}

	views := make([]dto.MatchRequestView, len(requests))
	for i := range requests {
		views[i] = dto.MatchRequestView{
			MatchRequest:     requests[i],
			OtherListingName: listingName(s.db, other(&requests[i]), "User"),
		}
	}
	return views, nil
}
