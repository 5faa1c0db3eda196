package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/notify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MaxMessageLength    = 2000
	DefaultMessageLimit = 100
	MaxMessageLimit     = 1000
)

// ChatService manages the fixed-window conversations opened by accepted
// requests. Liveness is recomputed from the clock on every access; nothing
// sweeps expired chats in the background.
type ChatService struct {
	db         *gorm.DB
	moderation *ModerationService
	duration   time.Duration
	now        func() time.Time
}

func NewChatService(db *gorm.DB, moderation *ModerationService, duration time.Duration) *ChatService {
	return &ChatService{db: db, moderation: moderation, duration: duration, now: utcNow}
}

// open creates the single chat for an accepted request. Only Accept calls it,
// inside the same transaction that flips the request status.
func (s *ChatService) open(tx *gorm.DB, req *models.MatchRequest, now time.Time) (*models.Chat, error) {
	chat := models.Chat{
		ID:             uuid.New(),
		MatchRequestID: req.ID,
		User1ID:        req.SenderID,
		User2ID:        req.ReceiverID,
		Listing1ID:     req.SenderListingID,
		Listing2ID:     req.TargetListingID,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.duration),
		IsActive:       true,
	}
	if err := tx.Create(&chat).Error; err != nil {
		return nil, fmt.Errorf("failed to open chat: %w", err)
	}
	return &chat, nil
}

// RefreshStatus flips IsActive off once the window has passed. Calling it on
// an already expired chat is a no-op.
func (s *ChatService) RefreshStatus(chat *models.Chat) error {
	return s.refresh(s.db, chat, s.now())
}

func (s *ChatService) refresh(tx *gorm.DB, chat *models.Chat, now time.Time) error {
	if !chat.IsActive || !chat.Expired(now) {
		return nil
	}
	if err := tx.Model(&models.Chat{}).
		Where("id = ? AND is_active = ?", chat.ID, true).
		Update("is_active", false).Error; err != nil {
		return err
	}
	chat.IsActive = false
	return nil
}

// participantChat loads a chat for userID. Outsiders get ErrNotParticipant,
// worded the same as a missing chat.
func (s *ChatService) participantChat(tx *gorm.DB, chatID, userID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := tx.Where("id = ?", chatID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	if err := s.refresh(tx, &chat, s.now()); err != nil {
		return nil, err
	}
	return &chat, nil
}

// Get returns the chat with its liveness brought up to date.
func (s *ChatService) Get(chatID, userID uuid.UUID) (*models.Chat, error) {
	return s.participantChat(s.db, chatID, userID)
}

// PostMessage appends a message while the chat is live. Posting never moves
// the expiry.
func (s *ChatService) PostMessage(chatID, senderID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}
	if s.moderation.ContainsProfanity(content) {
		return nil, ErrInappropriateContent
	}

	// The expiry flip has to survive the rejection, so it runs outside the
	// write transaction.
	chat, err := s.participantChat(s.db, chatID, senderID)
	if err != nil {
		return nil, err
	}
	if !chat.IsActive {
		return nil, ErrChatExpired
	}

	var msg models.Message
	err = withRetry("chat.post_message", func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			chat, err := s.participantChat(tx, chatID, senderID)
			if err != nil {
				return err
			}
			if !chat.IsActive {
				return ErrChatExpired
			}

			msg = models.Message{
				ID:        uuid.New(),
				ChatID:    chat.ID,
				SenderID:  senderID,
				Content:   content,
				CreatedAt: s.now(),
			}
			if err := tx.Create(&msg).Error; err != nil {
				return fmt.Errorf("failed to create message: %w", err)
			}

			recipient, err := loadUser(tx, chat.OtherUser(senderID))
			if err != nil {
				return err
			}
			name := listingName(tx, chat.ListingOf(senderID), "User")
			return notify.Enqueue(tx, notify.To(recipient, notify.KindMessagePosted,
				notify.MessagePostedText(name, content)))
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.MessagesPostedTotal.Inc()
	return &msg, nil
}

// ListMessages returns at most limit messages ordered by creation time. It is
// a hard cap, not a cursor. Expired chats stay readable.
func (s *ChatService) ListMessages(chatID, readerID uuid.UUID, limit int, order string) ([]models.Message, error) {
	if _, err := s.participantChat(s.db, chatID, readerID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}
	direction := "ASC"
	if strings.EqualFold(order, "desc") {
		direction = "DESC"
	}

	var messages []models.Message
	if err := s.db.Where("chat_id = ?", chatID).
		Order("created_at " + direction).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flips the read flag on the other participant's unread messages and
// returns how many changed. A second call changes nothing.
func (s *ChatService) MarkRead(chatID, readerID uuid.UUID) (int64, error) {
	if _, err := s.participantChat(s.db, chatID, readerID); err != nil {
		return 0, err
	}
	result := s.db.Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chatID, readerID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// ListChats returns the user's chats, live ones first, each with its last
// message and unread count.
func (s *ChatService) ListChats(userID uuid.UUID) ([]dto.ChatSummary, error) {
	var chats []models.Chat
	if err := s.db.Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&chats).Error; err != nil {
		return nil, err
	}

	now := s.now()
	active := make([]dto.ChatSummary, 0, len(chats))
	expired := make([]dto.ChatSummary, 0)
	for i := range chats {
		chat := &chats[i]
		if err := s.refresh(s.db, chat, now); err != nil {
			return nil, err
		}

		otherListing := chat.ListingOf(chat.OtherUser(userID))
		summary := dto.ChatSummary{
			ID:             chat.ID,
			OtherUserID:    chat.OtherUser(userID),
			OtherListingID: otherListing,
			OtherName:      listingName(s.db, otherListing, "User"),
			IsActive:       chat.IsActive,
			CreatedAt:      chat.CreatedAt,
			ExpiresAt:      chat.ExpiresAt,
			DaysRemaining:  chat.DaysRemaining(now),
			HoursRemaining: chat.HoursRemaining(now),
		}

		var last models.Message
		err := s.db.Where("chat_id = ?", chat.ID).Order("created_at DESC").First(&last).Error
		if err == nil {
			summary.LastMessage = &last
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		if err := s.db.Model(&models.Message{}).
			Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chat.ID, userID, false).
			Count(&summary.UnreadCount).Error; err != nil {
			return nil, err
		}

		if chat.IsActive {
			active = append(active, summary)
		} else {
			expired = append(expired, summary)
		}
	}
	return append(active, expired...), nil
}
