package notify

import (
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Kinds of outbox notifications.
const (
	KindRequestReceived  = "request_received"
	KindRequestSent      = "request_sent"
	KindRequestAccepted  = "request_accepted"
	KindRequestRejected  = "request_rejected"
	KindMessagePosted    = "message_posted"
	KindPaymentSubmitted = "payment_submitted"
	KindPaymentApproved  = "payment_approved"
	KindPaymentRejected  = "payment_rejected"
)

// Outgoing is a notification to be enqueued.
type Outgoing struct {
	UserID     *uuid.UUID
	TelegramID int64
	Kind       string
	Text       string
}

// To addresses a notification to a user.
func To(user *models.User, kind, text string) Outgoing {
	id := user.ID
	return Outgoing{UserID: &id, TelegramID: user.TelegramID, Kind: kind, Text: text}
}

// Enqueue writes outbox rows using tx, so they commit or roll back together
// with the state change they describe. Recipients without a Telegram id are
// skipped.
func Enqueue(tx *gorm.DB, items ...Outgoing) error {
	rows := make([]models.Notification, 0, len(items))
	for _, it := range items {
		if it.TelegramID == 0 || it.Text == "" {
			continue
		}
		rows = append(rows, models.Notification{
			ID:         uuid.New(),
			UserID:     it.UserID,
			TelegramID: it.TelegramID,
			Kind:       it.Kind,
			Text:       it.Text,
			Status:     models.NotificationPending,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
