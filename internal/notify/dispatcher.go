package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const dispatchBatch = 50

// Dispatcher delivers pending outbox rows. Delivery failures are logged and
// retried on later ticks until maxAttempts, then the row is marked failed.
// Sends are paced so a burst of transitions stays under the Bot API limit.
type Dispatcher struct {
	db          *gorm.DB
	sender      Sender
	interval    time.Duration
	maxAttempts int
	limiter     *rate.Limiter
	now         func() time.Time
}

// NewDispatcher paces delivery at perSecond messages; zero or less means
// unpaced.
func NewDispatcher(db *gorm.DB, sender Sender, interval time.Duration, maxAttempts int, perSecond float64) *Dispatcher {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Dispatcher{
		db:          db,
		sender:      sender,
		interval:    interval,
		maxAttempts: maxAttempts,
		limiter:     rate.NewLimiter(limit, 1),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start runs the dispatch loop until done is closed.
func (d *Dispatcher) Start(done chan struct{}) {
	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), d.interval*10)
				if _, err := d.DispatchPending(ctx); err != nil {
					slog.Error("notification dispatch failed", "error", err)
				}
				cancel()
			case <-done:
				return
			}
		}
	}()
}

// DispatchPending sends one batch of pending notifications, oldest first,
// and returns how many were delivered.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	var pending []models.Notification
	err := d.db.WithContext(ctx).
		Where("status = ?", models.NotificationPending).
		Order("created_at ASC").
		Limit(dispatchBatch).
		Find(&pending).Error
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range pending {
		if err := d.limiter.Wait(ctx); err != nil {
			break
		}
		if d.deliver(ctx, &pending[i]) {
			sent++
		}
	}
	return sent, nil
}

func (d *Dispatcher) deliver(ctx context.Context, n *models.Notification) bool {
	err := d.sender.SendMessage(ctx, n.TelegramID, n.Text)
	if err == nil {
		now := d.now()
		if err := d.db.Model(&models.Notification{}).Where("id = ?", n.ID).Updates(map[string]interface{}{
			"status":   models.NotificationSent,
			"attempts": n.Attempts + 1,
			"sent_at":  now,
		}).Error; err != nil {
			slog.Error("failed to mark notification sent", "notification_id", n.ID.String(), "error", err)
		}
		metrics.NotificationsTotal.WithLabelValues(n.Kind, models.NotificationSent).Inc()
		return true
	}

	attempts := n.Attempts + 1
	status := models.NotificationPending
	if attempts >= d.maxAttempts {
		status = models.NotificationFailed
	}
	metrics.NotificationsTotal.WithLabelValues(n.Kind, status).Inc()
	slog.Error("notification delivery failed",
		"notification_id", n.ID.String(),
		"kind", n.Kind,
		"attempts", attempts,
		"error", err,
	)
	if uerr := d.db.Model(&models.Notification{}).Where("id = ?", n.ID).Updates(map[string]interface{}{
		"status":     status,
		"attempts":   attempts,
		"last_error": err.Error(),
	}).Error; uerr != nil {
		slog.Error("failed to record notification failure", "notification_id", n.ID.String(), "error", uerr)
	}
	return false
}
