package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"gorm.io/gorm"
)

// StartCleanup runs a daily goroutine that deletes system logs and delivered
// notifications older than retentionDays.
func StartCleanup(db *gorm.DB, retentionDays int, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				Cleanup(db, time.Now().UTC().AddDate(0, 0, -retentionDays))
			case <-done:
				return
			}
		}
	}()
}

// Cleanup removes rows older than cutoff. Pending notifications are kept.
func Cleanup(db *gorm.DB, cutoff time.Time) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}

	result = db.Where("status <> ? AND created_at < ?", models.NotificationPending, cutoff).Delete(&models.Notification{})
	if result.Error != nil {
		slog.Error("notification cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("notification cleanup completed", "deleted", result.RowsAffected)
	}
}
