package services

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/metrics"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// isConflict reports serialization failures, deadlocks and unique violations
// raised by concurrent writers.
func isConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return true
		}
	}
	return false
}

// withRetry runs fn and, on a persistence conflict, runs it exactly once more.
// fn must re-read and re-check its preconditions, which every transaction in
// this package does. A second conflict is surfaced as ErrConflict.
func withRetry(action string, fn func() error) error {
	err := fn()
	if err == nil || !isConflict(err) {
		return err
	}
	slog.Warn("retrying after write conflict", "action", action, "error", err)
	metrics.RetriesTotal.WithLabelValues(action).Inc()
	err = fn()
	if err != nil && isConflict(err) {
		slog.Error("write conflict persisted after retry", "action", action, "error", err)
		return ErrConflict
	}
	return err
}
