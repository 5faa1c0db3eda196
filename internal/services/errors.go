package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Rejection is a business precondition failure. Code is stable and machine
// readable; Message can be shown to the user as is.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

func reject(code, message string) *Rejection {
	return &Rejection{Code: code, Message: message}
}

var (
	ErrUserNotFound    = reject("not-found", "User not found")
	ErrListingNotFound = reject("not-found", "Listing not found")
	ErrRequestNotFound = reject("not-found", "Request not found")
	ErrPaymentNotFound = reject("not-found", "Payment not found")
	ErrReportNotFound  = reject("not-found", "Report not found")
	ErrChatNotFound    = reject("not-found", "Chat not found")
	// Same wording as ErrChatNotFound so outsiders cannot probe chat ids.
	ErrNotParticipant = reject("not-participant", "Chat not found")

	ErrSelfTarget          = reject("self-target", "You cannot send a request to yourself")
	ErrNotPending          = reject("not-pending", "This request has already been processed")
	ErrNoEntitlement       = reject("no-entitlement", "An active tariff is required. Please purchase a tariff")
	ErrQuotaExhausted      = reject("quota-exhausted", "You have no requests left. Please purchase a new tariff")
	ErrAlreadyConnected    = reject("already-connected", "You are already connected with this user")
	ErrAlreadyRequested    = reject("already-requested", "A request between you already exists")
	ErrListingInactive     = reject("listing-inactive", "This listing is not active")
	ErrListingIncomplete   = reject("listing-incomplete", "Please complete your profile first")
	ErrIncompatibleListing = reject("incompatible-listing", "This listing does not match your profile")
	ErrBlocked             = reject("blocked", "You cannot interact with this user")

	ErrChatExpired          = reject("chat-expired", "This chat has expired")
	ErrEmptyMessage         = reject("empty-message", "Message cannot be empty")
	ErrMessageTooLong       = reject("message-too-long", "Message is too long")
	ErrInappropriateContent = reject("inappropriate-content", "Your message contains inappropriate language")

	ErrPaymentPending = reject("payment-pending", "You already have a payment under review")
	ErrUnknownTier    = reject("unknown-tier", "Unknown tariff")
	ErrNotReviewable  = reject("not-reviewable", "This payment has already been reviewed")

	ErrSelfBlock        = reject("self-target", "You cannot block yourself")
	ErrAlreadyBlocked   = reject("already-blocked", "User already blocked")
	ErrInvalidReport    = reject("invalid-report", "Invalid report")
	ErrAlreadyReported  = reject("already-reported", "You have already reported this user")
	ErrSelfFavorite     = reject("self-target", "You cannot add your own listing to favorites")
	ErrAlreadyFavorited = reject("already-favorited", "Listing is already in your favorites")
	ErrInvalidInput     = reject("invalid-input", "Invalid input")

	ErrInvalidInitData = reject("invalid-init-data", "Invalid Telegram data")
	ErrUserBlocked     = reject("user-blocked", "Your account has been blocked")
)

// ErrConflict is a transient persistence conflict that survived one retry.
var ErrConflict = errors.New("concurrent update conflict, please retry")

// AlreadyConnectedError is ErrAlreadyConnected with the existing chat, so
// callers can redirect to it.
type AlreadyConnectedError struct {
	ChatID uuid.UUID
}

func (e *AlreadyConnectedError) Error() string {
	return fmt.Sprintf("%s (chat %s)", ErrAlreadyConnected.Message, e.ChatID)
}

func (e *AlreadyConnectedError) Is(target error) bool {
	return target == ErrAlreadyConnected
}

func (e *AlreadyConnectedError) As(target interface{}) bool {
	if r, ok := target.(**Rejection); ok {
		*r = ErrAlreadyConnected
		return true
	}
	return false
}

// invalid returns ErrInvalidInput with a custom message.
func invalid(message string) *Rejection {
	return reject(ErrInvalidInput.Code, message)
}
