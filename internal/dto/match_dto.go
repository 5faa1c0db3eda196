package dto

import (
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/google/uuid"
)

// CreateMatchRequest targets either a listing or a user. When only the
// receiver is given, their primary listing is the target; when only the
// listing is given, its owner is the receiver.
type CreateMatchRequest struct {
	ReceiverID      *uuid.UUID `json:"receiver_id"`
	TargetListingID *uuid.UUID `json:"target_listing_id"`
	SenderListingID *uuid.UUID `json:"sender_listing_id"`
	Message         string     `json:"message"`
}

type AcceptMatchResponse struct {
	Request models.MatchRequest `json:"request"`
	ChatID  uuid.UUID           `json:"chat_id"`
}

type CancelMatchResponse struct {
	Cancelled bool `json:"cancelled"`
}

type MatchRequestView struct {
	models.MatchRequest
	OtherListingName string `json:"other_listing_name"`
}
