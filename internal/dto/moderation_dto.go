package dto

import "github.com/google/uuid"

// CreateReportRequest names the reported member. The listing and message are
// optional context and must belong to that member.
type CreateReportRequest struct {
	UserID    uuid.UUID  `json:"user_id"`
	ListingID *uuid.UUID `json:"listing_id"`
	MessageID *uuid.UUID `json:"message_id"`
	Reason    string     `json:"reason"`
	Details   string     `json:"details"`
}

// ActionReportRequest resolves a report. BlockUser suspends the reported
// account when the report is actioned.
type ActionReportRequest struct {
	Status    string `json:"status"`
	AdminNote string `json:"admin_note"`
	BlockUser bool   `json:"block_user"`
}

type BlockUserRequest struct {
	UserID uuid.UUID `json:"user_id"`
}
