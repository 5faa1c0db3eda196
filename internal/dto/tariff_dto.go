package dto

import (
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/tariff"
)

type TariffsResponse struct {
	Plans           []tariff.Plan `json:"plans"`
	BoostDailyPrice int64         `json:"boost_daily_price"`
	CardNumber      string        `json:"card_number"`
	CardName        string        `json:"card_name"`
}

type TariffStatusResponse struct {
	Active        bool                `json:"active"`
	Entitlement   *models.Entitlement `json:"entitlement,omitempty"`
	RequestsLeft  int                 `json:"requests_left"`
	DaysRemaining int                 `json:"days_remaining"`
	IsBoosted     bool                `json:"is_boosted"`
}

type SubmitPaymentRequest struct {
	Tariff        string `json:"tariff"`
	ReceiptFileID string `json:"receipt_file_id"`
	Note          string `json:"note"`
}

type ReviewPaymentRequest struct {
	Comment string `json:"comment"`
}

type PaymentApprovalResponse struct {
	Payment     models.PaymentRequest `json:"payment"`
	Entitlement models.Entitlement    `json:"entitlement"`
}
