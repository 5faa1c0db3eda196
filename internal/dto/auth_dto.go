package dto

import (
	"time"

	"github.com/google/uuid"
)

type TelegramAuthRequest struct {
	InitData string `json:"init_data"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	IsNew       bool         `json:"is_new"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LanguageCode string    `json:"language_code"`
	IsAdmin      bool      `json:"is_admin"`
}

type ErrorResponse struct {
	Error   bool       `json:"error"`
	Code    string     `json:"code,omitempty"`
	Message string     `json:"message"`
	ChatID  *uuid.UUID `json:"chat_id,omitempty"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	DB          string `json:"db"`
	TariffCount int    `json:"tariff_count"`
}
