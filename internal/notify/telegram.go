package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers one pre-formatted text to a Telegram chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// TelegramClient sends HTML messages through the Bot API.
type TelegramClient struct {
	api *tgbotapi.BotAPI
}

// NewTelegramClient connects to the Bot API at baseURL. It calls getMe, so a
// bad token fails here rather than on the first notification.
func NewTelegramClient(baseURL, token string) (*TelegramClient, error) {
	endpoint := strings.TrimRight(baseURL, "/") + "/bot%s/%s"
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	api.Debug = false
	slog.Info("telegram bot connected", "username", api.Self.UserName)
	return &TelegramClient{api: api}, nil
}

// SendMessage gives up early when ctx is already done; the Bot API call
// itself is bounded by the library's HTTP client.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	return nil
}

// LogSender only logs messages. Used when no bot token is configured.
type LogSender struct{}

func (LogSender) SendMessage(_ context.Context, chatID int64, text string) error {
	slog.Info("notification (no bot configured)", "telegram_id", chatID, "text", text)
	return nil
}
