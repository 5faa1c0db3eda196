package services

import (
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/notify"
	"github.com/google/uuid"
)

// openChat returns an accepted chat between a (sender) and b, created at the
// fixture's current time.
func openChat(t *testing.T, f *fixture) (*models.User, *models.User, *models.Chat) {
	t.Helper()
	a, _ := f.member(t, "Aziz", "male")
	b, _ := f.member(t, "Malika", "female")
	f.grant(t, a, "KUMUSH")
	req := f.send(t, a, b)
	_, chat, err := f.matches.Accept(req.ID, b.ID)
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	return a, b, chat
}

func TestChat_ExpiresAfterSevenDays(t *testing.T) {
	f := newFixture(t, listingPolicy())
	a, b, chat := openChat(t, f)

	f.clock.Advance(6*day + 23*time.Hour)
	if _, err := f.chats.PostMessage(chat.ID, a.ID, "still here"); err != nil {
		t.Fatalf("PostMessage() at +6d23h error = %v", err)
	}
	live, err := f.chats.Get(chat.ID, b.ID)
	if err != nil || !live.IsActive {
		t.Fatalf("Get() at +6d23h = %+v, %v; want active", live, err)
	}
	if live.HoursRemaining(f.clock.Now()) != 1 || live.DaysRemaining(f.clock.Now()) != 0 {
		t.Errorf("remaining = %dd %dh, want 0d 1h", live.DaysRemaining(f.clock.Now()), live.HoursRemaining(f.clock.Now()))
	}

	f.clock.Advance(time.Hour + time.Second)
	_, err = f.chats.PostMessage(chat.ID, b.ID, "too late")
	assertRejection(t, err, ErrChatExpired)

	var stored models.Chat
	f.db.First(&stored, "id = ?", chat.ID)
	if stored.IsActive {
		t.Error("chat still active in storage after expiry")
	}
	if !stored.ExpiresAt.Equal(chat.ExpiresAt) {
		t.Errorf("ExpiresAt moved from %v to %v", chat.ExpiresAt, stored.ExpiresAt)
	}

	// Refreshing an expired chat is a no-op.
	if err := f.chats.RefreshStatus(&stored); err != nil || stored.IsActive {
		t.Fatalf("RefreshStatus() = %v, active=%v", err, stored.IsActive)
	}

	// Expired chats stay readable.
	messages, err := f.chats.ListMessages(chat.ID, a.ID, 0, "asc")
	if err != nil || len(messages) != 1 {
		t.Fatalf("ListMessages() = %d, %v; want 1 message", len(messages), err)
	}

	f.clock.Advance(30 * day)
	expired, _ := f.chats.Get(chat.ID, a.ID)
	if expired.DaysRemaining(f.clock.Now()) != 0 || expired.HoursRemaining(f.clock.Now()) != 0 {
		t.Error("remaining time is not clamped to zero after expiry")
	}
}

func TestPostMessage_DoesNotExtendWindow(t *testing.T) {
	f := newFixture(t, listingPolicy())
	a, _, chat := openChat(t, f)

	f.clock.Advance(5 * day)
	if _, err := f.chats.PostMessage(chat.ID, a.ID, "hello"); err != nil {
		t.Fatal(err)
	}

	var stored models.Chat
	f.db.First(&stored, "id = ?", chat.ID)
	if !stored.ExpiresAt.Equal(chat.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want unchanged %v", stored.ExpiresAt, chat.ExpiresAt)
	}
}

func TestPostMessage_Validation(t *testing.T) {
	f := newFixture(t, listingPolicy())
	a, _, chat := openChat(t, f)
	outsider, _ := f.member(t, "Outsider", "female")

	tests := []struct {
		name    string
		chatID  uuid.UUID
		sender  uuid.UUID
		content string
		want    *Rejection
	}{
		{"empty", chat.ID, a.ID, "   ", ErrEmptyMessage},
		{"too long", chat.ID, a.ID, strings.Repeat("a", MaxMessageLength+1), ErrMessageTooLong},
		{"profanity", chat.ID, a.ID, "what the fuck", ErrInappropriateContent},
		{"outsider", chat.ID, outsider.ID, "hi", ErrNotParticipant},
		{"unknown chat", uuid.New(), a.ID, "hi", ErrChatNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.chats.PostMessage(tt.chatID, tt.sender, tt.content)
			assertRejection(t, err, tt.want)
		})
	}

	if n := f.countRows(t, &models.Message{}, ""); n != 0 {
		t.Errorf("messages = %d, want 0", n)
	}
}

func TestPostMessage_NotifiesRecipient(t *testing.T) {
	f := newFixture(t, listingPolicy())
	a, b, chat := openChat(t, f)

	msg, err := f.chats.PostMessage(chat.ID, a.ID, "  salom  ")
	if err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}
	if msg.Content != "salom" || msg.IsRead {
		t.Errorf("message = %+v, want trimmed and unread", msg)
	}
	if n := f.countRows(t, &models.Notification{}, "kind = ? AND telegram_id = ?", notify.KindMessagePosted, b.TelegramID); n != 1 {
		t.Errorf("recipient notifications = %d, want 1", n)
	}
}

func TestMarkRead_Idempotent(t *testing.T) {
	f := newFixture(t, listingPolicy())
	a, b, chat := openChat(t, f)

	for _, text := range []string{"one", "two"} {
		f.clock.Advance(time.Minute)
		if _, err := f.chats.PostMessage(chat.ID, b.ID, text); err != nil {
			t.Fatal(err)
		}
	}
	f.clock.Advance(time.Minute)
	if _, err := f.chats.PostMessage(chat.ID, a.ID, "three"); err != nil {
		t.Fatal(err)
	}

	updated, err := f.chats.MarkRead(chat.ID, a.ID)
	if err != nil || updated != 2 {
		t.Fatalf("MarkRead() = %d, %v; want 2", updated, err)
	}
	updated, err = f.chats.MarkRead(chat.ID, a.ID)
	if err != nil || updated != 0 {
		t.Fatalf("second MarkRead() = %d, %v; want 0", updated, err)
	}

	if n := f.countRows(t, &models.Message{}, "sender_id = ? AND is_read = ?", a.ID, false); n != 1 {
		t.Errorf("reader's own unread messages = %d, want 1 (untouched)", n)
	}

	_, err = f.chats.MarkRead(chat.ID, uuid.New())
	assertRejection(t, err, ErrNotParticipant)
}

func TestListMessages_OrderAndLimit(t *testing.T) {
	f := newFixture(t, listingPolicy())
	a, b, chat := openChat(t, f)

	for i, text := range []string{"first", "second", "third"} {
		f.clock.Advance(time.Minute)
		sender := a.ID
		if i%2 == 1 {
			sender = b.ID
		}
		if _, err := f.chats.PostMessage(chat.ID, sender, text); err != nil {
			t.Fatal(err)
		}
	}

	asc, err := f.chats.ListMessages(chat.ID, a.ID, 0, "asc")
	if err != nil || len(asc) != 3 || asc[0].Content != "first" || asc[2].Content != "third" {
		t.Fatalf("ListMessages(asc) = %+v, %v", asc, err)
	}
	desc, err := f.chats.ListMessages(chat.ID, b.ID, 2, "desc")
	if err != nil || len(desc) != 2 || desc[0].Content != "third" || desc[1].Content != "second" {
		t.Fatalf("ListMessages(desc, 2) = %+v, %v", desc, err)
	}
}

func TestListChats_Overview(t *testing.T) {
	f := newFixture(t, listingPolicy())
	a, b, chat := openChat(t, f)

	f.clock.Advance(time.Hour)
	if _, err := f.chats.PostMessage(chat.ID, b.ID, "hi there"); err != nil {
		t.Fatal(err)
	}

	chats, err := f.chats.ListChats(a.ID)
	if err != nil || len(chats) != 1 {
		t.Fatalf("ListChats() = %+v, %v", chats, err)
	}
	got := chats[0]
	if got.OtherUserID != b.ID || got.OtherName != "Malika" {
		t.Errorf("other = %s %q, want Malika", got.OtherUserID, got.OtherName)
	}
	if got.UnreadCount != 1 || got.LastMessage == nil || got.LastMessage.Content != "hi there" {
		t.Errorf("unread=%d last=%v", got.UnreadCount, got.LastMessage)
	}
	if !got.IsActive || got.DaysRemaining != 6 {
		t.Errorf("active=%v days=%d, want active with 6 days", got.IsActive, got.DaysRemaining)
	}
}
