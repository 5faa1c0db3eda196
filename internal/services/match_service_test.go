package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/notify"
	"github.com/google/uuid"
)

func assertRejection(t *testing.T, err error, want *Rejection) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want %s", want.Code)
	}
	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("error = %v (%T), want rejection %s", err, err, want.Code)
	}
	if rej.Code != want.Code {
		t.Fatalf("rejection code = %s, want %s", rej.Code, want.Code)
	}
}

func TestCreate_QuotaExhaustedAfterFive(t *testing.T) {
	f := newFixture(t, listingPolicy())
	sender, _ := f.member(t, "Aziz", "male")
	f.grant(t, sender, "KUMUSH")

	for i := 0; i < 5; i++ {
		receiver, _ := f.member(t, fmt.Sprintf("Receiver %d", i), "female")
		f.send(t, sender, receiver)
	}

	sixth, _ := f.member(t, "Receiver 6", "female")
	id := sixth.ID
	_, err := f.matches.Create(sender.ID, &dto.CreateMatchRequest{ReceiverID: &id})
	assertRejection(t, err, ErrQuotaExhausted)

	if n := f.countRows(t, &models.MatchRequest{}, "sender_id = ?", sender.ID); n != 5 {
		t.Errorf("requests created = %d, want 5", n)
	}
	current, _ := f.ents.Current(sender.ID)
	if current == nil || current.RequestsLeft != 0 {
		t.Errorf("Current() = %+v, want live entry with 0 requests left", current)
	}
}

func TestCreate_Preconditions(t *testing.T) {
	f := newFixture(t, listingPolicy())
	sender, _ := f.member(t, "Aziz", "male")
	receiver, receiverListing := f.member(t, "Malika", "female")
	sameGender, _ := f.member(t, "Bobur", "male")
	f.grant(t, sender, "OLTIN")

	hidden, _ := f.member(t, "Hidden", "female")
	f.db.Model(&models.Listing{}).Where("user_id = ?", hidden.ID).Update("is_published", false)

	blocker, _ := f.member(t, "Blocker", "female")
	if err := f.moderation.BlockUser(blocker.ID, sender.ID); err != nil {
		t.Fatal(err)
	}

	otherListing := completeListing(receiver.ID, false, "Sister", "female")
	otherListing.IsActive = true
	otherListing.IsPublished = true
	f.db.Create(&otherListing)

	ptr := func(id uuid.UUID) *uuid.UUID { return &id }

	tests := []struct {
		name string
		in   dto.CreateMatchRequest
		want *Rejection
	}{
		{"self", dto.CreateMatchRequest{ReceiverID: ptr(sender.ID)}, ErrSelfTarget},
		{"no target", dto.CreateMatchRequest{}, ErrInvalidInput},
		{"unknown listing", dto.CreateMatchRequest{TargetListingID: ptr(uuid.New())}, ErrListingNotFound},
		{"listing of another receiver", dto.CreateMatchRequest{ReceiverID: ptr(sameGender.ID), TargetListingID: ptr(receiverListing.ID)}, ErrListingNotFound},
		{"unpublished", dto.CreateMatchRequest{ReceiverID: ptr(hidden.ID)}, ErrListingInactive},
		{"same gender", dto.CreateMatchRequest{ReceiverID: ptr(sameGender.ID)}, ErrIncompatibleListing},
		{"blocked", dto.CreateMatchRequest{ReceiverID: ptr(blocker.ID)}, ErrBlocked},
		{"profanity", dto.CreateMatchRequest{ReceiverID: ptr(receiver.ID), Message: "you bitch"}, ErrInappropriateContent},
		{"sender listing not owned", dto.CreateMatchRequest{ReceiverID: ptr(receiver.ID), SenderListingID: ptr(otherListing.ID)}, ErrListingNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			_, err := f.matches.Create(sender.ID, &in)
			assertRejection(t, err, tt.want)
		})
	}

	if n := f.countRows(t, &models.MatchRequest{}, ""); n != 0 {
		t.Errorf("requests created = %d, want 0", n)
	}
	current, _ := f.ents.Current(sender.ID)
	if current.RequestsLeft != 10 {
		t.Errorf("RequestsLeft = %d, want 10 (no quota spent on rejections)", current.RequestsLeft)
	}
}

func TestCreate_RequiresEntitlementAndCompleteListing(t *testing.T) {
	f := newFixture(t, listingPolicy())
	sender, senderListing := f.member(t, "Aziz", "male")
	receiver, _ := f.member(t, "Malika", "female")
	id := receiver.ID

	_, err := f.matches.Create(sender.ID, &dto.CreateMatchRequest{ReceiverID: &id})
	assertRejection(t, err, ErrNoEntitlement)

	f.grant(t, sender, "KUMUSH")
	f.db.Model(&models.Listing{}).Where("id = ?", senderListing.ID).Update("profession", nil)
	_, err = f.matches.Create(sender.ID, &dto.CreateMatchRequest{ReceiverID: &id})
	assertRejection(t, err, ErrListingIncomplete)

	f.clock.Advance(11 * day)
	f.db.Model(&models.Listing{}).Where("id = ?", senderListing.ID).Update("profession", "doctor")
	_, err = f.matches.Create(sender.ID, &dto.CreateMatchRequest{ReceiverID: &id})
	assertRejection(t, err, ErrNoEntitlement)
}

func TestCreate_PersistsPendingAndNotifies(t *testing.T) {
	f := newFixture(t, listingPolicy())
	sender, senderListing := f.member(t, "Aziz", "male")
	receiver, receiverListing := f.member(t, "Malika", "female")
	f.grant(t, sender, "KUMUSH")

	req, err := f.matches.Create(sender.ID, &dto.CreateMatchRequest{
		TargetListingID: &receiverListing.ID,
		Message:         "  Assalomu alaykum  ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if req.Status != models.RequestPending || req.ReceiverID != receiver.ID {
		t.Errorf("request = %+v, want pending to receiver", req)
	}
	if req.SenderListingID != senderListing.ID || req.TargetListingID != receiverListing.ID {
		t.Errorf("listings = %s -> %s, want primary -> target", req.SenderListingID, req.TargetListingID)
	}
	if req.Message != "Assalomu alaykum" {
		t.Errorf("Message = %q, want trimmed", req.Message)
	}

	if n := f.countRows(t, &models.Notification{}, "kind = ? AND telegram_id = ?", notify.KindRequestReceived, receiver.TelegramID); n != 1 {
		t.Errorf("receiver notifications = %d, want 1", n)
	}
	if n := f.countRows(t, &models.Notification{}, "kind = ? AND telegram_id = ?", notify.KindRequestSent, sender.TelegramID); n != 1 {
		t.Errorf("sender confirmations = %d, want 1", n)
	}
}

func TestCreate_DuplicateInEitherDirection(t *testing.T) {
	f := newFixture(t, listingPolicy())
	a, _ := f.member(t, "Aziz", "male")
	b, _ := f.member(t, "Malika", "female")
	f.grant(t, a, "KUMUSH")
	f.grant(t, b, "KUMUSH")

	req := f.send(t, a, b)

	aID, bID := a.ID, b.ID
	_, err := f.matches.Create(a.ID, &dto.CreateMatchRequest{ReceiverID: &bID})
	assertRejection(t, err, ErrAlreadyRequested)
	_, err = f.matches.Create(b.ID, &dto.CreateMatchRequest{ReceiverID: &aID})
	assertRejection(t, err, ErrAlreadyRequested)

	_, chat, err := f.matches.Accept(req.ID, b.ID)
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	_, err = f.matches.Create(b.ID, &dto.CreateMatchRequest{ReceiverID: &aID})
	if !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("error = %v, want already-connected", err)
	}
	var connected *AlreadyConnectedError
	if !errors.As(err, &connected) || connected.ChatID != chat.ID {
		t.Fatalf("error = %v, want chat id %s", err, chat.ID)
	}
	assertRejection(t, err, ErrAlreadyConnected)
}

func TestCreate_UniquenessScope(t *testing.T) {
	run := func(t *testing.T, policy MatchPolicy) error {
		f := newFixture(t, policy)
		sender, _ := f.member(t, "Aziz", "male")
		receiver, _ := f.member(t, "Malika", "female")
		f.grant(t, sender, "OLTIN")
		f.send(t, sender, receiver)

		brother := completeListing(sender.ID, false, "Brother", "male")
		f.db.Create(&brother)
		id := receiver.ID
		_, err := f.matches.Create(sender.ID, &dto.CreateMatchRequest{ReceiverID: &id, SenderListingID: &brother.ID})
		return err
	}

	t.Run("listing", func(t *testing.T) {
		if err := run(t, MatchPolicy{Scope: config.RequestScopeListing}); err != nil {
			t.Fatalf("Create() from a second listing error = %v, want nil", err)
		}
	})
	t.Run("pair", func(t *testing.T) {
		err := run(t, MatchPolicy{Scope: config.RequestScopePair})
		assertRejection(t, err, ErrAlreadyRequested)
	})
}

func TestCreate_ClosedRequestsPolicy(t *testing.T) {
	run := func(t *testing.T, closedBlock bool) error {
		f := newFixture(t, MatchPolicy{Scope: config.RequestScopeListing, ClosedBlock: closedBlock})
		sender, _ := f.member(t, "Aziz", "male")
		receiver, _ := f.member(t, "Malika", "female")
		f.grant(t, sender, "OLTIN")
		req := f.send(t, sender, receiver)
		if _, err := f.matches.Reject(req.ID, receiver.ID); err != nil {
			t.Fatalf("Reject() error = %v", err)
		}
		id := receiver.ID
		_, err := f.matches.Create(sender.ID, &dto.CreateMatchRequest{ReceiverID: &id})
		return err
	}

	if err := run(t, false); err != nil {
		t.Errorf("resend after rejection error = %v, want nil", err)
	}
	assertRejection(t, run(t, true), ErrAlreadyRequested)
}

func TestAccept_OpensExactlyOneChat(t *testing.T) {
	f := newFixture(t, listingPolicy())
	a, aListing := f.member(t, "Aziz", "male")
	b, bListing := f.member(t, "Malika", "female")
	f.grant(t, a, "KUMUSH")
	req := f.send(t, a, b)

	f.clock.Advance(2 * day)
	accepted, chat, err := f.matches.Accept(req.ID, b.ID)
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if accepted.Status != models.RequestAccepted || accepted.RespondedAt == nil || !accepted.RespondedAt.Equal(f.clock.Now()) {
		t.Errorf("request = %+v, want accepted now", accepted)
	}
	if chat.ExpiresAt.Sub(chat.CreatedAt) != 7*day {
		t.Errorf("chat window = %v, want 168h", chat.ExpiresAt.Sub(chat.CreatedAt))
	}
	if chat.User1ID != a.ID || chat.User2ID != b.ID || chat.Listing1ID != aListing.ID || chat.Listing2ID != bListing.ID {
		t.Errorf("chat participants = %+v", chat)
	}

	_, _, err = f.matches.Accept(req.ID, b.ID)
	assertRejection(t, err, ErrNotPending)

	if n := f.countRows(t, &models.Chat{}, "match_request_id = ?", req.ID); n != 1 {
		t.Errorf("chats = %d, want 1", n)
	}
	if n := f.countRows(t, &models.Notification{}, "kind = ?", notify.KindRequestAccepted); n != 2 {
		t.Errorf("accept notifications = %d, want 2", n)
	}
}

func TestAccept_WrongActorLooksLikeNotFound(t *testing.T) {
	f := newFixture(t, listingPolicy())
	a, _ := f.member(t, "Aziz", "male")
	b, _ := f.member(t, "Malika", "female")
	f.grant(t, a, "KUMUSH")
	req := f.send(t, a, b)

	_, _, err := f.matches.Accept(req.ID, a.ID)
	assertRejection(t, err, ErrRequestNotFound)
	_, err = f.matches.Reject(req.ID, a.ID)
	assertRejection(t, err, ErrRequestNotFound)
	_, err = f.matches.Cancel(req.ID, b.ID)
	assertRejection(t, err, ErrRequestNotFound)
	_, _, err = f.matches.Accept(uuid.New(), b.ID)
	assertRejection(t, err, ErrRequestNotFound)
}

func TestCancel_ThenAcceptIsNotPending(t *testing.T) {
	f := newFixture(t, listingPolicy())
	c, _ := f.member(t, "Aziz", "male")
	d, _ := f.member(t, "Malika", "female")
	f.grant(t, c, "KUMUSH")
	req := f.send(t, c, d)

	cancelled, err := f.matches.Cancel(req.ID, c.ID)
	if err != nil || !cancelled {
		t.Fatalf("Cancel() = %v, %v; want true, nil", cancelled, err)
	}

	_, _, err = f.matches.Accept(req.ID, d.ID)
	assertRejection(t, err, ErrNotPending)

	cancelled, err = f.matches.Cancel(req.ID, c.ID)
	if err != nil || cancelled {
		t.Fatalf("second Cancel() = %v, %v; want false, nil", cancelled, err)
	}

	var stored models.MatchRequest
	f.db.First(&stored, "id = ?", req.ID)
	if stored.Status != models.RequestCancelled {
		t.Errorf("Status = %s, want cancelled", stored.Status)
	}
	if n := f.countRows(t, &models.Chat{}, ""); n != 0 {
		t.Errorf("chats = %d, want 0", n)
	}
}

func TestRejectAndCancel_DoNotRefundQuota(t *testing.T) {
	f := newFixture(t, listingPolicy())
	a, _ := f.member(t, "Aziz", "male")
	b, _ := f.member(t, "Malika", "female")
	c, _ := f.member(t, "Nodira", "female")
	f.grant(t, a, "KUMUSH")

	r1 := f.send(t, a, b)
	r2 := f.send(t, a, c)
	if _, err := f.matches.Reject(r1.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.matches.Cancel(r2.ID, a.ID); err != nil {
		t.Fatal(err)
	}

	current, _ := f.ents.Current(a.ID)
	if current.RequestsLeft != 3 {
		t.Errorf("RequestsLeft = %d, want 3", current.RequestsLeft)
	}
	if n := f.countRows(t, &models.Notification{}, "kind = ? AND telegram_id = ?", notify.KindRequestRejected, a.TelegramID); n != 1 {
		t.Errorf("rejection notifications = %d, want 1", n)
	}

	_, err := f.matches.Reject(r1.ID, b.ID)
	assertRejection(t, err, ErrNotPending)
}

func TestListSentAndReceived(t *testing.T) {
	f := newFixture(t, listingPolicy())
	a, _ := f.member(t, "Aziz", "male")
	b, _ := f.member(t, "Malika", "female")
	f.grant(t, a, "KUMUSH")
	f.send(t, a, b)

	sent, err := f.matches.ListSent(a.ID, "")
	if err != nil || len(sent) != 1 || sent[0].OtherListingName != "Malika" {
		t.Fatalf("ListSent() = %+v, %v", sent, err)
	}
	received, err := f.matches.ListReceived(b.ID, models.RequestPending)
	if err != nil || len(received) != 1 || received[0].OtherListingName != "Aziz" {
		t.Fatalf("ListReceived() = %+v, %v", received, err)
	}
	none, _ := f.matches.ListReceived(b.ID, models.RequestAccepted)
	if len(none) != 0 {
		t.Errorf("ListReceived(accepted) len = %d, want 0", len(none))
	}
}
