package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
)

func fullInput(name, gender string) *dto.ListingInput {
	working := false
	return &dto.ListingInput{
		Name:                  strPtr(name),
		Gender:                strPtr(gender),
		BirthYear:             intPtr(1999),
		Region:                strPtr("Samarkand"),
		Nationality:           strPtr("Uzbek"),
		MaritalStatus:         strPtr("single"),
		Height:                intPtr(165),
		Weight:                intPtr(55),
		Prays:                 strPtr("five_times"),
		Fasts:                 strPtr("yes"),
		ReligiousLevel:        strPtr("practicing"),
		Education:             strPtr("higher"),
		Profession:            strPtr("doctor"),
		IsWorking:             &working,
		PartnerAgeMin:         intPtr(24),
		PartnerAgeMax:         intPtr(34),
		PartnerRegion:         strPtr("Samarkand"),
		PartnerRegions:        []string{"Samarkand", "Bukhara"},
		PartnerReligiousLevel: strPtr("practicing"),
		PartnerMaritalStatus:  strPtr("single"),
	}
}

func TestListing_PublishLifecycle(t *testing.T) {
	f := newFixture(t, listingPolicy())
	owner, _ := f.member(t, "Aziz", "male")
	viewer, _ := f.member(t, "Malika", "female")

	created, err := f.listings.Create(owner.ID, &dto.ListingInput{Name: strPtr("  Sister  "), Gender: strPtr(" Female ")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.IsPrimary || created.Complete || *created.Name != "Sister" || *created.Gender != "female" {
		t.Fatalf("created = %+v", created)
	}
	if created.CompletionPercent == 0 || created.CompletionPercent == 100 {
		t.Errorf("CompletionPercent = %d, want partial", created.CompletionPercent)
	}

	_, err = f.listings.Publish(created.ID, owner.ID)
	assertRejection(t, err, ErrListingIncomplete)

	if _, err := f.listings.Update(created.ID, owner.ID, fullInput("Sister", "female")); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	_, err = f.listings.Publish(created.ID, owner.ID)
	assertRejection(t, err, ErrNoEntitlement)

	// Hidden listings are only visible to their owner.
	_, err = f.listings.Get(created.ID, viewer.ID)
	assertRejection(t, err, ErrListingNotFound)

	f.grant(t, owner, "KUMUSH")
	f.clock.Advance(time.Hour)
	published, err := f.listings.Publish(created.ID, owner.ID)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !published.Visible() || published.ActivatedAt == nil || !published.ActivatedAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("published = %+v", published.Listing)
	}
	if got, err := f.listings.Get(created.ID, viewer.ID); err != nil || len(got.Regions()) != 2 {
		t.Fatalf("Get() by viewer = %+v, %v", got, err)
	}

	// Clearing a required field takes the listing off the feed.
	updated, err := f.listings.Update(created.ID, owner.ID, &dto.ListingInput{Profession: strPtr("")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.IsPublished || updated.IsActive {
		t.Error("incomplete listing stayed published")
	}

	// Other users cannot edit it.
	_, err = f.listings.Update(created.ID, viewer.ID, fullInput("X", "male"))
	assertRejection(t, err, ErrListingNotFound)

	own, err := f.listings.ListOwn(owner.ID)
	if err != nil || len(own) != 2 || !own[0].IsPrimary {
		t.Fatalf("ListOwn() = %d, %v; want primary first of 2", len(own), err)
	}
}

func TestListing_InputValidation(t *testing.T) {
	f := newFixture(t, listingPolicy())
	owner, _ := f.member(t, "Aziz", "male")

	tests := []struct {
		name string
		in   *dto.ListingInput
	}{
		{"gender", &dto.ListingInput{Gender: strPtr("other")}},
		{"birth year", &dto.ListingInput{BirthYear: intPtr(1800)}},
		{"partner ages", &dto.ListingInput{PartnerAgeMin: intPtr(40), PartnerAgeMax: intPtr(30)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.listings.Create(owner.ID, tt.in)
			assertRejection(t, err, ErrInvalidInput)
		})
	}
	if n := f.countRows(t, &models.Listing{}, "user_id = ?", owner.ID); n != 1 {
		t.Errorf("listings = %d, want only the primary", n)
	}
}

func TestFeed_OrderAndFilters(t *testing.T) {
	f := newFixture(t, listingPolicy())
	viewer, _ := f.member(t, "Aziz", "male")
	f.member(t, "Bobur", "male")
	f.clock.Advance(time.Minute)
	plain, _ := f.member(t, "Malika", "female")
	f.clock.Advance(time.Minute)
	blocked, _ := f.member(t, "Nodira", "female")
	f.clock.Advance(time.Minute)
	// Dilnoza is the oldest of the women but boosted.
	f.clock.Advance(-10 * time.Minute)
	boosted, _ := f.member(t, "Dilnoza", "female")
	f.clock.Advance(10 * time.Minute)
	f.grant(t, boosted, "OLTIN")

	if err := f.moderation.BlockUser(blocked.ID, viewer.ID); err != nil {
		t.Fatal(err)
	}

	feed, err := f.feed.List(viewer.ID, dto.FeedQuery{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if feed.Total != 2 || len(feed.Items) != 2 {
		t.Fatalf("feed = %d items (total %d), want 2", len(feed.Items), feed.Total)
	}
	if feed.Items[0].UserID != boosted.ID || !feed.Items[0].IsTop {
		t.Errorf("first item = %s top=%v, want boosted Dilnoza", feed.Items[0].DisplayName(), feed.Items[0].IsTop)
	}
	if feed.Items[1].UserID != plain.ID || feed.Items[1].IsTop {
		t.Errorf("second item = %s, want Malika", feed.Items[1].DisplayName())
	}
	if feed.Items[1].Age != 29 {
		t.Errorf("Age = %d, want 29", feed.Items[1].Age)
	}
	if feed.Limit != DefaultFeedLimit {
		t.Errorf("Limit = %d, want default", feed.Limit)
	}

	top, _ := f.feed.List(viewer.ID, dto.FeedQuery{TopOnly: true})
	if len(top.Items) != 1 || top.Items[0].UserID != boosted.ID {
		t.Errorf("top_only feed = %d items", len(top.Items))
	}

	older, _ := f.feed.List(viewer.ID, dto.FeedQuery{AgeMin: 30})
	if len(older.Items) != 0 {
		t.Errorf("age_min=30 feed = %d items, want 0", len(older.Items))
	}

	men, _ := f.feed.List(viewer.ID, dto.FeedQuery{Gender: "male"})
	if len(men.Items) != 1 || men.Items[0].DisplayName() != "Bobur" {
		t.Errorf("gender=male feed = %d items, want Bobur only", len(men.Items))
	}

	page, _ := f.feed.List(viewer.ID, dto.FeedQuery{Limit: 1, Offset: 1})
	if page.Total != 2 || len(page.Items) != 1 || page.Items[0].UserID != plain.ID {
		t.Errorf("second page = %+v", page)
	}
}

// Listing visibility is listing-driven: an entitlement is needed to publish,
// but a published listing stays up after the owner's plan lapses.
func TestFeed_ListingOutlivesEntitlement(t *testing.T) {
	f := newFixture(t, listingPolicy())
	viewer, _ := f.member(t, "Aziz", "male")
	owner, _ := f.member(t, "Malika", "female")
	f.grant(t, owner, "KUMUSH")

	f.clock.Advance(60 * day)
	if current, _ := f.ents.Current(owner.ID); current != nil {
		t.Fatalf("owner still entitled: %+v", current)
	}

	feed, err := f.feed.List(viewer.ID, dto.FeedQuery{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(feed.Items) != 1 || feed.Items[0].UserID != owner.ID || feed.Items[0].IsTop {
		t.Fatalf("feed = %+v, want Malika without boost", feed.Items)
	}

	f.grant(t, viewer, "KUMUSH")
	f.send(t, viewer, owner)
}
