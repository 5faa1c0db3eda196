package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/tariff"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	db         *gorm.DB
	clock      *testClock
	cfg        *config.Config
	catalog    *tariff.Catalog
	moderation *ModerationService
	ents       *EntitlementService
	chats      *ChatService
	matches    *MatchService
	payments   *PaymentService
	listings   *ListingService
	feed       *FeedService
	favorites  *FavoriteService
	tgSeq      int64
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newFixture(t *testing.T, policy MatchPolicy) *fixture {
	t.Helper()
	db := newTestDB(t)
	clock := &testClock{now: t0}
	cfg := &config.Config{
		ChatDurationDays:  7,
		JWTSecret:         "test-secret",
		JWTAccessExpiry:   time.Hour,
		TelegramBotToken:  "123456:TEST",
		InitDataMaxAge:    24 * time.Hour,
		AdminTelegramIDs:  "900",
		RequestScope:      policy.Scope,
		NotifyMaxAttempts: 5,
	}
	catalog := tariff.DefaultCatalog(0)

	f := &fixture{db: db, clock: clock, cfg: cfg, catalog: catalog, tgSeq: 1000}
	f.moderation = NewModerationService(db)
	f.moderation.now = clock.Now
	f.ents = NewEntitlementService(db)
	f.ents.now = clock.Now
	f.chats = NewChatService(db, f.moderation, cfg.ChatDuration())
	f.chats.now = clock.Now
	f.matches = NewMatchService(db, f.ents, f.chats, f.moderation, policy, cfg.ChatDurationDays)
	f.matches.now = clock.Now
	f.payments = NewPaymentService(db, cfg, catalog, f.ents)
	f.payments.now = clock.Now
	f.listings = NewListingService(db, f.ents)
	f.listings.now = clock.Now
	f.feed = NewFeedService(db, f.ents)
	f.feed.now = clock.Now
	f.favorites = NewFavoriteService(db, f.moderation)
	f.favorites.now = clock.Now
	return f
}

func listingPolicy() MatchPolicy {
	return MatchPolicy{Scope: config.RequestScopeListing}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func completeListing(userID uuid.UUID, primary bool, name, gender string) models.Listing {
	working := true
	return models.Listing{
		ID:                    uuid.New(),
		UserID:                userID,
		IsPrimary:             primary,
		Name:                  strPtr(name),
		Gender:                strPtr(gender),
		BirthYear:             intPtr(1996),
		Region:                strPtr("Tashkent"),
		Nationality:           strPtr("Uzbek"),
		MaritalStatus:         strPtr("single"),
		Height:                intPtr(175),
		Weight:                intPtr(70),
		Prays:                 strPtr("five_times"),
		Fasts:                 strPtr("yes"),
		ReligiousLevel:        strPtr("practicing"),
		Education:             strPtr("higher"),
		Profession:            strPtr("engineer"),
		IsWorking:             &working,
		PartnerAgeMin:         intPtr(22),
		PartnerAgeMax:         intPtr(32),
		PartnerRegion:         strPtr("Tashkent"),
		PartnerReligiousLevel: strPtr("practicing"),
		PartnerMaritalStatus:  strPtr("single"),
	}
}

// member creates a user whose primary listing is complete and published.
func (f *fixture) member(t *testing.T, name, gender string) (*models.User, *models.Listing) {
	t.Helper()
	f.tgSeq++
	user := models.User{ID: uuid.New(), TelegramID: f.tgSeq, FirstName: name}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	listing := completeListing(user.ID, true, name, gender)
	listing.IsActive = true
	listing.IsPublished = true
	activated := f.clock.Now()
	listing.ActivatedAt = &activated
	if err := f.db.Create(&listing).Error; err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return &user, &listing
}

func (f *fixture) grant(t *testing.T, user *models.User, tierName string) *models.Entitlement {
	t.Helper()
	plan, err := f.catalog.ResolveName(tierName)
	if err != nil {
		t.Fatalf("resolve %s: %v", tierName, err)
	}
	var e *models.Entitlement
	err = f.db.Transaction(func(tx *gorm.DB) error {
		var err error
		e, err = f.ents.Grant(tx, user.ID, plan, nil)
		return err
	})
	if err != nil {
		t.Fatalf("grant %s: %v", tierName, err)
	}
	return e
}

func (f *fixture) send(t *testing.T, sender, receiver *models.User) *models.MatchRequest {
	t.Helper()
	id := receiver.ID
	req, err := f.matches.Create(sender.ID, &dto.CreateMatchRequest{ReceiverID: &id})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return req
}

func (f *fixture) countRows(t *testing.T, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
