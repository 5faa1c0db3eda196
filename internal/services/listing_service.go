package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var validGenders = map[string]bool{"male": true, "female": true}

type ListingService struct {
	db           *gorm.DB
	entitlements *EntitlementService
	now          func() time.Time
}

func NewListingService(db *gorm.DB, entitlements *EntitlementService) *ListingService {
	return &ListingService{db: db, entitlements: entitlements, now: utcNow}
}

func loadListing(tx *gorm.DB, id uuid.UUID) (*models.Listing, error) {
	var l models.Listing
	if err := tx.Where("id = ?", id).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &l, nil
}

func primaryListing(tx *gorm.DB, userID uuid.UUID) (*models.Listing, error) {
	var l models.Listing
	if err := tx.Where("user_id = ? AND is_primary = ?", userID, true).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &l, nil
}

func loadUser(tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := tx.Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// listingName is the display name of a listing, or fallback when it cannot
// be loaded.
func listingName(tx *gorm.DB, id uuid.UUID, fallback string) string {
	l, err := loadListing(tx, id)
	if err != nil {
		return fallback
	}
	return l.DisplayName()
}

func toListingResponse(l *models.Listing) dto.ListingResponse {
	return dto.ListingResponse{
		Listing:           *l,
		Complete:          l.Complete(),
		CompletionPercent: l.CompletionPercent(),
	}
}

func (s *ListingService) ListOwn(userID uuid.UUID) ([]dto.ListingResponse, error) {
	var listings []models.Listing
	if err := s.db.Where("user_id = ?", userID).
		Order("is_primary DESC, created_at ASC").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	out := make([]dto.ListingResponse, len(listings))
	for i := range listings {
		out[i] = toListingResponse(&listings[i])
	}
	return out, nil
}

// Get returns a listing visible to viewerID: their own, or a published one.
func (s *ListingService) Get(listingID, viewerID uuid.UUID) (*dto.ListingResponse, error) {
	l, err := loadListing(s.db, listingID)
	if err != nil {
		return nil, err
	}
	if l.UserID != viewerID && !l.Visible() {
		return nil, ErrListingNotFound
	}
	resp := toListingResponse(l)
	return &resp, nil
}

// Create adds a non-primary listing, for users acting on behalf of a relative.
func (s *ListingService) Create(userID uuid.UUID, in *dto.ListingInput) (*dto.ListingResponse, error) {
	l := models.Listing{
		ID:     uuid.New(),
		UserID: userID,
	}
	if err := applyListingInput(&l, in); err != nil {
		return nil, err
	}
	if err := s.db.Create(&l).Error; err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	resp := toListingResponse(&l)
	return &resp, nil
}

func (s *ListingService) Update(listingID, userID uuid.UUID, in *dto.ListingInput) (*dto.ListingResponse, error) {
	l, err := s.owned(listingID, userID)
	if err != nil {
		return nil, err
	}
	if err := applyListingInput(l, in); err != nil {
		return nil, err
	}
	// An edit that makes a published listing incomplete takes it off the feed.
	if l.IsPublished && !l.Complete() {
		l.IsActive = false
		l.IsPublished = false
	}
	if err := s.db.Save(l).Error; err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	resp := toListingResponse(l)
	return &resp, nil
}

// Publish makes a listing visible. It needs a complete listing and a current
// entitlement.
func (s *ListingService) Publish(listingID, userID uuid.UUID) (*dto.ListingResponse, error) {
	l, err := s.owned(listingID, userID)
	if err != nil {
		return nil, err
	}
	if !l.Complete() {
		return nil, ErrListingIncomplete
	}
	current, err := s.entitlements.Current(userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNoEntitlement
	}

	now := s.now()
	if err := s.db.Model(l).Updates(map[string]interface{}{
		"is_active":    true,
		"is_published": true,
		"activated_at": now,
	}).Error; err != nil {
		return nil, err
	}
	l.IsActive = true
	l.IsPublished = true
	l.ActivatedAt = &now
	resp := toListingResponse(l)
	return &resp, nil
}

func (s *ListingService) Unpublish(listingID, userID uuid.UUID) (*dto.ListingResponse, error) {
	l, err := s.owned(listingID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(l).Updates(map[string]interface{}{
		"is_active":    false,
		"is_published": false,
	}).Error; err != nil {
		return nil, err
	}
	l.IsActive = false
	l.IsPublished = false
	resp := toListingResponse(l)
	return &resp, nil
}

func (s *ListingService) owned(listingID, userID uuid.UUID) (*models.Listing, error) {
	l, err := loadListing(s.db, listingID)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, ErrListingNotFound
	}
	return l, nil
}

func applyListingInput(l *models.Listing, in *dto.ListingInput) error {
	if in == nil {
		return nil
	}
	if in.Gender != nil {
		g := strings.ToLower(strings.TrimSpace(*in.Gender))
		if !validGenders[g] {
			return invalid("gender must be male or female")
		}
		in.Gender = &g
	}
	if in.BirthYear != nil && (*in.BirthYear < 1900 || *in.BirthYear > time.Now().Year()-16) {
		return invalid("birth_year is out of range")
	}
	if in.PartnerAgeMin != nil && in.PartnerAgeMax != nil && *in.PartnerAgeMin > *in.PartnerAgeMax {
		return invalid("partner_age_min must not exceed partner_age_max")
	}

	setString(&l.Name, in.Name)
	setString(&l.Gender, in.Gender)
	setString(&l.Region, in.Region)
	setString(&l.Country, in.Country)
	setString(&l.Nationality, in.Nationality)
	setString(&l.MaritalStatus, in.MaritalStatus)
	setString(&l.Prays, in.Prays)
	setString(&l.Fasts, in.Fasts)
	setString(&l.ReligiousLevel, in.ReligiousLevel)
	setString(&l.Education, in.Education)
	setString(&l.Profession, in.Profession)
	setString(&l.Salary, in.Salary)
	setString(&l.PartnerRegion, in.PartnerRegion)
	setString(&l.PartnerReligiousLevel, in.PartnerReligiousLevel)
	setString(&l.PartnerMaritalStatus, in.PartnerMaritalStatus)
	setString(&l.Bio, in.Bio)

	for dst, src := range map[**int]*int{
		&l.BirthYear:     in.BirthYear,
		&l.Height:        in.Height,
		&l.Weight:        in.Weight,
		&l.PartnerAgeMin: in.PartnerAgeMin,
		&l.PartnerAgeMax: in.PartnerAgeMax,
	} {
		if src != nil {
			v := *src
			*dst = &v
		}
	}
	if in.IsWorking != nil {
		v := *in.IsWorking
		l.IsWorking = &v
	}
	if in.PartnerRegions != nil {
		b, err := json.Marshal(in.PartnerRegions)
		if err != nil {
			return invalid("partner_regions is malformed")
		}
		l.PartnerRegions = datatypes.JSON(b)
	}
	return nil
}

func setString(dst **string, src *string) {
	if src == nil {
		return
	}
	v := strings.TrimSpace(*src)
	*dst = &v
}
