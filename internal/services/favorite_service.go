package services

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteService struct {
	db         *gorm.DB
	moderation *ModerationService
	now        func() time.Time
}

func NewFavoriteService(db *gorm.DB, moderation *ModerationService) *FavoriteService {
	return &FavoriteService{db: db, moderation: moderation, now: utcNow}
}

// Add bookmarks a published listing of another user.
func (s *FavoriteService) Add(userID, listingID uuid.UUID) (*models.Favorite, error) {
	listing, err := loadListing(s.db, listingID)
	if err != nil {
		return nil, err
	}
	if listing.UserID == userID {
		return nil, ErrSelfFavorite
	}
	if !listing.Visible() {
		return nil, ErrListingNotFound
	}
	blocked, err := s.moderation.isBlockedBetween(s.db, userID, listing.UserID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}

	var count int64
	if err := s.db.Model(&models.Favorite{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyFavorited
	}

	fav := models.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: s.now(),
	}
	if err := s.db.Create(&fav).Error; err != nil {
		if isConflict(err) {
			return nil, ErrAlreadyFavorited
		}
		return nil, err
	}
	return &fav, nil
}

// Remove reports whether a bookmark was deleted.
func (s *FavoriteService) Remove(userID, listingID uuid.UUID) (bool, error) {
	result := s.db.Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&models.Favorite{})
	return result.RowsAffected > 0, result.Error
}

// List returns the user's bookmarks, newest first. Bookmarks whose listing
// went away stay in the list as unavailable.
func (s *FavoriteService) List(userID uuid.UUID) ([]dto.FavoriteView, error) {
	var favs []models.Favorite
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favs).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(favs))
	for i := range favs {
		ids[i] = favs[i].ListingID
	}
	byID := make(map[uuid.UUID]*models.Listing, len(ids))
	if len(ids) > 0 {
		var listings []models.Listing
		if err := s.db.Where("id IN ?", ids).Find(&listings).Error; err != nil {
			return nil, err
		}
		for i := range listings {
			byID[listings[i].ID] = &listings[i]
		}
	}

	out := make([]dto.FavoriteView, 0, len(favs))
	for _, fav := range favs {
		view := dto.FavoriteView{ID: fav.ID, ListingID: fav.ListingID, CreatedAt: fav.CreatedAt}
		if l, ok := byID[fav.ListingID]; ok && l.Visible() {
			blocked, err := s.moderation.isBlockedBetween(s.db, userID, l.UserID)
			if err != nil {
				return nil, err
			}
			if !blocked {
				resp := toListingResponse(l)
				view.Available = true
				view.Listing = &resp
			}
		}
		out = append(out, view)
	}
	return out, nil
}
