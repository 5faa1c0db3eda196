package services

import (
	"sort"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// FeedService lists visible listings of other users, boosted owners first.
type FeedService struct {
	db           *gorm.DB
	entitlements *EntitlementService
	now          func() time.Time
}

func NewFeedService(db *gorm.DB, entitlements *EntitlementService) *FeedService {
	return &FeedService{db: db, entitlements: entitlements, now: utcNow}
}

var oppositeGender = map[string]string{"male": "female", "female": "male"}

func (s *FeedService) List(viewerID uuid.UUID, q dto.FeedQuery) (*dto.FeedResponse, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultFeedLimit
	}
	if q.Limit > MaxFeedLimit {
		q.Limit = MaxFeedLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	gender := strings.ToLower(strings.TrimSpace(q.Gender))
	if gender == "" {
		if own, err := primaryListing(s.db, viewerID); err == nil && own.Gender != nil {
			gender = oppositeGender[*own.Gender]
		}
	}

	query := s.db.Model(&models.Listing{}).
		Where("is_active = ? AND is_published = ?", true, true).
		Where("user_id <> ?", viewerID).
		Where("user_id NOT IN (?)", s.db.Model(&models.Block{}).Select("blocked_id").Where("blocker_id = ?", viewerID)).
		Where("user_id NOT IN (?)", s.db.Model(&models.Block{}).Select("blocker_id").Where("blocked_id = ?", viewerID)).
		Where("user_id NOT IN (?)", s.db.Model(&models.User{}).Select("id").Where("is_blocked = ?", true))
	if gender != "" {
		query = query.Where("gender = ?", gender)
	}
	if q.Region != "" {
		query = query.Where("region = ?", q.Region)
	}
	year := s.now().Year()
	if q.AgeMin > 0 {
		query = query.Where("birth_year <= ?", year-q.AgeMin)
	}
	if q.AgeMax > 0 {
		query = query.Where("birth_year >= ?", year-q.AgeMax)
	}

	var listings []models.Listing
	if err := query.Find(&listings).Error; err != nil {
		return nil, err
	}

	owners := make([]uuid.UUID, 0, len(listings))
	seen := make(map[uuid.UUID]bool, len(listings))
	for _, l := range listings {
		if !seen[l.UserID] {
			seen[l.UserID] = true
			owners = append(owners, l.UserID)
		}
	}
	boosted, err := s.entitlements.BoostedUsers(owners)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]dto.FeedItem, 0, len(listings))
	for _, l := range listings {
		top := boosted[l.UserID]
		if q.TopOnly && !top {
			continue
		}
		items = append(items, dto.FeedItem{Listing: l, Age: l.Age(now), IsTop: top})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsTop != items[j].IsTop {
			return items[i].IsTop
		}
		return activatedAt(&items[i].Listing).After(activatedAt(&items[j].Listing))
	})

	total := int64(len(items))
	start := q.Offset
	if start > len(items) {
		start = len(items)
	}
	end := start + q.Limit
	if end > len(items) {
		end = len(items)
	}

	return &dto.FeedResponse{
		Items:  items[start:end],
		Total:  total,
		Limit:  q.Limit,
		Offset: q.Offset,
	}, nil
}

func activatedAt(l *models.Listing) time.Time {
	if l.ActivatedAt != nil {
		return *l.ActivatedAt
	}
	return l.CreatedAt
}
