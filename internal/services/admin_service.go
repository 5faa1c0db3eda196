package services

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db, now: utcNow}
}

// SetUserBlocked flips the account-level block. Blocked users keep their data
// but are refused by the API and hidden from the feed.
func (s *AdminService) SetUserBlocked(userID uuid.UUID, blocked bool) (*models.User, error) {
	return setUserBlocked(s.db, userID, blocked)
}

func setUserBlocked(tx *gorm.DB, userID uuid.UUID, blocked bool) (*models.User, error) {
	user, err := loadUser(tx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin && blocked {
		return nil, invalid("admins cannot be blocked")
	}
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("is_blocked", blocked).Error; err != nil {
		return nil, err
	}
	user.IsBlocked = blocked
	return user, nil
}

func (s *AdminService) ListUsers(limit, offset int) ([]models.User, int64, error) {
	var users []models.User
	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := s.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *AdminService) Stats() (*dto.StatsResponse, error) {
	stats := dto.StatsResponse{Requests: make(map[string]int64)}

	counts := []struct {
		dst   *int64
		model interface{}
		where string
		args  []interface{}
	}{
		{&stats.Users, &models.User{}, "", nil},
		{&stats.BlockedUsers, &models.User{}, "is_blocked = ?", []interface{}{true}},
		{&stats.ActiveListings, &models.Listing{}, "is_active = ? AND is_published = ?", []interface{}{true, true}},
		{&stats.PendingPayments, &models.PaymentRequest{}, "status = ?", []interface{}{models.PaymentPending}},
		{&stats.ActiveChats, &models.Chat{}, "is_active = ? AND expires_at > ?", []interface{}{true, s.now()}},
	}
	for _, c := range counts {
		q := s.db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&models.MatchRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.Requests[r.Status] = r.Count
	}
	return &stats, nil
}
