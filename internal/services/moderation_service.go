package services

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"faggot", "retard", "whore", "slut",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing",
}

// ModerationService owns the text filters, member-to-member blocks and the
// report queue.
type ModerationService struct {
	db                *gorm.DB
	now               func() time.Time
	bannedWordRegexps []*regexp.Regexp
	urlPattern        *regexp.Regexp
	compiled          bool
	mu                sync.RWMutex
}

// spamRunLength is how many identical characters in a row count as spam.
const spamRunLength = 10

func NewModerationService(db *gorm.DB) *ModerationService {
	ms := &ModerationService{db: db, now: utcNow}
	ms.compilePatterns()
	return ms
}

func (ms *ModerationService) compilePatterns() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.compiled {
		return
	}

	ms.bannedWordRegexps = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		pattern := `(?i)\b` + regexp.QuoteMeta(word) + `\b`
		re, err := regexp.Compile(pattern)
		if err == nil {
			ms.bannedWordRegexps = append(ms.bannedWordRegexps, re)
		}
	}

	ms.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	ms.compiled = true
}

// FilterContent checks free text attached to a match request. Contact
// details are allowed (exchanging them is the point of a match); links and
// character spam are not.
func (ms *ModerationService) FilterContent(text string) (bool, string) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if text == "" {
		return true, ""
	}
	for _, re := range ms.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if ms.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if hasRepeatedRun(text, spamRunLength) {
		return false, "spam_detected"
	}
	return true, ""
}

// hasRepeatedRun reports whether text holds n or more identical runes in a
// row, case-insensitively.
func hasRepeatedRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range strings.ToLower(text) {
		if run > 0 && r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

func (ms *ModerationService) ContainsProfanity(text string) bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	for _, re := range ms.bannedWordRegexps {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func (ms *ModerationService) GetRejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language": "Your message contains inappropriate language.",
		"url_not_allowed":        "Links are not allowed.",
		"spam_detected":          "Your message appears to be spam.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "Your message does not meet our content guidelines."
}

var reportReasons = map[string]bool{
	"fake_profile":  true,
	"inappropriate": true,
	"harassment":    true,
	"scam":          true,
	"other":         true,
}

// CreateReport files a complaint about another member. Listing and message
// context must belong to the reported member, and a message can only be
// reported from inside its chat.
func (s *ModerationService) CreateReport(reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	reason := strings.ToLower(strings.TrimSpace(req.Reason))
	if !reportReasons[reason] {
		return nil, reject(ErrInvalidReport.Code, "reason must be fake_profile, inappropriate, harassment, scam, or other")
	}
	if req.UserID == uuid.Nil {
		return nil, reject(ErrInvalidReport.Code, "user_id is required")
	}
	if req.UserID == reporterID {
		return nil, reject(ErrInvalidReport.Code, "you cannot report yourself")
	}

	var report models.Report
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := loadUser(tx, req.UserID); err != nil {
			return err
		}
		if req.ListingID != nil {
			l, err := loadListing(tx, *req.ListingID)
			if err != nil {
				return err
			}
			if l.UserID != req.UserID {
				return reject(ErrInvalidReport.Code, "listing does not belong to the reported user")
			}
		}
		if req.MessageID != nil {
			if err := s.checkReportedMessage(tx, *req.MessageID, reporterID, req.UserID); err != nil {
				return err
			}
		}

		var open int64
		if err := tx.Model(&models.Report{}).
			Where("reporter_id = ? AND reported_user_id = ? AND status = ?", reporterID, req.UserID, models.ReportPending).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrAlreadyReported
		}

		report = models.Report{
			ID:             uuid.New(),
			ReporterID:     reporterID,
			ReportedUserID: req.UserID,
			ListingID:      req.ListingID,
			MessageID:      req.MessageID,
			Reason:         reason,
			Details:        strings.TrimSpace(req.Details),
			Status:         models.ReportPending,
			CreatedAt:      s.now(),
		}
		if err := tx.Create(&report).Error; err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ModerationService) checkReportedMessage(tx *gorm.DB, messageID, reporterID, reportedID uuid.UUID) error {
	var msg models.Message
	if err := tx.Where("id = ?", messageID).First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reject(ErrInvalidReport.Code, "message not found")
		}
		return err
	}
	if msg.SenderID != reportedID {
		return reject(ErrInvalidReport.Code, "message was not sent by the reported user")
	}
	var chat models.Chat
	if err := tx.Where("id = ?", msg.ChatID).First(&chat).Error; err != nil {
		return err
	}
	if !chat.HasParticipant(reporterID) {
		return reject(ErrInvalidReport.Code, "message not found")
	}
	return nil
}

func (s *ModerationService) ListReports(status string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ActionReport resolves a pending report. An actioned report may also block
// the reported account in the same transaction.
func (s *ModerationService) ActionReport(reportID uuid.UUID, req *dto.ActionReportRequest) (*models.Report, error) {
	if req.Status != models.ReportActioned && req.Status != models.ReportDismissed {
		return nil, reject(ErrInvalidReport.Code, "status must be actioned or dismissed")
	}
	if req.BlockUser && req.Status != models.ReportActioned {
		return nil, reject(ErrInvalidReport.Code, "only an actioned report can block the user")
	}

	var report models.Report
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", reportID).First(&report).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportNotFound
			}
			return err
		}

		now := s.now()
		result := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", reportID, models.ReportPending).
			Updates(map[string]interface{}{
				"status":      req.Status,
				"admin_note":  strings.TrimSpace(req.AdminNote),
				"reviewed_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotReviewable
		}
		report.Status = req.Status
		report.AdminNote = strings.TrimSpace(req.AdminNote)
		report.ReviewedAt = &now

		if req.BlockUser {
			if _, err := setUserBlocked(tx, report.ReportedUserID, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("report resolved", "action", "report.action", "report_id", report.ID.String(),
		"status", report.Status, "blocked_user", req.BlockUser)
	return &report, nil
}

// BlockUser hides blockedID from blockerID and stops requests between them.
func (s *ModerationService) BlockUser(blockerID, blockedID uuid.UUID) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}
	if _, err := loadUser(s.db, blockedID); err != nil {
		return err
	}

	var existing models.Block
	err := s.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).First(&existing).Error
	if err == nil {
		return ErrAlreadyBlocked
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	block := models.Block{
		ID:        uuid.New(),
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: s.now(),
	}
	if err := s.db.Create(&block).Error; err != nil {
		if isConflict(err) {
			return ErrAlreadyBlocked
		}
		return err
	}
	return nil
}

// UnblockUser reports whether a block was removed.
func (s *ModerationService) UnblockUser(blockerID, blockedID uuid.UUID) (bool, error) {
	result := s.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{})
	return result.RowsAffected > 0, result.Error
}

func (s *ModerationService) ListBlocked(userID uuid.UUID) ([]models.Block, error) {
	var blocks []models.Block
	err := s.db.Where("blocker_id = ?", userID).Order("created_at DESC").Find(&blocks).Error
	return blocks, err
}

// isBlockedBetween reports a block in either direction.
func (s *ModerationService) isBlockedBetween(tx *gorm.DB, a, b uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}
