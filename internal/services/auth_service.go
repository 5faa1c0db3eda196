package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TelegramUser is the "user" object embedded in WebApp init data.
type TelegramUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
}

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
	now func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg, now: utcNow}
}

// ValidateInitData checks the WebApp init data signature and freshness and
// returns the embedded user.
func (s *AuthService) ValidateInitData(initData string) (*TelegramUser, error) {
	if initData == "" || s.cfg.TelegramBotToken == "" {
		return nil, ErrInvalidInitData
	}
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}
	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrInvalidInitData
	}

	expected := signInitData(values, s.cfg.TelegramBotToken)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(hash))) {
		return nil, ErrInvalidInitData
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrInvalidInitData
	}
	if s.now().Sub(time.Unix(authDate, 0)) > s.cfg.InitDataMaxAge {
		return nil, ErrInvalidInitData
	}

	var tgUser TelegramUser
	if err := json.Unmarshal([]byte(values.Get("user")), &tgUser); err != nil || tgUser.ID == 0 {
		return nil, ErrInvalidInitData
	}
	return &tgUser, nil
}

// signInitData computes the hex HMAC Telegram expects: the data-check string
// (sorted key=value pairs without hash, newline separated) keyed by
// HMAC-SHA256("WebAppData", botToken).
func signInitData(values url.Values, botToken string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + values.Get(k)
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

// Authenticate signs a Telegram user in, creating the account and its empty
// primary listing on first contact.
func (s *AuthService) Authenticate(req *dto.TelegramAuthRequest) (*dto.AuthResponse, error) {
	tgUser, err := s.ValidateInitData(req.InitData)
	if err != nil {
		return nil, err
	}

	var (
		user  models.User
		isNew bool
	)
	err = withRetry("auth.telegram", func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			now := s.now()
			err := tx.Where("telegram_id = ?", tgUser.ID).First(&user).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				isNew = true
				user = models.User{
					ID:           uuid.New(),
					TelegramID:   tgUser.ID,
					Username:     tgUser.Username,
					FirstName:    tgUser.FirstName,
					LanguageCode: tgUser.LanguageCode,
					IsAdmin:      s.cfg.IsAdminTelegramID(tgUser.ID),
					LastActiveAt: now,
				}
				if err := tx.Create(&user).Error; err != nil {
					return fmt.Errorf("failed to create user: %w", err)
				}
				listing := models.Listing{
					ID:        uuid.New(),
					UserID:    user.ID,
					IsPrimary: true,
				}
				if err := tx.Create(&listing).Error; err != nil {
					return fmt.Errorf("failed to create primary listing: %w", err)
				}
				return nil
			}
			if err != nil {
				return err
			}

			isNew = false
			user.Username = tgUser.Username
			user.FirstName = tgUser.FirstName
			user.LanguageCode = tgUser.LanguageCode
			user.LastActiveAt = now
			if s.cfg.IsAdminTelegramID(tgUser.ID) {
				user.IsAdmin = true
			}
			return tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
				"username":       user.Username,
				"first_name":     user.FirstName,
				"language_code":  user.LanguageCode,
				"last_active_at": now,
				"is_admin":       user.IsAdmin,
			}).Error
		})
	})
	if err != nil {
		return nil, err
	}
	if user.IsBlocked {
		return nil, ErrUserBlocked
	}
	if isNew {
		slog.Info("user registered", "action", "auth.register", "user_id", user.ID.String(), "telegram_id", user.TelegramID)
	}

	token, expiresAt, err := s.generateAccessToken(&user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		IsNew:       isNew,
		User:        ToUserResponse(&user),
	}, nil
}

func (s *AuthService) Me(userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := loadUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

func ToUserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           user.ID,
		TelegramID:   user.TelegramID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LanguageCode: user.LanguageCode,
		IsAdmin:      user.IsAdmin,
	}
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.JWTAccessExpiry)
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"tg":  user.TelegramID,
		"adm": user.IsAdmin,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}
