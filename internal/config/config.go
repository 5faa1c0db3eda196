package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Request uniqueness scopes.
const (
	RequestScopePair    = "pair"
	RequestScopeListing = "listing"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Telegram
	TelegramBotToken    string
	TelegramAPIURL      string
	TelegramBotUsername string
	InitDataMaxAge      time.Duration

	// Admin
	AdminTelegramIDs string
	AdminToken       string

	// Server
	Port        string
	CORSOrigins string
	Env         string

	// Matching
	TariffsConfigPath   string
	SilverTopDays       int
	ChatDurationDays    int
	RequestScope        string
	ClosedRequestsBlock bool

	// Notifications
	NotifyInterval    time.Duration
	NotifyMaxAttempts int
	NotifyRate        int

	// Logs
	LogRetentionDays int

	// Payment card shown to users
	PaymentCardNumber string
	PaymentCardName   string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "nikoh"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "72h"), 72*time.Hour),

		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAPIURL:      getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		TelegramBotUsername: getEnv("TELEGRAM_BOT_USERNAME", "nikoh_bot"),
		InitDataMaxAge:      parseDuration(getEnv("INIT_DATA_MAX_AGE", "24h"), 24*time.Hour),

		AdminTelegramIDs: getEnv("ADMIN_TELEGRAM_IDS", ""),
		AdminToken:       getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		Env:         getEnv("APP_ENV", "dev"),

		TariffsConfigPath:   getEnv("TARIFFS_CONFIG_PATH", "tariffs.json"),
		SilverTopDays:       parseInt(getEnv("SILVER_TOP_DAYS", "0"), 0, 0, 3),
		ChatDurationDays:    parseInt(getEnv("CHAT_DURATION_DAYS", "7"), 7, 1, 365),
		RequestScope:        parseScope(getEnv("REQUEST_SCOPE", RequestScopeListing)),
		ClosedRequestsBlock: parseBool(getEnv("CLOSED_REQUESTS_BLOCK", "false")),

		NotifyInterval:    parseDuration(getEnv("NOTIFY_INTERVAL", "3s"), 3*time.Second),
		NotifyMaxAttempts: parseInt(getEnv("NOTIFY_MAX_ATTEMPTS", "5"), 5, 1, 100),
		NotifyRate:        parseInt(getEnv("NOTIFY_RATE", "25"), 25, 0, 30),

		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30, 1, 3650),

		PaymentCardNumber: getEnv("PAYMENT_CARD_NUMBER", "8600 1234 5678 9012"),
		PaymentCardName:   getEnv("PAYMENT_CARD_NAME", "NIKOH APP"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// ChatDuration is the fixed lifetime of a chat opened by an accepted request.
func (c *Config) ChatDuration() time.Duration {
	return time.Duration(c.ChatDurationDays) * 24 * time.Hour
}

// AdminIDs parses ADMIN_TELEGRAM_IDS, skipping malformed entries.
func (c *Config) AdminIDs() []int64 {
	if c.AdminTelegramIDs == "" {
		return nil
	}
	var ids []int64
	for _, p := range strings.Split(c.AdminTelegramIDs, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// IsAdminTelegramID reports whether id is listed in ADMIN_TELEGRAM_IDS.
func (c *Config) IsAdminTelegramID(id int64) bool {
	for _, a := range c.AdminIDs() {
		if a == id {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback, min, max int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseScope(s string) string {
	if strings.EqualFold(s, RequestScopePair) {
		return RequestScopePair
	}
	return RequestScopeListing
}
