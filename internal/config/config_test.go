package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "CHAT_DURATION_DAYS", "REQUEST_SCOPE", "CLOSED_REQUESTS_BLOCK",
		"SILVER_TOP_DAYS", "NOTIFY_INTERVAL", "ADMIN_TELEGRAM_IDS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Load() Port = %v, want 8080", cfg.Port)
	}
	if cfg.ChatDurationDays != 7 {
		t.Errorf("Load() ChatDurationDays = %v, want 7", cfg.ChatDurationDays)
	}
	if cfg.ChatDuration() != 7*24*time.Hour {
		t.Errorf("ChatDuration() = %v, want 168h", cfg.ChatDuration())
	}
	if cfg.RequestScope != RequestScopeListing {
		t.Errorf("Load() RequestScope = %v, want %v", cfg.RequestScope, RequestScopeListing)
	}
	if cfg.ClosedRequestsBlock {
		t.Error("Load() ClosedRequestsBlock = true, want false")
	}
	if cfg.NotifyInterval != 3*time.Second {
		t.Errorf("Load() NotifyInterval = %v, want 3s", cfg.NotifyInterval)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CHAT_DURATION_DAYS", "3")
	t.Setenv("REQUEST_SCOPE", "PAIR")
	t.Setenv("CLOSED_REQUESTS_BLOCK", "true")
	t.Setenv("SILVER_TOP_DAYS", "2")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Load() Port = %v, want 9090", cfg.Port)
	}
	if cfg.ChatDurationDays != 3 {
		t.Errorf("Load() ChatDurationDays = %v, want 3", cfg.ChatDurationDays)
	}
	if cfg.RequestScope != RequestScopePair {
		t.Errorf("Load() RequestScope = %v, want pair", cfg.RequestScope)
	}
	if !cfg.ClosedRequestsBlock {
		t.Error("Load() ClosedRequestsBlock = false, want true")
	}
	if cfg.SilverTopDays != 2 {
		t.Errorf("Load() SilverTopDays = %v, want 2", cfg.SilverTopDays)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("CHAT_DURATION_DAYS", "invalid")
	t.Setenv("SILVER_TOP_DAYS", "9")
	t.Setenv("NOTIFY_INTERVAL", "-1s")
	t.Setenv("REQUEST_SCOPE", "galaxy")

	cfg := Load()

	if cfg.ChatDurationDays != 7 {
		t.Errorf("Load() ChatDurationDays = %v, want 7 (fallback)", cfg.ChatDurationDays)
	}
	if cfg.SilverTopDays != 3 {
		t.Errorf("Load() SilverTopDays = %v, want 3 (clamped)", cfg.SilverTopDays)
	}
	if cfg.NotifyInterval != 3*time.Second {
		t.Errorf("Load() NotifyInterval = %v, want 3s (fallback)", cfg.NotifyInterval)
	}
	if cfg.RequestScope != RequestScopeListing {
		t.Errorf("Load() RequestScope = %v, want listing", cfg.RequestScope)
	}
}

func TestAdminIDs(t *testing.T) {
	cfg := &Config{AdminTelegramIDs: " 101, abc,202,,0"}

	ids := cfg.AdminIDs()
	if len(ids) != 2 || ids[0] != 101 || ids[1] != 202 {
		t.Fatalf("AdminIDs() = %v, want [101 202]", ids)
	}
	if !cfg.IsAdminTelegramID(202) {
		t.Error("IsAdminTelegramID(202) = false, want true")
	}
	if cfg.IsAdminTelegramID(303) {
		t.Error("IsAdminTelegramID(303) = true, want false")
	}
}
