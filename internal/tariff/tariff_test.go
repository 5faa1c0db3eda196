package tariff

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		in       string
		wantKind Kind
		wantName string
		wantDays int
		wantErr  bool
	}{
		{"VIP", KindFixed, "VIP", 0, false},
		{" oltin ", KindFixed, "OLTIN", 0, false},
		{"BOOST_7", KindBoostOnly, "BOOST_7", 7, false},
		{"boost_0", KindBoostOnly, "BOOST_1", 1, false},
		{"BOOST_-4", KindBoostOnly, "BOOST_1", 1, false},
		{"BOOST_90", KindBoostOnly, "BOOST_30", 30, false},
		{"BOOST_abc", 0, "", 0, true},
		{"", 0, "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTier(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownTier) {
					t.Fatalf("ParseTier(%q) error = %v, want ErrUnknownTier", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTier(%q) unexpected error: %v", tt.in, err)
			}
			if got.Kind != tt.wantKind || got.Name != tt.wantName || got.Days != tt.wantDays {
				t.Errorf("ParseTier(%q) = %+v", tt.in, got)
			}
		})
	}
}

func TestDefaultCatalog_Table(t *testing.T) {
	c := DefaultCatalog(3)

	tests := []struct {
		name                        string
		requests, listDays, topDays int
		boost                       bool
	}{
		{"KUMUSH", 5, 10, 3, false},
		{"OLTIN", 10, 15, 7, true},
		{"VIP", 20, 30, 15, true},
	}
	for _, tt := range tests {
		p, err := c.ResolveName(tt.name)
		if err != nil {
			t.Fatalf("ResolveName(%s): %v", tt.name, err)
		}
		if p.Requests != tt.requests || p.ListingDays != tt.listDays || p.TopDays != tt.topDays || p.Boost != tt.boost {
			t.Errorf("%s = %+v", tt.name, p)
		}
	}

	if got := len(c.All()); got != 3 {
		t.Errorf("All() returned %d plans, want 3", got)
	}
	if c.All()[0].Name != "KUMUSH" {
		t.Errorf("All() order starts with %s, want KUMUSH", c.All()[0].Name)
	}
}

func TestCatalog_ResolveBoostOnly(t *testing.T) {
	c := DefaultCatalog(0)

	p, err := c.ResolveName("BOOST_45")
	if err != nil {
		t.Fatal(err)
	}
	if p.Requests != 0 || p.ListingDays != 30 || p.TopDays != 30 || !p.Boost {
		t.Errorf("boost plan = %+v", p)
	}
	if p.Price != 30*c.BoostDailyPrice() {
		t.Errorf("boost price = %d, want %d", p.Price, 30*c.BoostDailyPrice())
	}
}

func TestCatalog_ResolveUnknown(t *testing.T) {
	c := DefaultCatalog(0)
	if _, err := c.ResolveName("PLATINUM"); !errors.Is(err, ErrUnknownTier) {
		t.Errorf("ResolveName(PLATINUM) error = %v, want ErrUnknownTier", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()

	c, err := LoadFromFile(filepath.Join(dir, "missing.json"), 2)
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if p := c.Get("KUMUSH"); p == nil || p.TopDays != 2 {
		t.Errorf("default KUMUSH = %+v", p)
	}

	path := filepath.Join(dir, "tariffs.json")
	body := `{"plans":[{"name":"basic","requests":3,"listing_days":5,"top_days":0}],"boost_daily_price":500}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err = LoadFromFile(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Exists("BASIC") || c.Exists("VIP") {
		t.Errorf("loaded catalog plans = %+v", c.All())
	}
	if c.BoostDailyPrice() != 500 {
		t.Errorf("BoostDailyPrice() = %d, want 500", c.BoostDailyPrice())
	}

	if err := os.WriteFile(path, []byte(`{"plans":[{"name":"BOOST_3","listing_days":3}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path, 0); err == nil {
		t.Error("plan named like a boost tier should be rejected")
	}
}
