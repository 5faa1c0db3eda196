package tariff

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
)

// Plan holds the concrete grant parameters of a tariff.
type Plan struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Price       int64  `json:"price"`
	Requests    int    `json:"requests"`
	ListingDays int    `json:"listing_days"`
	TopDays     int    `json:"top_days"`
	Boost       bool   `json:"boost"`
}

type CatalogFile struct {
	Plans           []Plan `json:"plans"`
	BoostDailyPrice int64  `json:"boost_daily_price"`
}

// Catalog is the configured set of fixed plans plus the price basis for
// boost-only purchases.
type Catalog struct {
	mu              sync.RWMutex
	plans           map[string]*Plan
	order           []string
	boostDailyPrice int64
}

func NewCatalog() *Catalog {
	return &Catalog{
		plans: make(map[string]*Plan),
	}
}

// DefaultCatalog is the stock KUMUSH / OLTIN / VIP table. silverTopDays
// (0..3) is the TOP window KUMUSH grants; KUMUSH never carries the boost flag.
func DefaultCatalog(silverTopDays int) *Catalog {
	c := NewCatalog()
	c.Register(&Plan{Name: "KUMUSH", Title: "Silver", Price: 50000, Requests: 5, ListingDays: 10, TopDays: silverTopDays})
	c.Register(&Plan{Name: "OLTIN", Title: "Gold", Price: 100000, Requests: 10, ListingDays: 15, TopDays: 7, Boost: true})
	c.Register(&Plan{Name: "VIP", Title: "VIP", Price: 250000, Requests: 20, ListingDays: 30, TopDays: 15, Boost: true})
	c.boostDailyPrice = 10000
	return c
}

// LoadFromFile reads a catalog JSON file. A missing file yields the default
// catalog so a fresh deployment works without extra configuration.
func LoadFromFile(path string, silverTopDays int) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultCatalog(silverTopDays), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tariffs config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var file CatalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tariffs config: %w", err)
	}

	catalog := NewCatalog()
	for i := range file.Plans {
		p := file.Plans[i]
		if p.Name == "" || strings.HasPrefix(strings.ToUpper(p.Name), boostPrefix) {
			return nil, fmt.Errorf("invalid plan name %q", p.Name)
		}
		if p.Requests < 0 || p.ListingDays <= 0 || p.TopDays < 0 {
			return nil, fmt.Errorf("invalid parameters for plan %q", p.Name)
		}
		catalog.Register(&p)
	}
	catalog.boostDailyPrice = file.BoostDailyPrice
	return catalog, nil
}

func (c *Catalog) Register(p *Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.Name = strings.ToUpper(p.Name)
	if _, ok := c.plans[p.Name]; !ok {
		c.order = append(c.order, p.Name)
	}
	c.plans[p.Name] = p
}

func (c *Catalog) Get(name string) *Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.plans[strings.ToUpper(name)]
}

func (c *Catalog) Exists(name string) bool {
	return c.Get(name) != nil
}

// All returns the fixed plans in registration order.
func (c *Catalog) All() []Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Plan, 0, len(c.order))
	for _, name := range c.order {
		result = append(result, *c.plans[name])
	}
	return result
}

func (c *Catalog) BoostDailyPrice() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.boostDailyPrice
}

// Resolve turns a parsed tier into grant parameters.
func (c *Catalog) Resolve(t Tier) (Plan, error) {
	switch t.Kind {
	case KindBoostOnly:
		return Plan{
			Name:        t.Name,
			Title:       fmt.Sprintf("TOP %d days", t.Days),
			Price:       int64(t.Days) * c.BoostDailyPrice(),
			Requests:    0,
			ListingDays: t.Days,
			TopDays:     t.Days,
			Boost:       true,
		}, nil
	default:
		p := c.Get(t.Name)
		if p == nil {
			return Plan{}, fmt.Errorf("%w: %s", ErrUnknownTier, t.Name)
		}
		return *p, nil
	}
}

// ResolveName parses and resolves a tier name in one step.
func (c *Catalog) ResolveName(name string) (Plan, error) {
	t, err := ParseTier(name)
	if err != nil {
		return Plan{}, err
	}
	return c.Resolve(t)
}
