package tariff

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownTier = errors.New("unknown tariff tier")

// Kind tags a Tier as a fixed catalog plan or a boost-only purchase.
type Kind int

const (
	KindFixed Kind = iota
	KindBoostOnly
)

const (
	boostPrefix  = "BOOST_"
	MinBoostDays = 1
	MaxBoostDays = 30
)

// Tier is a parsed tariff name. Fixed tiers are looked up in the catalog by
// Name; boost-only tiers carry their own day count.
type Tier struct {
	Kind Kind
	Name string
	Days int
}

// ParseTier resolves names such as "VIP" or "BOOST_7". Boost days are
// clamped to [MinBoostDays, MaxBoostDays].
func ParseTier(name string) (Tier, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" {
		return Tier{}, ErrUnknownTier
	}
	if !strings.HasPrefix(n, boostPrefix) {
		return Tier{Kind: KindFixed, Name: n}, nil
	}
	days, err := strconv.Atoi(strings.TrimPrefix(n, boostPrefix))
	if err != nil {
		return Tier{}, fmt.Errorf("%w: %s", ErrUnknownTier, name)
	}
	if days < MinBoostDays {
		days = MinBoostDays
	}
	if days > MaxBoostDays {
		days = MaxBoostDays
	}
	return Tier{Kind: KindBoostOnly, Name: boostPrefix + strconv.Itoa(days), Days: days}, nil
}

func (t Tier) String() string {
	return t.Name
}
