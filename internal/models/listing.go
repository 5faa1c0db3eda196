package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Listing is a published matchmaking profile. A user owns one primary listing
// (created with the account) and may add more on behalf of relatives.
type Listing struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	IsPrimary bool      `gorm:"not null" json:"is_primary"`

	Name          *string `gorm:"size:100" json:"name"`
	Gender        *string `gorm:"size:10;index" json:"gender"`
	BirthYear     *int    `json:"birth_year"`
	Region        *string `gorm:"size:100" json:"region"`
	Country       *string `gorm:"size:100" json:"country"`
	Nationality   *string `gorm:"size:50" json:"nationality"`
	MaritalStatus *string `gorm:"size:20" json:"marital_status"`
	Height        *int    `json:"height"`
	Weight        *int    `json:"weight"`

	Prays          *string `gorm:"size:20" json:"prays"`
	Fasts          *string `gorm:"size:10" json:"fasts"`
	ReligiousLevel *string `gorm:"size:20" json:"religious_level"`

	Education  *string `gorm:"size:100" json:"education"`
	Profession *string `gorm:"size:100" json:"profession"`
	IsWorking  *bool   `json:"is_working"`
	Salary     *string `gorm:"size:50" json:"salary"`

	PartnerAgeMin         *int           `json:"partner_age_min"`
	PartnerAgeMax         *int           `json:"partner_age_max"`
	PartnerRegion         *string        `gorm:"size:100" json:"partner_region"`
	PartnerRegions        datatypes.JSON `json:"partner_regions"`
	PartnerReligiousLevel *string        `gorm:"size:20" json:"partner_religious_level"`
	PartnerMaritalStatus  *string        `gorm:"size:20" json:"partner_marital_status"`

	Bio *string `gorm:"type:text" json:"bio"`

	IsActive    bool       `gorm:"not null;index" json:"is_active"`
	IsPublished bool       `gorm:"not null;index" json:"is_published"`
	ActivatedAt *time.Time `gorm:"index" json:"activated_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Complete reports whether every field required for sending requests and
// publishing is filled in.
func (l *Listing) Complete() bool {
	return l.filledRequired() == RequiredListingFields
}

// RequiredListingFields is the size of the required field set.
const RequiredListingFields = 19

// CompletionPercent is the share of required fields filled in, 0..100.
func (l *Listing) CompletionPercent() int {
	return l.filledRequired() * 100 / RequiredListingFields
}

func (l *Listing) filledRequired() int {
	n := 0
	for _, s := range []*string{
		l.Name, l.Gender, l.Region, l.Nationality, l.MaritalStatus,
		l.Prays, l.Fasts, l.ReligiousLevel, l.Education, l.Profession,
		l.PartnerRegion, l.PartnerReligiousLevel, l.PartnerMaritalStatus,
	} {
		if s != nil && *s != "" {
			n++
		}
	}
	for _, i := range []*int{l.BirthYear, l.Height, l.Weight, l.PartnerAgeMin, l.PartnerAgeMax} {
		if i != nil && *i > 0 {
			n++
		}
	}
	if l.IsWorking != nil {
		n++
	}
	return n
}

// Visible reports whether the listing shows up in the feed and can be targeted.
func (l *Listing) Visible() bool {
	return l.IsActive && l.IsPublished
}

// Age derives the age from the birth year; zero when unknown.
func (l *Listing) Age(now time.Time) int {
	if l.BirthYear == nil || *l.BirthYear <= 0 {
		return 0
	}
	return now.Year() - *l.BirthYear
}

// DisplayName is the listing name or a neutral fallback.
func (l *Listing) DisplayName() string {
	if l.Name != nil && *l.Name != "" {
		return *l.Name
	}
	return "User"
}

// Regions returns the structured partner region preferences.
func (l *Listing) Regions() []string {
	var regions []string
	if len(l.PartnerRegions) == 0 {
		return nil
	}
	if err := json.Unmarshal(l.PartnerRegions, &regions); err != nil {
		return nil
	}
	return regions
}
