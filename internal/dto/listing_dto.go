package dto

import "github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"

// ListingInput is a partial update: nil fields are left untouched.
type ListingInput struct {
	Name          *string `json:"name"`
	Gender        *string `json:"gender"`
	BirthYear     *int    `json:"birth_year"`
	Region        *string `json:"region"`
	Country       *string `json:"country"`
	Nationality   *string `json:"nationality"`
	MaritalStatus *string `json:"marital_status"`
	Height        *int    `json:"height"`
	Weight        *int    `json:"weight"`

	Prays          *string `json:"prays"`
	Fasts          *string `json:"fasts"`
	ReligiousLevel *string `json:"religious_level"`

	Education  *string `json:"education"`
	Profession *string `json:"profession"`
	IsWorking  *bool   `json:"is_working"`
	Salary     *string `json:"salary"`

	PartnerAgeMin         *int     `json:"partner_age_min"`
	PartnerAgeMax         *int     `json:"partner_age_max"`
	PartnerRegion         *string  `json:"partner_region"`
	PartnerRegions        []string `json:"partner_regions"`
	PartnerReligiousLevel *string  `json:"partner_religious_level"`
	PartnerMaritalStatus  *string  `json:"partner_marital_status"`

	Bio *string `json:"bio"`
}

type ListingResponse struct {
	models.Listing
	Complete          bool `json:"complete"`
	CompletionPercent int  `json:"completion_percent"`
}

type FeedQuery struct {
	Gender  string `query:"gender"`
	Region  string `query:"region"`
	AgeMin  int    `query:"age_min"`
	AgeMax  int    `query:"age_max"`
	TopOnly bool   `query:"top_only"`
	Limit   int    `query:"limit"`
	Offset  int    `query:"offset"`
}

type FeedItem struct {
	models.Listing
	Age   int  `json:"age"`
	IsTop bool `json:"is_top"`
}

type FeedResponse struct {
	Items  []FeedItem `json:"items"`
	Total  int64      `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}
