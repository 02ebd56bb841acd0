package models

import "time"

// Source identifies the external site a listing was scraped from.
type Source string

const (
	SourceMercadoLibre Source = "mercadolibre"
	SourceInfoCasas    Source = "infocasas"
)

// Tag returns the short prefix used when building global listing IDs.
func (s Source) Tag() string {
	switch s {
	case SourceMercadoLibre:
		return "ml"
	case SourceInfoCasas:
		return "ic"
	}
	return string(s)
}

// PropertyType is the normalized category of a listing.
type PropertyType string

const (
	TypeCasa        PropertyType = "casa"
	TypeApartamento PropertyType = "apartamento"
	TypePH          PropertyType = "ph"
	TypeTerreno     PropertyType = "terreno"
	TypeLocal       PropertyType = "local_comercial"
	TypeOficina     PropertyType = "oficina"
)

// Currency is one of the two price currencies seen on Uruguayan portals.
type Currency string

const (
	CurrencyUYU Currency = "UYU"
	CurrencyUSD Currency = "USD"
)

// PartialProperty holds unvalidated data accumulated during extraction.
// Every field is optional; extractors fill in whatever the markup yields
// and leave the rest at zero values. Validation happens only at the
// upsert boundary.
type PartialProperty struct {
	Source   Source
	SourceID string
	URL      string

	Title        string
	Description  string
	PropertyType PropertyType

	Department   string
	Neighborhood string
	Address      string

	Price    float64
	Currency Currency

	Bedrooms  *int
	Bathrooms *int
	TotalArea *float64
	BuiltArea *float64
	Garages   *int

	HasBalcony    *bool
	HasParrillero *bool
	HasPortero    *bool
	HasElevator   *bool
	HasPool       *bool
	HasGym        *bool

	Images       []string
	ThumbnailURL string

	ContactPhone string
	ContactEmail string
	Agency       string

	PublishedAt *time.Time
	ScrapedAt   time.Time
}

// Property is the validated record stored in the database.
type Property struct {
	ID       string `json:"id"`
	Source   Source `json:"source"`
	SourceID string `json:"sourceId"`
	URL      string `json:"url"`

	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	PropertyType PropertyType `json:"propertyType"`

	Department   string `json:"department"`
	Neighborhood string `json:"neighborhood,omitempty"`
	Address      string `json:"address,omitempty"`

	Price      float64  `json:"price"`
	Currency   Currency `json:"currency"`
	PricePerM2 *float64 `json:"pricePerM2,omitempty"`

	Bedrooms  *int     `json:"bedrooms,omitempty"`
	Bathrooms *int     `json:"bathrooms,omitempty"`
	TotalArea *float64 `json:"totalArea,omitempty"`
	BuiltArea *float64 `json:"builtArea,omitempty"`
	Garages   *int     `json:"garages,omitempty"`

	HasBalcony    *bool `json:"hasBalcony,omitempty"`
	HasParrillero *bool `json:"hasParrillero,omitempty"`
	HasPortero    *bool `json:"hasPortero,omitempty"`
	HasElevator   *bool `json:"hasElevator,omitempty"`
	HasPool       *bool `json:"hasPool,omitempty"`
	HasGym        *bool `json:"hasGym,omitempty"`

	Images       []string `json:"images"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`

	ContactPhone string `json:"contactPhone,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	Agency       string `json:"realEstateAgency,omitempty"`

	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ScrapedAt   time.Time  `json:"scrapedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	IsActive    bool       `json:"isActive"`
}

// Filters narrows property queries and search-URL generation.
type Filters struct {
	Department   string       `json:"department,omitempty" form:"department"`
	Neighborhood string       `json:"neighborhood,omitempty" form:"neighborhood"`
	PropertyType PropertyType `json:"propertyType,omitempty" form:"propertyType"`
	MinPrice     float64      `json:"minPrice,omitempty" form:"minPrice"`
	MaxPrice     float64      `json:"maxPrice,omitempty" form:"maxPrice"`
	Currency     Currency     `json:"currency,omitempty" form:"currency"`
	MinBedrooms  int          `json:"minBedrooms,omitempty" form:"minBedrooms"`
	Operation    string       `json:"operation,omitempty" form:"operation"` // venta | alquiler
}

// Stats summarizes the stored dataset.
type Stats struct {
	Total        int            `json:"total"`
	BySource     map[string]int `json:"bySource"`
	ByDepartment map[string]int `json:"byDepartment"`
}
