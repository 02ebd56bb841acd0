package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidationError reports why a scraped record was rejected at the upsert
// boundary. One error may carry several issues.
type ValidationError struct {
	ID     string
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("property %q invalid: %s", e.ID, strings.Join(e.Issues, "; "))
}

var validTypes = map[PropertyType]bool{
	TypeCasa: true, TypeApartamento: true, TypePH: true,
	TypeTerreno: true, TypeLocal: true, TypeOficina: true,
}

// Validate promotes a partial record into a storable Property. It applies
// the strict schema the extractors deliberately avoid: required identity
// and location fields, absolute URL, enum membership and non-negative
// numerics. On success the returned Property carries the derived global
// ID and a never-nil images slice.
func (p *PartialProperty) Validate() (*Property, *ValidationError) {
	var issues []string

	if p.Source != SourceMercadoLibre && p.Source != SourceInfoCasas {
		issues = append(issues, fmt.Sprintf("unknown source %q", p.Source))
	}
	if p.SourceID == "" {
		issues = append(issues, "missing sourceId")
	}
	if p.Title == "" {
		issues = append(issues, "missing title")
	}
	if p.Department == "" {
		issues = append(issues, "missing department")
	}

	if p.URL == "" {
		issues = append(issues, "missing url")
	} else if u, err := url.Parse(p.URL); err != nil || !u.IsAbs() {
		issues = append(issues, fmt.Sprintf("url %q is not absolute", p.URL))
	}

	if p.Price < 0 {
		issues = append(issues, fmt.Sprintf("negative price %.2f", p.Price))
	}
	if p.Currency != CurrencyUYU && p.Currency != CurrencyUSD {
		issues = append(issues, fmt.Sprintf("unsupported currency %q", p.Currency))
	}
	if !validTypes[p.PropertyType] {
		issues = append(issues, fmt.Sprintf("unknown property type %q", p.PropertyType))
	}

	checkNonNegativeInt(&issues, "bedrooms", p.Bedrooms)
	checkNonNegativeInt(&issues, "bathrooms", p.Bathrooms)
	checkNonNegativeInt(&issues, "garages", p.Garages)
	checkNonNegativeFloat(&issues, "totalArea", p.TotalArea)
	checkNonNegativeFloat(&issues, "builtArea", p.BuiltArea)

	id := p.Source.Tag() + "_" + p.SourceID

	if len(issues) > 0 {
		return nil, &ValidationError{ID: id, Issues: issues}
	}

	scrapedAt := p.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now()
	}

	prop := &Property{
		ID:            id,
		Source:        p.Source,
		SourceID:      p.SourceID,
		URL:           p.URL,
		Title:         p.Title,
		Description:   p.Description,
		PropertyType:  p.PropertyType,
		Department:    p.Department,
		Neighborhood:  p.Neighborhood,
		Address:       p.Address,
		Price:         p.Price,
		Currency:      p.Currency,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		TotalArea:     p.TotalArea,
		BuiltArea:     p.BuiltArea,
		Garages:       p.Garages,
		HasBalcony:    p.HasBalcony,
		HasParrillero: p.HasParrillero,
		HasPortero:    p.HasPortero,
		HasElevator:   p.HasElevator,
		HasPool:       p.HasPool,
		HasGym:        p.HasGym,
		Images:        p.Images,
		ThumbnailURL:  p.ThumbnailURL,
		ContactPhone:  p.ContactPhone,
		ContactEmail:  p.ContactEmail,
		Agency:        p.Agency,
		PublishedAt:   p.PublishedAt,
		ScrapedAt:     scrapedAt,
		UpdatedAt:     time.Now(),
		IsActive:      true,
	}

	if prop.Images == nil {
		prop.Images = []string{}
	}

	if prop.Price > 0 && prop.TotalArea != nil && *prop.TotalArea > 0 {
		ppm := prop.Price / *prop.TotalArea
		prop.PricePerM2 = &ppm
	}

	return prop, nil
}

func checkNonNegativeInt(issues *[]string, field string, v *int) {
	if v != nil && *v < 0 {
		*issues = append(*issues, fmt.Sprintf("negative %s %d", field, *v))
	}
}

func checkNonNegativeFloat(issues *[]string, field string, v *float64) {
	if v != nil && *v < 0 {
		*issues = append(*issues, fmt.Sprintf("negative %s %.2f", field, *v))
	}
}
