package storage

import (
	"database/sql"
	"encoding/json"

	"buscacasas/models"
)

const propertyColumns = `
	id, source, source_id, url, title, description, property_type,
	department, neighborhood, address, price, currency, price_per_m2,
	bedrooms, bathrooms, total_area, built_area, garages,
	has_balcony, has_parrillero, has_portero, has_elevator, has_pool, has_gym,
	images, thumbnail_url, contact_phone, contact_email, real_estate_agency,
	published_at, scraped_at, updated_at, is_active`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanProperty maps one properties row onto a Property, translating SQL
// NULLs back into absent fields.
func scanProperty(row rowScanner) (*models.Property, error) {
	var (
		p models.Property

		description, neighborhood, address, images, thumbnail sql.NullString
		phone, email, agency                                  sql.NullString
		pricePerM2, totalArea, builtArea                      sql.NullFloat64
		bedrooms, bathrooms, garages                          sql.NullInt64
		balcony, parrillero, portero, elevator, pool, gym     sql.NullBool
		publishedAt                                           sql.NullTime
	)

	err := row.Scan(
		&p.ID, &p.Source, &p.SourceID, &p.URL, &p.Title, &description, &p.PropertyType,
		&p.Department, &neighborhood, &address, &p.Price, &p.Currency, &pricePerM2,
		&bedrooms, &bathrooms, &totalArea, &builtArea, &garages,
		&balcony, &parrillero, &portero, &elevator, &pool, &gym,
		&images, &thumbnail, &phone, &email, &agency,
		&publishedAt, &p.ScrapedAt, &p.UpdatedAt, &p.IsActive,
	)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	p.Neighborhood = neighborhood.String
	p.Address = address.String
	p.ThumbnailURL = thumbnail.String
	p.ContactPhone = phone.String
	p.ContactEmail = email.String
	p.Agency = agency.String

	if pricePerM2.Valid {
		p.PricePerM2 = &pricePerM2.Float64
	}
	if totalArea.Valid {
		p.TotalArea = &totalArea.Float64
	}
	if builtArea.Valid {
		p.BuiltArea = &builtArea.Float64
	}
	if bedrooms.Valid {
		v := int(bedrooms.Int64)
		p.Bedrooms = &v
	}
	if bathrooms.Valid {
		v := int(bathrooms.Int64)
		p.Bathrooms = &v
	}
	if garages.Valid {
		v := int(garages.Int64)
		p.Garages = &v
	}

	if balcony.Valid {
		p.HasBalcony = &balcony.Bool
	}
	if parrillero.Valid {
		p.HasParrillero = &parrillero.Bool
	}
	if portero.Valid {
		p.HasPortero = &portero.Bool
	}
	if elevator.Valid {
		p.HasElevator = &elevator.Bool
	}
	if pool.Valid {
		p.HasPool = &pool.Bool
	}
	if gym.Valid {
		p.HasGym = &gym.Bool
	}

	if publishedAt.Valid {
		p.PublishedAt = &publishedAt.Time
	}

	p.Images = []string{}
	if images.Valid && images.String != "" {
		_ = json.Unmarshal([]byte(images.String), &p.Images)
	}

	return &p, nil
}

// nullString maps "" to SQL NULL so optional text stays absent in storage.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
