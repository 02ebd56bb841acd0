package storage

import (
	"time"

	"buscacasas/models"
)

// Store is the persistence contract the aggregator and the front ends use.
// Implementations must keep (source, source_id) unique: re-upserting the
// same listing replaces its mutable fields and bumps updated_at while
// preserving the first-seen scraped_at.
type Store interface {
	Upsert(p *models.Property) error
	Query(f models.Filters, limit, offset int) ([]*models.Property, error)
	GetByID(id string) (*models.Property, error)
	Stats() (*models.Stats, error)
	MarkInactive(ids []string) error
	AddFavorite(propertyID, notes string) error
	Favorites() ([]*Favorite, error)
	Close() error
}

// Favorite is a bookmarked property.
type Favorite struct {
	ID         int64     `json:"id"`
	PropertyID string    `json:"propertyId"`
	Notes      string    `json:"notes,omitempty"`
	AddedAt    time.Time `json:"addedAt"`
}
