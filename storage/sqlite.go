package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"buscacasas/models"
)

// SQLiteStore is the default local store, one file on disk.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("sqlite: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id            TEXT PRIMARY KEY,
			source        TEXT NOT NULL,
			source_id     TEXT NOT NULL,
			url           TEXT NOT NULL UNIQUE,

			title         TEXT NOT NULL,
			description   TEXT,
			property_type TEXT NOT NULL,

			department    TEXT NOT NULL,
			neighborhood  TEXT,
			address       TEXT,

			price         REAL NOT NULL,
			currency      TEXT NOT NULL,
			price_per_m2  REAL,

			bedrooms      INTEGER,
			bathrooms     INTEGER,
			total_area    REAL,
			built_area    REAL,
			garages       INTEGER,

			has_balcony    BOOLEAN,
			has_parrillero BOOLEAN,
			has_portero    BOOLEAN,
			has_elevator   BOOLEAN,
			has_pool       BOOLEAN,
			has_gym        BOOLEAN,

			images        TEXT DEFAULT '[]',
			thumbnail_url TEXT,

			contact_phone      TEXT,
			contact_email      TEXT,
			real_estate_agency TEXT,

			published_at DATETIME,
			scraped_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			is_active    BOOLEAN DEFAULT 1,

			UNIQUE(source, source_id)
		);

		CREATE INDEX IF NOT EXISTS idx_properties_department ON properties(department);
		CREATE INDEX IF NOT EXISTS idx_properties_neighborhood ON properties(neighborhood);
		CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(price);
		CREATE INDEX IF NOT EXISTS idx_properties_type ON properties(property_type);
		CREATE INDEX IF NOT EXISTS idx_properties_bedrooms ON properties(bedrooms);
		CREATE INDEX IF NOT EXISTS idx_properties_source ON properties(source);
		CREATE INDEX IF NOT EXISTS idx_properties_active ON properties(is_active);
		CREATE INDEX IF NOT EXISTS idx_properties_scraped_at ON properties(scraped_at);

		CREATE TABLE IF NOT EXISTS search_history (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			filters       TEXT NOT NULL,
			results_count INTEGER,
			executed_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS favorites (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			property_id TEXT NOT NULL,
			notes       TEXT,
			added_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (property_id) REFERENCES properties (id),
			UNIQUE(property_id)
		);
	`)
	return err
}

// Upsert inserts a new property or refreshes an existing one keyed by
// (source, source_id). The first-seen scraped_at is never overwritten.
func (s *SQLiteStore) Upsert(p *models.Property) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("sqlite: marshal images: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO properties (
			id, source, source_id, url, title, description, property_type,
			department, neighborhood, address, price, currency, price_per_m2,
			bedrooms, bathrooms, total_area, built_area, garages,
			has_balcony, has_parrillero, has_portero, has_elevator, has_pool, has_gym,
			images, thumbnail_url, contact_phone, contact_email, real_estate_agency,
			published_at, scraped_at, updated_at, is_active
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(source, source_id) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			description = excluded.description,
			property_type = excluded.property_type,
			department = excluded.department,
			neighborhood = excluded.neighborhood,
			address = excluded.address,
			price = excluded.price,
			currency = excluded.currency,
			price_per_m2 = excluded.price_per_m2,
			bedrooms = excluded.bedrooms,
			bathrooms = excluded.bathrooms,
			total_area = excluded.total_area,
			built_area = excluded.built_area,
			garages = excluded.garages,
			has_balcony = excluded.has_balcony,
			has_parrillero = excluded.has_parrillero,
			has_portero = excluded.has_portero,
			has_elevator = excluded.has_elevator,
			has_pool = excluded.has_pool,
			has_gym = excluded.has_gym,
			images = excluded.images,
			thumbnail_url = excluded.thumbnail_url,
			contact_phone = excluded.contact_phone,
			contact_email = excluded.contact_email,
			real_estate_agency = excluded.real_estate_agency,
			published_at = excluded.published_at,
			updated_at = excluded.updated_at,
			is_active = excluded.is_active
	`,
		p.ID, p.Source, p.SourceID, p.URL, p.Title, nullString(p.Description), p.PropertyType,
		p.Department, nullString(p.Neighborhood), nullString(p.Address), p.Price, p.Currency, p.PricePerM2,
		p.Bedrooms, p.Bathrooms, p.TotalArea, p.BuiltArea, p.Garages,
		p.HasBalcony, p.HasParrillero, p.HasPortero, p.HasElevator, p.HasPool, p.HasGym,
		string(images), nullString(p.ThumbnailURL), nullString(p.ContactPhone), nullString(p.ContactEmail), nullString(p.Agency),
		p.PublishedAt, p.ScrapedAt, p.UpdatedAt, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upsert %s: %w", p.ID, err)
	}
	return nil
}

// Query returns active properties matching the filters, newest first, and
// records the search in search_history.
func (s *SQLiteStore) Query(f models.Filters, limit, offset int) ([]*models.Property, error) {
	query := "SELECT " + propertyColumns + " FROM properties WHERE is_active = 1"
	var args []interface{}

	if f.Department != "" {
		query += " AND department = ?"
		args = append(args, f.Department)
	}
	if f.Neighborhood != "" {
		query += " AND neighborhood = ?"
		args = append(args, f.Neighborhood)
	}
	if f.PropertyType != "" {
		query += " AND property_type = ?"
		args = append(args, f.PropertyType)
	}
	if f.MinPrice > 0 {
		query += " AND price >= ?"
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		query += " AND price <= ?"
		args = append(args, f.MaxPrice)
	}
	if f.Currency != "" {
		query += " AND currency = ?"
		args = append(args, f.Currency)
	}
	if f.MinBedrooms > 0 {
		query += " AND bedrooms >= ?"
		args = append(args, f.MinBedrooms)
	}

	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY scraped_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query properties: %w", err)
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan property: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.recordSearch(f, len(properties))
	return properties, nil
}

func (s *SQLiteStore) recordSearch(f models.Filters, count int) {
	filters, err := json.Marshal(f)
	if err != nil {
		return
	}
	_, _ = s.db.Exec(
		"INSERT INTO search_history (filters, results_count) VALUES (?, ?)",
		string(filters), count,
	)
}

// GetByID fetches one property regardless of its active flag.
func (s *SQLiteStore) GetByID(id string) (*models.Property, error) {
	row := s.db.QueryRow("SELECT "+propertyColumns+" FROM properties WHERE id = ?", id)
	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get %s: %w", id, err)
	}
	return p, nil
}

// Stats reports active-property counts, total and grouped.
func (s *SQLiteStore) Stats() (*models.Stats, error) {
	stats := &models.Stats{
		BySource:     make(map[string]int),
		ByDepartment: make(map[string]int),
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM properties WHERE is_active = 1").Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("sqlite: stats total: %w", err)
	}

	if err := s.countGroup("source", stats.BySource); err != nil {
		return nil, err
	}
	if err := s.countGroup("department", stats.ByDepartment); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *SQLiteStore) countGroup(column string, dest map[string]int) error {
	rows, err := s.db.Query(
		"SELECT " + column + ", COUNT(*) FROM properties WHERE is_active = 1 GROUP BY " + column)
	if err != nil {
		return fmt.Errorf("sqlite: stats by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		dest[key] = count
	}
	return rows.Err()
}

// MarkInactive soft-deletes the given properties. Nothing is ever hard-deleted.
func (s *SQLiteStore) MarkInactive(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, time.Now())
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := s.db.Exec(
		"UPDATE properties SET is_active = 0, updated_at = ? WHERE id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: mark inactive: %w", err)
	}
	return nil
}

// AddFavorite bookmarks a property, updating the note if already bookmarked.
func (s *SQLiteStore) AddFavorite(propertyID, notes string) error {
	_, err := s.db.Exec(`
		INSERT INTO favorites (property_id, notes) VALUES (?, ?)
		ON CONFLICT(property_id) DO UPDATE SET notes = excluded.notes
	`, propertyID, nullString(notes))
	if err != nil {
		return fmt.Errorf("sqlite: add favorite: %w", err)
	}
	return nil
}

// Favorites lists bookmarks, newest first.
func (s *SQLiteStore) Favorites() ([]*Favorite, error) {
	rows, err := s.db.Query(
		"SELECT id, property_id, COALESCE(notes, ''), added_at FROM favorites ORDER BY added_at DESC")
	if err != nil {
		return nil, fmt.Errorf("sqlite: favorites: %w", err)
	}
	defer rows.Close()

	var favorites []*Favorite
	for rows.Next() {
		f := &Favorite{}
		if err := rows.Scan(&f.ID, &f.PropertyID, &f.Notes, &f.AddedAt); err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
