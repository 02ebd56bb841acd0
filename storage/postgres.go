package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"buscacasas/models"
)

// PostgresStore is the alternative backend for deployments that already run
// PostgreSQL. Same contract as SQLiteStore.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects (with ping retries, the container may still be
// warming up), runs the schema migration and returns a ready store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
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

			price         NUMERIC(14,2) NOT NULL,
			currency      VARCHAR(3) NOT NULL,
			price_per_m2  NUMERIC(14,2),

			bedrooms      INTEGER,
			bathrooms     INTEGER,
			total_area    NUMERIC(10,2),
			built_area    NUMERIC(10,2),
			garages       INTEGER,

			has_balcony    BOOLEAN,
			has_parrillero BOOLEAN,
			has_portero    BOOLEAN,
			has_elevator   BOOLEAN,
			has_pool       BOOLEAN,
			has_gym        BOOLEAN,

			images        TEXT NOT NULL DEFAULT '[]',
			thumbnail_url TEXT,

			contact_phone      TEXT,
			contact_email      TEXT,
			real_estate_agency TEXT,

			published_at TIMESTAMPTZ,
			scraped_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			is_active    BOOLEAN NOT NULL DEFAULT TRUE,

			UNIQUE(source, source_id)
		);

		CREATE INDEX IF NOT EXISTS idx_properties_department ON properties(department);
		CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(price);
		CREATE INDEX IF NOT EXISTS idx_properties_type ON properties(property_type);
		CREATE INDEX IF NOT EXISTS idx_properties_source ON properties(source);
		CREATE INDEX IF NOT EXISTS idx_properties_active ON properties(is_active);

		CREATE TABLE IF NOT EXISTS search_history (
			id            SERIAL PRIMARY KEY,
			filters       TEXT NOT NULL,
			results_count INTEGER,
			executed_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS favorites (
			id          SERIAL PRIMARY KEY,
			property_id TEXT NOT NULL REFERENCES properties(id),
			notes       TEXT,
			added_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(property_id)
		);
	`)
	return err
}

func (s *PostgresStore) Upsert(p *models.Property) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("postgres: marshal images: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO properties (
			id, source, source_id, url, title, description, property_type,
			department, neighborhood, address, price, currency, price_per_m2,
			bedrooms, bathrooms, total_area, built_area, garages,
			has_balcony, has_parrillero, has_portero, has_elevator, has_pool, has_gym,
			images, thumbnail_url, contact_phone, contact_email, real_estate_agency,
			published_at, scraped_at, updated_at, is_active
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,
			$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33
		)
		ON CONFLICT (source, source_id) DO UPDATE SET
			url = EXCLUDED.url,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			property_type = EXCLUDED.property_type,
			department = EXCLUDED.department,
			neighborhood = EXCLUDED.neighborhood,
			address = EXCLUDED.address,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			price_per_m2 = EXCLUDED.price_per_m2,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			total_area = EXCLUDED.total_area,
			built_area = EXCLUDED.built_area,
			garages = EXCLUDED.garages,
			has_balcony = EXCLUDED.has_balcony,
			has_parrillero = EXCLUDED.has_parrillero,
			has_portero = EXCLUDED.has_portero,
			has_elevator = EXCLUDED.has_elevator,
			has_pool = EXCLUDED.has_pool,
			has_gym = EXCLUDED.has_gym,
			images = EXCLUDED.images,
			thumbnail_url = EXCLUDED.thumbnail_url,
			contact_phone = EXCLUDED.contact_phone,
			contact_email = EXCLUDED.contact_email,
			real_estate_agency = EXCLUDED.real_estate_agency,
			published_at = EXCLUDED.published_at,
			updated_at = EXCLUDED.updated_at,
			is_active = EXCLUDED.is_active
	`,
		p.ID, p.Source, p.SourceID, p.URL, p.Title, nullString(p.Description), p.PropertyType,
		p.Department, nullString(p.Neighborhood), nullString(p.Address), p.Price, p.Currency, p.PricePerM2,
		p.Bedrooms, p.Bathrooms, p.TotalArea, p.BuiltArea, p.Garages,
		p.HasBalcony, p.HasParrillero, p.HasPortero, p.HasElevator, p.HasPool, p.HasGym,
		string(images), nullString(p.ThumbnailURL), nullString(p.ContactPhone), nullString(p.ContactEmail), nullString(p.Agency),
		p.PublishedAt, p.ScrapedAt, p.UpdatedAt, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert %s: %w", p.ID, err)
	}
	return nil
}

func (s *PostgresStore) Query(f models.Filters, limit, offset int) ([]*models.Property, error) {
	query := "SELECT " + propertyColumns + " FROM properties WHERE is_active = TRUE"
	var args []interface{}

	add := func(clause string, value interface{}) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}

	if f.Department != "" {
		add(" AND department = $%d", f.Department)
	}
	if f.Neighborhood != "" {
		add(" AND neighborhood = $%d", f.Neighborhood)
	}
	if f.PropertyType != "" {
		add(" AND property_type = $%d", f.PropertyType)
	}
	if f.MinPrice > 0 {
		add(" AND price >= $%d", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		add(" AND price <= $%d", f.MaxPrice)
	}
	if f.Currency != "" {
		add(" AND currency = $%d", f.Currency)
	}
	if f.MinBedrooms > 0 {
		add(" AND bedrooms >= $%d", f.MinBedrooms)
	}

	if limit <= 0 {
		limit = 50
	}
	add(" ORDER BY scraped_at DESC LIMIT $%d", limit)
	add(" OFFSET $%d", offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query properties: %w", err)
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan property: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.recordSearch(f, len(properties))
	return properties, nil
}

func (s *PostgresStore) recordSearch(f models.Filters, count int) {
	filters, err := json.Marshal(f)
	if err != nil {
		return
	}
	_, _ = s.db.Exec(
		"INSERT INTO search_history (filters, results_count) VALUES ($1, $2)",
		string(filters), count,
	)
}

func (s *PostgresStore) GetByID(id string) (*models.Property, error) {
	row := s.db.QueryRow("SELECT "+propertyColumns+" FROM properties WHERE id = $1", id)
	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get %s: %w", id, err)
	}
	return p, nil
}

func (s *PostgresStore) Stats() (*models.Stats, error) {
	stats := &models.Stats{
		BySource:     make(map[string]int),
		ByDepartment: make(map[string]int),
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM properties WHERE is_active = TRUE").Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("postgres: stats total: %w", err)
	}

	if err := s.countGroup("source", stats.BySource); err != nil {
		return nil, err
	}
	if err := s.countGroup("department", stats.ByDepartment); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *PostgresStore) countGroup(column string, dest map[string]int) error {
	rows, err := s.db.Query(
		"SELECT " + column + ", COUNT(*) FROM properties WHERE is_active = TRUE GROUP BY " + column)
	if err != nil {
		return fmt.Errorf("postgres: stats by %s: %w", column, err)
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

func (s *PostgresStore) MarkInactive(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, time.Now())
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	_, err := s.db.Exec(
		"UPDATE properties SET is_active = FALSE, updated_at = $1 WHERE id IN ("+strings.Join(placeholders, ",")+")",
		args...,
	)
	if err != nil {
		return fmt.Errorf("postgres: mark inactive: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddFavorite(propertyID, notes string) error {
	_, err := s.db.Exec(`
		INSERT INTO favorites (property_id, notes) VALUES ($1, $2)
		ON CONFLICT (property_id) DO UPDATE SET notes = EXCLUDED.notes
	`, propertyID, nullString(notes))
	if err != nil {
		return fmt.Errorf("postgres: add favorite: %w", err)
	}
	return nil
}

func (s *PostgresStore) Favorites() ([]*Favorite, error) {
	rows, err := s.db.Query(
		"SELECT id, property_id, COALESCE(notes, ''), added_at FROM favorites ORDER BY added_at DESC")
	if err != nil {
		return nil, fmt.Errorf("postgres: favorites: %w", err)
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

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
