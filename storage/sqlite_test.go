package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buscacasas/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testProperty(t *testing.T, sourceID, department string, price float64) *models.Property {
	t.Helper()
	partial := &models.PartialProperty{
		Source:       models.SourceMercadoLibre,
		SourceID:     sourceID,
		URL:          "https://casa.mercadolibre.com.uy/" + sourceID,
		Title:        "Casa " + sourceID,
		PropertyType: models.TypeCasa,
		Department:   department,
		Price:        price,
		Currency:     models.CurrencyUYU,
	}
	p, verr := partial.Validate()
	require.Nil(t, verr)
	return p
}

func TestUpsertRefreshesButPreservesScrapedAt(t *testing.T) {
	store := newTestStore(t)

	firstSeen := time.Now().Add(-24 * time.Hour).UTC()
	p := testProperty(t, "MLU-1", "Montevideo", 100000)
	p.ScrapedAt = firstSeen
	p.UpdatedAt = firstSeen
	require.NoError(t, store.Upsert(p))

	// Same listing seen again with a new price.
	rescrape := testProperty(t, "MLU-1", "Montevideo", 95000)
	rescrape.ScrapedAt = time.Now().UTC()
	require.NoError(t, store.Upsert(rescrape))

	got, err := store.GetByID("ml_MLU-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, float64(95000), got.Price)
	assert.WithinDuration(t, firstSeen, got.ScrapedAt, time.Second, "first-seen timestamp survives re-upserts")
	assert.True(t, got.UpdatedAt.After(got.ScrapedAt))

	properties, err := store.Query(models.Filters{}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, properties, 1, "re-upsert must not create a second row")
}

func TestQueryFilters(t *testing.T) {
	store := newTestStore(t)

	cheap := testProperty(t, "MLU-1", "Montevideo", 80000)
	mid := testProperty(t, "MLU-2", "Montevideo", 150000)
	bedrooms := 3
	mid.Bedrooms = &bedrooms
	interior := testProperty(t, "MLU-3", "Canelones", 120000)

	for _, p := range []*models.Property{cheap, mid, interior} {
		require.NoError(t, store.Upsert(p))
	}

	byDepartment, err := store.Query(models.Filters{Department: "Canelones"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, byDepartment, 1)
	assert.Equal(t, "ml_MLU-3", byDepartment[0].ID)

	byPrice, err := store.Query(models.Filters{MinPrice: 100000, MaxPrice: 130000}, 10, 0)
	require.NoError(t, err)
	require.Len(t, byPrice, 1)
	assert.Equal(t, "ml_MLU-3", byPrice[0].ID)

	byBedrooms, err := store.Query(models.Filters{MinBedrooms: 2}, 10, 0)
	require.NoError(t, err)
	require.Len(t, byBedrooms, 1)
	assert.Equal(t, "ml_MLU-2", byBedrooms[0].ID)

	all, err := store.Query(models.Filters{}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestQueryNewestFirst(t *testing.T) {
	store := newTestStore(t)

	old := testProperty(t, "MLU-1", "Montevideo", 100000)
	old.ScrapedAt = time.Now().Add(-48 * time.Hour).UTC()
	recent := testProperty(t, "MLU-2", "Montevideo", 100000)
	recent.ScrapedAt = time.Now().UTC()

	require.NoError(t, store.Upsert(old))
	require.NoError(t, store.Upsert(recent))

	properties, err := store.Query(models.Filters{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, properties, 2)
	assert.Equal(t, "ml_MLU-2", properties[0].ID)
	assert.Equal(t, "ml_MLU-1", properties[1].ID)
}

func TestGetByIDMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetByID("ml_nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRoundTripPreservesOptionalFields(t *testing.T) {
	store := newTestStore(t)

	p := testProperty(t, "MLU-1", "Montevideo", 120500)
	area := 85.0
	p.TotalArea = &area
	yes := true
	p.HasParrillero = &yes
	p.Images = []string{"https://img/1.jpg", "https://img/2.jpg"}
	p.ThumbnailURL = "https://img/1.jpg"
	require.NoError(t, store.Upsert(p))

	got, err := store.GetByID(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NotNil(t, got.TotalArea)
	assert.Equal(t, 85.0, *got.TotalArea)
	require.NotNil(t, got.HasParrillero)
	assert.True(t, *got.HasParrillero)
	assert.Nil(t, got.HasPool, "unknown amenity stays unknown")
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, got.Images)
	assert.Equal(t, "https://img/1.jpg", got.ThumbnailURL)
}

func TestStats(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Upsert(testProperty(t, "MLU-1", "Montevideo", 100000)))
	require.NoError(t, store.Upsert(testProperty(t, "MLU-2", "Canelones", 100000)))

	ic := testProperty(t, "IC-1", "Montevideo", 100000)
	ic.Source = models.SourceInfoCasas
	ic.ID = "ic_IC-1"
	require.NoError(t, store.Upsert(ic))

	stats, err := store.Stats()
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.BySource["mercadolibre"])
	assert.Equal(t, 1, stats.BySource["infocasas"])
	assert.Equal(t, 2, stats.ByDepartment["Montevideo"])
	assert.Equal(t, 1, stats.ByDepartment["Canelones"])
}

func TestMarkInactiveIsSoftDelete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Upsert(testProperty(t, "MLU-1", "Montevideo", 100000)))
	require.NoError(t, store.Upsert(testProperty(t, "MLU-2", "Montevideo", 100000)))

	require.NoError(t, store.MarkInactive([]string{"ml_MLU-1"}))

	properties, err := store.Query(models.Filters{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, "ml_MLU-2", properties[0].ID)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)

	// The row itself survives and stays addressable.
	got, err := store.GetByID("ml_MLU-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsActive)
}

func TestFavorites(t *testing.T) {
	store := newTestStore(t)

	p := testProperty(t, "MLU-1", "Montevideo", 100000)
	require.NoError(t, store.Upsert(p))

	require.NoError(t, store.AddFavorite(p.ID, "visitar el sábado"))
	require.NoError(t, store.AddFavorite(p.ID, "ya visitada"))

	favorites, err := store.Favorites()
	require.NoError(t, err)
	require.Len(t, favorites, 1, "re-adding updates the note instead of duplicating")
	assert.Equal(t, p.ID, favorites[0].PropertyID)
	assert.Equal(t, "ya visitada", favorites[0].Notes)
	assert.False(t, favorites[0].AddedAt.IsZero())
}
