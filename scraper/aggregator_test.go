package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buscacasas/config"
	"buscacasas/models"
)

type fakeStore struct {
	upserted []*models.Property
	err      error
}

func (f *fakeStore) Upsert(p *models.Property) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, p)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		MaxPages:          2,
		MaxConcurrency:    2,
		NavTimeoutMs:      15000,
		SelectorTimeoutMs: 10000,
		PolitenessMs:      0,
	}
}

func TestScrapeIsolatesSourceFailures(t *testing.T) {
	agg := NewAggregator(testConfig(), quietLogger())
	agg.runPipeline = func(_ context.Context, src Source, _ Options) ([]*models.PartialProperty, error) {
		if src.Name() == models.SourceInfoCasas {
			// Partial results gathered before the failure still count.
			return []*models.PartialProperty{{URL: "https://ic/1"}}, errors.New("browser crashed")
		}
		return []*models.PartialProperty{{URL: "https://ml/1"}, {URL: "https://ml/2"}}, nil
	}

	sources := []Source{
		&stubSource{name: models.SourceMercadoLibre},
		&stubSource{name: models.SourceInfoCasas},
	}
	listings, statuses := agg.Scrape(context.Background(), sources, Options{MaxPages: 1})

	assert.Len(t, listings, 3)
	require.Len(t, statuses, 2)

	ml := statuses[models.SourceMercadoLibre]
	require.NotNil(t, ml)
	assert.Equal(t, models.StatusCompleted, ml.Status)
	assert.Equal(t, 2, ml.Count)
	assert.Empty(t, ml.Error)

	ic := statuses[models.SourceInfoCasas]
	require.NotNil(t, ic)
	assert.Equal(t, models.StatusError, ic.Status)
	assert.Equal(t, 1, ic.Count)
	assert.Contains(t, ic.Error, "browser crashed")
}

func TestOptionsFromConfig(t *testing.T) {
	agg := NewAggregator(testConfig(), quietLogger())

	opts := agg.OptionsFromConfig(models.Filters{Department: "Montevideo"}, 0)
	assert.Equal(t, 2, opts.MaxPages, "non-positive page count falls back to config")
	assert.Equal(t, 15*time.Second, opts.NavTimeout)
	assert.Equal(t, 10*time.Second, opts.SelectorTimeout)
	assert.Equal(t, "Montevideo", opts.Filters.Department)

	opts = agg.OptionsFromConfig(models.Filters{}, 7)
	assert.Equal(t, 7, opts.MaxPages)
}

func savablePartial(sourceID string) *models.PartialProperty {
	return &models.PartialProperty{
		Source:       models.SourceMercadoLibre,
		SourceID:     sourceID,
		URL:          "https://casa.mercadolibre.com.uy/" + sourceID,
		Title:        "Casa en Carrasco",
		PropertyType: models.TypeCasa,
		Department:   "Montevideo",
		Currency:     models.CurrencyUYU,
	}
}

func TestSaveSkipsInvalidRecords(t *testing.T) {
	agg := NewAggregator(testConfig(), quietLogger())
	store := &fakeStore{}

	invalid := savablePartial("MLU-2")
	invalid.Title = ""

	saved, skipped, err := agg.Save(store, []*models.PartialProperty{
		savablePartial("MLU-1"),
		invalid,
		savablePartial("MLU-3"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	assert.Equal(t, 1, skipped)
	require.Len(t, store.upserted, 2)
	assert.Equal(t, "ml_MLU-1", store.upserted[0].ID)
	assert.Equal(t, "ml_MLU-3", store.upserted[1].ID)
}

func TestSaveAbortsOnStoreError(t *testing.T) {
	agg := NewAggregator(testConfig(), quietLogger())
	store := &fakeStore{err: errors.New("disk full")}

	saved, skipped, err := agg.Save(store, []*models.PartialProperty{savablePartial("MLU-1")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Zero(t, saved)
	assert.Zero(t, skipped)
}
