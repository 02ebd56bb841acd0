package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPartial() *PartialProperty {
	return &PartialProperty{
		Source:       SourceMercadoLibre,
		SourceID:     "MLU-612345678",
		URL:          "https://apartamento.mercadolibre.com.uy/MLU-612345678",
		Title:        "Apartamento en Pocitos",
		PropertyType: TypeApartamento,
		Department:   "Montevideo",
		Neighborhood: "Pocitos",
		Price:        120500,
		Currency:     CurrencyUSD,
	}
}

func TestValidatePromotesPartial(t *testing.T) {
	partial := validPartial()
	scrapedAt := time.Now().Add(-time.Hour)
	partial.ScrapedAt = scrapedAt

	prop, verr := partial.Validate()
	require.Nil(t, verr)

	assert.Equal(t, "ml_MLU-612345678", prop.ID)
	assert.Equal(t, SourceMercadoLibre, prop.Source)
	assert.Equal(t, scrapedAt, prop.ScrapedAt)
	assert.False(t, prop.UpdatedAt.IsZero())
	assert.True(t, prop.IsActive)
	assert.NotNil(t, prop.Images, "images must never be nil")
	assert.Empty(t, prop.Images)
}

func TestValidateDerivesPricePerM2(t *testing.T) {
	partial := validPartial()
	area := 100.0
	partial.TotalArea = &area

	prop, verr := partial.Validate()
	require.Nil(t, verr)
	require.NotNil(t, prop.PricePerM2)
	assert.InDelta(t, 1205.0, *prop.PricePerM2, 0.001)
}

func TestValidateRejectsMissingRequiredFields(t *testing.T) {
	partial := validPartial()
	partial.Title = ""
	partial.Department = ""

	prop, verr := partial.Validate()
	assert.Nil(t, prop)
	require.NotNil(t, verr)
	assert.Len(t, verr.Issues, 2)
	assert.Contains(t, verr.Error(), "missing title")
	assert.Contains(t, verr.Error(), "missing department")
}

func TestValidateRejectsRelativeURL(t *testing.T) {
	partial := validPartial()
	partial.URL = "/inmueble/123"

	_, verr := partial.Validate()
	require.NotNil(t, verr)
	assert.Contains(t, verr.Error(), "not absolute")
}

func TestValidateRejectsNegativeNumerics(t *testing.T) {
	partial := validPartial()
	partial.Price = -1
	bedrooms := -2
	partial.Bedrooms = &bedrooms

	_, verr := partial.Validate()
	require.NotNil(t, verr)
	assert.Contains(t, verr.Error(), "negative price")
	assert.Contains(t, verr.Error(), "negative bedrooms")
}

func TestValidateRejectsUnknownEnums(t *testing.T) {
	partial := validPartial()
	partial.Currency = "EUR"
	partial.PropertyType = "castillo"

	_, verr := partial.Validate()
	require.NotNil(t, verr)
	assert.Contains(t, verr.Error(), `unsupported currency "EUR"`)
	assert.Contains(t, verr.Error(), `unknown property type "castillo"`)
}

func TestValidateDefaultsScrapedAt(t *testing.T) {
	prop, verr := validPartial().Validate()
	require.Nil(t, verr)
	assert.False(t, prop.ScrapedAt.IsZero())
}

func TestSourceTag(t *testing.T) {
	assert.Equal(t, "ml", SourceMercadoLibre.Tag())
	assert.Equal(t, "ic", SourceInfoCasas.Tag())
}
