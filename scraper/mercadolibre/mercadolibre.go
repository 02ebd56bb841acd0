// Package mercadolibre extracts real-estate listings from MercadoLibre
// Uruguay search result pages.
package mercadolibre

import (
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"buscacasas/models"
	"buscacasas/normalize"
	"buscacasas/scraper"
)

const baseURL = "https://listado.mercadolibre.com.uy"

// categoryCodes maps abstract property types to MercadoLibre category IDs.
// Types without a code are simply omitted from the query.
var categoryCodes = map[models.PropertyType]string{
	models.TypeCasa:        "MUY1459",
	models.TypeApartamento: "MUY1458",
	models.TypePH:          "MUY1460",
	models.TypeTerreno:     "MUY1461",
}

var (
	containerSelectors = []string{
		".ui-search-result",
		".ui-search-results__item",
		".ui-search-item",
		".ui-search-layout__item",
		".ui-search-results .ui-search-layout__item",
		`[data-testid="result"]`,
	}

	titleSelectors = []string{
		`a[href*="MLU"]`,
		".ui-search-item__title a",
		"h2 a",
	}

	priceSelectors = []string{
		".andes-money-amount__fraction",
		".price-tag-amount",
		`[class*="price"]`,
	}

	currencySelectors = []string{
		".andes-money-amount__currency-symbol",
		`[class*="currency"]`,
	}

	locationSelectors = []string{
		".ui-search-item__group__element.ui-search-item__location",
		".ui-search-item__location",
	}

	imageSelectors = []string{
		".ui-search-result-image__element img",
		"img.ui-search-result-image__element",
		"img",
	}

	nextSelectors = []string{
		".andes-pagination__button--next:not(.andes-pagination__button--disabled) a",
		".andes-pagination__button--next:not(.andes-pagination__button--disabled)",
	}
)

// Scraper is the MercadoLibre source adapter.
type Scraper struct{}

// New returns a MercadoLibre adapter.
func New() *Scraper { return &Scraper{} }

func (s *Scraper) Name() models.Source { return models.SourceMercadoLibre }

// SearchURL builds the listado.mercadolibre search URL for the given filters.
func (s *Scraper) SearchURL(f models.Filters) string {
	params := url.Values{}

	if code, ok := categoryCodes[f.PropertyType]; ok {
		params.Set("category", code)
	}

	switch {
	case f.MinPrice > 0 && f.MaxPrice > 0:
		params.Set("price", strconv.FormatFloat(f.MinPrice, 'f', -1, 64)+"-"+strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	case f.MinPrice > 0:
		params.Set("price", strconv.FormatFloat(f.MinPrice, 'f', -1, 64)+"-*")
	case f.MaxPrice > 0:
		params.Set("price", "*-"+strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}

	if f.Currency != "" {
		params.Set("currency", string(f.Currency))
	}
	if f.Department != "" {
		params.Set("state", f.Department)
	}

	searchURL := baseURL + "/inmuebles/_NoIndex_True"
	if encoded := params.Encode(); encoded != "" {
		return searchURL + "?" + encoded
	}
	return searchURL
}

func (s *Scraper) ContainerSelectors() []string { return containerSelectors }
func (s *Scraper) NextSelectors() []string      { return nextSelectors }

// Extract parses every listing card on the page. A card missing both title
// and URL cannot be identified and is dropped; all other fields degrade to
// absent individually.
func (s *Scraper) Extract(doc *goquery.Document) []*models.PartialProperty {
	var listings []*models.PartialProperty

	scraper.Containers(doc, containerSelectors).Each(func(_ int, card *goquery.Selection) {
		title := normalize.CollapseWhitespace(scraper.FirstText(card, titleSelectors))
		href := scraper.FirstAttr(card, titleSelectors, "href")
		if title == "" || href == "" {
			return
		}
		listingURL := normalize.AbsoluteURL("https://mercadolibre.com.uy", href)

		sourceID := normalize.PathSegmentWithPrefix(listingURL, "MLU")
		if sourceID == "" {
			sourceID = normalize.LastPathSegment(listingURL)
		}
		if sourceID == "" {
			return
		}

		priceText := scraper.FirstText(card, priceSelectors)
		currencyText := scraper.FirstText(card, currencySelectors)
		price, currency := normalize.ParsePrice(currencyText + " " + priceText)

		department, neighborhood := normalize.ParseLocation(scraper.FirstText(card, locationSelectors))

		cardText := card.Text()
		amenities := normalize.DetectAmenities(cardText)

		imageURL := scraper.FirstAttr(card, imageSelectors, "src", "data-src")

		p := &models.PartialProperty{
			Source:        models.SourceMercadoLibre,
			SourceID:      sourceID,
			URL:           listingURL,
			Title:         title,
			PropertyType:  normalize.InferPropertyType(title, listingURL),
			Department:    department,
			Neighborhood:  neighborhood,
			Price:         price,
			Currency:      currency,
			Bedrooms:      normalize.Bedrooms(cardText),
			Bathrooms:     normalize.Bathrooms(cardText),
			TotalArea:     normalize.TotalArea(cardText),
			Garages:       normalize.Garages(cardText),
			HasBalcony:    amenities.Balcony,
			HasParrillero: amenities.Parrillero,
			HasPortero:    amenities.Portero,
			HasElevator:   amenities.Elevator,
			HasPool:       amenities.Pool,
			HasGym:        amenities.Gym,
			Images:        []string{},
		}
		if imageURL != "" {
			p.Images = []string{imageURL}
			p.ThumbnailURL = imageURL
		}

		listings = append(listings, p)
	})

	return listings
}
