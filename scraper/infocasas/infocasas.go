// Package infocasas extracts real-estate listings from InfoCasas Uruguay
// search result pages.
package infocasas

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"buscacasas/models"
	"buscacasas/normalize"
	"buscacasas/scraper"
)

const baseURL = "https://www.infocasas.com.uy"

// typeCodes maps abstract property types to InfoCasas "tipo" values.
var typeCodes = map[models.PropertyType]string{
	models.TypeCasa:        "casa",
	models.TypeApartamento: "apartamento",
	models.TypePH:          "ph",
	models.TypeTerreno:     "terreno",
	models.TypeLocal:       "local",
}

var (
	containerSelectors = []string{
		".card-property",
		".property-card",
		".listing-item",
		".property-item",
		"[data-property-id]",
		".inmueble",
	}

	titleLinkSelectors = []string{
		`a[href*="/inmueble/"]`,
		`a[href*="/propiedad/"]`,
		"h3 a",
		".title a",
		".property-title a",
	}

	titleTextSelectors = []string{
		".title",
		".property-title",
		"h3",
		"h4",
	}

	priceSelectors = []string{
		".price",
		".precio",
		".property-price",
		".card-price",
		`[class*="price"]`,
		`[class*="precio"]`,
	}

	locationSelectors = []string{
		".location",
		".ubicacion",
		".property-location",
		".address",
		`[class*="location"]`,
		`[class*="ubicacion"]`,
	}

	imageSelectors = []string{"img"}

	nextSelectors = []string{
		".pagination .next:not(.disabled)",
		".paginacion .siguiente",
		`a[aria-label="Next"]`,
		".page-next",
		".btn-next",
	}
)

// Scraper is the InfoCasas source adapter.
type Scraper struct{}

// New returns an InfoCasas adapter.
func New() *Scraper { return &Scraper{} }

func (s *Scraper) Name() models.Source { return models.SourceInfoCasas }

// SearchURL builds the infocasas search URL. The operation (venta/alquiler)
// is a path segment; everything else is a query parameter.
func (s *Scraper) SearchURL(f models.Filters) string {
	operation := f.Operation
	if operation == "" {
		operation = "venta"
	}

	params := url.Values{}
	if code, ok := typeCodes[f.PropertyType]; ok {
		params.Set("tipo", code)
	}
	if f.MinPrice > 0 {
		params.Set("precio_desde", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		params.Set("precio_hasta", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.Currency != "" {
		params.Set("moneda", string(f.Currency))
	}
	if f.Department != "" {
		params.Set("departamento", strings.ToLower(f.Department))
	}

	searchURL := baseURL + "/" + operation
	if encoded := params.Encode(); encoded != "" {
		return searchURL + "?" + encoded
	}
	return searchURL
}

func (s *Scraper) ContainerSelectors() []string { return containerSelectors }
func (s *Scraper) NextSelectors() []string      { return nextSelectors }

// Extract parses every listing card on the page, tolerating whatever subset
// of fields the markup happens to carry.
func (s *Scraper) Extract(doc *goquery.Document) []*models.PartialProperty {
	var listings []*models.PartialProperty

	scraper.Containers(doc, containerSelectors).Each(func(_ int, card *goquery.Selection) {
		title := normalize.CollapseWhitespace(scraper.FirstText(card, titleLinkSelectors))
		if title == "" {
			title = normalize.CollapseWhitespace(scraper.FirstText(card, titleTextSelectors))
		}
		href := scraper.FirstAttr(card, titleLinkSelectors, "href")
		if title == "" || href == "" {
			return
		}
		listingURL := normalize.AbsoluteURL(baseURL, href)

		sourceID := normalize.LastPathSegment(listingURL)
		if sourceID == "" {
			return
		}

		price, currency := normalize.ParsePrice(scraper.FirstText(card, priceSelectors))
		department, neighborhood := normalize.ParseLocation(scraper.FirstText(card, locationSelectors))

		cardText := card.Text()
		amenities := normalize.DetectAmenities(cardText)
		imageURL := scraper.FirstAttr(card, imageSelectors, "src", "data-src")

		p := &models.PartialProperty{
			Source:        models.SourceInfoCasas,
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
