package scraper

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"buscacasas/models"
)

// Source describes one external listing site. Each implementation carries
// its own selector tables, search-URL generation and pagination quirks;
// the pipeline drives all of them identically.
type Source interface {
	// Name returns the source tag this adapter extracts for.
	Name() models.Source

	// SearchURL maps abstract filters to the site's own query string.
	// Unmapped filter values are omitted, never an error.
	SearchURL(f models.Filters) string

	// ContainerSelectors lists candidate selectors for the listing-card set,
	// in preference order. The first one that matches anything wins.
	ContainerSelectors() []string

	// NextSelectors lists candidate selectors for an enabled "next page"
	// control, in preference order.
	NextSelectors() []string

	// Extract parses a rendered page snapshot into partial records. A card
	// missing both title and URL is dropped; any other missing field is
	// simply left absent.
	Extract(doc *goquery.Document) []*models.PartialProperty
}

// Options bounds one pipeline run.
type Options struct {
	// SearchURL overrides the generated search URL when non-empty.
	SearchURL string
	Filters   models.Filters

	MaxPages int

	NavTimeout      time.Duration
	SelectorTimeout time.Duration
	Politeness      time.Duration
}

// DefaultOptions mirrors the timeouts the sources tolerate well.
func DefaultOptions() Options {
	return Options{
		MaxPages:        2,
		NavTimeout:      15 * time.Second,
		SelectorTimeout: 10 * time.Second,
		Politeness:      3 * time.Second,
	}
}
