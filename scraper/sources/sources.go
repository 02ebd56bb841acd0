// Package sources resolves CLI/API source selectors to adapter sets.
package sources

import (
	"fmt"

	"buscacasas/scraper"
	"buscacasas/scraper/infocasas"
	"buscacasas/scraper/mercadolibre"
)

// ForSelector maps "ml", "ic" or "both" to the adapters to run.
func ForSelector(name string) ([]scraper.Source, error) {
	switch name {
	case "ml":
		return []scraper.Source{mercadolibre.New()}, nil
	case "ic":
		return []scraper.Source{infocasas.New()}, nil
	case "both", "":
		return []scraper.Source{mercadolibre.New(), infocasas.New()}, nil
	}
	return nil, fmt.Errorf("unknown source %q (want ml, ic or both)", name)
}
