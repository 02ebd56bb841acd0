// Command buscacasas aggregates Uruguayan real-estate listings from
// MercadoLibre and InfoCasas into a local queryable store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"buscacasas/config"
	"buscacasas/models"
	"buscacasas/scraper"
	"buscacasas/scraper/sources"
	"buscacasas/server"
	"buscacasas/storage"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "scrape":
		runScrape(cfg, logger, os.Args[2:])
	case "search":
		runSearch(cfg, logger, os.Args[2:])
	case "stats":
		runStats(cfg, logger)
	case "serve":
		runServe(cfg, logger)
	case "export":
		runExport(cfg, logger, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: buscacasas <command> [flags]

commands:
  scrape   scrape properties from MercadoLibre and/or InfoCasas
  search   search saved properties
  stats    show database statistics
  serve    start the HTTP API server
  export   export saved properties to CSV`)
}

func runScrape(cfg *config.Config, logger *logrus.Logger, args []string) {
	fs := flag.NewFlagSet("scrape", flag.ExitOnError)
	source := fs.String("source", "both", "source to scrape (ml, ic, both)")
	pages := fs.Int("pages", cfg.MaxPages, "maximum pages per source")
	save := fs.Bool("save", false, "save results to the database")
	department := fs.String("department", "", "filter by department")
	propType := fs.String("type", "", "property type (casa, apartamento, ph, terreno)")
	minPrice := fs.Float64("min-price", 0, "minimum price")
	maxPrice := fs.Float64("max-price", 0, "maximum price")
	currency := fs.String("currency", "", "currency (UYU, USD)")
	operation := fs.String("operation", "", "operation (venta, alquiler)")
	_ = fs.Parse(args)

	selected, err := sources.ForSelector(*source)
	if err != nil {
		logger.Fatal(err)
	}

	filters := models.Filters{
		Department:   *department,
		PropertyType: models.PropertyType(*propType),
		MinPrice:     *minPrice,
		MaxPrice:     *maxPrice,
		Currency:     models.Currency(*currency),
		Operation:    *operation,
	}

	agg := scraper.NewAggregator(cfg, logger)
	opts := agg.OptionsFromConfig(filters, *pages)

	listings, statuses := agg.Scrape(context.Background(), selected, opts)

	for src, result := range statuses {
		entry := logger.WithFields(logrus.Fields{"source": src, "count": result.Count})
		if result.Status == models.StatusError {
			entry.WithField("error", result.Error).Error("Source finished with error")
		} else {
			entry.Info("Source completed")
		}
	}

	fmt.Printf("\nTotal properties found: %d\n\n", len(listings))
	printSample(listings, 5)

	if *save && len(listings) > 0 {
		store, err := storage.Open(cfg)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open store")
		}
		defer store.Close()

		saved, skipped, err := agg.Save(store, listings)
		if err != nil {
			logger.WithError(err).Fatal("Failed to save properties")
		}
		fmt.Printf("Saved %d properties (%d skipped as invalid)\n", saved, skipped)
	}
}

func printSample(listings []*models.PartialProperty, n int) {
	for i, p := range listings {
		if i == n {
			fmt.Printf("... and %d more properties\n", len(listings)-n)
			break
		}
		fmt.Printf("%d. %s\n", i+1, p.Title)
		fmt.Printf("   Price: %s %.0f\n", p.Currency, p.Price)
		location := p.Department
		if p.Neighborhood != "" {
			location = p.Neighborhood + ", " + p.Department
		}
		fmt.Printf("   Location: %s\n", location)
		fmt.Printf("   Source: %s\n", p.Source)
		fmt.Printf("   URL: %s\n\n", p.URL)
	}
}

func runSearch(cfg *config.Config, logger *logrus.Logger, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	department := fs.String("department", "", "filter by department")
	neighborhood := fs.String("neighborhood", "", "filter by neighborhood")
	propType := fs.String("type", "", "property type")
	minPrice := fs.Float64("min-price", 0, "minimum price")
	maxPrice := fs.Float64("max-price", 0, "maximum price")
	currency := fs.String("currency", "", "currency (UYU, USD)")
	minBedrooms := fs.Int("min-bedrooms", 0, "minimum bedrooms")
	limit := fs.Int("limit", 10, "maximum results to show")
	_ = fs.Parse(args)

	store, err := storage.Open(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer store.Close()

	properties, err := store.Query(models.Filters{
		Department:   *department,
		Neighborhood: *neighborhood,
		PropertyType: models.PropertyType(*propType),
		MinPrice:     *minPrice,
		MaxPrice:     *maxPrice,
		Currency:     models.Currency(*currency),
		MinBedrooms:  *minBedrooms,
	}, *limit, 0)
	if err != nil {
		logger.WithError(err).Fatal("Search failed")
	}

	if len(properties) == 0 {
		fmt.Println("No properties found matching your criteria")
		return
	}

	fmt.Printf("Found %d properties:\n\n", len(properties))
	for i, p := range properties {
		fmt.Printf("%d. %s\n", i+1, p.Title)
		fmt.Printf("   Price: %s %.0f\n", p.Currency, p.Price)
		location := p.Department
		if p.Neighborhood != "" {
			location = p.Neighborhood + ", " + p.Department
		}
		fmt.Printf("   Location: %s\n", location)
		if p.TotalArea != nil {
			fmt.Printf("   Area: %.0f m2\n", *p.TotalArea)
		}
		fmt.Printf("   Source: %s\n", p.Source)
		fmt.Printf("   Scraped: %s\n", p.ScrapedAt.Format("2006-01-02"))
		fmt.Printf("   URL: %s\n\n", p.URL)
	}
}

func runStats(cfg *config.Config, logger *logrus.Logger) {
	store, err := storage.Open(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		logger.WithError(err).Fatal("Failed to read stats")
	}

	fmt.Printf("Total properties: %d\n\n", stats.Total)
	fmt.Println("By source:")
	for source, count := range stats.BySource {
		fmt.Printf("   %s: %d\n", source, count)
	}
	fmt.Println("\nBy department:")
	for department, count := range stats.ByDepartment {
		fmt.Printf("   %s: %d\n", department, count)
	}
}

func runServe(cfg *config.Config, logger *logrus.Logger) {
	logger.SetFormatter(&logrus.JSONFormatter{})

	store, err := storage.Open(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer store.Close()

	agg := scraper.NewAggregator(cfg, logger)
	srv := server.New(cfg, store, agg, logger)

	logger.WithField("port", cfg.ServerPort).Info("Server starting")
	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("Server stopped")
	}
}

func runExport(cfg *config.Config, logger *logrus.Logger, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", cfg.CSVOutputPath, "output CSV path")
	limit := fs.Int("limit", 10000, "maximum rows to export")
	_ = fs.Parse(args)

	store, err := storage.Open(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer store.Close()

	properties, err := store.Query(models.Filters{}, *limit, 0)
	if err != nil {
		logger.WithError(err).Fatal("Failed to read properties")
	}

	writer, err := storage.NewCSVWriter(*out)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create CSV file")
	}
	defer writer.Close()

	if err := writer.Write(properties); err != nil {
		logger.WithError(err).Fatal("CSV export failed")
	}
	fmt.Printf("Exported %d properties to %s\n", len(properties), *out)
}
