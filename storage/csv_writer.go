package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"buscacasas/models"
)

// CSVWriter exports stored properties to a CSV file for offline analysis.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "source", "url", "title", "property_type", "department", "neighborhood",
		"price", "currency", "bedrooms", "bathrooms", "total_area", "images", "scraped_at",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends the given properties to the file.
func (c *CSVWriter) Write(properties []*models.Property) error {
	for _, p := range properties {
		row := []string{
			p.ID,
			string(p.Source),
			p.URL,
			p.Title,
			string(p.PropertyType),
			p.Department,
			p.Neighborhood,
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			string(p.Currency),
			formatInt(p.Bedrooms),
			formatInt(p.Bathrooms),
			formatFloat(p.TotalArea),
			strings.Join(p.Images, " "),
			p.ScrapedAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
