package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all application settings, loaded from the environment with
// an optional .env file on top.
type Config struct {
	// Storage
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabasePath   string `env:"DATABASE_PATH" envDefault:"./data/buscacasas.db"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"buscacasas"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:""`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"buscacasas"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Scraping
	MaxPages          int    `env:"MAX_PAGES" envDefault:"2"`
	MaxConcurrency    int    `env:"MAX_CONCURRENCY" envDefault:"2"`
	PageTimeoutMs     int    `env:"PAGE_TIMEOUT_MS" envDefault:"30000"`
	NavTimeoutMs      int    `env:"NAV_TIMEOUT_MS" envDefault:"15000"`
	SelectorTimeoutMs int    `env:"SELECTOR_TIMEOUT_MS" envDefault:"10000"`
	PolitenessMs      int    `env:"POLITENESS_DELAY_MS" envDefault:"3000"`
	ScrapeBudgetMs    int    `env:"SCRAPE_BUDGET_MS" envDefault:"0"`
	UserAgent         string `env:"USER_AGENT" envDefault:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
	ChromeBin         string `env:"CHROME_BIN" envDefault:""`

	// Interfaces
	ServerPort    string `env:"SERVER_PORT" envDefault:"3001"`
	CSVOutputPath string `env:"CSV_OUTPUT_PATH" envDefault:"./output/properties.csv"`
}

// Load reads the optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	// Missing .env is fine; system env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}
