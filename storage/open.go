package storage

import (
	"fmt"

	"buscacasas/config"
)

// Open picks the store backend configured by DATABASE_DRIVER.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.DatabaseDriver {
	case "sqlite", "":
		return NewSQLiteStore(cfg.DatabasePath)
	case "postgres":
		return NewPostgresStore(cfg.DSN())
	}
	return nil, fmt.Errorf("storage: unknown driver %q (want sqlite or postgres)", cfg.DatabaseDriver)
}
