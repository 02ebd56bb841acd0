package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"buscacasas/config"
	"buscacasas/models"
	"buscacasas/utils"
)

// Upserter is the slice of the persistent store the aggregator writes to.
type Upserter interface {
	Upsert(p *models.Property) error
}

// Aggregator fans a scrape out over the selected sources, one pipeline and
// one browser session per source, and merges whatever each of them manages
// to gather.
type Aggregator struct {
	cfg    *config.Config
	logger *logrus.Logger

	// runPipeline is the seam tests use to substitute real browser runs.
	runPipeline func(ctx context.Context, src Source, opts Options) ([]*models.PartialProperty, error)
}

// NewAggregator creates an Aggregator backed by real browser sessions.
func NewAggregator(cfg *config.Config, logger *logrus.Logger) *Aggregator {
	a := &Aggregator{cfg: cfg, logger: logger}
	a.runPipeline = a.runWithSession
	return a
}

func (a *Aggregator) runWithSession(ctx context.Context, src Source, opts Options) ([]*models.PartialProperty, error) {
	session, err := NewSession(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("aggregator: session for %s: %w", src.Name(), err)
	}
	// Pipeline.Run closes the session on every exit path.
	return NewPipeline(src, session, a.logger, opts).Run(ctx)
}

// OptionsFromConfig translates configured timeouts into pipeline options.
func (a *Aggregator) OptionsFromConfig(filters models.Filters, maxPages int) Options {
	if maxPages < 1 {
		maxPages = a.cfg.MaxPages
	}
	return Options{
		Filters:         filters,
		MaxPages:        maxPages,
		NavTimeout:      time.Duration(a.cfg.NavTimeoutMs) * time.Millisecond,
		SelectorTimeout: time.Duration(a.cfg.SelectorTimeoutMs) * time.Millisecond,
		Politeness:      time.Duration(a.cfg.PolitenessMs) * time.Millisecond,
	}
}

// Scrape runs every source concurrently (bounded by MAX_CONCURRENCY) and
// returns the merged listings plus a per-source outcome map. One source
// failing is recorded in its own entry and never suppresses the others.
func (a *Aggregator) Scrape(ctx context.Context, sources []Source, opts Options) ([]*models.PartialProperty, map[models.Source]*models.SourceResult) {
	if a.cfg.ScrapeBudgetMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(a.cfg.ScrapeBudgetMs)*time.Millisecond)
		defer cancel()
	}

	var (
		mu      sync.Mutex
		all     []*models.PartialProperty
		results = make(map[models.Source]*models.SourceResult)
	)

	pool := utils.NewWorkerPool(a.cfg.MaxConcurrency)
	for _, src := range sources {
		src := src
		pool.Submit(func() {
			listings, err := a.runPipeline(ctx, src, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.logger.WithField("source", src.Name()).WithError(err).Error("Source pipeline failed")
				results[src.Name()] = &models.SourceResult{
					Status: models.StatusError,
					Count:  len(listings),
					Error:  err.Error(),
				}
			} else {
				results[src.Name()] = &models.SourceResult{
					Status: models.StatusCompleted,
					Count:  len(listings),
				}
			}
			all = append(all, listings...)
		})
	}
	pool.Wait()

	return all, results
}

// Save validates each gathered record and upserts the valid ones. Invalid
// records are skipped and logged individually; a store I/O failure aborts
// the batch and is surfaced to the caller with the counts so far.
func (a *Aggregator) Save(store Upserter, listings []*models.PartialProperty) (saved, skipped int, err error) {
	for _, partial := range listings {
		prop, verr := partial.Validate()
		if verr != nil {
			skipped++
			a.logger.WithFields(logrus.Fields{
				"source": partial.Source,
				"title":  partial.Title,
			}).WithError(verr).Warn("Skipping invalid property")
			continue
		}

		if uerr := store.Upsert(prop); uerr != nil {
			return saved, skipped, fmt.Errorf("aggregator: upsert %s: %w", prop.ID, uerr)
		}
		saved++
	}
	return saved, skipped, nil
}
