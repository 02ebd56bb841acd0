package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"buscacasas/models"
	"buscacasas/utils"
)

// Pipeline walks one source through navigate → extract → paginate until the
// page budget runs out or the source has no more pages. It owns its Browser
// for the whole run and releases it on every exit path.
type Pipeline struct {
	src     Source
	browser Browser
	logger  *logrus.Logger
	opts    Options
}

// NewPipeline wires a source adapter to a browser session.
func NewPipeline(src Source, browser Browser, logger *logrus.Logger, opts Options) *Pipeline {
	if opts.MaxPages < 1 {
		opts.MaxPages = 1
	}
	if opts.NavTimeout == 0 {
		opts.NavTimeout = DefaultOptions().NavTimeout
	}
	if opts.SelectorTimeout == 0 {
		opts.SelectorTimeout = DefaultOptions().SelectorTimeout
	}
	return &Pipeline{src: src, browser: browser, logger: logger, opts: opts}
}

// Run executes the pipeline and returns everything gathered. Only a failed
// initial navigation is fatal; every later timeout degrades to fewer results.
// A cancelled ctx makes the run finish its current page and return early.
func (p *Pipeline) Run(ctx context.Context) ([]*models.PartialProperty, error) {
	defer p.browser.Close()

	searchURL := p.opts.SearchURL
	if searchURL == "" {
		searchURL = p.src.SearchURL(p.opts.Filters)
	}

	log := p.logger.WithField("source", p.src.Name())
	log.WithField("url", searchURL).Info("Starting scrape")

	retry := &utils.RetryConfig{MaxAttempts: 2, BaseDelay: time.Second, Logger: p.logger}
	err := retry.Do("initial navigation", func() error {
		return p.browser.Navigate(ctx, searchURL, p.opts.NavTimeout)
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", p.src.Name(), err)
	}
	p.settle(ctx)

	var all []*models.PartialProperty
	seen := utils.NewURLSet()

	for page := 1; page <= p.opts.MaxPages; page++ {
		pageListings := p.extractPage(ctx, log.WithField("page", page))
		for _, listing := range pageListings {
			if listing.URL != "" && !seen.Add(listing.URL) {
				continue
			}
			all = append(all, listing)
		}

		log.WithFields(logrus.Fields{
			"page":  page,
			"found": len(pageListings),
			"total": len(all),
		}).Info("Page extracted")

		if page == p.opts.MaxPages {
			break
		}
		if ctx.Err() != nil {
			log.Warn("Scrape budget exceeded, returning partial results")
			break
		}
		if !p.advance(ctx, log) {
			log.WithField("page", page).Info("No more pages")
			break
		}
	}

	log.WithField("total", len(all)).Info("Scrape complete")
	return all, nil
}

// extractPage waits for a listing container to appear and parses the
// rendered snapshot. Every failure mode here means zero results for this
// page, never a pipeline error.
func (p *Pipeline) extractPage(ctx context.Context, log *logrus.Entry) []*models.PartialProperty {
	matched, err := p.browser.WaitForAny(ctx, p.src.ContainerSelectors(), p.opts.SelectorTimeout)
	if err != nil {
		log.Warn("No listing containers appeared, treating page as empty")
		return nil
	}
	log.WithField("selector", matched).Debug("Listing container ready")

	html, err := p.browser.HTML(ctx)
	if err != nil {
		log.WithError(err).Warn("Could not snapshot page")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.WithError(err).Warn("Could not parse page snapshot")
		return nil
	}

	now := time.Now()
	listings := p.src.Extract(doc)
	for _, l := range listings {
		l.ScrapedAt = now
	}
	return listings
}

// advance locates an enabled next-page control and follows it. A missing
// control or a navigation timeout is the natural end of pagination.
func (p *Pipeline) advance(ctx context.Context, log *logrus.Entry) bool {
	html, err := p.browser.HTML(ctx)
	if err != nil {
		log.WithError(err).Warn("Could not snapshot page for pagination")
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	var control string
	for _, sel := range p.src.NextSelectors() {
		if doc.Find(sel).Length() > 0 {
			control = sel
			break
		}
	}
	if control == "" {
		return false
	}

	if err := p.browser.Click(ctx, control, p.opts.NavTimeout); err != nil {
		log.WithError(err).Debug("Next-page navigation did not complete")
		return false
	}
	p.settle(ctx)
	return true
}

// settle enforces the politeness delay after every page transition.
func (p *Pipeline) settle(ctx context.Context) {
	if p.opts.Politeness <= 0 {
		return
	}
	select {
	case <-time.After(p.opts.Politeness):
	case <-ctx.Done():
	}
}
