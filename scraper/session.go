package scraper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"buscacasas/config"
)

// Browser is the rendering capability a pipeline drives. Session implements
// it on top of chromedp; tests substitute a stub.
type Browser interface {
	// Navigate loads url and waits for the page to settle, bounded by timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// WaitForAny tries each selector in order and returns the first one that
	// becomes ready within its share of timeout. ErrSelectorTimeout when none do.
	WaitForAny(ctx context.Context, selectors []string, timeout time.Duration) (string, error)
	// HTML returns a snapshot of the rendered document.
	HTML(ctx context.Context) (string, error)
	// Click triggers the element matching selector and waits for the
	// resulting navigation to complete, bounded by timeout.
	Click(ctx context.Context, selector string, timeout time.Duration) error
	// Close releases the underlying browser tab. Safe to call more than once.
	Close()
}

// ErrSelectorTimeout signals that none of the candidate selectors appeared.
// It is a termination condition, not a failure.
var ErrSelectorTimeout = fmt.Errorf("no candidate selector appeared in time")

// stealthScript hides the automation fingerprint the same way a manual
// devtools session would not expose it.
const stealthScript = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// Session owns exactly one headless browser tab for the duration of one
// pipeline run. It is never shared between pipelines.
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	opTimeout   time.Duration
	closed      bool
}

// NewSession launches a headless tab configured with the fingerprint masking
// the sources expect from a regular visitor.
func NewSession(cfg *config.Config) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1366, 768),
	)
	if bin := findChromeBinary(cfg.ChromeBin); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	opTimeout := time.Duration(cfg.PageTimeoutMs) * time.Millisecond
	if opTimeout <= 0 {
		opTimeout = 30 * time.Second
	}

	s := &Session{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc, opTimeout: opTimeout}

	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := cdppage.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	}))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("session: launch browser: %w", err)
	}

	return s, nil
}

func (s *Session) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	runCtx, cancel := s.bounded(ctx, timeout)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("session: navigate %s: %w", url, err)
	}
	return nil
}

func (s *Session) WaitForAny(ctx context.Context, selectors []string, timeout time.Duration) (string, error) {
	if len(selectors) == 0 {
		return "", ErrSelectorTimeout
	}

	perSelector := timeout / time.Duration(len(selectors))
	if perSelector < time.Second {
		perSelector = time.Second
	}

	for _, sel := range selectors {
		runCtx, cancel := s.bounded(ctx, perSelector)
		err := chromedp.Run(runCtx, chromedp.WaitReady(sel, chromedp.ByQuery))
		cancel()
		if err == nil {
			return sel, nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	return "", ErrSelectorTimeout
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := s.bounded(ctx, s.opTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("session: snapshot dom: %w", err)
	}
	return html, nil
}

func (s *Session) Click(ctx context.Context, selector string, timeout time.Duration) error {
	runCtx, cancel := s.bounded(ctx, timeout)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Click(selector, chromedp.ByQuery),
		chromedp.Poll(`document.readyState === "complete"`, nil),
	)
	if err != nil {
		return fmt.Errorf("session: click %q: %w", selector, err)
	}
	return nil
}

func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancelTab()
	s.cancelAlloc()
}

// bounded derives a run context from the tab context, honoring both the
// caller's cancellation and the operation timeout.
func (s *Session) bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancelTimeout := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(ctx, cancelTimeout)
	return runCtx, func() {
		stop()
		cancelTimeout()
	}
}

// findChromeBinary locates the Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
