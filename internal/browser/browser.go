// Package browser owns the headless-browser session used by the sectioned
// acquisition strategy. One Session is created per run and reused for every
// navigation; Close releases it on every exit path.
package browser

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultGateWait bounds how long the verification gate holds the run.
const DefaultGateWait = 40 * time.Second

// DefaultGatePoll is the interval between challenge checks while gated.
const DefaultGatePoll = 2 * time.Second

// DefaultChallengeMarkers are the phrases interactive verification pages
// show while the challenge is unsolved.
var DefaultChallengeMarkers = []string{
	"Verify you are human",
	"Checking your browser",
	"Just a moment",
}

// Options configures the browser session.
type Options struct {
	// Headless hides the browser window. The sectioned harvester runs with
	// a visible window so a human can solve the verification challenge.
	Headless bool
	Verbose  bool
}

// Session is a run-scoped browser handle. It is not safe for concurrent
// use; the harvester drives it from a single goroutine.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	verbose bool
}

// NewSession launches the browser. A launch failure is a fatal setup error:
// it aborts the run before any record is processed.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("start-maximized", true),
		)...,
	)

	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so a missing Chrome binary surfaces here
	// rather than on the first record.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("browser launch failed: %w", err)
	}

	return &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelCtx, cancelAlloc},
		verbose: opts.Verbose,
	}, nil
}

// Close tears the browser down. Safe to call more than once.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}

// HTML navigates to url, lets the page settle, and returns the rendered
// markup. Cancellation of ctx is honored between navigations, not mid-load.
func (s *Session) HTML(ctx context.Context, url string, settle time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.verbose {
		log.Printf("[BROWSER] loading %s", url)
	}

	var html string
	err := chromedp.Run(s.ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("page load failed for %s: %w", url, err)
	}
	return html, nil
}

// AwaitVerification loads the bootstrap page and holds the run until the
// interactive verification challenge clears, polling the rendered page for
// challenge markers. The gate always opens after maxWait even if a marker
// is still visible, preserving the always-resumes property of the fixed
// pause it replaces. It runs exactly once per run, before the first record.
func (s *Session) AwaitVerification(ctx context.Context, url string, markers []string, poll, maxWait time.Duration) error {
	if len(markers) == 0 {
		markers = DefaultChallengeMarkers
	}
	if poll <= 0 {
		poll = DefaultGatePoll
	}
	if maxWait <= 0 {
		maxWait = DefaultGateWait
	}

	if _, err := s.HTML(ctx, url, 2*time.Second); err != nil {
		return fmt.Errorf("bootstrap load failed: %w", err)
	}

	log.Printf("[BROWSER] solve the verification challenge if one appears; resuming within %s", maxWait)
	deadline := time.Now().Add(maxWait)
	for {
		var body string
		err := chromedp.Run(s.ctx, chromedp.Text("body", &body, chromedp.ByQuery))
		if err == nil && !containsAny(body, markers) {
			if s.verbose {
				log.Printf("[BROWSER] verification cleared")
			}
			return nil
		}
		if time.Now().After(deadline) {
			log.Printf("[BROWSER] gate wait elapsed; continuing")
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
