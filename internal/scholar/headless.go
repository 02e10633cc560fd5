package scholar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrHeadlessDisabled indicates headless fetching is off via configuration.
var ErrHeadlessDisabled = errors.New("headless fetcher disabled")

// HeadlessConfig controls the chromedp fallback fetcher.
type HeadlessConfig struct {
	Enabled    bool
	NavTimeout time.Duration
	QPS        float64
}

// ChromedpFetcher renders the results page in headless Chrome. It exists
// for runs where the provider blocks the plain HTTP client; Chrome with a
// real browser fingerprint often still gets a results page.
type ChromedpFetcher struct {
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	limiter         *rate.Limiter
	query           QueryConfig
	navTimeout      time.Duration
	logger          *zap.Logger
}

// NewChromedpFetcher starts a shared browser process for the run.
func NewChromedpFetcher(query QueryConfig, cfg HeadlessConfig, logger *zap.Logger) (*ChromedpFetcher, error) {
	if !cfg.Enabled {
		return nil, ErrHeadlessDisabled
	}
	navTimeout := cfg.NavTimeout
	if navTimeout <= 0 {
		navTimeout = 25 * time.Second
	}
	qps := cfg.QPS
	if qps <= 0 {
		qps = 0.25
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(query.UserAgent),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &ChromedpFetcher{
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		limiter:         rate.NewLimiter(rate.Limit(qps), 1),
		query:           query,
		navTimeout:      navTimeout,
		logger:          logger,
	}, nil
}

// Fetch renders the per-year query in a fresh tab and parses the count
// from the resulting DOM.
func (f *ChromedpFetcher) Fetch(ctx context.Context, year int) (int, error) {
	if f == nil {
		return 0, ErrHeadlessDisabled
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("headless rate limit: %w", err)
	}

	pageURL := buildQueryURL(f.query, year)

	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()
	taskCtx, cancelTask := context.WithTimeout(tabCtx, f.navTimeout)
	defer cancelTask()

	stop := forwardCancel(ctx, cancelTask)
	defer stop()

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return 0, fmt.Errorf("chromedp run: %w", err)
	}

	count, err := ParseResultCount([]byte(html))
	if err != nil {
		return 0, fmt.Errorf("year %d (headless): %w", year, err)
	}
	return count, nil
}

// Close tears down the browser and allocator contexts.
func (f *ChromedpFetcher) Close() error {
	if f == nil {
		return nil
	}
	f.browserCancel()
	f.allocatorCancel()
	return nil
}

// forwardCancel cancels the chromedp task when the caller's context ends.
func forwardCancel(ctx context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
