package scholar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Fetcher retrieves the approximate publication count for one year.
// Implementations return ErrBlocked, ErrNoCount, a *StatusError, or a
// network error when the count cannot be produced.
type Fetcher interface {
	Fetch(ctx context.Context, year int) (int, error)
}

// QueryConfig describes the provider query issued per year.
type QueryConfig struct {
	BaseURL   string
	Keyword   string
	UserAgent string
	Timeout   time.Duration
}

// Browser-shaped headers cut down on trivial bot detection.
var defaultHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Cache-Control":   "no-cache",
	"Pragma":          "no-cache",
}

// CollyFetcher implements Fetcher with a Colly collector.
type CollyFetcher struct {
	baseCollector *colly.Collector
	cfg           QueryConfig
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based Fetcher.
func NewCollyFetcher(cfg QueryConfig, logger *zap.Logger) (*CollyFetcher, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Keyword == "" {
		return nil, fmt.Errorf("keyword is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	base := colly.NewCollector(colly.UserAgent(cfg.UserAgent))
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.Timeout)

	return &CollyFetcher{
		baseCollector: base,
		cfg:           cfg,
		logger:        logger,
	}, nil
}

// Fetch issues the per-year query and parses the count from the response.
func (f *CollyFetcher) Fetch(ctx context.Context, year int) (int, error) {
	body, err := f.fetchPage(ctx, buildQueryURL(f.cfg, year))
	if err != nil {
		return 0, err
	}
	count, err := ParseResultCount(body)
	if err != nil {
		return 0, fmt.Errorf("year %d: %w", year, err)
	}
	return count, nil
}

// buildQueryURL scopes the keyword query to a single year via the
// provider's year-range parameters.
func buildQueryURL(cfg QueryConfig, year int) string {
	params := url.Values{}
	params.Set("as_q", cfg.Keyword)
	params.Set("hl", "en")
	params.Set("as_sdt", "0,5")
	params.Set("as_ylo", strconv.Itoa(year))
	params.Set("as_yhi", strconv.Itoa(year))
	return cfg.BaseURL + "?" + params.Encode()
}

func (f *CollyFetcher) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	collector := f.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnRequest(func(r *colly.Request) {
		for k, v := range defaultHeaders {
			r.Headers.Set(k, v)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{body: append([]byte{}, r.Body...)})
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			send(fetchResult{err: &StatusError{Code: r.StatusCode}})
			return
		}
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(fetchResult{err: err})
	})

	if err := collector.Visit(pageURL); err != nil {
		// The synchronous collector surfaces non-2xx responses as a
		// generic Visit error after OnError has already queued the
		// typed one; the queued error carries the status code.
		select {
		case res := <-resultCh:
			if res.err != nil {
				return nil, res.err
			}
		default:
		}
		return nil, fmt.Errorf("visit %s: %w", pageURL, err)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return res.body, res.err
	default:
		return nil, errors.New("fetch produced no result")
	}
}

type fetchResult struct {
	body []byte
	err  error
}
