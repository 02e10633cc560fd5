package scholar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stromning/scholartrend/internal/dataset"
)

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Summary reports what one collection run produced. Failures map each
// skipped year to the reason; the caller leaves those years' stored values
// untouched.
type Summary struct {
	Updates  []dataset.YearCount
	Failures map[int]error
}

// Collector runs the sequential per-year fetch loop. One failed year never
// aborts the run.
type Collector struct {
	fetcher  Fetcher
	fallback Fetcher
	retry    RetryPolicy
	pauser   Pauser
	delays   DelayWindow
	clock    Clock
	logger   *zap.Logger
}

// NewCollector wires a Collector. fallback may be nil; when present it is
// tried once per attempt after the plain fetch reports a provider block.
func NewCollector(
	fetcher Fetcher,
	fallback Fetcher,
	retry RetryPolicy,
	pauser Pauser,
	delays DelayWindow,
	clock Clock,
	logger *zap.Logger,
) *Collector {
	return &Collector{
		fetcher:  fetcher,
		fallback: fallback,
		retry:    retry,
		pauser:   pauser,
		delays:   delays,
		clock:    clock,
		logger:   logger,
	}
}

// Collect fetches the count for every year in [startYear, endYear],
// pausing between years. endYear == 0 resolves to the clock's current
// year. The only errors returned are bad ranges and context cancellation;
// per-year failures are recorded in the summary and skipped.
func (c *Collector) Collect(ctx context.Context, startYear, endYear int) (Summary, error) {
	if endYear == 0 {
		endYear = c.clock.Now().Year()
	}
	if startYear > endYear {
		return Summary{}, fmt.Errorf("start year %d is after end year %d", startYear, endYear)
	}

	summary := Summary{Failures: make(map[int]error)}
	for year := startYear; year <= endYear; year++ {
		if year > startYear {
			c.pauser.Pause(ctx, c.delays.Next())
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		count, err := c.fetchYear(ctx, year)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			TotalFetchErrors.Inc()
			summary.Failures[year] = err
			c.logger.Warn("Skipping year after failed fetch",
				zap.Int("year", year),
				zap.Error(err),
			)
			continue
		}

		TotalYearsUpdated.Inc()
		summary.Updates = append(summary.Updates, dataset.YearCount{Year: year, Count: count})
		c.logger.Info("Fetched year count",
			zap.Int("year", year),
			zap.Int("count", count),
		)
	}
	return summary, nil
}

func (c *Collector) fetchYear(ctx context.Context, year int) (int, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			TotalRetries.Inc()
			c.pauser.Pause(ctx, c.retry.Backoff(attempt-1))
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}

		TotalFetches.Inc()
		count, err := c.fetcher.Fetch(ctx, year)
		if err == nil {
			return count, nil
		}
		observeFetchError(err)

		if errors.Is(err, ErrBlocked) && c.fallback != nil {
			c.logger.Info("Plain fetch blocked; escalating to headless", zap.Int("year", year))
			count, fbErr := c.fallback.Fetch(ctx, year)
			if fbErr == nil {
				return count, nil
			}
			observeFetchError(fbErr)
			err = fmt.Errorf("headless fallback: %w", fbErr)
		}

		lastErr = err
		if !c.retry.ShouldRetry(err, attempt+1) {
			return 0, lastErr
		}
	}
}

func observeFetchError(err error) {
	switch {
	case errors.Is(err, ErrBlocked):
		TotalBlocked.Inc()
	case errors.Is(err, ErrNoCount):
		TotalParseMisses.Inc()
	}
}
