// Package cmd defines and implements the CLI commands for the scholartrend
// executable.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stromning/scholartrend/internal/chart"
	"github.com/stromning/scholartrend/internal/config"
	"github.com/stromning/scholartrend/internal/dataset"
	"github.com/stromning/scholartrend/internal/publisher"
	"github.com/stromning/scholartrend/internal/scholar"
)

// newCollectCmd creates and configures the 'collect' subcommand, the main
// periodic entry point: fetch every year's count, merge it into the stored
// dataset, and refresh the chart.
func newCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Fetches per-year result counts and updates the dataset and chart",
		Long: `Queries Google Scholar once per year in the configured range, merges the
approximate result counts into the stored dataset, re-renders the bar
chart, and optionally uploads the artifacts and publishes a run event.`,

		RunE: runCollectCommand,
	}
	return cmd
}

func runCollectCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cfg := appInstance.Config()
	logger := appInstance.Logger()

	// An unreadable dataset is fatal before any fetching happens; a run
	// must never clobber data it could not load.
	existing, err := appInstance.Store().Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	collector, cleanup, err := newCollector(cfg, appInstance, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	runID, err := appInstance.IDGen().NewID()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	startedAt := appInstance.Clock().Now()
	logger.Info("Starting collection run",
		zap.String("run_id", runID),
		zap.String("keyword", cfg.Scholar.Keyword),
		zap.Int("start_year", cfg.Scholar.StartYear),
	)

	summary, err := collector.Collect(ctx, cfg.Scholar.StartYear, cfg.Scholar.EndYear)
	if err != nil {
		return fmt.Errorf("collect counts: %w", err)
	}

	merged := dataset.Merge(existing, summary.Updates)
	if err := appInstance.Store().Save(ctx, merged); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}

	event := publisher.RunEvent{
		RunID:        runID,
		Keyword:      cfg.Scholar.Keyword,
		StartedAt:    startedAt,
		YearsUpdated: dataset.Dataset(summary.Updates).Years(),
		YearsFailed:  failedYears(summary),
	}

	// Artifact steps are reported but never fail the run; the dataset is
	// already persisted at this point.
	renderer := chart.NewRenderer(chart.Config{
		Title:  cfg.Chart.Title,
		Footer: cfg.Chart.Footer,
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
	})
	chartRendered := false
	if err := renderer.RenderFile(merged, appInstance.Clock().Now(), cfg.Chart.Path); err != nil {
		logger.Error("Failed to render chart", zap.Error(err))
	} else {
		chartRendered = true
		logger.Info("Chart rendered", zap.String("path", cfg.Chart.Path))
	}

	if uploader := appInstance.Uploader(); uploader != nil {
		if cfg.Dataset.Driver == "csv" {
			event.DatasetURI = uploadFile(ctx, appInstance, runID, cfg.Dataset.Path, "text/csv")
		}
		if chartRendered {
			event.ChartURI = uploadFile(ctx, appInstance, runID, cfg.Chart.Path, "image/png")
		}
	}

	if pub := appInstance.Publisher(); pub != nil {
		event.FinishedAt = appInstance.Clock().Now()
		msgID, err := pub.Publish(ctx, event)
		if err != nil {
			logger.Error("Failed to publish run event", zap.Error(err))
		} else {
			logger.Info("Run event published", zap.String("message_id", msgID))
		}
	}

	logger.Info("Collection run finished",
		zap.String("run_id", runID),
		zap.Int("years_updated", len(summary.Updates)),
		zap.Int("years_failed", len(summary.Failures)),
	)
	return nil
}

// newCollector is the pipeline factory. Like newApp it is a variable so
// tests can substitute a stub fetcher.
var newCollector = buildCollector

// buildCollector assembles the fetch pipeline from configuration. The
// returned cleanup closes the headless browser when one was started.
func buildCollector(cfg config.Config, appInstance App, logger *zap.Logger) (*scholar.Collector, func(), error) {
	query := scholar.QueryConfig{
		BaseURL:   cfg.Scholar.BaseURL,
		Keyword:   cfg.Scholar.Keyword,
		UserAgent: cfg.Scholar.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
	}

	fetcher, err := scholar.NewCollyFetcher(query, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init fetcher: %w", err)
	}

	cleanup := func() {}
	var fallback scholar.Fetcher
	headless, err := scholar.NewChromedpFetcher(query, scholar.HeadlessConfig{
		Enabled:    cfg.Headless.Enabled,
		NavTimeout: cfg.Headless.NavTimeout,
		QPS:        cfg.Headless.QPS,
	}, logger)
	switch {
	case err == nil:
		fallback = headless
		cleanup = func() {
			if cerr := headless.Close(); cerr != nil {
				logger.Warn("Failed to close headless browser", zap.Error(cerr))
			}
		}
	case errors.Is(err, scholar.ErrHeadlessDisabled):
	default:
		logger.Warn("Headless fallback unavailable", zap.Error(err))
	}

	collector := scholar.NewCollector(
		fetcher,
		fallback,
		scholar.NewExponentialRetryPolicy(cfg.HTTP.MaxRetries, cfg.HTTP.BackoffInitial, cfg.HTTP.BackoffMax),
		scholar.TimerPauser{},
		scholar.DelayWindow{Min: cfg.Politeness.MinDelay, Max: cfg.Politeness.MaxDelay},
		appInstance.Clock(),
		logger,
	)
	return collector, cleanup, nil
}

// uploadFile pushes one on-disk artifact to the blob store and returns its
// URI, or "" when the upload failed.
func uploadFile(ctx context.Context, appInstance App, runID, filePath, contentType string) string {
	logger := appInstance.Logger()
	data, err := os.ReadFile(filePath)
	if err != nil {
		logger.Error("Failed to read artifact for upload", zap.String("path", filePath), zap.Error(err))
		return ""
	}
	objectPath := path.Join(runID, path.Base(filePath))
	uri, err := appInstance.Uploader().PutObject(ctx, objectPath, contentType, bytes.NewReader(data))
	if err != nil {
		logger.Error("Failed to upload artifact", zap.String("path", filePath), zap.Error(err))
		return ""
	}
	logger.Info("Artifact uploaded", zap.String("uri", uri))
	return uri
}

func failedYears(summary scholar.Summary) []int {
	years := make([]int, 0, len(summary.Failures))
	for year := range summary.Failures {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
