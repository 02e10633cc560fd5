package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stromning/scholartrend/internal/api"
	"github.com/stromning/scholartrend/internal/chart"
)

// newServeCmd creates the 'serve' subcommand, which exposes the dataset
// over HTTP for dashboards and scrapers.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the dataset, chart, and metrics over HTTP",

		RunE: runServeCommand,
	}
	return cmd
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	cfg := appInstance.Config()
	logger := appInstance.Logger()

	renderer := chart.NewRenderer(chart.Config{
		Title:  cfg.Chart.Title,
		Footer: cfg.Chart.Footer,
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
	})
	server := api.NewServer(appInstance.Store(), renderer, appInstance.Clock(), logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
	}
	return nil
}
