package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stromning/scholartrend/internal/app"
	"github.com/stromning/scholartrend/internal/clock/system"
	"github.com/stromning/scholartrend/internal/config"
	"github.com/stromning/scholartrend/internal/dataset"
	"github.com/stromning/scholartrend/internal/id/uuid"
	"github.com/stromning/scholartrend/internal/logging"
	"github.com/stromning/scholartrend/internal/publisher"
	"github.com/stromning/scholartrend/internal/storage"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application surface the commands use. Keeping it an
// interface lets tests inject a mock app through the same context slot.
type App interface {
	Close()
	Config() config.Config
	Logger() *zap.Logger
	Store() dataset.Store
	Uploader() storage.BlobStore
	Publisher() publisher.Publisher
	IDGen() *uuid.Generator
	Clock() *system.Clock
}

// newApp is the application factory. It is a variable so tests can swap
// in a mock factory.
var newApp func(ctx context.Context) (App, error) = func(ctx context.Context) (App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	return app.New(ctx, cfg, logger)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scholartrend",
		Short: "Tracks approximate Google Scholar result counts per year",
		Long: `scholartrend periodically queries Google Scholar for the approximate
number of results matching a keyword in each publication year, keeps the
counts in a local dataset, and renders them as a bar chart.`,

		// Runs after flag parsing but before the subcommand's RunE, so
		// every subcommand finds a fully initialized app in its context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches . and $HOME/.scholartrend)")

	cmd.AddCommand(newCollectCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}
