// Package app initializes and holds long-lived application services,
// acting as a dependency injection container for the CLI commands.
package app

import (
	"context"
	"fmt"

	gcsclient "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/stromning/scholartrend/internal/clock/system"
	"github.com/stromning/scholartrend/internal/config"
	"github.com/stromning/scholartrend/internal/dataset"
	"github.com/stromning/scholartrend/internal/id/uuid"
	"github.com/stromning/scholartrend/internal/publisher"
	"github.com/stromning/scholartrend/internal/publisher/pubsub"
	"github.com/stromning/scholartrend/internal/storage"
	"github.com/stromning/scholartrend/internal/storage/gcs"
	"github.com/stromning/scholartrend/internal/storage/local"
)

// App holds the shared services for one invocation: the dataset store,
// the optional artifact uploader and event publisher, and the clock and
// ID generator the run loop depends on.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	store    dataset.Store
	uploader storage.BlobStore
	events   publisher.Publisher
	idGen    *uuid.Generator
	clock    *system.Clock
	closers  []func() error
}

// New builds the App from configuration, failing fast if any configured
// service cannot be initialized.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
		idGen:  uuid.New(),
		clock:  system.New(),
	}

	if err := a.initStore(ctx); err != nil {
		return nil, err
	}
	if err := a.initUploader(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initPublisher(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) initStore(ctx context.Context) error {
	switch a.cfg.Dataset.Driver {
	case "csv":
		store, err := dataset.NewCSVStore(a.cfg.Dataset.Path)
		if err != nil {
			return fmt.Errorf("init csv store: %w", err)
		}
		a.logger.Info("Using CSV dataset store", zap.String("path", a.cfg.Dataset.Path))
		a.store = store
	case "postgres":
		store, err := dataset.NewPostgresStore(ctx, dataset.PostgresConfig{
			DSN:   a.cfg.Dataset.Postgres.DSN,
			Table: a.cfg.Dataset.Postgres.Table,
		})
		if err != nil {
			return fmt.Errorf("init postgres store: %w", err)
		}
		a.logger.Info("Using Postgres dataset store", zap.String("table", a.cfg.Dataset.Postgres.Table))
		a.store = store
	default:
		return fmt.Errorf("unknown dataset driver: %s", a.cfg.Dataset.Driver)
	}
	a.closers = append(a.closers, a.store.Close)
	return nil
}

func (a *App) initUploader(ctx context.Context) error {
	switch a.cfg.Upload.Provider {
	case "none":
	case "gcs":
		client, err := gcsclient.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("init gcs client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		store, err := gcs.New(client, gcs.Config{
			Bucket: a.cfg.Upload.GCS.Bucket,
			Prefix: a.cfg.Upload.Prefix,
		})
		if err != nil {
			return fmt.Errorf("init gcs uploader: %w", err)
		}
		a.logger.Info("Uploading artifacts to GCS", zap.String("bucket", a.cfg.Upload.GCS.Bucket))
		a.uploader = store
	case "local":
		store, err := local.New(local.Config{BaseDir: a.cfg.Upload.Local.Dir})
		if err != nil {
			return fmt.Errorf("init local uploader: %w", err)
		}
		a.logger.Info("Copying artifacts to local directory", zap.String("dir", a.cfg.Upload.Local.Dir))
		a.uploader = store
	default:
		return fmt.Errorf("unknown upload provider: %s", a.cfg.Upload.Provider)
	}
	return nil
}

func (a *App) initPublisher(ctx context.Context) error {
	switch a.cfg.Publisher.Provider {
	case "none":
	case "pubsub":
		pub, err := pubsub.New(ctx, a.cfg.Publisher.ProjectID, a.cfg.Publisher.Topic)
		if err != nil {
			return fmt.Errorf("init pubsub publisher: %w", err)
		}
		a.logger.Info("Publishing run events to Pub/Sub", zap.String("topic", a.cfg.Publisher.Topic))
		a.events = pub
		a.closers = append(a.closers, pub.Close)
	default:
		return fmt.Errorf("unknown publisher provider: %s", a.cfg.Publisher.Provider)
	}
	return nil
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Store returns the dataset store.
func (a *App) Store() dataset.Store { return a.store }

// Uploader returns the artifact blob store, or nil when uploads are off.
func (a *App) Uploader() storage.BlobStore { return a.uploader }

// Publisher returns the run-event publisher, or nil when publishing is off.
func (a *App) Publisher() publisher.Publisher { return a.events }

// IDGen returns the run ID generator.
func (a *App) IDGen() *uuid.Generator { return a.idGen }

// Clock returns the system clock.
func (a *App) Clock() *system.Clock { return a.clock }

// Close shuts down all initialized services in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Error closing service", zap.Error(err))
		}
	}
	a.closers = nil
}
