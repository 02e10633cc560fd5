// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Scholar    ScholarConfig    `mapstructure:"scholar"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Politeness PolitenessConfig `mapstructure:"politeness"`
	Headless   HeadlessConfig   `mapstructure:"headless"`
	Dataset    DatasetConfig    `mapstructure:"dataset"`
	Chart      ChartConfig      `mapstructure:"chart"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Publisher  PublisherConfig  `mapstructure:"publisher"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ScholarConfig describes the provider query issued per year.
type ScholarConfig struct {
	Keyword   string `mapstructure:"keyword"`
	StartYear int    `mapstructure:"start_year"`
	// EndYear of 0 resolves to the current year at run time.
	EndYear   int    `mapstructure:"end_year"`
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// HTTPConfig configures client timeout and retry behavior.
type HTTPConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	BackoffInitial time.Duration `mapstructure:"backoff_initial"`
	BackoffMax     time.Duration `mapstructure:"backoff_max"`
}

// PolitenessConfig bounds the randomized pause between per-year requests.
type PolitenessConfig struct {
	MinDelay time.Duration `mapstructure:"min_delay"`
	MaxDelay time.Duration `mapstructure:"max_delay"`
}

// HeadlessConfig configures the headless-Chrome fallback fetcher.
type HeadlessConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	NavTimeout time.Duration `mapstructure:"nav_timeout"`
	QPS        float64       `mapstructure:"qps"`
}

// DatasetConfig selects and parameterizes the dataset store.
type DatasetConfig struct {
	Driver   string         `mapstructure:"driver"`
	Path     string         `mapstructure:"path"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig controls the optional Postgres dataset backend.
type PostgresConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// ChartConfig controls the rendered trend image.
type ChartConfig struct {
	Path   string `mapstructure:"path"`
	Title  string `mapstructure:"title"`
	Footer string `mapstructure:"footer"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

// UploadConfig selects where run artifacts are published.
type UploadConfig struct {
	Provider string `mapstructure:"provider"`
	Prefix   string `mapstructure:"prefix"`
	GCS      struct {
		Bucket string `mapstructure:"bucket"`
	} `mapstructure:"gcs"`
	Local struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"local"`
}

// PublisherConfig holds metadata for run-event notifications.
type PublisherConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// ServerConfig controls the read-only HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk and environment. path may be empty, in
// which case the default search paths apply.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCHOLARTREND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.scholartrend")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scholar.keyword", "OpenFOAM")
	v.SetDefault("scholar.start_year", 2005)
	v.SetDefault("scholar.end_year", 0)
	v.SetDefault("scholar.base_url", "https://scholar.google.com/scholar")
	v.SetDefault("scholar.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")

	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial", "1500ms")
	v.SetDefault("http.backoff_max", "30s")

	v.SetDefault("politeness.min_delay", "2s")
	v.SetDefault("politeness.max_delay", "4s")

	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.nav_timeout", "25s")
	v.SetDefault("headless.qps", 0.25)

	v.SetDefault("dataset.driver", "csv")
	v.SetDefault("dataset.path", "data/scholar_counts.csv")
	v.SetDefault("dataset.postgres.table", "year_counts")

	v.SetDefault("chart.path", "data/scholar_trend.png")
	v.SetDefault("chart.title", `Google Scholar "OpenFOAM" approximate results by year`)
	v.SetDefault("chart.footer", "Plot provided by STROMNING")
	v.SetDefault("chart.width", 1200)
	v.SetDefault("chart.height", 600)

	v.SetDefault("upload.provider", "none")
	v.SetDefault("upload.prefix", "scholartrend")

	v.SetDefault("publisher.provider", "none")

	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scholar.Keyword == "" {
		return fmt.Errorf("scholar.keyword must be set")
	}
	if c.Scholar.BaseURL == "" {
		return fmt.Errorf("scholar.base_url must be set")
	}
	if c.Scholar.UserAgent == "" {
		return fmt.Errorf("scholar.user_agent must be set")
	}
	if c.Scholar.StartYear < 1900 {
		return fmt.Errorf("scholar.start_year must be >= 1900")
	}
	if c.Scholar.EndYear != 0 && c.Scholar.EndYear < c.Scholar.StartYear {
		return fmt.Errorf("scholar.end_year must be 0 or >= scholar.start_year")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.Politeness.MinDelay < 0 || c.Politeness.MaxDelay < c.Politeness.MinDelay {
		return fmt.Errorf("politeness delays must satisfy 0 <= min_delay <= max_delay")
	}
	switch c.Dataset.Driver {
	case "csv":
		if c.Dataset.Path == "" {
			return fmt.Errorf("dataset.path must be set for the csv driver")
		}
	case "postgres":
		if c.Dataset.Postgres.DSN == "" {
			return fmt.Errorf("dataset.postgres.dsn must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown dataset.driver %q", c.Dataset.Driver)
	}
	if c.Chart.Path == "" {
		return fmt.Errorf("chart.path must be set")
	}
	switch c.Upload.Provider {
	case "none":
	case "gcs":
		if c.Upload.GCS.Bucket == "" {
			return fmt.Errorf("upload.gcs.bucket must be set for the gcs provider")
		}
	case "local":
		if c.Upload.Local.Dir == "" {
			return fmt.Errorf("upload.local.dir must be set for the local provider")
		}
	default:
		return fmt.Errorf("unknown upload.provider %q", c.Upload.Provider)
	}
	switch c.Publisher.Provider {
	case "none":
	case "pubsub":
		if c.Publisher.ProjectID == "" || c.Publisher.Topic == "" {
			return fmt.Errorf("publisher.project_id and publisher.topic must be set for pubsub")
		}
	default:
		return fmt.Errorf("unknown publisher.provider %q", c.Publisher.Provider)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}
