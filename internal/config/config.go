// Package config loads catalogmirror settings from defaults, a YAML config
// file, .env files and CATALOGMIRROR_* environment variables, in increasing
// order of precedence. Command-line flags are applied on top by the CLI.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/catalogmirror/pkg/constants"
	"github.com/agentstation/catalogmirror/pkg/errors"
)

// EnvPrefix prefixes every environment variable, e.g. CATALOGMIRROR_API_URL.
const EnvPrefix = "CATALOGMIRROR"

// Config keys.
const (
	KeyAPIURL               = "api_url"
	KeyCategoryEndpoint     = "category_endpoint"
	KeyManufacturerEndpoint = "manufacturer_endpoint"
	KeyCategories           = "categories"
	KeyRequestTimeout       = "request_timeout"
	KeyRetryDelay           = "api_call_delay_on_failure"
	KeyBatchSize            = "max_items_db_call"
	KeyMaxRetryRounds       = "max_retry_rounds"
	KeyUpdateInterval       = "update_interval"
	KeyOffline              = "offline_mode_active"
	KeyStoreSnapshots       = "store_last_results"
	KeySnapshotDir          = "snapshot_dir"
	KeyDatabaseDriver       = "database.driver"
	KeyDatabaseDSN          = "database.dsn"
	KeyDatabaseMaxOpenConns = "database.max_open_conns"
	KeyLogLevel             = "log.level"
	KeyLogFormat            = "log.format"
	KeyLogOutput            = "log.output"
	KeyMetricsAddr          = "metrics_addr"
)

// Config is the effective catalogmirror configuration.
type Config struct {
	APIURL               string        `mapstructure:"api_url" yaml:"api_url"`
	CategoryEndpoint     string        `mapstructure:"category_endpoint" yaml:"category_endpoint"`
	ManufacturerEndpoint string        `mapstructure:"manufacturer_endpoint" yaml:"manufacturer_endpoint"`
	Categories           []string      `mapstructure:"categories" yaml:"categories"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	RetryDelay           time.Duration `mapstructure:"api_call_delay_on_failure" yaml:"api_call_delay_on_failure"`
	BatchSize            int           `mapstructure:"max_items_db_call" yaml:"max_items_db_call"`
	MaxRetryRounds       int           `mapstructure:"max_retry_rounds" yaml:"max_retry_rounds"`
	UpdateInterval       time.Duration `mapstructure:"update_interval" yaml:"update_interval"`
	Offline              bool          `mapstructure:"offline_mode_active" yaml:"offline_mode_active"`
	StoreSnapshots       bool          `mapstructure:"store_last_results" yaml:"store_last_results"`
	SnapshotDir          string        `mapstructure:"snapshot_dir" yaml:"snapshot_dir"`

	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`

	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr,omitempty"`

	// ConfigFile is the file that was read, if any.
	ConfigFile string `mapstructure:"-" yaml:"config_file,omitempty"`
}

// DatabaseConfig selects the mirror backend.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`

	// MaxOpenConns caps the connection pool; zero keeps the driver default.
	MaxOpenConns int `mapstructure:"max_open_conns" yaml:"max_open_conns"`
}

// LogConfig configures pkg/logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// ConfigFile is an explicit config path. When empty, catalogmirror.yaml
	// is searched in the working directory and $HOME.
	ConfigFile string

	// EnvFiles are loaded with godotenv before reading the environment.
	// Nil means .env and .env.local.
	EnvFiles []string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:               constants.DefaultAPIURL,
		CategoryEndpoint:     constants.DefaultCategoryEndpoint,
		ManufacturerEndpoint: constants.DefaultManufacturerEndpoint,
		Categories:           append([]string(nil), constants.DefaultCategories...),
		RequestTimeout:       constants.DefaultRequestTimeout,
		RetryDelay:           constants.DefaultRetryDelay,
		BatchSize:            constants.DefaultBatchSize,
		UpdateInterval:       constants.DefaultUpdateInterval,
		SnapshotDir:          constants.DefaultSnapshotDir,
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    constants.DefaultDatabaseFile,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
			Output: "stderr",
		},
	}
}

// Load builds the configuration from all sources.
func Load(opts LoadOptions) (*Config, error) {
	loadEnvFiles(opts.EnvFiles)

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("catalogmirror")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("file", "reading "+configName(opts.ConfigFile), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError("decode", "invalid configuration value", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.Categories = normalizeCategories(cfg.Categories)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case len(c.Categories) == 0:
		return errors.NewValidationError(KeyCategories, c.Categories, "at least one category is required")
	case !c.Offline && c.APIURL == "":
		return errors.NewValidationError(KeyAPIURL, c.APIURL, "required unless offline_mode_active is set")
	case c.RequestTimeout <= 0:
		return errors.NewValidationError(KeyRequestTimeout, c.RequestTimeout, "must be positive")
	case c.RetryDelay < 0:
		return errors.NewValidationError(KeyRetryDelay, c.RetryDelay, "cannot be negative")
	case c.BatchSize <= 0:
		return errors.NewValidationError(KeyBatchSize, c.BatchSize, "must be positive")
	case c.MaxRetryRounds < 0:
		return errors.NewValidationError(KeyMaxRetryRounds, c.MaxRetryRounds, "cannot be negative")
	case c.UpdateInterval < 0:
		return errors.NewValidationError(KeyUpdateInterval, c.UpdateInterval, "cannot be negative")
	case c.Database.Driver != "sqlite" && c.Database.Driver != "postgres":
		return errors.NewValidationError(KeyDatabaseDriver, c.Database.Driver, "must be sqlite or postgres")
	case c.Database.DSN == "":
		return errors.NewValidationError(KeyDatabaseDSN, c.Database.DSN, "required")
	case c.Database.MaxOpenConns < 0:
		return errors.NewValidationError(KeyDatabaseMaxOpenConns, c.Database.MaxOpenConns, "cannot be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault(KeyAPIURL, d.APIURL)
	v.SetDefault(KeyCategoryEndpoint, d.CategoryEndpoint)
	v.SetDefault(KeyManufacturerEndpoint, d.ManufacturerEndpoint)
	v.SetDefault(KeyCategories, d.Categories)
	v.SetDefault(KeyRequestTimeout, d.RequestTimeout)
	v.SetDefault(KeyRetryDelay, d.RetryDelay)
	v.SetDefault(KeyBatchSize, d.BatchSize)
	v.SetDefault(KeyMaxRetryRounds, d.MaxRetryRounds)
	v.SetDefault(KeyUpdateInterval, d.UpdateInterval)
	v.SetDefault(KeyOffline, d.Offline)
	v.SetDefault(KeyStoreSnapshots, d.StoreSnapshots)
	v.SetDefault(KeySnapshotDir, d.SnapshotDir)
	v.SetDefault(KeyDatabaseDriver, d.Database.Driver)
	v.SetDefault(KeyDatabaseDSN, d.Database.DSN)
	v.SetDefault(KeyDatabaseMaxOpenConns, d.Database.MaxOpenConns)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
	v.SetDefault(KeyLogOutput, d.Log.Output)
	v.SetDefault(KeyMetricsAddr, d.MetricsAddr)
}

// loadEnvFiles loads environment variables from .env files.
// Existing variables are never overridden.
func loadEnvFiles(files []string) {
	if files == nil {
		files = []string{".env", ".env.local"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// normalizeCategories trims names and drops empties; env values arrive as
// one comma-separated string.
func normalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		for _, part := range strings.Split(c, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func configName(path string) string {
	if path == "" {
		return "catalogmirror.yaml"
	}
	return filepath.Base(path)
}
