package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const (
	// DefaultNEOFile is the default path of the near-Earth object catalog.
	DefaultNEOFile = "data/neos.csv"

	// DefaultCADFile is the default path of the close-approach extract.
	DefaultCADFile = "data/cad.json"

	// DefaultQueryLimit caps results printed to the terminal when no limit is given.
	DefaultQueryLimit = 10
)

// Config holds all configuration for neo-explorer.
type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Query   QueryConfig   `mapstructure:"query"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DataConfig locates the two input extracts.
type DataConfig struct {
	NEOFile string `mapstructure:"neo_file"`
	CADFile string `mapstructure:"cad_file"`
}

// QueryConfig holds query defaults.
type QueryConfig struct {
	DefaultLimit int `mapstructure:"default_limit"` // terminal output only; files are unlimited unless --limit is set
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("data.neo_file", DefaultNEOFile)
	v.SetDefault("data.cad_file", DefaultCADFile)

	v.SetDefault("query.default_limit", DefaultQueryLimit)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".neo-explorer"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("NEO_EXPLORER")
	v.AutomaticEnv()

	_ = v.BindEnv("data.neo_file", "NEO_EXPLORER_NEO_FILE")
	_ = v.BindEnv("data.cad_file", "NEO_EXPLORER_CAD_FILE")
	_ = v.BindEnv("logging.level", "NEO_EXPLORER_LOG_LEVEL")
	_ = v.BindEnv("logging.format", "NEO_EXPLORER_LOG_FORMAT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config")
		}
		// Config file not found is OK: defaults + env vars apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Data.NEOFile == "" {
		return errors.New("data.neo_file must not be empty")
	}
	if c.Data.CADFile == "" {
		return errors.New("data.cad_file must not be empty")
	}
	if c.Query.DefaultLimit < 0 {
		return errors.New("query.default_limit must be >= 0")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Newf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return errors.Newf("logging.format must be text or json (got %q)", c.Logging.Format)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
