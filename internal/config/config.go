package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for catalog-search
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Search    SearchConfig    `yaml:"search"`
	Messaging MessagingConfig `yaml:"messaging"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Seed is a YAML or JSON catalog file or URL; empty uses the built-in catalogs
	Seed      string `yaml:"seed"`
	SeedToken string `yaml:"seed_token"` // bearer token for seed URLs
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr             string        `yaml:"addr"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`
	BackdropInterval time.Duration `yaml:"backdrop_interval"`
	Watch            bool          `yaml:"watch"` // reload the seed file when it changes
}

// StorageConfig selects where catalogs are read from
type StorageConfig struct {
	Driver  string      `yaml:"driver"` // memory, sqlite, redis
	DataDir string      `yaml:"data_dir"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// SearchConfig configures typeahead suggestions
type SearchConfig struct {
	IndexPath    string `yaml:"index_path"` // defaults to <data_dir>/suggest.bleve
	SuggestLimit int    `yaml:"suggest_limit"`
}

// MessagingConfig configures change notifications. An empty URL disables them.
type MessagingConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

var (
	ValidDrivers   = []string{"memory", "sqlite", "redis"}
	ValidLogLevels = []string{"debug", "info", "warn", "error"}
	ValidFormats   = []string{"json", "console"}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:             ":8080",
			ShutdownTimeout:  5 * time.Second,
			BackdropInterval: 50 * time.Millisecond,
		},
		Storage: StorageConfig{
			Driver:  "memory",
			DataDir: "./data",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "catalog",
			},
		},
		Search: SearchConfig{
			SuggestLimit: 8,
		},
		Messaging: MessagingConfig{
			Prefix: "catalog",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML file on top of the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies CATALOG_* environment variables
func (c *Config) applyEnvOverrides() {
	c.Server.Addr = getenv("CATALOG_ADDR", c.Server.Addr)
	c.Server.Watch = getenvBool("CATALOG_WATCH", c.Server.Watch)

	c.Storage.Driver = getenv("CATALOG_STORE", c.Storage.Driver)
	c.Storage.DataDir = getenv("CATALOG_DATA_DIR", c.Storage.DataDir)
	c.Storage.Redis.Addr = getenv("CATALOG_REDIS_ADDR", c.Storage.Redis.Addr)
	c.Storage.Redis.Password = getenv("CATALOG_REDIS_PASSWORD", c.Storage.Redis.Password)
	c.Storage.Redis.DB = getenvInt("CATALOG_REDIS_DB", c.Storage.Redis.DB)

	c.Search.SuggestLimit = getenvInt("CATALOG_SUGGEST_LIMIT", c.Search.SuggestLimit)
	c.Messaging.URL = getenv("CATALOG_AMQP_URL", c.Messaging.URL)

	c.Logging.Level = getenv("CATALOG_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getenv("CATALOG_LOG_FORMAT", c.Logging.Format)

	c.Seed = getenv("CATALOG_SEED", c.Seed)
	c.SeedToken = getenv("CATALOG_SEED_TOKEN", c.SeedToken)
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address is empty")
	}
	if !slices.Contains(ValidDrivers, c.Storage.Driver) {
		return fmt.Errorf("invalid storage driver: %s (valid: %v)", c.Storage.Driver, ValidDrivers)
	}
	if c.Storage.Driver == "redis" && c.Storage.Redis.Addr == "" {
		return fmt.Errorf("redis driver needs an address (set CATALOG_REDIS_ADDR)")
	}
	if c.Search.SuggestLimit <= 0 {
		return fmt.Errorf("suggest limit must be positive, got %d", c.Search.SuggestLimit)
	}
	if c.Server.BackdropInterval <= 0 {
		return fmt.Errorf("backdrop interval must be positive, got %s", c.Server.BackdropInterval)
	}
	if !slices.Contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if !slices.Contains(ValidFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidFormats)
	}
	return nil
}

// DatabasePath is the SQLite file inside the data directory
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataDir, "catalog.db")
}

// IndexPath is where the suggestion index lives
func (c *Config) IndexPath() string {
	if c.Search.IndexPath != "" {
		return c.Search.IndexPath
	}
	return filepath.Join(c.Storage.DataDir, "suggest.bleve")
}
