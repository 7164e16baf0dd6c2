package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/numeral/internal/models"
	"github.com/JaimeStill/numeral/pkg/database"
	"github.com/JaimeStill/numeral/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvNumeralEnv             = "NUMERAL_ENV"
	EnvNumeralShutdownTimeout = "NUMERAL_SHUTDOWN_TIMEOUT"
	EnvNumeralVersion         = "NUMERAL_VERSION"
	EnvNumeralLogLevel        = "NUMERAL_LOG_LEVEL"
	EnvNumeralLogFormat       = "NUMERAL_LOG_FORMAT"
)

var databaseEnv = &database.Env{
	ConnectionString: "NUMERAL_DB_CONNECTION_STRING",
	MaxOpenConns:     "NUMERAL_DB_MAX_OPEN_CONNS",
	MaxIdleConns:     "NUMERAL_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime:  "NUMERAL_DB_CONN_MAX_LIFETIME",
	ConnTimeout:      "NUMERAL_DB_CONN_TIMEOUT",
	BusyTimeout:      "NUMERAL_DB_BUSY_TIMEOUT",
	AutoMigrate:      "NUMERAL_DB_AUTO_MIGRATE",
}

var storageEnv = &storage.Env{
	ContainerName:    "NUMERAL_STORAGE_CONTAINER_NAME",
	ConnectionString: "NUMERAL_STORAGE_CONNECTION_STRING",
	ServiceURL:       "NUMERAL_STORAGE_SERVICE_URL",
}

var modelsEnv = &models.Env{
	ONNXLibrary: "NUMERAL_MODELS_ONNX_LIBRARY",
}

// Config is the root configuration for the Numeral service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Models          models.Config   `toml:"models"`
	LogLevel        string          `toml:"log_level"`
	LogFormat       string          `toml:"log_format"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the NUMERAL_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvNumeralEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFrom(BaseConfigFile)
}

// LoadFrom is Load with an explicit base file. The overlay is looked up next to it.
func LoadFrom(base string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(base); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.LogFormat != "" {
		c.LogFormat = overlay.LogFormat
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Models.Merge(&overlay.Models)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Models.Finalize(modelsEnv); err != nil {
		return fmt.Errorf("models: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvNumeralLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvNumeralLogFormat); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv(EnvNumeralShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvNumeralVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: expected text or json", c.LogFormat)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(base string) string {
	if env := os.Getenv(EnvNumeralEnv); env != "" {
		path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
