package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/numeral/pkg/formatting"
	"github.com/JaimeStill/numeral/pkg/middleware"
	"github.com/JaimeStill/numeral/pkg/module"
	"github.com/JaimeStill/numeral/pkg/pagination"
)

const (
	EnvAPIBasePath    = "NUMERAL_API_BASE_PATH"
	EnvAPIMaxBodySize = "NUMERAL_API_MAX_BODY_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "NUMERAL_CORS_ENABLED",
	Origins:          "NUMERAL_CORS_ORIGINS",
	AllowedMethods:   "NUMERAL_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "NUMERAL_CORS_ALLOWED_HEADERS",
	AllowCredentials: "NUMERAL_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "NUMERAL_CORS_MAX_AGE",
}

var limitsEnv = &pagination.ConfigEnv{
	DefaultCount: "NUMERAL_LIMITS_DEFAULT_COUNT",
	MaxCount:     "NUMERAL_LIMITS_MAX_COUNT",
}

// APIConfig holds API routing, CORS, body size, and recall limit settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Limits      pagination.Config     `toml:"limits"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxBodySize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and limit configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Limits.Finalize(limitsEnv); err != nil {
		return fmt.Errorf("limits: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	mergeString(&c.BasePath, overlay.BasePath)
	mergeString(&c.MaxBodySize, overlay.MaxBodySize)

	c.CORS.Merge(&overlay.CORS)
	c.Limits.Merge(&overlay.Limits)
}

func (c *APIConfig) loadDefaults() {
	defaultString(&c.BasePath, "/api")
	defaultString(&c.MaxBodySize, "1MB")
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		c.MaxBodySize = v
	}
}

func (c *APIConfig) validate() error {
	if err := module.ValidatePrefix(c.BasePath); err != nil {
		return fmt.Errorf("invalid base_path: %w", err)
	}
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_body_size must be positive")
	}
	return nil
}
