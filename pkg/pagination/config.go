package pagination

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the limits applied to "most recent N" queries.
type Config struct {
	DefaultCount int `toml:"default_count"`
	MaxCount     int `toml:"max_count"`
}

// ConfigEnv maps environment variable names for limit configuration.
type ConfigEnv struct {
	DefaultCount string
	MaxCount     string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultCount != 0 {
		c.DefaultCount = overlay.DefaultCount
	}
	if overlay.MaxCount != 0 {
		c.MaxCount = overlay.MaxCount
	}
}

func (c *Config) loadDefaults() {
	if c.DefaultCount <= 0 {
		c.DefaultCount = 20
	}
	if c.MaxCount <= 0 {
		c.MaxCount = 100
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	if env.DefaultCount != "" {
		if v := os.Getenv(env.DefaultCount); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.DefaultCount = n
			}
		}
	}
	if env.MaxCount != "" {
		if v := os.Getenv(env.MaxCount); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxCount = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.DefaultCount < 1 {
		return fmt.Errorf("default_count must be positive")
	}
	if c.MaxCount < 1 {
		return fmt.Errorf("max_count must be positive")
	}
	if c.DefaultCount > c.MaxCount {
		return fmt.Errorf("default_count cannot exceed max_count")
	}
	return nil
}
