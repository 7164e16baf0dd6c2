package models

import (
	"errors"
	"fmt"
	"os"
)

// Model kinds.
const (
	KindRandom = "random"
	KindONNX   = "onnx"
)

// Config declares the ensemble. Entries are evaluated and reported in order.
type Config struct {
	ONNXLibrary string        `toml:"onnx_library"`
	Models      []ModelConfig `toml:"model"`
}

// ModelConfig describes one classifier. Temperature is the logit multiplier
// of an onnx model; leaving it unset (or 0) selects 1.
type ModelConfig struct {
	Name        string  `toml:"name"`
	Kind        string  `toml:"kind"`
	Path        string  `toml:"path"`
	Scale       bool    `toml:"scale"`
	Temperature float64 `toml:"temperature"`
	InputName   string  `toml:"input_name"`
	OutputName  string  `toml:"output_name"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ONNXLibrary string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. A non-empty overlay model
// list replaces the base list entirely.
func (c *Config) Merge(overlay *Config) {
	if overlay.ONNXLibrary != "" {
		c.ONNXLibrary = overlay.ONNXLibrary
	}
	if len(overlay.Models) > 0 {
		c.Models = overlay.Models
	}
}

func (c *Config) loadDefaults() {
	if len(c.Models) == 0 {
		c.Models = []ModelConfig{{Name: KindRandom, Kind: KindRandom}}
	}
	for i := range c.Models {
		m := &c.Models[i]
		if m.Kind == "" {
			m.Kind = KindONNX
		}
		if m.Kind == KindONNX && m.Temperature == 0 {
			m.Temperature = 1
		}
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ONNXLibrary != "" {
		if v := os.Getenv(env.ONNXLibrary); v != "" {
			c.ONNXLibrary = v
		}
	}
}

func (c *Config) validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Models))

	for i, m := range c.Models {
		switch {
		case m.Name == "":
			errs = append(errs, fmt.Errorf("model %d: name required", i))
		case seen[m.Name]:
			errs = append(errs, fmt.Errorf("model %s: duplicate name", m.Name))
		}
		seen[m.Name] = true

		switch m.Kind {
		case KindRandom:
		case KindONNX:
			if m.Path == "" {
				errs = append(errs, fmt.Errorf("model %s: path required", m.Name))
			}
			if m.Temperature <= 0 {
				errs = append(errs, fmt.Errorf("model %s: temperature must be positive", m.Name))
			}
		default:
			errs = append(errs, fmt.Errorf("model %s: unknown kind %q", m.Name, m.Kind))
		}
	}

	return errors.Join(errs...)
}

// HasONNX reports whether any configured model needs the ONNX runtime.
func (c *Config) HasONNX() bool {
	for _, m := range c.Models {
		if m.Kind == KindONNX {
			return true
		}
	}
	return false
}
