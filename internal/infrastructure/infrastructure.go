// Package infrastructure provides core service initialization for application startup.
// It assembles the dependencies domain systems require: logging, lifecycle,
// the model ensemble, and the optional database and archive storage.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/numeral/internal/config"
	"github.com/JaimeStill/numeral/internal/models"
	"github.com/JaimeStill/numeral/internal/schema"
	"github.com/JaimeStill/numeral/pkg/database"
	"github.com/JaimeStill/numeral/pkg/lifecycle"
	"github.com/JaimeStill/numeral/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database and Storage are nil when their configuration is absent.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Models    models.System
	Database  database.System
	Storage   storage.System

	autoMigrate bool
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger := NewLogger(cfg, os.Stderr)

	ensemble, err := models.New(&cfg.Models, logger)
	if err != nil {
		return nil, fmt.Errorf("models init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle:   lifecycle.New(),
		Logger:      logger,
		Models:      ensemble,
		autoMigrate: cfg.Database.AutoMigrate,
	}

	if cfg.Database.Enabled() {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	}

	if cfg.Storage.Enabled() {
		store, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = store
	}

	return infra, nil
}

// NewLogger builds the root logger from the configured level and format.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Models.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("models start failed: %w", err)
	}
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
		if i.autoMigrate {
			schema.Start(i.Lifecycle, i.Database, i.Logger)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	return nil
}
