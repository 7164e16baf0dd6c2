package api

import (
	"github.com/JaimeStill/numeral/internal/config"
	"github.com/JaimeStill/numeral/internal/infrastructure"
	"github.com/JaimeStill/numeral/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Limits   pagination.Config
	BasePath string
	Version  string
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Limits:         cfg.API.Limits,
		BasePath:       cfg.API.BasePath,
		Version:        cfg.Version,
	}
}
