package main

import (
	"net/http"

	"github.com/JaimeStill/numeral/internal/api"
	"github.com/JaimeStill/numeral/internal/config"
	"github.com/JaimeStill/numeral/internal/infrastructure"
	"github.com/JaimeStill/numeral/pkg/handlers"
	"github.com/JaimeStill/numeral/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

type probe struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func buildRouter(infra *infrastructure.Infrastructure, startup func() error) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, probe{Status: "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			p := probe{Status: "not ready"}
			if err := startup(); err != nil {
				p.Error = err.Error()
			}
			handlers.RespondJSON(w, http.StatusServiceUnavailable, p)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, probe{Status: "ready"})
	})

	return router
}
