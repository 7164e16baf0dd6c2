package main

import (
	"sync"
	"time"

	"github.com/JaimeStill/numeral/internal/config"
	"github.com/JaimeStill/numeral/internal/infrastructure"
)

type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer

	mu         sync.RWMutex
	startupErr error
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		infra:   infra,
		modules: modules,
	}

	router := buildRouter(infra, s.startupError)
	modules.Mount(router)
	s.http = newHTTPServer(cfg, router, infra.Logger)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"models", infra.Models.Names(),
	)

	return s, nil
}

func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
			s.mu.Lock()
			s.startupErr = err
			s.mu.Unlock()
			s.infra.Logger.Error("startup incomplete, service not ready", "error", err)
			return
		}
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) startupError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startupErr
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
