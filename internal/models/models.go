// Package models builds the classifier ensemble from configuration and ties
// the loading and release of frozen networks to the service lifecycle.
package models

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JaimeStill/numeral/pkg/classifier"
	"github.com/JaimeStill/numeral/pkg/classifier/onnx"
	"github.com/JaimeStill/numeral/pkg/lifecycle"
)

// System exposes the configured ensemble.
type System interface {
	Ensemble() *classifier.Ensemble
	Names() []string
	// Start registers warm-up and release hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type models struct {
	cfg      *Config
	registry *classifier.Registry
	ensemble *classifier.Ensemble
	lazy     map[string]*classifier.LazyNetwork
	logger   *slog.Logger

	mu     sync.Mutex
	loaded []*onnx.Network
}

// New registers every configured model in order. Networks are not loaded
// until the startup hook runs or the first prediction needs them.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	m := &models{
		cfg:      cfg,
		registry: classifier.NewRegistry(),
		lazy:     make(map[string]*classifier.LazyNetwork),
		logger:   logger.With("system", "models"),
	}

	for _, mc := range cfg.Models {
		c, err := m.build(mc)
		if err != nil {
			return nil, err
		}
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}

	m.ensemble = classifier.NewEnsemble(m.registry.Classifiers()...)
	return m, nil
}

func (m *models) build(mc ModelConfig) (classifier.Classifier, error) {
	switch mc.Kind {
	case KindRandom:
		return classifier.NewRandom(mc.Name), nil
	case KindONNX:
		lazy := classifier.Lazy(func() (classifier.Network, error) {
			return m.load(mc)
		})
		m.lazy[mc.Name] = lazy
		return classifier.NewNetworkClassifier(mc.Name, lazy, classifier.Options{
			Scale:       mc.Scale,
			Temperature: mc.Temperature,
		}), nil
	}
	return nil, fmt.Errorf("model %s: unknown kind %q", mc.Name, mc.Kind)
}

func (m *models) load(mc ModelConfig) (classifier.Network, error) {
	if err := onnx.Init(m.cfg.ONNXLibrary); err != nil {
		return nil, err
	}

	net, err := onnx.Load(mc.Path, onnx.Config{
		InputName:  mc.InputName,
		OutputName: mc.OutputName,
	})
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", mc.Name, err)
	}

	m.mu.Lock()
	m.loaded = append(m.loaded, net)
	m.mu.Unlock()

	m.logger.Info("model loaded", "model", mc.Name, "path", mc.Path)
	return net, nil
}

func (m *models) Ensemble() *classifier.Ensemble {
	return m.ensemble
}

func (m *models) Names() []string {
	return m.registry.Names()
}

func (m *models) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("registering models", "models", m.registry.Names())

	lc.OnStartup(func() error {
		var errs []error
		for name, lazy := range m.lazy {
			if err := lazy.Warm(); err != nil {
				m.logger.Error("model warm-up failed", "model", name, "error", err)
				errs = append(errs, fmt.Errorf("%w: %s: %w", classifier.ErrModelFailure, name, err))
			}
		}
		return errors.Join(errs...)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		m.release()
	})

	return nil
}

func (m *models) release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, net := range m.loaded {
		if err := net.Close(); err != nil {
			m.logger.Error("model close failed", "error", err)
		}
	}
	m.loaded = nil

	if m.cfg.HasONNX() {
		if err := onnx.Destroy(); err != nil {
			m.logger.Error("onnx runtime shutdown failed", "error", err)
		}
	}
	m.logger.Info("models released")
}
