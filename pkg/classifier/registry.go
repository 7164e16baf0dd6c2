package classifier

import (
	"fmt"
	"sync"
)

// Registry is the ordered, name-unique model set. Registration order is the
// order predictions are reported in.
type Registry struct {
	mu          sync.RWMutex
	classifiers []Classifier
	names       map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]struct{}),
	}
}

// Register appends c to the model set.
func (r *Registry) Register(c Classifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[c.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, c.Name())
	}
	r.names[c.Name()] = struct{}{}
	r.classifiers = append(r.classifiers, c)
	return nil
}

// Classifiers returns the registered models in registration order.
func (r *Registry) Classifiers() []Classifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Classifier(nil), r.classifiers...)
}

// Names returns the registered model names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.classifiers))
	for i, c := range r.classifiers {
		names[i] = c.Name()
	}
	return names
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.classifiers)
}
