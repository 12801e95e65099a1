package plugin

import (
	"fmt"
	"sync"

	"github.com/skillsenselab/hostagent/errors"
	"github.com/skillsenselab/hostagent/logger"
)

// Capability is the minimal contract every plugin satisfies: it reports
// the unique name it is registered and resolved under.
type Capability interface {
	Name() string
}

// Factory constructs one capability instance. A factory takes no arguments;
// anything the plugin needs it reads from the agent configuration itself.
type Factory[T Capability] func() (T, error)

// FactorySet collects factories for one capability kind. Provider packages
// append to it from init, so importing a provider package is what makes its
// plugins loadable.
type FactorySet[T Capability] struct {
	mu        sync.Mutex
	factories []Factory[T]
}

// Register appends a factory to the set.
func (s *FactorySet[T]) Register(f Factory[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories = append(s.factories, f)
}

// Factories returns the registered factories in registration order.
func (s *FactorySet[T]) Factories() []Factory[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Factory[T], len(s.factories))
	copy(out, s.factories)
	return out
}

// Registry holds loaded capability instances keyed by their self-reported
// name. It is populated once by Load and read-only thereafter, so lookups
// are safe for concurrent use without further coordination.
type Registry[T Capability] struct {
	kind   string
	byName map[string]T
	order  []string
	loaded bool
	mu     sync.RWMutex
	log    *logger.Logger
}

// NewRegistry creates an empty registry. Kind names the capability for
// log messages ("discoverer", "controller").
func NewRegistry[T Capability](kind string) *Registry[T] {
	return &Registry[T]{
		kind:   kind,
		byName: make(map[string]T),
		log:    logger.WithComponent("plugin"),
	}
}

// Load instantiates every factory and registers the results. A factory
// error or panic is logged and loading continues with the rest. Duplicate
// names are logged and discarded; the first registration wins. Load may be
// called only once for the process lifetime.
func (r *Registry[T]) Load(factories []Factory[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return fmt.Errorf("plugin: %s registry already loaded", r.kind)
	}
	r.loaded = true

	for i, f := range factories {
		instance, err := instantiate(f)
		if err != nil {
			r.log.Error("plugin load failed, skipping", logger.Fields(
				"kind", r.kind,
				"factory_index", i,
				logger.FieldError, err.Error(),
			))
			continue
		}

		name := instance.Name()
		if _, exists := r.byName[name]; exists {
			dup := errors.DuplicatePlugin(name)
			r.log.Warn("duplicate plugin name, keeping first registration", logger.Fields(
				"kind", r.kind,
				logger.FieldPlugin, name,
				logger.FieldError, dup.Error(),
			))
			continue
		}

		r.byName[name] = instance
		r.order = append(r.order, name)
		r.log.Info("plugin registered", logger.Fields(
			"kind", r.kind,
			logger.FieldPlugin, name,
		))
	}

	r.log.Info("plugin loading complete", logger.Fields(
		"kind", r.kind,
		"registered", len(r.order),
		"declared", len(factories),
	))
	return nil
}

// instantiate runs one factory, converting a panic into an error so a
// misbehaving plugin cannot take down its siblings.
func instantiate[T Capability](f Factory[T]) (instance T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Internal(fmt.Errorf("factory panicked: %v", rec))
		}
	}()
	return f()
}

// Get returns the capability registered under name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	instance, ok := r.byName[name]
	return instance, ok
}

// Names returns registered names in registration order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every registered capability in registration order.
func (r *Registry[T]) All() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of registered capabilities.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
