package api

import (
	"fmt"
	"sort"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Module is a group of host functions that can be registered into a Lua state.
type Module interface {
	// Name returns the module name (e.g., "color", "http").
	Name() string

	// Register installs the module's functions into the Lua state.
	Register(L *lua.LState) error
}

// Registry manages API modules and their registration.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry creates a new API registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

// Register adds a module to the registry.
func (r *Registry) Register(mod Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[mod.Name()]; exists {
		return fmt.Errorf("module %q already registered", mod.Name())
	}

	r.modules[mod.Name()] = mod
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, ok := r.modules[name]
	return mod, ok
}

// List returns all registered module names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InjectAll registers every module into L in name order.
func (r *Registry) InjectAll(L *lua.LState) error {
	for _, name := range r.List() {
		mod, _ := r.Get(name)
		if err := mod.Register(L); err != nil {
			return fmt.Errorf("failed to register module %q: %w", name, err)
		}
	}
	return nil
}

// DefaultRegistry creates a registry with the standard plugin modules.
// All plugins share the console and one HTTP client.
func DefaultRegistry(console *Console, httpTimeout time.Duration) (*Registry, error) {
	r := NewRegistry()

	modules := []Module{
		NewColorModule(console),
		NewHTTPModule(httpTimeout),
		NewJSONModule(),
		NewUtilModule(),
	}

	for _, mod := range modules {
		if err := r.Register(mod); err != nil {
			return nil, fmt.Errorf("failed to register module %q: %w", mod.Name(), err)
		}
	}

	return r, nil
}
