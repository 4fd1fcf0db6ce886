package transport

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type entry struct {
	build Builder
	caps  Capabilities
}

// Registry maps sink names to their builders and capabilities. Names are
// stored lower-case; lookups are case-insensitive.
type Registry struct {
	mu    sync.RWMutex
	sinks map[string]entry
}

// DefaultRegistry is the process-wide sink registry sink packages add
// themselves to.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty sink registry.
func NewRegistry() *Registry {
	return &Registry{sinks: make(map[string]entry)}
}

// Register adds a sink whose capabilities are unknown.
func (r *Registry) Register(name string, builder Builder) {
	r.RegisterWithCapabilities(name, builder, Capabilities{})
}

// RegisterWithCapabilities adds a sink. A later registration under the same
// name replaces the earlier one.
func (r *Registry) RegisterWithCapabilities(name string, builder Builder, caps Capabilities) {
	name = strings.ToLower(name)
	if caps.Name == "" {
		caps.Name = name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[name] = entry{build: builder, caps: caps}
}

// GetCapabilities returns the capabilities of a sink. Unknown sinks report a
// zero set carrying only the name.
func (r *Registry) GetCapabilities(name string) Capabilities {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sinks[strings.ToLower(name)]; ok {
		return e.caps
	}
	return Capabilities{Name: name}
}

// Build creates the publisher of the sink named by cfg.GetEventSinkSystem.
func (r *Registry) Build(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	name := strings.ToLower(cfg.GetEventSinkSystem())
	r.mu.RLock()
	e, ok := r.sinks[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event sink: %q (registered: %s)", name, strings.Join(r.Names(), ", "))
	}

	if logger == nil {
		logger = watermill.NopLogger{}
	}
	pub, err := e.build(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("event sink %q: %w", name, err)
	}
	return pub, nil
}

// Names returns the registered sink names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sinks))
	for name := range r.sinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the capabilities of every registered sink, ordered by name.
func (r *Registry) Describe() []Capabilities {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Capabilities, 0, len(names))
	for _, name := range names {
		if e, ok := r.sinks[name]; ok {
			out = append(out, e.caps)
		}
	}
	return out
}

// Has reports whether a sink is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sinks[strings.ToLower(name)]
	return ok
}

// Register adds a sink to DefaultRegistry.
func Register(name string, builder Builder) {
	DefaultRegistry.Register(name, builder)
}

// RegisterWithCapabilities adds a sink and its capabilities to DefaultRegistry.
func RegisterWithCapabilities(name string, builder Builder, caps Capabilities) {
	DefaultRegistry.RegisterWithCapabilities(name, builder, caps)
}

// Build creates a publisher using DefaultRegistry.
func Build(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return DefaultRegistry.Build(ctx, cfg, logger)
}
