package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/catalogflow/internal/runtime/config"
	sinks "github.com/drblury/catalogflow/transport"

	// Import all sinks to register them.
	_ "github.com/drblury/catalogflow/transport/transports"
)

// Sink combines an event publisher with the capabilities of the sink that
// produced it.
type Sink struct {
	Publisher    message.Publisher
	Capabilities sinks.Capabilities
}

// Factory abstracts how catalogflow initialises registration event sinks.
type Factory interface {
	Build(ctx context.Context, conf *config.Config, logger watermill.LoggerAdapter) (Sink, error)
}

// DefaultFactory returns the built-in factory backed by the default sink
// registry.
func DefaultFactory() Factory {
	return registryFactory{registry: sinks.DefaultRegistry}
}

// RegistryFactory returns a factory resolving sinks from registry.
func RegistryFactory(registry *sinks.Registry) Factory {
	return registryFactory{registry: registry}
}

type registryFactory struct {
	registry *sinks.Registry
}

func (f registryFactory) Build(ctx context.Context, conf *config.Config, logger watermill.LoggerAdapter) (Sink, error) {
	if conf == nil {
		return Sink{}, fmt.Errorf("config is required")
	}
	if conf.EventSinkSystem == "" {
		return Sink{}, fmt.Errorf("no event sink configured")
	}

	publisher, err := f.registry.Build(ctx, conf, logger)
	if err != nil {
		return Sink{}, err
	}

	return Sink{
		Publisher:    publisher,
		Capabilities: f.registry.GetCapabilities(strings.ToLower(conf.EventSinkSystem)),
	}, nil
}
