package transport

// Capabilities describes what a sink guarantees for published events.
type Capabilities struct {
	// Name is the registered sink name.
	Name string

	// Durable indicates published events survive a restart of the broker.
	Durable bool

	// SupportsOrdering indicates events on one topic are delivered in order.
	SupportsOrdering bool

	// SupportsHeaders indicates message metadata reaches consumers, which is
	// required for binary-mode (proto) events.
	SupportsHeaders bool

	// MaxMessageSize is the maximum message size in bytes (0 = unlimited/unknown).
	MaxMessageSize int64
}

// Accepts reports whether a message of size bytes fits the sink.
func (c Capabilities) Accepts(size int) bool {
	return c.MaxMessageSize == 0 || int64(size) <= c.MaxMessageSize
}

// Predefined capability sets for the built-in sinks.
var (
	ChannelCapabilities = Capabilities{
		Name:             "channel",
		SupportsOrdering: true,
		SupportsHeaders:  true,
	}

	KafkaCapabilities = Capabilities{
		Name:             "kafka",
		Durable:          true,
		SupportsOrdering: true,
		SupportsHeaders:  true,
		MaxMessageSize:   1048576, // Default 1MB
	}

	RabbitMQCapabilities = Capabilities{
		Name:             "rabbitmq",
		Durable:          true,
		SupportsOrdering: true,
		SupportsHeaders:  true,
	}

	NATSCapabilities = Capabilities{
		Name:            "nats",
		SupportsHeaders: true,
		MaxMessageSize:  1048576, // Default 1MB
	}

	NATSJetStreamCapabilities = Capabilities{
		Name:             "nats-jetstream",
		Durable:          true,
		SupportsOrdering: true,
		SupportsHeaders:  true,
		MaxMessageSize:   1048576, // Default 1MB
	}

	AWSCapabilities = Capabilities{
		Name:            "aws",
		Durable:         true,
		SupportsHeaders: true,
		MaxMessageSize:  262144, // 256KB
	}

	HTTPCapabilities = Capabilities{
		Name:            "http",
		SupportsHeaders: true,
	}

	IOCapabilities = Capabilities{
		Name:             "io",
		Durable:          true,
		SupportsOrdering: true,
		SupportsHeaders:  true,
	}
)

// GetCapabilities returns the capabilities for a sink by name from the
// default registry.
func GetCapabilities(name string) Capabilities {
	return DefaultRegistry.GetCapabilities(name)
}
