// Package transports imports all built-in event sinks for auto-registration.
// Import this package to have every sink registered with the default registry.
package transports

import (
	// Import all sinks for side-effect registration
	_ "github.com/drblury/catalogflow/transport/aws"
	_ "github.com/drblury/catalogflow/transport/channel"
	_ "github.com/drblury/catalogflow/transport/http"
	_ "github.com/drblury/catalogflow/transport/io"
	_ "github.com/drblury/catalogflow/transport/jetstream"
	_ "github.com/drblury/catalogflow/transport/kafka"
	_ "github.com/drblury/catalogflow/transport/nats"
	_ "github.com/drblury/catalogflow/transport/rabbitmq"
)
