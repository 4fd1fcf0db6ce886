// Package nats provides a NATS Core event sink. Core NATS has no persistence,
// so events reach only the subscribers connected at publish time; use the
// nats-jetstream sink to keep history.
package nats

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsio "github.com/nats-io/nats.go"

	"github.com/drblury/catalogflow/transport"
)

// TransportName is the name used to register this sink.
const TransportName = "nats"

// ConnectionName identifies catalog clients in the NATS server monitoring.
const ConnectionName = "catalogflow"

// ReconnectWait is the delay between reconnect attempts. The client retries
// forever so a restarted server does not silently drop the sink.
const ReconnectWait = 2 * time.Second

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(cfg nats.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return nats.NewPublisher(cfg, logger)
}

func init() {
	Register()
}

// Register registers the NATS sink with the default registry.
func Register() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.NATSCapabilities)
}

// Build creates a NATS Core publisher. Message metadata travels as NATS
// headers.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	url := cfg.GetNATSURL()
	if url == "" {
		return nil, errors.New("nats: URL is required")
	}

	return PublisherFactory(
		nats.PublisherConfig{
			URL: url,
			NatsOptions: []natsio.Option{
				natsio.Name(ConnectionName),
				natsio.MaxReconnects(-1),
				natsio.ReconnectWait(ReconnectWait),
			},
			Marshaler: &nats.NATSMarshaler{},
			JetStream: nats.JetStreamConfig{Disabled: true},
		},
		logger,
	)
}

// Capabilities returns the capabilities of this sink.
func Capabilities() transport.Capabilities {
	return transport.NATSCapabilities
}
