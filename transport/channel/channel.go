// Package channel provides an in-memory event sink for consumers running in
// the same process. Events published while nobody is subscribed are dropped.
package channel

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/drblury/catalogflow/transport"
)

// TransportName is the name used to register this sink.
const TransportName = "channel"

// BufferSize is the per-subscriber buffer. Registration never waits on slow
// in-process consumers until it is full.
const BufferSize = 64

// Factory allows overriding the channel creation for testing.
var Factory = func(cfg gochannel.Config, logger watermill.LoggerAdapter) message.Publisher {
	return gochannel.NewGoChannel(cfg, logger)
}

func init() {
	Register()
}

// Register registers the channel sink with the default registry.
func Register() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.ChannelCapabilities)
}

// Build creates a Go channel publisher.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return Factory(gochannel.Config{OutputChannelBuffer: BufferSize}, logger), nil
}

// Subscriber returns the subscribing half of a publisher built by this sink.
func Subscriber(pub message.Publisher) (message.Subscriber, bool) {
	sub, ok := pub.(message.Subscriber)
	return sub, ok
}

// Capabilities returns the capabilities of this sink.
func Capabilities() transport.Capabilities {
	return transport.ChannelCapabilities
}
