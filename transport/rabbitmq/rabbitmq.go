// Package rabbitmq provides a RabbitMQ/AMQP event sink.
package rabbitmq

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/v3/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/catalogflow/transport"
)

// TransportName is the name used to register this sink.
const TransportName = "rabbitmq"

// ExchangePrefix namespaces the fanout exchanges events are published to.
const ExchangePrefix = "catalog."

// ConnectionFactory allows overriding the connection creation for testing.
var ConnectionFactory = func(cfg amqp.ConnectionConfig, logger watermill.LoggerAdapter) (*amqp.ConnectionWrapper, error) {
	return amqp.NewConnection(cfg, logger)
}

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(cfg amqp.Config, logger watermill.LoggerAdapter, conn *amqp.ConnectionWrapper) (message.Publisher, error) {
	return amqp.NewPublisherWithConnection(cfg, logger, conn)
}

func init() {
	Register()
}

// Register registers the RabbitMQ sink with the default registry.
func Register() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.RabbitMQCapabilities)
}

// Build creates a publisher on the durable fanout exchange ExchangeName(topic).
// Publishes wait for broker confirmation, so a returned nil means the event
// was accepted.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	url := cfg.GetRabbitMQURL()
	if url == "" {
		return nil, errors.New("rabbitmq: URL is required")
	}

	amqpConfig := amqp.NewDurablePubSubConfig(url, amqp.GenerateQueueNameTopicName)
	amqpConfig.Exchange.GenerateName = ExchangeName
	amqpConfig.Publish.ConfirmDelivery = true
	amqpConfig.Connection.Reconnect = amqp.DefaultReconnectConfig()

	conn, err := ConnectionFactory(amqpConfig.Connection, logger)
	if err != nil {
		return nil, err
	}

	return PublisherFactory(amqpConfig, logger, conn)
}

// ExchangeName maps an event topic to its exchange.
func ExchangeName(topic string) string {
	return ExchangePrefix + topic
}

// Capabilities returns the capabilities of this sink.
func Capabilities() transport.Capabilities {
	return transport.RabbitMQCapabilities
}
