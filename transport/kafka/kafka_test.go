package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/catalogflow/transport"
	"github.com/drblury/catalogflow/transport/transporttest"
)

func TestRegister(t *testing.T) {
	original := transport.DefaultRegistry
	defer func() { transport.DefaultRegistry = original }()
	transport.DefaultRegistry = transport.NewRegistry()
	Register()

	caps := transport.GetCapabilities(TransportName)
	assert.Equal(t, "kafka", caps.Name)
	assert.True(t, caps.Durable)
	assert.Equal(t, transport.KafkaCapabilities, Capabilities())
}

func TestBuild(t *testing.T) {
	t.Run("partitions by record", func(t *testing.T) {
		originalPubFactory := PublisherFactory
		defer func() { PublisherFactory = originalPubFactory }()

		mockPub := &transporttest.Publisher{}
		PublisherFactory = func(cfg kafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
			assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Brokers)
			assert.NotNil(t, cfg.Marshaler)
			return mockPub, nil
		}

		pub, err := Build(context.Background(), &transporttest.Config{KafkaBrokers: []string{"broker-1:9092", "broker-2:9092"}}, watermill.NopLogger{})
		require.NoError(t, err)
		assert.Same(t, mockPub, pub)
	})

	t.Run("requires brokers", func(t *testing.T) {
		_, err := Build(context.Background(), &transporttest.Config{}, watermill.NopLogger{})
		assert.EqualError(t, err, "kafka: brokers are required")
	})

	t.Run("returns error when publisher factory fails", func(t *testing.T) {
		originalPubFactory := PublisherFactory
		defer func() { PublisherFactory = originalPubFactory }()

		PublisherFactory = func(cfg kafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
			return nil, errors.New("no leader")
		}

		_, err := Build(context.Background(), &transporttest.Config{KafkaBrokers: []string{"b"}}, watermill.NopLogger{})
		assert.ErrorContains(t, err, "no leader")
	})
}

func TestPartitionKey(t *testing.T) {
	msg := message.NewMessage("evt-1", nil)
	key, err := PartitionKey("catalog.registrations", msg)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", key)

	msg.Metadata.Set(transport.MetadataRecordKey, "models/arima")
	key, err = PartitionKey("catalog.registrations", msg)
	require.NoError(t, err)
	assert.Equal(t, "models/arima", key)
}
