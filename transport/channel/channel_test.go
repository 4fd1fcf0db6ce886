package channel

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
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

	assert.True(t, transport.DefaultRegistry.Has(TransportName))
	caps := transport.GetCapabilities(TransportName)
	assert.Equal(t, "channel", caps.Name)
	assert.True(t, caps.SupportsOrdering)
	assert.False(t, caps.Durable)
}

func TestCapabilities(t *testing.T) {
	assert.Equal(t, transport.ChannelCapabilities, Capabilities())
}

func TestBuild(t *testing.T) {
	t.Run("default factory delivers to subscribers", func(t *testing.T) {
		pub, err := Build(context.Background(), &transporttest.Config{Sink: TransportName}, watermill.NopLogger{})
		require.NoError(t, err)
		defer pub.Close()

		sub, ok := Subscriber(pub)
		require.True(t, ok)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		msgs, err := sub.Subscribe(ctx, "catalog.registrations")
		require.NoError(t, err)

		require.NoError(t, pub.Publish("catalog.registrations", message.NewMessage("1", []byte("{}"))))

		select {
		case msg := <-msgs:
			assert.Equal(t, "1", msg.UUID)
			msg.Ack()
		case <-ctx.Done():
			t.Fatal("timed out waiting for event")
		}
	})

	t.Run("uses custom factory", func(t *testing.T) {
		originalFactory := Factory
		defer func() { Factory = originalFactory }()

		mockPub := &transporttest.Publisher{}
		Factory = func(cfg gochannel.Config, logger watermill.LoggerAdapter) message.Publisher {
			assert.Equal(t, int64(BufferSize), cfg.OutputChannelBuffer)
			return mockPub
		}

		pub, err := Build(context.Background(), &transporttest.Config{}, watermill.NopLogger{})
		require.NoError(t, err)
		assert.Same(t, mockPub, pub)

		_, ok := Subscriber(pub)
		assert.False(t, ok)
	})
}
