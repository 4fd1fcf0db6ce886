package jetstream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/catalogflow/transport"
	"github.com/drblury/catalogflow/transport/transporttest"
)

type fakeStream struct {
	mu         sync.Mutex
	addErr     error
	updateErr  error
	publishErr error
	added      []*nats.StreamConfig
	updated    []*nats.StreamConfig
	published  []*nats.Msg
}

func (f *fakeStream) AddStream(cfg *nats.StreamConfig, _ ...nats.JSOpt) (*nats.StreamInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, cfg)
	return &nats.StreamInfo{Config: *cfg}, f.addErr
}

func (f *fakeStream) UpdateStream(cfg *nats.StreamConfig, _ ...nats.JSOpt) (*nats.StreamInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, cfg)
	return &nats.StreamInfo{Config: *cfg}, f.updateErr
}

func (f *fakeStream) PublishMsg(m *nats.Msg, _ ...nats.PubOpt) (*nats.PubAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.published = append(f.published, m)
	return &nats.PubAck{Stream: "CATALOG", Sequence: uint64(len(f.published))}, nil
}

func useFake(t *testing.T, fake *fakeStream) *bool {
	t.Helper()
	closed := false
	original := ConnectFactory
	t.Cleanup(func() { ConnectFactory = original })
	ConnectFactory = func(url string) (StreamContext, func(), error) {
		assert.Equal(t, "nats://localhost:4222", url)
		return fake, func() { closed = true }, nil
	}
	return &closed
}

func TestRegister(t *testing.T) {
	original := transport.DefaultRegistry
	defer func() { transport.DefaultRegistry = original }()
	transport.DefaultRegistry = transport.NewRegistry()
	Register()

	caps := transport.GetCapabilities(TransportName)
	assert.Equal(t, "nats-jetstream", caps.Name)
	assert.True(t, caps.Durable)
	assert.Equal(t, transport.NATSJetStreamCapabilities, Capabilities())
}

func TestConfig_withDefaults(t *testing.T) {
	result := Config{}.withDefaults()
	assert.Equal(t, "CATALOG", result.StreamName)
	assert.Equal(t, DefaultMaxAge, result.MaxAge)
	assert.Equal(t, 1, result.Replicas)

	custom := Config{StreamName: "REG", MaxAge: time.Hour, Replicas: 3}.withDefaults()
	assert.Equal(t, "REG", custom.StreamName)
	assert.Equal(t, time.Hour, custom.MaxAge)
	assert.Equal(t, 3, custom.Replicas)
}

func TestBuild(t *testing.T) {
	t.Run("creates stream and publishes with dedup id", func(t *testing.T) {
		fake := &fakeStream{}
		closed := useFake(t, fake)

		pub, err := Build(context.Background(), &transporttest.Config{NATSURL: "nats://localhost:4222", NATSStreamName: "REG"}, watermill.NopLogger{})
		require.NoError(t, err)

		require.Len(t, fake.added, 1)
		assert.Equal(t, "REG", fake.added[0].Name)
		assert.Equal(t, []string{"REG.>"}, fake.added[0].Subjects)

		msg := message.NewMessage("01ULID", []byte(`{"id":"x"}`))
		msg.Metadata.Set("ce_type", "catalog.registration.v1")
		require.NoError(t, pub.Publish("catalog.registrations", msg))

		require.Len(t, fake.published, 1)
		got := fake.published[0]
		assert.Equal(t, "REG.catalog.registrations", got.Subject)
		assert.Equal(t, "01ULID", got.Header.Get(nats.MsgIdHdr))
		assert.Equal(t, "catalog.registration.v1", got.Header.Get("ce_type"))
		assert.Equal(t, []byte(`{"id":"x"}`), got.Data)

		require.NoError(t, pub.Close())
		require.NoError(t, pub.Close())
		assert.True(t, *closed)
		assert.Error(t, pub.Publish("t", msg))
	})

	t.Run("requires url", func(t *testing.T) {
		_, err := Build(context.Background(), &transporttest.Config{}, watermill.NopLogger{})
		assert.EqualError(t, err, "nats: URL is required")
	})

	t.Run("falls back to update when stream exists", func(t *testing.T) {
		fake := &fakeStream{addErr: nats.ErrStreamNameAlreadyInUse}
		useFake(t, fake)

		_, err := New(Config{URL: "nats://localhost:4222"}, nil)
		require.NoError(t, err)
		assert.Len(t, fake.updated, 1)
	})

	t.Run("closes connection when stream cannot be ensured", func(t *testing.T) {
		fake := &fakeStream{addErr: errors.New("add"), updateErr: errors.New("update")}
		closed := useFake(t, fake)

		_, err := New(Config{URL: "nats://localhost:4222"}, nil)
		assert.ErrorContains(t, err, "failed to ensure stream")
		assert.True(t, *closed)
	})

	t.Run("connect error", func(t *testing.T) {
		original := ConnectFactory
		defer func() { ConnectFactory = original }()
		ConnectFactory = func(string) (StreamContext, func(), error) {
			return nil, nil, errors.New("no servers available")
		}

		_, err := New(Config{URL: "nats://nowhere:4222"}, nil)
		assert.ErrorContains(t, err, "no servers available")
	})

	t.Run("publish error is wrapped", func(t *testing.T) {
		fake := &fakeStream{publishErr: errors.New("timeout")}
		useFake(t, fake)

		pub, err := New(Config{URL: "nats://localhost:4222"}, nil)
		require.NoError(t, err)
		err = pub.Publish("t", message.NewMessage("1", nil))
		assert.ErrorContains(t, err, "failed to publish to JetStream: timeout")
		assert.Equal(t, "CATALOG.t", pub.Subject("t"))
	})
}
