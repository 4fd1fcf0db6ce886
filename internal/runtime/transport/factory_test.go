package transport

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/catalogflow/internal/runtime/config"
	"github.com/drblury/catalogflow/internal/runtime/logging"
	sinks "github.com/drblury/catalogflow/transport"
	"github.com/drblury/catalogflow/transport/transporttest"
)

func testLogger() watermill.LoggerAdapter {
	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return logging.NewWatermillAdapter(logging.NewSlogServiceLogger(slogger))
}

func TestDefaultFactory_BuildChannel(t *testing.T) {
	cfg := config.Default()
	cfg.EventSinkSystem = "channel"

	sink, err := DefaultFactory().Build(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Publisher.Close() })

	assert.NotNil(t, sink.Publisher)
	assert.Equal(t, "channel", sink.Capabilities.Name)
	assert.True(t, sink.Capabilities.SupportsHeaders)
}

func TestDefaultFactory_BuildIsCaseInsensitive(t *testing.T) {
	cfg := config.Default()
	cfg.EventSinkSystem = "Channel"

	sink, err := DefaultFactory().Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Publisher.Close() })
	assert.Equal(t, "channel", sink.Capabilities.Name)
}

func TestDefaultFactory_BuildErrors(t *testing.T) {
	_, err := DefaultFactory().Build(context.Background(), nil, testLogger())
	assert.ErrorContains(t, err, "config is required")

	_, err = DefaultFactory().Build(context.Background(), config.Default(), testLogger())
	assert.ErrorContains(t, err, "no event sink configured")

	cfg := config.Default()
	cfg.EventSinkSystem = "invalid-sink"
	_, err = DefaultFactory().Build(context.Background(), cfg, testLogger())
	assert.ErrorContains(t, err, "unknown event sink")
}

func TestRegistryFactory_UsesCustomRegistry(t *testing.T) {
	pub := &transporttest.Publisher{}
	registry := sinks.NewRegistry()
	registry.Register("memory", func(context.Context, sinks.Config, watermill.LoggerAdapter) (message.Publisher, error) {
		return pub, nil
	})

	cfg := config.Default()
	cfg.EventSinkSystem = "memory"

	sink, err := RegistryFactory(registry).Build(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.Same(t, pub, sink.Publisher)
	assert.Equal(t, sinks.Capabilities{Name: "memory"}, sink.Capabilities)
}
