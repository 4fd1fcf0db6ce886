package http

import (
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	watermillhttp "github.com/ThreeDotsLabs/watermill-http/v2/pkg/http"
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
	assert.Equal(t, "http", caps.Name)
	assert.False(t, caps.Durable)
	assert.Equal(t, transport.HTTPCapabilities, Capabilities())
}

func TestBuild(t *testing.T) {
	t.Run("builds request against webhook url", func(t *testing.T) {
		originalPubFactory := PublisherFactory
		defer func() { PublisherFactory = originalPubFactory }()

		mockPub := &transporttest.Publisher{}
		PublisherFactory = func(config watermillhttp.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
			msg := message.NewMessage("1", []byte("{}"))
			msg.Metadata.Set(transport.MetadataRecordKey, "models/arima")
			msg.Metadata.Set("content-type", "application/cloudevents+json")

			req, err := config.MarshalMessageFunc("catalog.registrations", msg)
			require.NoError(t, err)
			assert.Equal(t, nethttp.MethodPost, req.Method)
			assert.Equal(t, "http://hooks.local/events/catalog.registrations", req.URL.String())
			assert.Equal(t, "models/arima", req.Header.Get(HeaderRecord))
			assert.Equal(t, "application/cloudevents+json", req.Header.Get("Content-Type"))
			return mockPub, nil
		}

		pub, err := Build(context.Background(), &transporttest.Config{HTTPWebhookURL: "http://hooks.local/events/"}, watermill.NopLogger{})
		require.NoError(t, err)
		assert.Same(t, mockPub, pub)
	})

	t.Run("requires webhook url", func(t *testing.T) {
		_, err := Build(context.Background(), &transporttest.Config{}, watermill.NopLogger{})
		assert.EqualError(t, err, "http: webhook URL is required")
	})

	t.Run("returns error when publisher factory fails", func(t *testing.T) {
		originalPubFactory := PublisherFactory
		defer func() { PublisherFactory = originalPubFactory }()

		PublisherFactory = func(config watermillhttp.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
			return nil, errors.New("publisher error")
		}

		_, err := Build(context.Background(), &transporttest.Config{HTTPWebhookURL: "http://x/"}, watermill.NopLogger{})
		assert.ErrorContains(t, err, "publisher error")
	})
}

func TestPublishDeliversPayload(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- r.URL.Path + " " + r.Header.Get(HeaderRecord) + " " + string(body)
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	pub, err := Build(context.Background(), &transporttest.Config{HTTPWebhookURL: server.URL + "/hooks/"}, watermill.NopLogger{})
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.Publish("catalog.registrations", message.NewMessage("1", []byte(`{"id":"load_prices"}`))))
	assert.Equal(t, `/hooks/catalog.registrations 1 {"id":"load_prices"}`, <-received)
}
