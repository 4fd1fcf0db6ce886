// Package http provides a webhook event sink. Each event is POSTed to the
// configured webhook URL with the topic appended.
package http

import (
	"context"
	"errors"
	nethttp "net/http"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-http/v2/pkg/http"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/catalogflow/transport"
)

// TransportName is the name used to register this sink.
const TransportName = "http"

// HeaderRecord carries the "endpoint/recordID" the event describes.
const HeaderRecord = "X-Catalog-Record"

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(config http.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return http.NewPublisher(config, logger)
}

func init() {
	Register()
}

// Register registers the webhook sink with the default registry.
func Register() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.HTTPCapabilities)
}

// Build creates a new webhook publisher.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	webhookURL := cfg.GetHTTPWebhookURL()
	if webhookURL == "" {
		return nil, errors.New("http: webhook URL is required")
	}

	return PublisherFactory(
		http.PublisherConfig{
			MarshalMessageFunc: func(topic string, msg *message.Message) (*nethttp.Request, error) {
				return marshalEvent(webhookURL+topic, msg)
			},
		},
		logger,
	)
}

// marshalEvent builds the webhook request. Receivers can route on the record
// header and the event content type without parsing the body.
func marshalEvent(url string, msg *message.Message) (*nethttp.Request, error) {
	req, err := http.DefaultMarshalMessageFunc(url, msg)
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderRecord, transport.RecordKey(msg))
	if contentType := msg.Metadata.Get("content-type"); contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// Capabilities returns the capabilities of this sink.
func Capabilities() transport.Capabilities {
	return transport.HTTPCapabilities
}
