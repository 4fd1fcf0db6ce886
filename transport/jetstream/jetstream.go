// Package jetstream provides a NATS JetStream event sink. Events are stored in
// a stream so consumers that attach later can replay registration history.
package jetstream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"

	"github.com/drblury/catalogflow/transport"
)

// TransportName is the name used to register this sink.
const TransportName = "nats-jetstream"

const (
	// DefaultStreamName is used when the config names no stream.
	DefaultStreamName = "CATALOG"

	// DefaultMaxAge bounds how long registration events are retained.
	DefaultMaxAge = 7 * 24 * time.Hour
)

// StreamContext is the subset of nats.JetStreamContext used by the sink.
type StreamContext interface {
	AddStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	UpdateStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	PublishMsg(m *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// ConnectFactory allows overriding the NATS connection for testing. The
// returned func closes the connection.
var ConnectFactory = func(url string) (StreamContext, func(), error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return js, nc.Close, nil
}

func init() {
	Register()
}

// Register registers the JetStream sink with the default registry.
func Register() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.NATSJetStreamCapabilities)
}

// Build creates a JetStream publisher and makes sure its stream exists.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	if cfg.GetNATSURL() == "" {
		return nil, errors.New("nats: URL is required")
	}
	return New(Config{
		URL:        cfg.GetNATSURL(),
		StreamName: cfg.GetNATSStreamName(),
	}, logger)
}

// Capabilities returns the capabilities of this sink.
func Capabilities() transport.Capabilities {
	return transport.NATSJetStreamCapabilities
}

// Config holds JetStream-specific configuration.
type Config struct {
	// URL is the NATS server URL.
	URL string

	// StreamName is the JetStream stream. Subjects are "<stream>.<topic>".
	StreamName string

	// MaxAge bounds event retention.
	MaxAge time.Duration

	// Replicas is the number of stream replicas (for clustering).
	Replicas int
}

func (c Config) withDefaults() Config {
	if c.StreamName == "" {
		c.StreamName = DefaultStreamName
	}
	if c.MaxAge <= 0 {
		c.MaxAge = DefaultMaxAge
	}
	if c.Replicas <= 0 {
		c.Replicas = 1
	}
	return c
}

// Publisher publishes watermill messages into a JetStream stream.
type Publisher struct {
	js     StreamContext
	close  func()
	config Config
	logger watermill.LoggerAdapter

	closed   bool
	closedMu sync.RWMutex
}

// New connects to NATS and ensures the stream exists.
func New(cfg Config, logger watermill.LoggerAdapter) (*Publisher, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	js, closeConn, err := ConnectFactory(cfg.URL)
	if err != nil {
		return nil, err
	}

	p := &Publisher{js: js, close: closeConn, config: cfg, logger: logger}
	if err := p.ensureStream(); err != nil {
		if closeConn != nil {
			closeConn()
		}
		return nil, fmt.Errorf("failed to ensure stream: %w", err)
	}
	return p, nil
}

func (p *Publisher) ensureStream() error {
	streamCfg := &nats.StreamConfig{
		Name:      p.config.StreamName,
		Subjects:  []string{p.config.StreamName + ".>"},
		MaxAge:    p.config.MaxAge,
		Replicas:  p.config.Replicas,
		Retention: nats.LimitsPolicy,
	}

	if _, err := p.js.AddStream(streamCfg); err != nil {
		if _, err := p.js.UpdateStream(streamCfg); err != nil {
			return err
		}
		p.logger.Info("JetStream stream updated", watermill.LogFields{
			"stream": p.config.StreamName,
		})
	}
	return nil
}

// Publish stores messages on "<stream>.<topic>". The message UUID is used as
// the JetStream message id so duplicate publishes are dropped by the server.
func (p *Publisher) Publish(topic string, messages ...*message.Message) error {
	p.closedMu.RLock()
	defer p.closedMu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	subject := p.Subject(topic)
	for _, msg := range messages {
		headers := nats.Header{}
		for k, v := range msg.Metadata {
			headers.Set(k, v)
		}
		headers.Set(nats.MsgIdHdr, msg.UUID)

		if _, err := p.js.PublishMsg(&nats.Msg{
			Subject: subject,
			Data:    msg.Payload,
			Header:  headers,
		}); err != nil {
			return fmt.Errorf("failed to publish to JetStream: %w", err)
		}
	}
	return nil
}

// Subject returns the NATS subject a topic maps to.
func (p *Publisher) Subject(topic string) string {
	return p.config.StreamName + "." + topic
}

// Close closes the NATS connection. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.close != nil {
		p.close()
	}
	return nil
}
