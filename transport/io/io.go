// Package io provides a JSON-lines journal sink. Every event is appended to a
// file as one line; "-" writes to standard output instead.
package io

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/catalogflow/internal/runtime/jsoncodec"
	"github.com/drblury/catalogflow/transport"
)

// TransportName is the name used to register this sink.
const TransportName = "io"

// DefaultFilePath is the journal written when none is configured.
const DefaultFilePath = "registrations.jsonl"

// Stdout selects standard output as the journal.
const Stdout = "-"

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(filePath string, logger watermill.LoggerAdapter) (message.Publisher, error) {
	if filePath == Stdout {
		return NewWriterPublisher(os.Stdout, logger), nil
	}
	return &Publisher{filePath: filePath, logger: logger}, nil
}

func init() {
	Register()
}

// Register registers the journal sink with the default registry.
func Register() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.IOCapabilities)
}

// Build creates a new journal publisher.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	filePath := cfg.GetIOFile()
	if filePath == "" {
		filePath = DefaultFilePath
	}
	return PublisherFactory(filePath, logger)
}

// Capabilities returns the capabilities of this sink.
func Capabilities() transport.Capabilities {
	return transport.IOCapabilities
}

// Entry is one journal line.
type Entry struct {
	UUID     string            `json:"uuid"`
	Metadata map[string]string `json:"metadata"`
	Payload  []byte            `json:"payload"`
	Topic    string            `json:"topic"`
}

// Publisher appends messages to a file. The file is opened per call so the
// journal can be rotated externally.
type Publisher struct {
	filePath string
	writer   io.Writer
	logger   watermill.LoggerAdapter
	mu       sync.Mutex
}

// NewWriterPublisher journals to w instead of a file.
func NewWriterPublisher(w io.Writer, logger watermill.LoggerAdapter) *Publisher {
	return &Publisher{writer: w, logger: logger}
}

// Publish writes messages to the journal.
func (p *Publisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	w := p.writer
	if w == nil {
		f, err := os.OpenFile(p.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	for _, msg := range messages {
		b, err := jsoncodec.Marshal(Entry{
			UUID:     msg.UUID,
			Metadata: msg.Metadata,
			Payload:  msg.Payload,
			Topic:    topic,
		})
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the publisher.
func (p *Publisher) Close() error {
	return nil
}

// ReadJournal returns the entries of a journal in write order. An empty topic
// returns every entry. A missing file yields no entries.
func ReadJournal(filePath, topic string) ([]Entry, error) {
	f, err := os.Open(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeJournal(f, topic)
}

// DecodeJournal reads journal entries from r.
func DecodeJournal(r io.Reader, topic string) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var e Entry
		if err := jsoncodec.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("journal line %d: %w", line, err)
		}
		if topic == "" || e.Topic == topic {
			entries = append(entries, e)
		}
	}
	return entries, scanner.Err()
}
