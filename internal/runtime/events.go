package runtime

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	ce "github.com/drblury/catalogflow/internal/runtime/cloudevents"
	configpkg "github.com/drblury/catalogflow/internal/runtime/config"
	errspkg "github.com/drblury/catalogflow/internal/runtime/errors"
	"github.com/drblury/catalogflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/catalogflow/internal/runtime/logging"
	metadatapkg "github.com/drblury/catalogflow/internal/runtime/metadata"
	recordspkg "github.com/drblury/catalogflow/internal/runtime/records"
	sinks "github.com/drblury/catalogflow/transport"
)

// RegistrationEventType is the CloudEvents type of registration events.
const RegistrationEventType = "catalog.registration.v1"

// Content types of registration event payloads.
const (
	ContentTypeCloudEventsJSON = "application/cloudevents+json"
	ContentTypeJSON            = "application/json"
	ContentTypeProtobuf        = "application/protobuf"
)

// RegistrationEvent is the data of a registration CloudEvent.
type RegistrationEvent struct {
	Endpoint   string  `json:"endpoint"`
	RecordID   string  `json:"recordId"`
	Outcome    Outcome `json:"outcome"`
	StatusCode int     `json:"statusCode"`
	// Record is the posted record. Decoded events carry a map[string]any.
	Record any `json:"record,omitempty"`
}

// NewRegistrationEvent builds the CloudEvent describing res.
func NewRegistrationEvent(source string, res Result, record recordspkg.Record) ce.Event {
	evt := ce.New(RegistrationEventType, source, RegistrationEvent{
		Endpoint:   res.Endpoint,
		RecordID:   res.RecordID,
		Outcome:    res.Outcome,
		StatusCode: res.StatusCode,
		Record:     record,
	})
	return evt.
		WithSubject(res.RecordID).
		WithExtension(ce.ExtEndpoint, res.Endpoint).
		WithExtension(ce.ExtOutcome, string(res.Outcome)).
		WithExtension(ce.ExtStatusCode, res.StatusCode)
}

// EncodeEvent converts evt into a Watermill message. JSON uses the structured
// content mode; proto carries a google.protobuf.Struct in binary content mode
// with the attributes as ce_ headers.
func EncodeEvent(evt ce.Event, encoding configpkg.EventEncoding) (*message.Message, error) {
	switch encoding {
	case "", configpkg.EventEncodingJSON:
		payload, err := jsoncodec.Marshal(evt)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event: %w", err)
		}
		msg := message.NewMessage(evt.ID, payload)
		msg.Metadata.Set("content-type", ContentTypeCloudEventsJSON)
		return msg, nil
	case configpkg.EventEncodingProto:
		data, err := toStruct(evt.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to convert event data: %w", err)
		}
		payload, err := proto.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event data: %w", err)
		}
		msg := message.NewMessage(evt.ID, payload)
		msg.Metadata = metadatapkg.ToWatermill(ce.ToBinaryHeaders(evt.WithDataContentType(ContentTypeProtobuf)))
		return msg, nil
	default:
		return nil, fmt.Errorf("unknown event encoding %q", encoding)
	}
}

// DecodeEvent reverses EncodeEvent. It detects the content mode from the
// message headers.
func DecodeEvent(msg *message.Message) (ce.Event, RegistrationEvent, error) {
	if msg == nil {
		return ce.Event{}, RegistrationEvent{}, fmt.Errorf("message is nil")
	}

	if msg.Metadata.Get(ce.BinaryHeaderPrefix+"specversion") == "" {
		var evt ce.Event
		if err := jsoncodec.Unmarshal(msg.Payload, &evt); err != nil {
			return ce.Event{}, RegistrationEvent{}, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		if err := evt.Validate(); err != nil {
			return ce.Event{}, RegistrationEvent{}, err
		}
		data, err := remarshal(evt.Data)
		return evt, data, err
	}

	evt, err := ce.FromBinaryHeaders(metadatapkg.FromWatermill(msg.Metadata))
	if err != nil {
		return ce.Event{}, RegistrationEvent{}, err
	}
	var raw any
	if evt.DataContentType != nil && *evt.DataContentType == ContentTypeProtobuf {
		var s structpb.Struct
		if err := proto.Unmarshal(msg.Payload, &s); err != nil {
			return ce.Event{}, RegistrationEvent{}, fmt.Errorf("failed to unmarshal event data: %w", err)
		}
		raw = s.AsMap()
	} else if err := jsoncodec.Unmarshal(msg.Payload, &raw); err != nil {
		return ce.Event{}, RegistrationEvent{}, fmt.Errorf("failed to unmarshal event data: %w", err)
	}
	evt.Data = raw
	data, err := remarshal(raw)
	return evt, data, err
}

func toStruct(v any) (*structpb.Struct, error) {
	var m map[string]any
	if err := jsoncodec.Convert(v, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func remarshal(v any) (RegistrationEvent, error) {
	var out RegistrationEvent
	if v == nil {
		return out, nil
	}
	if err := jsoncodec.Convert(v, &out); err != nil {
		return out, fmt.Errorf("invalid registration event data: %w", err)
	}
	return out, nil
}

// eventEmitter publishes registration events onto a sink.
type eventEmitter struct {
	publisher    message.Publisher
	capabilities sinks.Capabilities
	topic        string
	source       string
	encoding     configpkg.EventEncoding
	owned        bool
}

func (e *eventEmitter) emit(ctx context.Context, res Result, record recordspkg.Record, traceParent string) error {
	if e.publisher == nil {
		return errspkg.ErrPublisherRequired
	}
	if e.topic == "" {
		return errspkg.ErrTopicRequired
	}

	evt := NewRegistrationEvent(e.source, res, record)
	if traceParent != "" {
		evt = evt.WithExtension(ce.ExtTraceParent, traceParent)
	}

	if e.encoding == configpkg.EventEncodingProto && !e.capabilities.SupportsHeaders {
		return fmt.Errorf("sink %q does not carry headers required by proto events", e.capabilities.Name)
	}

	msg, err := EncodeEvent(evt, e.encoding)
	if err != nil {
		return err
	}
	if !e.capabilities.Accepts(len(msg.Payload)) {
		return fmt.Errorf("event of %d bytes exceeds the %d byte limit of sink %q",
			len(msg.Payload), e.capabilities.MaxMessageSize, e.capabilities.Name)
	}

	msg.Metadata.Set(sinks.MetadataRecordKey, res.Endpoint+"/"+res.RecordID)
	if ctx != nil {
		msg.SetContext(ctx)
	}
	return e.publisher.Publish(e.topic, msg)
}

func (e *eventEmitter) close(logger loggingpkg.ServiceLogger) error {
	if e == nil || !e.owned {
		return nil
	}
	if err := e.publisher.Close(); err != nil {
		logger.Error("Failed to close event sink", err, loggingpkg.LogFields{"sink": e.capabilities.Name})
		return err
	}
	return nil
}
