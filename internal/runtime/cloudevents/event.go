// Package cloudevents provides the CloudEvents v1.0 envelope used for
// catalog registration events.
package cloudevents

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	idspkg "github.com/drblury/catalogflow/internal/runtime/ids"
	"github.com/drblury/catalogflow/internal/runtime/jsoncodec"
)

// SpecVersion is the CloudEvents specification version implemented.
const SpecVersion = "1.0"

// Event represents a CloudEvents v1.0 event.
// See https://github.com/cloudevents/spec/blob/v1.0/spec.md for details.
type Event struct {
	// SpecVersion MUST be "1.0".
	SpecVersion string `json:"specversion"`

	// Type describes the occurrence, for example catalog.registration.v1.
	Type string `json:"type"`

	// Source identifies the producer.
	Source string `json:"source"`

	// ID uniquely identifies the event. New generates a ULID.
	ID string `json:"id"`

	Time time.Time `json:"time,omitempty"`

	DataContentType *string `json:"datacontenttype,omitempty"`

	// Subject is the catalog record id the event is about.
	Subject *string `json:"subject,omitempty"`

	Data any `json:"data,omitempty"`

	// Extensions are flattened into the top-level JSON object.
	Extensions map[string]any `json:"extensions,omitempty"`
}

// New creates a new CloudEvent with required fields populated.
func New(eventType, source string, data any) Event {
	return Event{
		SpecVersion: SpecVersion,
		Type:        eventType,
		Source:      source,
		ID:          idspkg.CreateULID(),
		Time:        time.Now().UTC(),
		Data:        data,
		Extensions:  make(map[string]any),
	}
}

// NewWithID creates a new CloudEvent with a specific ID.
func NewWithID(id, eventType, source string, data any) Event {
	evt := New(eventType, source, data)
	evt.ID = id
	return evt
}

// WithSubject sets the subject field and returns the event.
func (e Event) WithSubject(subject string) Event {
	e.Subject = &subject
	return e
}

// WithDataContentType sets the data content type and returns the event.
func (e Event) WithDataContentType(contentType string) Event {
	e.DataContentType = &contentType
	return e
}

// WithExtension sets an extension attribute and returns the event. The
// extension map is copied so events derived from one another never share it.
func (e Event) WithExtension(key string, value any) Event {
	ext := make(map[string]any, len(e.Extensions)+1)
	for k, v := range e.Extensions {
		ext[k] = v
	}
	ext[key] = value
	e.Extensions = ext
	return e
}

// GetExtension retrieves an extension value by key.
func (e Event) GetExtension(key string) any {
	if e.Extensions == nil {
		return nil
	}
	return e.Extensions[key]
}

// GetExtensionString retrieves an extension value as a string.
func (e Event) GetExtensionString(key string) string {
	v := e.GetExtension(key)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// GetExtensionInt retrieves an extension value as an int. JSON numbers decode
// as float64 and binary headers as strings, so both are accepted.
func (e Event) GetExtensionInt(key string) int {
	switch n := e.GetExtension(key).(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		v, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return v
	default:
		return 0
	}
}

// Validate reports every missing or malformed required attribute at once.
func (e Event) Validate() error {
	var errs []error
	switch e.SpecVersion {
	case SpecVersion:
	case "":
		errs = append(errs, errors.New("specversion is required"))
	default:
		errs = append(errs, fmt.Errorf("specversion must be %q, got %q", SpecVersion, e.SpecVersion))
	}
	for attr, value := range map[string]string{"type": e.Type, "source": e.Source, "id": e.ID} {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", attr))
		}
	}
	return errors.Join(errs...)
}

var knownAttrs = map[string]bool{
	"specversion":     true,
	"type":            true,
	"source":          true,
	"id":              true,
	"time":            true,
	"datacontenttype": true,
	"subject":         true,
	"data":            true,
}

// MarshalJSON implements json.Marshaler for the structured JSON format.
func (e Event) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(knownAttrs)+len(e.Extensions))
	for k, v := range e.Extensions {
		if knownAttrs[k] {
			continue
		}
		m[k] = v
	}

	m["specversion"] = e.SpecVersion
	m["type"] = e.Type
	m["source"] = e.Source
	m["id"] = e.ID
	if !e.Time.IsZero() {
		m["time"] = FormatTime(e.Time)
	}
	if e.DataContentType != nil {
		m["datacontenttype"] = *e.DataContentType
	}
	if e.Subject != nil {
		m["subject"] = *e.Subject
	}
	if e.Data != nil {
		m["data"] = e.Data
	}

	return jsoncodec.Marshal(m)
}

// UnmarshalJSON implements json.Unmarshaler for the structured JSON format.
func (e *Event) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := jsoncodec.Unmarshal(data, &m); err != nil {
		return err
	}

	var out Event
	var err error
	if out.SpecVersion, err = stringAttr(m, "specversion"); err != nil {
		return err
	}
	if out.Type, err = stringAttr(m, "type"); err != nil {
		return err
	}
	if out.Source, err = stringAttr(m, "source"); err != nil {
		return err
	}
	if out.ID, err = stringAttr(m, "id"); err != nil {
		return err
	}
	if raw, ok := m["time"]; ok {
		s, _ := raw.(string)
		t, err := ParseTime(s)
		if err != nil {
			return fmt.Errorf("invalid time format: %w", err)
		}
		out.Time = t
	}
	if _, ok := m["datacontenttype"]; ok {
		v, err := stringAttr(m, "datacontenttype")
		if err != nil {
			return err
		}
		out.DataContentType = &v
	}
	if _, ok := m["subject"]; ok {
		v, err := stringAttr(m, "subject")
		if err != nil {
			return err
		}
		out.Subject = &v
	}
	out.Data = m["data"]

	out.Extensions = make(map[string]any)
	for k, v := range m {
		if !knownAttrs[k] {
			out.Extensions[k] = v
		}
	}

	*e = out
	return nil
}

func stringAttr(m map[string]any, key string) (string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("invalid %s: expected string, got %T", key, raw)
	}
	return s, nil
}
