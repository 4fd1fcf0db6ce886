package cloudevents

import (
	"strings"

	"github.com/drblury/catalogflow/internal/runtime/metadata"
)

// Catalog extension keys. CloudEvents extension names are restricted to
// lowercase alphanumerics.
const (
	// ExtEndpoint is the catalog endpoint the record was posted to.
	ExtEndpoint = "catalogendpoint"

	// ExtOutcome is one of registered, rejected or failed.
	ExtOutcome = "catalogoutcome"

	// ExtStatusCode is the HTTP status the catalog answered with, 0 on
	// transport failure.
	ExtStatusCode = "catalogstatus"

	// ExtTraceParent carries the W3C traceparent of the registration span.
	ExtTraceParent = "traceparent"
)

// BinaryHeaderPrefix prefixes attributes in binary content mode.
const BinaryHeaderPrefix = "ce_"

// GetEndpoint returns the catalog endpoint of a registration event.
func GetEndpoint(evt Event) string {
	return evt.GetExtensionString(ExtEndpoint)
}

// GetOutcome returns the registration outcome.
func GetOutcome(evt Event) string {
	return evt.GetExtensionString(ExtOutcome)
}

// GetStatusCode returns the HTTP status code recorded on the event.
func GetStatusCode(evt Event) int {
	return evt.GetExtensionInt(ExtStatusCode)
}

// GetTraceParent returns the propagated traceparent, if any.
func GetTraceParent(evt Event) string {
	return evt.GetExtensionString(ExtTraceParent)
}

// ToBinaryHeaders renders the event attributes as ce_-prefixed message
// headers for binary content mode. Data is not included.
func ToBinaryHeaders(evt Event) metadata.Metadata {
	md := metadata.New(
		BinaryHeaderPrefix+"specversion", evt.SpecVersion,
		BinaryHeaderPrefix+"type", evt.Type,
		BinaryHeaderPrefix+"source", evt.Source,
		BinaryHeaderPrefix+"id", evt.ID,
	)
	if !evt.Time.IsZero() {
		md[BinaryHeaderPrefix+"time"] = FormatTime(evt.Time)
	}
	if evt.Subject != nil {
		md[BinaryHeaderPrefix+"subject"] = *evt.Subject
	}
	if evt.DataContentType != nil {
		md["content-type"] = *evt.DataContentType
	}
	for k := range evt.Extensions {
		md[BinaryHeaderPrefix+k] = evt.GetExtensionString(k)
	}
	return md
}

// FromBinaryHeaders rebuilds the event attributes from binary-mode headers.
// Extension values come back as strings.
func FromBinaryHeaders(md metadata.Metadata) (Event, error) {
	evt := Event{Extensions: make(map[string]any)}
	for key, value := range md {
		if key == "content-type" {
			v := value
			evt.DataContentType = &v
			continue
		}
		name, ok := strings.CutPrefix(key, BinaryHeaderPrefix)
		if !ok {
			continue
		}
		switch name {
		case "specversion":
			evt.SpecVersion = value
		case "type":
			evt.Type = value
		case "source":
			evt.Source = value
		case "id":
			evt.ID = value
		case "time":
			t, err := ParseTime(value)
			if err != nil {
				return Event{}, err
			}
			evt.Time = t
		case "subject":
			v := value
			evt.Subject = &v
		default:
			evt.Extensions[name] = value
		}
	}
	return evt, evt.Validate()
}
