// Package jsoncodec is the JSON codec shared by records, catalog responses
// and registration events.
package jsoncodec

import (
	"errors"
	"io"

	"github.com/bytedance/sonic"
)

// ErrNotJSON is returned when a catalog answers with a body that is not JSON,
// typically an HTML error page from a proxy.
var ErrNotJSON = errors.New("body is not JSON")

// codec keeps encoding/json semantics. Lineage records implement
// json.Marshaler and event payloads are compared byte for byte in tests, so
// HTML escaping and sorted map keys must match the standard library.
var codec = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return codec.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return codec.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error {
	return codec.Unmarshal(data, v)
}

// Decode reads a single JSON value from r into v.
func Decode(r io.Reader, v any) error {
	return codec.NewDecoder(r).Decode(v)
}

// DecodeBody decodes a catalog response body. Empty bodies leave v untouched.
func DecodeBody(body []byte, v any) error {
	if len(body) == 0 {
		return nil
	}
	if !codec.Valid(body) {
		return ErrNotJSON
	}
	return codec.Unmarshal(body, v)
}

// Convert copies src into dst through its JSON form, for example a record
// struct into a map[string]any.
func Convert(src, dst any) error {
	raw, err := codec.Marshal(src)
	if err != nil {
		return err
	}
	return codec.Unmarshal(raw, dst)
}
