// Package metadata holds the string headers attached to registration event
// messages.
package metadata

import "github.com/ThreeDotsLabs/watermill/message"

// Metadata maps header names to values.
type Metadata map[string]string

// New constructs Metadata from alternating key/value pairs. A trailing key
// without a value is ignored.
func New(pairs ...string) Metadata {
	md := make(Metadata, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		md[pairs[i]] = pairs[i+1]
	}
	return md
}

// Clone returns a shallow copy. The result is never nil.
func (m Metadata) Clone() Metadata {
	return m.WithAll(nil)
}

// With returns a copy containing the extra key/value pair.
func (m Metadata) With(key, value string) Metadata {
	return m.WithAll(Metadata{key: value})
}

// WithAll returns a copy with entries merged over m.
func (m Metadata) WithAll(entries Metadata) Metadata {
	cloned := make(Metadata, len(m)+len(entries))
	for k, v := range m {
		cloned[k] = v
	}
	for k, v := range entries {
		cloned[k] = v
	}
	return cloned
}

// ToWatermill copies the headers onto a Watermill metadata map.
func ToWatermill(md Metadata) message.Metadata {
	wm := make(message.Metadata, len(md))
	for k, v := range md {
		wm[k] = v
	}
	return wm
}

// FromWatermill copies Watermill message metadata.
func FromWatermill(md message.Metadata) Metadata {
	return Metadata(md).Clone()
}
