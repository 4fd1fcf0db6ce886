package cloudevents

import (
	"fmt"
	"time"
)

// TimeFormat is the layout of the time attribute. Events are stamped in UTC
// so journals written on different hosts sort lexically.
const TimeFormat = time.RFC3339Nano

// ParseTime parses a time attribute. Fractional seconds are optional.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q is not RFC3339: %w", s, err)
	}
	return t, nil
}

// FormatTime formats t for the time attribute. The zero time formats as "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}
