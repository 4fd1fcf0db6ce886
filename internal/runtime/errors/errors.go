package errors

import (
	sterrors "errors"
	"fmt"
)

var (
	ErrClientRequired    = sterrors.New("catalogflow: catalog client is required")
	ErrFunctionRequired  = sterrors.New("catalogflow: wrapped function is required")
	ErrConfigRequired    = sterrors.New("catalogflow: configuration is required")
	ErrLoggerRequired    = sterrors.New("catalogflow: logger is required")
	ErrURLRequired       = sterrors.New("catalogflow: catalog url is required")
	ErrUserRequired      = sterrors.New("catalogflow: catalog user is required")
	ErrEndpointRequired  = sterrors.New("catalogflow: endpoint is required")
	ErrRecordRequired    = sterrors.New("catalogflow: record is required")
	ErrPublisherRequired = sterrors.New("catalogflow: event publisher is required")
	ErrTopicRequired     = sterrors.New("catalogflow: event topic is required")
	ErrNotFound          = sterrors.New("catalogflow: record not found")
)

// StatusError reports an unexpected HTTP status returned by the catalog.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("catalogflow: %s %s returned status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("catalogflow: %s %s returned status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// ConfigValidationError wraps the aggregated result of Config.Validate.
type ConfigValidationError struct {
	Err error
}

func (e ConfigValidationError) Error() string {
	return "catalogflow: invalid configuration: " + e.Err.Error()
}

func (e ConfigValidationError) Unwrap() error {
	return e.Err
}
