package runtime

import (
	"net/http"
	"time"
)

// Outcome classifies a registration attempt.
type Outcome string

const (
	// OutcomeRegistered means the catalog answered 200 or 201.
	OutcomeRegistered Outcome = "registered"
	// OutcomeRejected means the catalog answered with another status.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means no answer was received.
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped means no registration was attempted, for example a
	// lineage wrapper whose function returned an error.
	OutcomeSkipped Outcome = "skipped"
)

// Result reports what happened to a single registration. It never has to be
// checked: registration failures are logged and never fail the caller.
type Result struct {
	Endpoint   string
	RecordID   string
	Outcome    Outcome
	StatusCode int
	// Body is the response body of a rejected registration.
	Body string
	// Err is the transport or encoding error of a failed registration.
	Err error
	// EventErr is set when the registration event could not be published.
	EventErr error
	Duration time.Duration
}

// OK reports whether the record was accepted.
func (r Result) OK() bool {
	return r.Outcome == OutcomeRegistered
}

func isSuccessStatus(code int) bool {
	return code == http.StatusOK || code == http.StatusCreated
}
