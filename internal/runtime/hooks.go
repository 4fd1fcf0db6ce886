package runtime

import (
	"context"
	"time"

	loggingpkg "github.com/drblury/catalogflow/internal/runtime/logging"
	recordspkg "github.com/drblury/catalogflow/internal/runtime/records"
)

// RegistrationContext provides information about a registration attempt to hooks.
type RegistrationContext struct {
	// Endpoint is the catalog endpoint, for example "data-sources".
	Endpoint string
	// URL is the full URL the record is posted to.
	URL string
	// RecordID is the id of the record being registered.
	RecordID string
	// Record is the record being registered.
	Record recordspkg.Record
	// Context is the context of the registration call.
	Context context.Context
	// StartedAt is when the attempt started.
	StartedAt time.Time
	// Duration is how long the round trip took (not set in OnAttempt).
	Duration time.Duration
	// StatusCode is the HTTP status returned by the catalog, 0 on failure.
	StatusCode int
	// Body is the response body (only set in OnRejected).
	Body string
}

// RegistrationHooks defines callbacks for the registration lifecycle.
// All hooks are optional - nil hooks are simply not called.
type RegistrationHooks struct {
	// OnAttempt is called before the record is sent.
	OnAttempt func(ctx RegistrationContext)

	// OnRegistered is called when the catalog answers 200 or 201.
	OnRegistered func(ctx RegistrationContext)

	// OnRejected is called when the catalog answers with any other status.
	OnRejected func(ctx RegistrationContext)

	// OnFailed is called when no answer was received or the record could not
	// be encoded.
	OnFailed func(ctx RegistrationContext, err error)
}

// Merge combines two RegistrationHooks, creating a new RegistrationHooks that calls both.
// The hooks from 'other' are called after the hooks from 'h'.
func (h RegistrationHooks) Merge(other RegistrationHooks) RegistrationHooks {
	return RegistrationHooks{
		OnAttempt:    chainHooks(h.OnAttempt, other.OnAttempt),
		OnRegistered: chainHooks(h.OnRegistered, other.OnRegistered),
		OnRejected:   chainHooks(h.OnRejected, other.OnRejected),
		OnFailed:     chainFailedHooks(h.OnFailed, other.OnFailed),
	}
}

func chainHooks(a, b func(RegistrationContext)) func(RegistrationContext) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx RegistrationContext) {
		a(ctx)
		b(ctx)
	}
}

func chainFailedHooks(a, b func(RegistrationContext, error)) func(RegistrationContext, error) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx RegistrationContext, err error) {
		a(ctx, err)
		b(ctx, err)
	}
}

func (h RegistrationHooks) attempt(ctx RegistrationContext) {
	if h.OnAttempt != nil {
		h.OnAttempt(ctx)
	}
}

func (h RegistrationHooks) registered(ctx RegistrationContext) {
	if h.OnRegistered != nil {
		h.OnRegistered(ctx)
	}
}

func (h RegistrationHooks) rejected(ctx RegistrationContext) {
	if h.OnRejected != nil {
		h.OnRejected(ctx)
	}
}

func (h RegistrationHooks) failed(ctx RegistrationContext, err error) {
	if h.OnFailed != nil {
		h.OnFailed(ctx, err)
	}
}

// LoggingHooks returns hooks that report registration outcomes: Info on
// success, Warn on rejection and Error on failure. Every Client installs them.
func LoggingHooks(logger loggingpkg.ServiceLogger) RegistrationHooks {
	return RegistrationHooks{
		OnAttempt: func(ctx RegistrationContext) {
			logger.Debug("Registering catalog record", loggingpkg.RecordFields(ctx.Endpoint, ctx.RecordID, loggingpkg.LogFields{
				"url": ctx.URL,
			}))
		},
		OnRegistered: func(ctx RegistrationContext) {
			logger.Info("Registered catalog record", loggingpkg.RecordFields(ctx.Endpoint, ctx.RecordID, loggingpkg.LogFields{
				loggingpkg.FieldStatusCode: ctx.StatusCode,
				loggingpkg.FieldDurationMS: ctx.Duration.Milliseconds(),
			}))
		},
		OnRejected: func(ctx RegistrationContext) {
			logger.Warn("Catalog rejected record", loggingpkg.RecordFields(ctx.Endpoint, ctx.RecordID, loggingpkg.LogFields{
				loggingpkg.FieldStatusCode: ctx.StatusCode,
				"body":                     ctx.Body,
			}))
		},
		OnFailed: func(ctx RegistrationContext, err error) {
			logger.Error("Catalog registration failed", err, loggingpkg.RecordFields(ctx.Endpoint, ctx.RecordID, loggingpkg.LogFields{
				"url":                      ctx.URL,
				loggingpkg.FieldDurationMS: ctx.Duration.Milliseconds(),
			}))
		},
	}
}

// MetricsHooks returns hooks that forward the endpoint and round-trip
// duration of each outcome to the given callbacks.
func MetricsHooks(onRegistered, onRejected, onFailed func(endpoint string, d time.Duration)) RegistrationHooks {
	return RegistrationHooks{
		OnRegistered: func(ctx RegistrationContext) {
			if onRegistered != nil {
				onRegistered(ctx.Endpoint, ctx.Duration)
			}
		},
		OnRejected: func(ctx RegistrationContext) {
			if onRejected != nil {
				onRejected(ctx.Endpoint, ctx.Duration)
			}
		},
		OnFailed: func(ctx RegistrationContext, err error) {
			if onFailed != nil {
				onFailed(ctx.Endpoint, ctx.Duration)
			}
		},
	}
}

// AlertingHooks returns hooks that trigger alerts on registration failures.
func AlertingHooks(alertFunc func(ctx RegistrationContext, err error)) RegistrationHooks {
	return RegistrationHooks{
		OnFailed: alertFunc,
	}
}
