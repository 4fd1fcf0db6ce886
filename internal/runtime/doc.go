/*
Package runtime provides the catalog client behind catalogflow.

# Architecture Overview

A Client posts catalog records as JSON to {URL}/{endpoint} with the configured
user header. Registration is best-effort: every outcome is logged and returned
as a Result, and no registration failure is ever surfaced as an error.

# Package Structure

## Client (client.go)

The Client struct wires together:
  - the HTTP Sender (internal/runtime/transport)
  - registration hooks for logging, stats and metrics
  - an optional OpenTelemetry tracer
  - an optional event sink receiving one CloudEvent per registration

Register, Fetch and List are its operations. Fetch and List are explicit
reads and therefore do return errors.

## Wrappers (wrappers.go)

Wrapper[In, Out] wraps a func(context.Context, In) (Out, error). DataSource,
DataSet, Model, ETL and MarketAsset register before calling the function;
Lineage registers after the function returned without error. Results and
errors of the wrapped function pass through unchanged.

## Hooks (hooks.go)

RegistrationHooks provides OnAttempt, OnRegistered, OnRejected and OnFailed
callbacks. LoggingHooks maps the outcomes onto Info, Warn and Error and is
always installed. Hooks compose with Merge.

## Observability (metrics.go, stats.go)

RegistrationMetrics exports Prometheus counters and a latency histogram.
RegistrationStats keeps per-endpoint counters, latency percentiles and an
error breakdown, exposed through Client.Stats.

## Events (events.go)

Registration events use the CloudEvents type catalog.registration.v1. JSON
events are sent in structured mode; proto events carry a
google.protobuf.Struct in binary mode with ce_ headers.

# Subpackages

  - cloudevents: CloudEvents v1.0 envelope
  - config: client configuration and validation
  - errors: sentinel errors and StatusError
  - ids: ULID and lineage id generation
  - inference: metadata inference from source text
  - jsoncodec: JSON encoding
  - logging: the ServiceLogger interface and adapters
  - metadata: event message headers
  - records: catalog payload types
  - transport: HTTP sender and event sink factory
*/
package runtime
