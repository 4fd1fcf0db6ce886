// Package catalogflow registers data sources, data sets, models, ETL jobs and
// lineage with a data catalog service. Each wrapper posts a JSON record to
// {url}/{endpoint} with the configured user header before (or, for lineage,
// after) the wrapped function runs, then returns the function's own result.
//
// Registration is best-effort: a refused connection, a timeout or a non-2xx
// answer is logged and reported through hooks and metrics, but never turns
// into an error of the wrapped call.
//
// A minimal setup fills Config (or starts from DefaultConfig), creates a
// Client with NewClient and wraps functions:
//
//	client, _ := catalogflow.NewClient(catalogflow.DefaultConfig(), logger, catalogflow.ClientDependencies{})
//	load := catalogflow.RegisterDataSource(client, loadPrices,
//		catalogflow.WithSourceFile("prices.go", "loadPrices"))
//	prices, err := load.Call(ctx, "AAPL")
//
// # Inference
//
// Data source wrappers infer type, format and path from the source text of
// the wrapped function. Source mentioning http is an API serving JSON,
// source mentioning s3:// is CLOUD storage holding Parquet and anything else
// is a local CSV FILE. The first quoted literal becomes the path.
//
// # Registration events
//
// When Config.EventSinkSystem names a sink (channel, kafka, rabbitmq, nats,
// nats-jetstream, aws, http or io) every registration outcome is also
// published as a CloudEvent of type catalog.registration.v1. Sinks live in
// their own packages under transport/ and register themselves on import.
//
// # Hooks
//
// RegistrationHooks provides OnAttempt, OnRegistered, OnRejected and OnFailed
// callbacks for custom logging, metrics collection and alerting around each
// catalog request.
package catalogflow
