package runtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	configpkg "github.com/drblury/catalogflow/internal/runtime/config"
	errspkg "github.com/drblury/catalogflow/internal/runtime/errors"
	idspkg "github.com/drblury/catalogflow/internal/runtime/ids"
	inferencepkg "github.com/drblury/catalogflow/internal/runtime/inference"
	"github.com/drblury/catalogflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/catalogflow/internal/runtime/logging"
	recordspkg "github.com/drblury/catalogflow/internal/runtime/records"
	transportpkg "github.com/drblury/catalogflow/internal/runtime/transport"
	sinks "github.com/drblury/catalogflow/transport"
)

// TracerName is the instrumentation name of registration spans.
const TracerName = "github.com/drblury/catalogflow"

// Clock returns the current time. Lineage ids are derived from it.
type Clock func() time.Time

// ClientDependencies holds the optional collaborators that the Client can use.
// Leave fields nil to get the defaults.
type ClientDependencies struct {
	// Sender performs the HTTP round trips. Defaults to a net/http sender
	// bounded by Config.Timeout.
	Sender transportpkg.Sender

	// EventPublisher receives registration events instead of the sink named
	// by Config.EventSinkSystem. The client does not close it.
	EventPublisher message.Publisher

	// SinkFactory builds the configured event sink.
	SinkFactory transportpkg.Factory

	// Hooks run after the built-in logging, stats and metrics hooks.
	Hooks RegistrationHooks

	// Metrics overrides the collectors registered when MetricsEnabled is set.
	Metrics *RegistrationMetrics

	// ErrorClassifier categorises failures in Stats. Defaults to ClassifyError.
	ErrorClassifier ErrorClassifier

	Tracer trace.Tracer
	Clock  Clock

	// LineageIDs overrides Config.LineageIDStrategy.
	LineageIDs idspkg.LineageGenerator
}

// Client registers catalog records. It is safe for concurrent use; its
// configuration is fixed at construction.
type Client struct {
	conf   *configpkg.Config
	logger loggingpkg.ServiceLogger

	sender     transportpkg.Sender
	hooks      RegistrationHooks
	metrics    *RegistrationMetrics
	stats      *RegistrationStats
	tracer     trace.Tracer
	clock      Clock
	lineageIDs idspkg.LineageGenerator
	events     *eventEmitter
}

// NewClient validates conf and constructs a Client. The configuration is
// copied, so later changes to conf have no effect.
func NewClient(conf *configpkg.Config, log loggingpkg.ServiceLogger, deps ClientDependencies) (*Client, error) {
	if conf == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if log == nil {
		return nil, errspkg.ErrLoggerRequired
	}

	conf = conf.WithDefaults()
	if err := conf.Validate(); err != nil {
		return nil, errspkg.ConfigValidationError{Err: err}
	}

	log.Debug("Creating catalog client", loggingpkg.LogFields{
		"url":        conf.URL,
		"user":       conf.User,
		"event_sink": conf.EventSinkSystem,
		"config":     conf,
	})

	c := &Client{
		conf:       conf,
		logger:     log,
		sender:     deps.Sender,
		tracer:     deps.Tracer,
		clock:      deps.Clock,
		lineageIDs: deps.LineageIDs,
		hooks:      LoggingHooks(log),
		stats:      NewRegistrationStats(deps.ErrorClassifier),
	}
	if c.sender == nil {
		c.sender = transportpkg.NewHTTPSender(conf.Timeout)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(TracerName)
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.lineageIDs == nil {
		c.lineageIDs = lineageGenerator(conf.LineageIDStrategy)
	}

	c.hooks = c.hooks.Merge(c.stats.Hooks())

	c.metrics = deps.Metrics
	if c.metrics == nil && conf.MetricsEnabled {
		c.metrics = NewRegistrationMetrics(nil)
	}
	if c.metrics != nil {
		if err := c.metrics.Register(); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		c.hooks = c.hooks.Merge(c.metrics.Hooks())
	}
	c.hooks = c.hooks.Merge(deps.Hooks)

	events, err := newEventEmitter(conf, log, deps)
	if err != nil {
		return nil, err
	}
	c.events = events

	return c, nil
}

func lineageGenerator(strategy configpkg.LineageIDStrategy) idspkg.LineageGenerator {
	if strategy == configpkg.LineageIDULID {
		return idspkg.ULIDLineageID
	}
	return idspkg.UnixSecondsLineageID
}

func newEventEmitter(conf *configpkg.Config, log loggingpkg.ServiceLogger, deps ClientDependencies) (*eventEmitter, error) {
	emitter := &eventEmitter{
		topic:    conf.EventTopic,
		source:   conf.EventSource,
		encoding: conf.EventEncoding,
	}

	if deps.EventPublisher != nil {
		emitter.publisher = deps.EventPublisher
		emitter.capabilities = sinks.GetCapabilities(strings.ToLower(conf.EventSinkSystem))
		if emitter.capabilities.Name == "" {
			emitter.capabilities = sinks.Capabilities{Name: "custom", SupportsHeaders: true}
		}
		return emitter, nil
	}
	if conf.EventSinkSystem == "" {
		return nil, nil
	}

	factory := deps.SinkFactory
	if factory == nil {
		factory = transportpkg.DefaultFactory()
	}
	sink, err := factory.Build(context.Background(), conf, loggingpkg.NewWatermillAdapter(log))
	if err != nil {
		return nil, fmt.Errorf("build event sink %q: %w", conf.EventSinkSystem, err)
	}
	emitter.publisher = sink.Publisher
	emitter.capabilities = sink.Capabilities
	emitter.owned = true
	return emitter, nil
}

// Close releases the event sink built by NewClient.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.events.close(c.logger)
}

// Config returns a copy of the client configuration.
func (c *Client) Config() configpkg.Config {
	return *c.conf
}

// User returns the user sent with every request.
func (c *Client) User() string {
	return c.conf.User
}

// Logger returns the logger outcomes are reported to.
func (c *Client) Logger() loggingpkg.ServiceLogger {
	return c.logger
}

// Stats returns per-endpoint registration statistics.
func (c *Client) Stats() map[string]EndpointStats {
	return c.stats.Snapshot()
}

// InferMetadata guesses data source metadata from source text.
func (c *Client) InferMetadata(source string) inferencepkg.Metadata {
	return inferencepkg.Infer(source)
}

// NextLineageID returns the id a lineage record created now would get.
func (c *Client) NextLineageID() string {
	return c.lineageIDs(c.clock())
}

// EndpointURL returns the URL records for endpoint are posted to.
func (c *Client) EndpointURL(endpoint string) string {
	return c.conf.URL + "/" + strings.Trim(endpoint, "/")
}

// Register posts record as JSON to the endpoint. It never panics and never
// returns an error: the outcome is logged, passed to hooks and returned for
// callers that want to inspect it.
func (c *Client) Register(ctx context.Context, endpoint string, record recordspkg.Record) (res Result) {
	if c == nil {
		return Result{Endpoint: endpoint, Outcome: OutcomeFailed, Err: errspkg.ErrClientRequired}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res = Result{Endpoint: endpoint}
	regCtx := RegistrationContext{
		Endpoint:  endpoint,
		URL:       c.EndpointURL(endpoint),
		Record:    record,
		Context:   ctx,
		StartedAt: time.Now(),
	}
	if record != nil {
		res.RecordID = record.RecordID()
		regCtx.RecordID = res.RecordID
	}

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeFailed
			res.Err = fmt.Errorf("catalogflow: panic during registration: %v", r)
			res.Duration = time.Since(regCtx.StartedAt)
			regCtx.Duration = res.Duration
			c.logger.Error("Recovered from panic during registration", res.Err, loggingpkg.RecordFields(endpoint, res.RecordID, nil))
			c.hooks.failed(regCtx, res.Err)
		}
	}()

	ctx, span := c.tracer.Start(ctx, "catalog.register",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("catalog.endpoint", endpoint),
			attribute.String("catalog.record_id", res.RecordID),
			attribute.String("http.request.method", http.MethodPost),
		),
	)
	defer span.End()
	regCtx.Context = ctx

	fail := func(err error) Result {
		res.Outcome = OutcomeFailed
		res.Err = err
		res.Duration = time.Since(regCtx.StartedAt)
		regCtx.Duration = res.Duration
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.hooks.failed(regCtx, err)
		return res
	}

	switch {
	case endpoint == "":
		return fail(errspkg.ErrEndpointRequired)
	case record == nil:
		return fail(errspkg.ErrRecordRequired)
	}

	body, err := jsoncodec.Marshal(record)
	if err != nil {
		return fail(fmt.Errorf("encode record: %w", err))
	}

	header := c.header()
	header.Set("Content-Type", "application/json")
	propagation.TraceContext{}.Inject(ctx, propagation.HeaderCarrier(header))

	c.hooks.attempt(regCtx)
	resp, err := c.sender.Send(ctx, transportpkg.Request{
		Method: http.MethodPost,
		URL:    regCtx.URL,
		Header: header,
		Body:   body,
	})
	if err != nil {
		res = fail(err)
		res.EventErr = c.publish(ctx, res, record)
		return res
	}

	res.StatusCode = resp.StatusCode
	res.Duration = time.Since(regCtx.StartedAt)
	regCtx.StatusCode = resp.StatusCode
	regCtx.Duration = res.Duration
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if isSuccessStatus(resp.StatusCode) {
		res.Outcome = OutcomeRegistered
		c.hooks.registered(regCtx)
	} else {
		res.Outcome = OutcomeRejected
		res.Body = string(resp.Body)
		regCtx.Body = res.Body
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		c.hooks.rejected(regCtx)
	}

	res.EventErr = c.publish(ctx, res, record)
	return res
}

// publish mirrors res onto the event sink, if one is configured.
func (c *Client) publish(ctx context.Context, res Result, record recordspkg.Record) error {
	if c.events == nil {
		return nil
	}

	carrier := propagation.MapCarrier{}
	propagation.TraceContext{}.Inject(ctx, carrier)

	err := c.events.emit(ctx, res, record, carrier.Get("traceparent"))
	if c.metrics != nil {
		c.metrics.RecordEvent(c.events.capabilities.Name, err)
	}
	if err != nil {
		c.logger.Warn("Failed to publish registration event", loggingpkg.RecordFields(res.Endpoint, res.RecordID, loggingpkg.LogFields{
			"topic": c.events.topic,
			"error": err.Error(),
		}))
	}
	return err
}

// Fetch reads the record with id from endpoint into out. A missing record
// yields an error wrapping ErrNotFound; other non-200 answers a *StatusError.
func (c *Client) Fetch(ctx context.Context, endpoint, id string, out any) error {
	if c == nil {
		return errspkg.ErrClientRequired
	}
	if endpoint == "" {
		return errspkg.ErrEndpointRequired
	}
	if id == "" {
		return fmt.Errorf("catalogflow: record id is required")
	}

	target := c.EndpointURL(endpoint) + "/" + url.PathEscape(id)
	body, err := c.get(ctx, target)
	if err != nil {
		if se, ok := err.(*errspkg.StatusError); ok && se.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s/%s", errspkg.ErrNotFound, endpoint, id)
		}
		return err
	}
	return decodeInto(body, out)
}

// List reads every record of endpoint into out, typically a pointer to a slice.
func (c *Client) List(ctx context.Context, endpoint string, out any) error {
	if c == nil {
		return errspkg.ErrClientRequired
	}
	if endpoint == "" {
		return errspkg.ErrEndpointRequired
	}

	body, err := c.get(ctx, c.EndpointURL(endpoint))
	if err != nil {
		return err
	}
	return decodeInto(body, out)
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := c.tracer.Start(ctx, "catalog.get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.full", target)),
	)
	defer span.End()

	header := c.header()
	header.Set("Accept", "application/json")
	propagation.TraceContext{}.Inject(ctx, propagation.HeaderCarrier(header))

	resp, err := c.sender.Send(ctx, transportpkg.Request{Method: http.MethodGet, URL: target, Header: header})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		return nil, &errspkg.StatusError{
			Method:     http.MethodGet,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}
	return resp.Body, nil
}

func (c *Client) header() http.Header {
	header := make(http.Header)
	header.Set(c.conf.UserHeader, c.conf.User)
	return header
}

func decodeInto(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := jsoncodec.DecodeBody(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
