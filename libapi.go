package catalogflow

import (
	runtimepkg "github.com/drblury/catalogflow/internal/runtime"
	ce "github.com/drblury/catalogflow/internal/runtime/cloudevents"
	configpkg "github.com/drblury/catalogflow/internal/runtime/config"
	errspkg "github.com/drblury/catalogflow/internal/runtime/errors"
	idspkg "github.com/drblury/catalogflow/internal/runtime/ids"
	inferencepkg "github.com/drblury/catalogflow/internal/runtime/inference"
	jsoncodec "github.com/drblury/catalogflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/catalogflow/internal/runtime/logging"
	metadatapkg "github.com/drblury/catalogflow/internal/runtime/metadata"
	recordspkg "github.com/drblury/catalogflow/internal/runtime/records"
	transportpkg "github.com/drblury/catalogflow/internal/runtime/transport"
	sinks "github.com/drblury/catalogflow/transport"
)

type (
	Config             = configpkg.Config
	ModelIDMode        = configpkg.ModelIDMode
	LineageIDStrategy  = configpkg.LineageIDStrategy
	EventEncoding      = configpkg.EventEncoding
	Client             = runtimepkg.Client
	ClientDependencies = runtimepkg.ClientDependencies
	Clock              = runtimepkg.Clock
	Result             = runtimepkg.Result
	Outcome            = runtimepkg.Outcome

	Wrapper[In, Out any] = runtimepkg.Wrapper[In, Out]
	Func[In, Out any]    = runtimepkg.Func[In, Out]
	Option               = runtimepkg.Option

	// Catalog records
	Record      = recordspkg.Record
	DataSource  = recordspkg.DataSource
	DataSet     = recordspkg.DataSet
	Model       = recordspkg.Model
	ETL         = recordspkg.ETL
	Lineage     = recordspkg.Lineage
	MarketAsset = recordspkg.MarketAsset

	SourceMetadata = inferencepkg.Metadata
	Metadata       = metadatapkg.Metadata

	LogFields                 = loggingpkg.LogFields
	ServiceLogger             = loggingpkg.ServiceLogger
	EntryLogger               = loggingpkg.EntryLogger
	EntryLoggerAdapter[T any] = loggingpkg.EntryLoggerAdapter[T]

	StatusError           = errspkg.StatusError
	ConfigValidationError = errspkg.ConfigValidationError

	// Registration lifecycle hooks
	RegistrationContext = runtimepkg.RegistrationContext
	RegistrationHooks   = runtimepkg.RegistrationHooks

	// Metrics and stats
	RegistrationMetrics = runtimepkg.RegistrationMetrics
	RegistrationStats   = runtimepkg.RegistrationStats
	EndpointStats       = runtimepkg.EndpointStats
	LatencyMetrics      = runtimepkg.LatencyMetrics
	ErrorBreakdown      = runtimepkg.ErrorBreakdown
	ErrorClassifier     = runtimepkg.ErrorClassifier
	ErrorCategory       = runtimepkg.ErrorCategory

	// Registration events
	Event             = ce.Event
	RegistrationEvent = runtimepkg.RegistrationEvent
	LineageGenerator  = idspkg.LineageGenerator

	// Catalog transport
	Sender       = transportpkg.Sender
	Request      = transportpkg.Request
	Response     = transportpkg.Response
	HTTPSender   = transportpkg.HTTPSender
	Sink         = transportpkg.Sink
	SinkFactory  = transportpkg.Factory
	Capabilities = sinks.Capabilities

	// Event sink registry
	SinkBuilder  = sinks.Builder
	SinkConfig   = sinks.Config
	SinkRegistry = sinks.Registry
)

var (
	NewClient      = runtimepkg.NewClient
	ValidateConfig = configpkg.ValidateConfig

	LoggingHooks  = runtimepkg.LoggingHooks
	MetricsHooks  = runtimepkg.MetricsHooks
	AlertingHooks = runtimepkg.AlertingHooks

	NewRegistrationMetrics = runtimepkg.NewRegistrationMetrics
	NewRegistrationStats   = runtimepkg.NewRegistrationStats
	ClassifyError          = runtimepkg.ClassifyError

	InferMetadata   = inferencepkg.Infer
	DefaultMetadata = inferencepkg.Default
	FuncSource      = inferencepkg.FuncSource
	FuncName        = runtimepkg.FuncName
	Endpoints       = recordspkg.Endpoints

	// Wrapper options
	WithName           = runtimepkg.WithName
	WithRecordName     = runtimepkg.WithRecordName
	WithSource         = runtimepkg.WithSource
	WithSourceFile     = runtimepkg.WithSourceFile
	WithType           = runtimepkg.WithType
	WithFormat         = runtimepkg.WithFormat
	WithConnectionData = runtimepkg.WithConnectionData
	WithDescription    = runtimepkg.WithDescription
	WithPath           = runtimepkg.WithPath
	WithParameters     = runtimepkg.WithParameters
	WithTrigger        = runtimepkg.WithTrigger
	WithModelID        = runtimepkg.WithModelID
	WithDemand         = runtimepkg.WithDemand
	WithCurrentPrice   = runtimepkg.WithCurrentPrice

	// Registration events
	NewRegistrationEvent = runtimepkg.NewRegistrationEvent
	EncodeEvent          = runtimepkg.EncodeEvent
	DecodeEvent          = runtimepkg.DecodeEvent
	GetEndpoint          = ce.GetEndpoint
	GetOutcome           = ce.GetOutcome
	GetStatusCode        = ce.GetStatusCode
	GetTraceParent       = ce.GetTraceParent

	// Lineage id strategies
	UnixSecondsLineageID = idspkg.UnixSecondsLineageID
	ULIDLineageID        = idspkg.ULIDLineageID
	CreateULID           = idspkg.CreateULID

	NewHTTPSender           = transportpkg.NewHTTPSender
	NewHTTPSenderWithClient = transportpkg.NewHTTPSenderWithClient
	DefaultSinkFactory      = transportpkg.DefaultFactory
	RegistrySinkFactory     = transportpkg.RegistryFactory

	// Event sink registry. Import individual sinks via:
	// _ "github.com/drblury/catalogflow/transport/kafka"
	DefaultSinkRegistry = sinks.DefaultRegistry
	NewSinkRegistry     = sinks.NewRegistry
	RegisterSink        = sinks.Register
	BuildSink           = sinks.Build
	GetCapabilities     = sinks.GetCapabilities
	RecordKey           = sinks.RecordKey

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal
	Decode        = jsoncodec.Decode
	ErrNotJSON    = jsoncodec.ErrNotJSON

	ErrClientRequired    = errspkg.ErrClientRequired
	ErrFunctionRequired  = errspkg.ErrFunctionRequired
	ErrConfigRequired    = errspkg.ErrConfigRequired
	ErrLoggerRequired    = errspkg.ErrLoggerRequired
	ErrURLRequired       = errspkg.ErrURLRequired
	ErrUserRequired      = errspkg.ErrUserRequired
	ErrEndpointRequired  = errspkg.ErrEndpointRequired
	ErrRecordRequired    = errspkg.ErrRecordRequired
	ErrPublisherRequired = errspkg.ErrPublisherRequired
	ErrTopicRequired     = errspkg.ErrTopicRequired
	ErrNotFound          = errspkg.ErrNotFound

	NewSlogServiceLogger      = loggingpkg.NewSlogServiceLogger
	NewWatermillServiceLogger = loggingpkg.NewWatermillServiceLogger
	NewWatermillAdapter       = loggingpkg.NewWatermillAdapter
	NopServiceLogger          = loggingpkg.NopServiceLogger

	NewMetadata = metadatapkg.New
)

// Catalog endpoints.
const (
	EndpointDataSources  = recordspkg.EndpointDataSources
	EndpointDataSets     = recordspkg.EndpointDataSets
	EndpointModels       = recordspkg.EndpointModels
	EndpointETL          = recordspkg.EndpointETL
	EndpointLineage      = recordspkg.EndpointLineage
	EndpointMarketAssets = recordspkg.EndpointMarketAssets
)

// MetadataRecordKey is the event metadata key naming "endpoint/recordID".
const MetadataRecordKey = sinks.MetadataRecordKey

// Record defaults applied by the wrappers.
const (
	DefaultDataSetDescription = runtimepkg.DefaultDataSetDescription
	DefaultDataSetPath        = runtimepkg.DefaultDataSetPath
	DefaultTriggerType        = runtimepkg.DefaultTriggerType
	DefaultMarketAssetType    = runtimepkg.DefaultMarketAssetType
)

// Registration outcomes.
const (
	OutcomeRegistered = runtimepkg.OutcomeRegistered
	OutcomeRejected   = runtimepkg.OutcomeRejected
	OutcomeFailed     = runtimepkg.OutcomeFailed
	OutcomeSkipped    = runtimepkg.OutcomeSkipped
)

// Configuration modes.
const (
	ModelIDNull          = configpkg.ModelIDNull
	ModelIDOmit          = configpkg.ModelIDOmit
	LineageIDUnixSeconds = configpkg.LineageIDUnixSeconds
	LineageIDULID        = configpkg.LineageIDULID
	EventEncodingJSON    = configpkg.EventEncodingJSON
	EventEncodingProto   = configpkg.EventEncodingProto
)

// Inferred source types and formats.
const (
	TypeAPI       = inferencepkg.TypeAPI
	TypeCloud     = inferencepkg.TypeCloud
	TypeFile      = inferencepkg.TypeFile
	FormatJSON    = inferencepkg.FormatJSON
	FormatParquet = inferencepkg.FormatParquet
	FormatCSV     = inferencepkg.FormatCSV
)

// CloudEvents extension keys carried by registration events.
const (
	// ExtEndpoint is the catalog endpoint the record was posted to.
	ExtEndpoint = ce.ExtEndpoint

	// ExtOutcome is the registration outcome.
	ExtOutcome = ce.ExtOutcome

	// ExtStatusCode is the HTTP status the catalog answered with.
	ExtStatusCode = ce.ExtStatusCode

	// ExtTraceParent is the W3C traceparent of the registration span.
	ExtTraceParent = ce.ExtTraceParent

	RegistrationEventType = runtimepkg.RegistrationEventType
)

// Error category constants for ErrorClassifier.
const (
	ErrorCategoryNone       = runtimepkg.ErrorCategoryNone
	ErrorCategoryValidation = runtimepkg.ErrorCategoryValidation
	ErrorCategoryTransport  = runtimepkg.ErrorCategoryTransport
	ErrorCategoryTimeout    = runtimepkg.ErrorCategoryTimeout
	ErrorCategoryOther      = runtimepkg.ErrorCategoryOther
)

// DefaultConfig returns the configuration of the stock local catalog:
// http://localhost:7000/catalog as admin_user.
func DefaultConfig() *Config {
	return configpkg.Default()
}

// RegisterDataSource wraps fn so every call first registers it as a data source.
func RegisterDataSource[In, Out any](c *Client, fn Func[In, Out], opts ...Option) *Wrapper[In, Out] {
	return runtimepkg.DataSource(c, fn, opts...)
}

// RegisterDataSet wraps fn so every call first registers it as a data set.
func RegisterDataSet[In, Out any](c *Client, fn Func[In, Out], opts ...Option) *Wrapper[In, Out] {
	return runtimepkg.DataSet(c, fn, opts...)
}

// RegisterModel wraps fn so every call first registers it in the model registry.
func RegisterModel[In, Out any](c *Client, fn Func[In, Out], opts ...Option) *Wrapper[In, Out] {
	return runtimepkg.Model(c, fn, opts...)
}

// RegisterETL wraps fn so every call first registers it as an ETL job.
func RegisterETL[In, Out any](c *Client, fn Func[In, Out], opts ...Option) *Wrapper[In, Out] {
	return runtimepkg.ETL(c, fn, opts...)
}

// TrackLineage wraps fn so every successful call records a lineage entry
// linking sourceID to assetID.
func TrackLineage[In, Out any](c *Client, sourceID, assetID string, fn Func[In, Out], opts ...Option) *Wrapper[In, Out] {
	return runtimepkg.Lineage(c, sourceID, assetID, fn, opts...)
}

// RegisterMarketAsset wraps fn so every call first registers it as a market asset.
func RegisterMarketAsset[In, Out any](c *Client, fn Func[In, Out], opts ...Option) *Wrapper[In, Out] {
	return runtimepkg.MarketAsset(c, fn, opts...)
}

func NewEntryServiceLogger[T EntryLoggerAdapter[T]](entry T) ServiceLogger {
	return loggingpkg.NewEntryServiceLogger(entry)
}
