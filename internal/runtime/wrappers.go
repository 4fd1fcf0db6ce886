package runtime

import (
	"context"
	"maps"
	"reflect"
	goruntime "runtime"
	"strings"

	configpkg "github.com/drblury/catalogflow/internal/runtime/config"
	errspkg "github.com/drblury/catalogflow/internal/runtime/errors"
	inferencepkg "github.com/drblury/catalogflow/internal/runtime/inference"
	loggingpkg "github.com/drblury/catalogflow/internal/runtime/logging"
	recordspkg "github.com/drblury/catalogflow/internal/runtime/records"
)

// Record defaults.
const (
	DefaultDataSetDescription = "Auto-generated dataset"
	DefaultDataSetPath        = "internal_registry"
	DefaultTriggerType        = "manual"
	DefaultMarketAssetType    = "other"
)

// Func is the shape of every function a Wrapper can wrap.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// Wrapper calls a function and registers a catalog record for every call.
// Records are built fresh on each call.
type Wrapper[In, Out any] struct {
	client *Client
	name   string
	fn     Func[In, Out]
	build  func() recordspkg.Record
	// after registers once fn has returned without error.
	after bool
}

// Name returns the name records are registered under.
func (w *Wrapper[In, Out]) Name() string {
	return w.name
}

// Call invokes the wrapped function and returns its result unchanged.
func (w *Wrapper[In, Out]) Call(ctx context.Context, in In) (Out, error) {
	out, _, err := w.CallWithResult(ctx, in)
	return out, err
}

// CallWithResult is Call that also reports the registration outcome.
func (w *Wrapper[In, Out]) CallWithResult(ctx context.Context, in In) (Out, Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !w.after {
		record := w.build()
		res := w.client.Register(ctx, record.Endpoint(), record)
		out, err := w.fn(ctx, in)
		return out, res, err
	}

	out, err := w.fn(ctx, in)
	if err != nil {
		return out, Result{Outcome: OutcomeSkipped}, err
	}
	record := w.build()
	res := w.client.Register(ctx, record.Endpoint(), record)
	return out, res, nil
}

// Func returns Call as a plain function value with the wrapped signature.
func (w *Wrapper[In, Out]) Func() Func[In, Out] {
	return w.Call
}

// Option customises a wrapper. Options that do not apply to a record kind
// are ignored.
type Option func(*wrapperOptions)

type wrapperOptions struct {
	name           string
	recordName     *string
	source         *string
	sourceFile     string
	sourceFunc     string
	recordType     *string
	format         *string
	connectionData *string
	description    *string
	path           *string
	parameters     map[string]any
	trigger        *string
	modelID        *string
	demand         *float64
	currentPrice   *float64
}

// WithName overrides the name derived from the wrapped function.
func WithName(name string) Option {
	return func(o *wrapperOptions) { o.name = name }
}

// WithRecordName overrides the dataset name, model name or market asset name
// while the record id stays the wrapper name.
func WithRecordName(name string) Option {
	return func(o *wrapperOptions) { o.recordName = &name }
}

// WithSource supplies the source text metadata is inferred from.
func WithSource(source string) Option {
	return func(o *wrapperOptions) { o.source = &source }
}

// WithSourceFile infers metadata from the text of funcName declared in the
// Go file filename.
func WithSourceFile(filename, funcName string) Option {
	return func(o *wrapperOptions) {
		o.sourceFile = filename
		o.sourceFunc = funcName
	}
}

// WithType overrides the data source or market asset type.
func WithType(t string) Option {
	return func(o *wrapperOptions) { o.recordType = &t }
}

// WithFormat overrides the inferred data source format.
func WithFormat(format string) Option {
	return func(o *wrapperOptions) { o.format = &format }
}

// WithConnectionData overrides the inferred data source path.
func WithConnectionData(data string) Option {
	return func(o *wrapperOptions) { o.connectionData = &data }
}

// WithDescription overrides the dataset description.
func WithDescription(description string) Option {
	return func(o *wrapperOptions) { o.description = &description }
}

// WithPath overrides the dataset path.
func WithPath(path string) Option {
	return func(o *wrapperOptions) { o.path = &path }
}

// WithParameters sets the model parameters.
func WithParameters(params map[string]any) Option {
	return func(o *wrapperOptions) { o.parameters = params }
}

// WithTrigger overrides the ETL trigger type.
func WithTrigger(trigger string) Option {
	return func(o *wrapperOptions) { o.trigger = &trigger }
}

// WithModelID links a lineage record to a model.
func WithModelID(id string) Option {
	return func(o *wrapperOptions) { o.modelID = &id }
}

// WithDemand sets the market asset demand.
func WithDemand(demand float64) Option {
	return func(o *wrapperOptions) { o.demand = &demand }
}

// WithCurrentPrice sets the market asset price.
func WithCurrentPrice(price float64) Option {
	return func(o *wrapperOptions) { o.currentPrice = &price }
}

func newWrapper[In, Out any](c *Client, fn Func[In, Out], opts []Option) (*Wrapper[In, Out], wrapperOptions) {
	if c == nil {
		panic(errspkg.ErrClientRequired)
	}
	if fn == nil {
		panic(errspkg.ErrFunctionRequired)
	}

	var o wrapperOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	name := o.name
	if name == "" {
		name = FuncName(fn)
	}
	return &Wrapper[In, Out]{client: c, name: name, fn: fn}, o
}

// DataSource wraps fn so every call registers a data source named after it.
// Type, format and connection data default to metadata inferred from the
// source given by WithSource or WithSourceFile.
func DataSource[In, Out any](c *Client, fn Func[In, Out], opts ...Option) *Wrapper[In, Out] {
	w, o := newWrapper(c, fn, opts)

	inferred := c.InferMetadata(o.sourceText(c.logger, w.name))
	record := recordspkg.DataSource{
		ID:             w.name,
		Name:           w.name,
		Type:           valueOr(o.recordType, inferred.Type),
		Format:         valueOr(o.format, inferred.Format),
		ConnectionData: valueOr(o.connectionData, inferred.Path),
	}
	w.build = func() recordspkg.Record { return record }
	return w
}

// DataSet wraps fn so every call registers a dataset.
func DataSet[In, Out any](c *Client, fn Func[In, Out], opts ...Option) *Wrapper[In, Out] {
	w, o := newWrapper(c, fn, opts)

	record := recordspkg.DataSet{
		ID:          w.name,
		Name:        valueOr(o.recordName, w.name),
		Description: valueOr(o.description, DefaultDataSetDescription),
		Path:        valueOr(o.path, DefaultDataSetPath),
	}
	w.build = func() recordspkg.Record { return record }
	return w
}

// Model wraps fn so every call registers a model.
func Model[In, Out any](c *Client, fn Func[In, Out], opts ...Option) *Wrapper[In, Out] {
	w, o := newWrapper(c, fn, opts)

	modelName := valueOr(o.recordName, w.name)
	params := maps.Clone(o.parameters)
	w.build = func() recordspkg.Record {
		return recordspkg.Model{ID: w.name, ModelName: modelName, Parameters: params}
	}
	return w
}

// ETL wraps fn so every call registers an ETL job.
func ETL[In, Out any](c *Client, fn Func[In, Out], opts ...Option) *Wrapper[In, Out] {
	w, o := newWrapper(c, fn, opts)

	record := recordspkg.ETL{
		ID:          w.name,
		Name:        w.name,
		Language:    c.conf.ETLLanguage,
		TriggerType: valueOr(o.trigger, DefaultTriggerType),
	}
	w.build = func() recordspkg.Record { return record }
	return w
}

// Lineage wraps fn so every successful call registers a lineage edge from
// sourceID to assetID, after fn has returned.
func Lineage[In, Out any](c *Client, sourceID, assetID string, fn Func[In, Out], opts ...Option) *Wrapper[In, Out] {
	w, o := newWrapper(c, fn, opts)
	w.after = true

	modelID := o.modelID
	omit := c.conf.ModelIDMode == configpkg.ModelIDOmit
	w.build = func() recordspkg.Record {
		return recordspkg.Lineage{
			ID:              c.NextLineageID(),
			DataSourceID:    sourceID,
			MarketAssetID:   assetID,
			ModelRegistryID: modelID,
			UserID:          c.conf.User,
			OmitModelID:     omit,
		}
	}
	return w
}

// MarketAsset wraps fn so every call registers a market asset.
func MarketAsset[In, Out any](c *Client, fn Func[In, Out], opts ...Option) *Wrapper[In, Out] {
	w, o := newWrapper(c, fn, opts)

	record := recordspkg.MarketAsset{
		ID:           w.name,
		Name:         valueOr(o.recordName, w.name),
		Type:         valueOr(o.recordType, DefaultMarketAssetType),
		Demand:       o.demand,
		CurrentPrice: o.currentPrice,
	}
	w.build = func() recordspkg.Record { return record }
	return w
}

func (o wrapperOptions) sourceText(logger loggingpkg.ServiceLogger, name string) string {
	if o.source != nil {
		return *o.source
	}
	if o.sourceFile == "" {
		return ""
	}
	funcName := o.sourceFunc
	if funcName == "" {
		funcName = name
	}
	src, err := inferencepkg.FuncSource(o.sourceFile, nil, funcName)
	if err != nil {
		logger.Warn("Could not read function source, using default metadata", loggingpkg.LogFields{
			"file":     o.sourceFile,
			"function": funcName,
			"error":    err.Error(),
		})
		return ""
	}
	return src
}

// FuncName returns the bare Go name of fn: the last path element without
// package qualifier or receiver. Closures yield names such as "func1".
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := goruntime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	// Instantiated generics carry a "[...]" type argument suffix.
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func valueOr(v *string, def string) string {
	if v != nil {
		return *v
	}
	return def
}
