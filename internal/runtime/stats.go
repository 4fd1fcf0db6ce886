package runtime

import (
	"context"
	"errors"
	"math"
	"net"
	"sort"
	"sync"
	"time"

	errspkg "github.com/drblury/catalogflow/internal/runtime/errors"
)

const latencySampleSize = 256

// EndpointStats summarises the registrations of one catalog endpoint.
type EndpointStats struct {
	Attempts         uint64    `json:"attempts"`
	Registered       uint64    `json:"registered"`
	Rejected         uint64    `json:"rejected"`
	Failed           uint64    `json:"failed"`
	LastRegisteredAt time.Time `json:"last_registered_at,omitempty"`
	LastStatusCode   int       `json:"last_status_code,omitempty"`

	Latency LatencyMetrics `json:"latency"`
	Errors  ErrorBreakdown `json:"errors"`
}

type LatencyMetrics struct {
	AverageNs  int64 `json:"average_ns"`
	P50Ns      int64 `json:"p50_ns"`
	P95Ns      int64 `json:"p95_ns"`
	P99Ns      int64 `json:"p99_ns"`
	LastNs     int64 `json:"last_ns"`
	SampleSize int   `json:"sample_size"`
}

type ErrorBreakdown struct {
	Validation uint64 `json:"validation"`
	Transport  uint64 `json:"transport"`
	Timeout    uint64 `json:"timeout"`
	Rejected   uint64 `json:"rejected"`
	Other      uint64 `json:"other"`
	LastError  string `json:"last_error,omitempty"`
}

type ErrorCategory string

const (
	ErrorCategoryNone       ErrorCategory = "none"
	ErrorCategoryValidation ErrorCategory = "validation"
	ErrorCategoryTransport  ErrorCategory = "transport"
	ErrorCategoryTimeout    ErrorCategory = "timeout"
	ErrorCategoryOther      ErrorCategory = "other"
)

// ErrorClassifier maps a registration failure to a category.
type ErrorClassifier func(error) ErrorCategory

// ClassifyError is the default ErrorClassifier.
func ClassifyError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}
	if errors.Is(err, errspkg.ErrEndpointRequired) || errors.Is(err, errspkg.ErrRecordRequired) {
		return ErrorCategoryValidation
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorCategoryTimeout
		}
		return ErrorCategoryTransport
	}
	return ErrorCategoryOther
}

// Record adds one failure to the breakdown.
func (e *ErrorBreakdown) Record(category ErrorCategory, err error) {
	switch category {
	case ErrorCategoryNone:
		if err == nil {
			return
		}
		e.Other++
	case ErrorCategoryValidation:
		e.Validation++
	case ErrorCategoryTransport:
		e.Transport++
	case ErrorCategoryTimeout:
		e.Timeout++
	default:
		e.Other++
	}
	if err != nil {
		e.LastError = err.Error()
	}
}

// RegistrationStats keeps per-endpoint counters and latency samples.
type RegistrationStats struct {
	mu         sync.Mutex
	classifier ErrorClassifier
	endpoints  map[string]*endpointStats
}

type endpointStats struct {
	EndpointStats
	latency *latencyWindow
}

// NewRegistrationStats returns empty stats. A nil classifier uses ClassifyError.
func NewRegistrationStats(classifier ErrorClassifier) *RegistrationStats {
	if classifier == nil {
		classifier = ClassifyError
	}
	return &RegistrationStats{
		classifier: classifier,
		endpoints:  make(map[string]*endpointStats),
	}
}

// Hooks returns registration hooks feeding these stats.
func (s *RegistrationStats) Hooks() RegistrationHooks {
	return RegistrationHooks{
		OnAttempt: func(ctx RegistrationContext) {
			s.update(ctx.Endpoint, func(st *endpointStats) { st.Attempts++ })
		},
		OnRegistered: func(ctx RegistrationContext) {
			s.update(ctx.Endpoint, func(st *endpointStats) {
				st.Registered++
				st.LastStatusCode = ctx.StatusCode
				st.LastRegisteredAt = ctx.StartedAt.Add(ctx.Duration)
				st.latency.Add(ctx.Duration)
			})
		},
		OnRejected: func(ctx RegistrationContext) {
			s.update(ctx.Endpoint, func(st *endpointStats) {
				st.Rejected++
				st.LastStatusCode = ctx.StatusCode
				st.Errors.Rejected++
				st.latency.Add(ctx.Duration)
			})
		},
		OnFailed: func(ctx RegistrationContext, err error) {
			s.update(ctx.Endpoint, func(st *endpointStats) {
				st.Failed++
				st.Errors.Record(s.classifier(err), err)
			})
		},
	}
}

func (s *RegistrationStats) update(endpoint string, fn func(*endpointStats)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.endpoints[endpoint]
	if !ok {
		st = &endpointStats{latency: newLatencyWindow(latencySampleSize)}
		s.endpoints[endpoint] = st
	}
	fn(st)
}

// Snapshot returns a copy of the stats of every endpoint seen so far.
func (s *RegistrationStats) Snapshot() map[string]EndpointStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]EndpointStats, len(s.endpoints))
	for endpoint, st := range s.endpoints {
		snap := st.EndpointStats
		snap.Latency = st.latency.Snapshot()
		out[endpoint] = snap
	}
	return out
}

type latencyWindow struct {
	samples []int64
	next    int
	filled  int
	last    int64
}

func newLatencyWindow(size int) *latencyWindow {
	if size <= 0 {
		size = latencySampleSize
	}
	return &latencyWindow{samples: make([]int64, size)}
}

func (lw *latencyWindow) Add(d time.Duration) {
	if lw == nil || len(lw.samples) == 0 {
		return
	}
	lw.samples[lw.next] = int64(d)
	lw.last = int64(d)
	lw.next = (lw.next + 1) % len(lw.samples)
	if lw.filled < len(lw.samples) {
		lw.filled++
	}
}

func (lw *latencyWindow) Snapshot() LatencyMetrics {
	var metrics LatencyMetrics
	if lw == nil {
		return metrics
	}
	if lw.filled == 0 {
		metrics.LastNs = lw.last
		return metrics
	}
	samples := make([]int64, lw.filled)
	for i := 0; i < lw.filled; i++ {
		idx := lw.next - lw.filled + i
		if idx < 0 {
			idx += len(lw.samples)
		}
		samples[i] = lw.samples[idx]
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	metrics.SampleSize = lw.filled
	metrics.P50Ns = percentile(samples, 0.50)
	metrics.P95Ns = percentile(samples, 0.95)
	metrics.P99Ns = percentile(samples, 0.99)
	var sum int64
	for _, v := range samples {
		sum += v
	}
	metrics.AverageNs = sum / int64(len(samples))
	metrics.LastNs = lw.last
	return metrics
}

func percentile(samples []int64, quantile float64) int64 {
	if len(samples) == 0 {
		return 0
	}
	if quantile <= 0 {
		return samples[0]
	}
	if quantile >= 1 {
		return samples[len(samples)-1]
	}
	pos := quantile * float64(len(samples)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return samples[lower]
	}
	frac := pos - float64(lower)
	return samples[lower] + int64(float64(samples[upper]-samples[lower])*frac)
}
