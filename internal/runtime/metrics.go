package runtime

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegistrationMetrics tracks catalog registration statistics.
type RegistrationMetrics struct {
	mu sync.Mutex

	registrationsTotal *prometheus.CounterVec
	durationSeconds    *prometheus.HistogramVec
	eventsTotal        *prometheus.CounterVec

	registerer prometheus.Registerer
	registered bool
}

// newRegistrationCounterVec creates a new counter vec with the catalogflow namespace.
func newRegistrationCounterVec(subsystem, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogflow",
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// NewRegistrationMetrics creates a new registration metrics collector.
func NewRegistrationMetrics(registerer prometheus.Registerer) *RegistrationMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &RegistrationMetrics{
		registerer:         registerer,
		registrationsTotal: newRegistrationCounterVec("registration", "total", "Total number of catalog registrations by outcome", []string{"endpoint", "outcome"}),
		durationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "catalogflow",
				Subsystem: "registration",
				Name:      "duration_seconds",
				Help:      "Round-trip time of catalog registrations",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		),
		eventsTotal: newRegistrationCounterVec("events", "published_total", "Total number of registration events by publish result", []string{"sink", "result"}),
	}
}

// Register registers the Prometheus collectors. Safe to call multiple times.
func (m *RegistrationMetrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	collectors := []prometheus.Collector{
		m.registrationsTotal,
		m.durationSeconds,
		m.eventsTotal,
	}

	for _, c := range collectors {
		if err := m.registerer.Register(c); err != nil {
			// Check if it's already registered (not an error)
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}

	m.registered = true
	return nil
}

// RecordRegistration records the outcome and duration of one registration.
func (m *RegistrationMetrics) RecordRegistration(endpoint string, outcome Outcome, d time.Duration) {
	m.registrationsTotal.WithLabelValues(endpoint, string(outcome)).Inc()
	if outcome != OutcomeSkipped {
		m.durationSeconds.WithLabelValues(endpoint).Observe(d.Seconds())
	}
}

// RecordEvent records the result of publishing a registration event.
func (m *RegistrationMetrics) RecordEvent(sink string, err error) {
	result := "published"
	if err != nil {
		result = "failed"
	}
	m.eventsTotal.WithLabelValues(sink, result).Inc()
}

// Hooks returns registration hooks feeding these metrics.
func (m *RegistrationMetrics) Hooks() RegistrationHooks {
	record := func(outcome Outcome) func(string, time.Duration) {
		return func(endpoint string, d time.Duration) {
			m.RecordRegistration(endpoint, outcome, d)
		}
	}
	return MetricsHooks(record(OutcomeRegistered), record(OutcomeRejected), record(OutcomeFailed))
}

// Handler serves the collected metrics. When the registerer is also a
// gatherer, such as a *prometheus.Registry, only its metrics are served.
func (m *RegistrationMetrics) Handler() http.Handler {
	if gatherer, ok := m.registerer.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}

// Reset resets all metrics (useful for testing).
func (m *RegistrationMetrics) Reset() {
	m.registrationsTotal.Reset()
	m.durationSeconds.Reset()
	m.eventsTotal.Reset()
}
