package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/GriffinCanCode/loggable/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/loggable/internal/loggable"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Intercepted call metrics
	Calls        *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec

	// gRPC metrics
	GRPCCalls    *prometheus.CounterVec
	GRPCDuration *prometheus.HistogramVec

	// Outbound dependencies
	BreakerState *prometheus.GaugeVec

	startTime time.Time

	mu       sync.RWMutex
	snapshot Snapshot
}

// Snapshot holds running totals for the JSON status endpoint
type Snapshot struct {
	TotalRequests    int64   `json:"totalRequests"`
	TotalErrors      int64   `json:"totalErrors"`
	TotalCalls       int64   `json:"totalCalls"`
	UnexpectedErrors int64   `json:"unexpectedErrors"`
	AvgRequestMillis float64 `json:"avgRequestMillis"`
	UptimeSeconds    float64 `json:"uptimeSeconds"`

	requestSeconds float64
}

var durationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// NewMetrics registers the metrics with reg. A nil reg means the default
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contracts_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contracts_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: durationBuckets,
			},
			[]string{"method", "route"},
		),

		Calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contracts_intercepted_calls_total",
				Help: "Total number of intercepted calls by outcome",
			},
			[]string{"component", "method", "outcome"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contracts_intercepted_call_duration_seconds",
				Help:    "Intercepted call duration in seconds",
				Buckets: durationBuckets,
			},
			[]string{"component", "method"},
		),

		GRPCCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contracts_grpc_calls_total",
				Help: "Total number of gRPC calls",
			},
			[]string{"method", "code"},
		),
		GRPCDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contracts_grpc_duration_seconds",
				Help:    "gRPC call duration in seconds",
				Buckets: durationBuckets,
			},
			[]string{"method"},
		),

		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "contracts_circuit_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "contracts_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.requestSeconds += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// ObserveCall records an intercepted call. It makes Metrics a
// loggable.Observer.
func (m *Metrics) ObserveCall(component, method string, outcome loggable.Outcome, d time.Duration) {
	m.Calls.WithLabelValues(component, method, string(outcome)).Inc()
	m.CallDuration.WithLabelValues(component, method).Observe(d.Seconds())

	m.mu.Lock()
	m.snapshot.TotalCalls++
	if outcome == loggable.OutcomeUnexpected {
		m.snapshot.UnexpectedErrors++
	}
	m.mu.Unlock()
}

// RecordGRPCCall records a gRPC call
func (m *Metrics) RecordGRPCCall(method, code string, duration time.Duration) {
	m.GRPCCalls.WithLabelValues(method, code).Inc()
	m.GRPCDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// BreakerChanged records a circuit breaker transition. Its signature
// matches resilience.Settings.OnStateChange.
func (m *Metrics) BreakerChanged(name string, _, to resilience.State) {
	m.BreakerState.WithLabelValues(name).Set(float64(to))
}

// Snapshot returns the running totals
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgRequestMillis = s.requestSeconds / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
