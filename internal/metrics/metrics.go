package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	chatTurns        *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	analysisCalls    *prometheus.CounterVec
	sessionsCreated  prometheus.Counter
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),

		chatTurns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmadapter_chat_turns_total",
				Help: "Total number of conversational turns by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),

		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llmadapter_provider_request_duration_seconds",
				Help:    "Upstream LLM call duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"provider"},
		),

		analysisCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmadapter_analysis_calls_total",
				Help: "Total number of scoring calls by availability",
			},
			[]string{"status"},
		),

		sessionsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "llmadapter_sessions_created_total",
				Help: "Total number of sessions created",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)
	reg.MustRegister(r.chatTurns)
	reg.MustRegister(r.providerDuration)
	reg.MustRegister(r.analysisCalls)
	reg.MustRegister(r.sessionsCreated)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	r.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordChatTurn records a completed turn and the upstream call duration.
func (r *Registry) RecordChatTurn(provider, outcome string, duration float64) {
	r.chatTurns.WithLabelValues(provider, outcome).Inc()
	r.providerDuration.WithLabelValues(provider).Observe(duration)
}

// RecordAnalysis records the outcome of a scoring call.
func (r *Registry) RecordAnalysis(available bool) {
	status := "ok"
	if !available {
		status = "unavailable"
	}
	r.analysisCalls.WithLabelValues(status).Inc()
}

// RecordSessionCreated records a created session.
func (r *Registry) RecordSessionCreated() {
	r.sessionsCreated.Inc()
}
