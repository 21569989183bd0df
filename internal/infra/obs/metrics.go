package obs

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fitryne/internal/app/policies"
)

// Metrics holds the service's Prometheus collectors. Each instance owns its
// registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	Messages        *prometheus.CounterVec
	MessageDuration *prometheus.HistogramVec
	AIRequests      *prometheus.CounterVec
	AIDuration      prometheus.Histogram
	AICacheLookups  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fitryne_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fitryne_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		Messages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fitryne_messages_total",
			Help: "Commands and queries handled, by outcome.",
		}, []string{"kind", "key", "outcome"}),
		MessageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fitryne_message_duration_seconds",
			Help:    "Command and query handling latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind", "key"}),
		AIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fitryne_ai_requests_total",
			Help: "Calls to the calorie model by outcome.",
		}, []string{"outcome"}),
		AIDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fitryne_ai_request_duration_seconds",
			Help:    "Latency of calorie model calls.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		AICacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fitryne_ai_cache_lookups_total",
			Help: "AI estimate cache lookups by result.",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveMessage implements middleware.Observer.
func (m *Metrics) ObserveMessage(kind, key string, took time.Duration, err error) {
	m.Messages.WithLabelValues(kind, key, outcome(err)).Inc()
	m.MessageDuration.WithLabelValues(kind, key).Observe(took.Seconds())
}

// ObserveAIRequest records one model call.
func (m *Metrics) ObserveAIRequest(took time.Duration, err error) {
	m.AIRequests.WithLabelValues(aiOutcome(err)).Inc()
	m.AIDuration.Observe(took.Seconds())
}

// ObserveCacheLookup records a cache hit, miss or error.
func (m *Metrics) ObserveCacheLookup(result string) {
	m.AICacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) observeHTTP(method, path string, status int, took time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(took.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func aiOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, policies.ErrAINotConfigured):
		return "not_configured"
	case errors.Is(err, policies.ErrAIMalformedResponse):
		return "malformed"
	default:
		return "transport_error"
	}
}
