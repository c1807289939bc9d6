package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several servers (or tests) can live
// in one process.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal        *prometheus.CounterVec
	RequestLatency       *prometheus.HistogramVec
	SanitizedRequests    prometheus.Counter
	SanitizationFailures prometheus.Counter
	CSRFExempt           prometheus.Counter
	CSRFRejections       *prometheus.CounterVec
	TokensIssued         prometheus.Counter
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "civix_http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"method", "status"},
		),
		RequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "civix_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		SanitizedRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "civix_sanitized_requests_total",
			Help: "Requests whose containers passed through the sanitizer",
		}),
		SanitizationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "civix_sanitization_failures_total",
			Help: "Requests rejected because their input could not be sanitized",
		}),
		CSRFExempt: factory.NewCounter(prometheus.CounterOpts{
			Name: "civix_csrf_exempt_total",
			Help: "Requests that matched a CSRF exemption rule",
		}),
		CSRFRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "civix_csrf_rejections_total",
				Help: "Requests rejected by the CSRF guard",
			},
			[]string{"reason"},
		),
		TokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "civix_csrf_tokens_issued_total",
			Help: "CSRF tokens handed out to clients",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
