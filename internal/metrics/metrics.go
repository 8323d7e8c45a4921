// Package metrics provides the Prometheus collectors of the publishing API.
//
// Collectors:
//   - publishkit_http_requests_total: requests by method, route and status class
//   - publishkit_http_request_duration_seconds: request latency by method and route
//   - publishkit_tenant_resolutions_total: host resolutions by outcome
//   - publishkit_module_gate_decisions_total: module gate decisions by module and decision
//
// The collectors register with the default registry and are served by Handler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/publishkit/pkg/module"
	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publishkit_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "publishkit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	TenantResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publishkit_tenant_resolutions_total",
			Help: "Tenant host resolutions by outcome",
		},
		[]string{"outcome"},
	)

	ModuleDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publishkit_module_gate_decisions_total",
			Help: "Module gate decisions by module and decision",
		},
		[]string{"module", "decision"},
	)
)

// RecordRequest records a finished request.
func RecordRequest(method, route string, status int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveResolution is a tenant.WithObserver callback.
func ObserveResolution(o tenant.Outcome) {
	TenantResolutions.WithLabelValues(string(o)).Inc()
}

// ObserveGate is a module.WithObserver callback.
func ObserveGate(slug string, d module.Decision) {
	ModuleDecisions.WithLabelValues(slug, string(d)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
