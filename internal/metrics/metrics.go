// Package metrics exposes Prometheus collectors for backend and HTTP traffic.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rbright/predicweb/internal/backend"
)

// Outcome labels for backend requests.
const (
	OutcomeOK          = "ok"
	OutcomeUnreachable = "unreachable"
	OutcomeExchange    = "exchange_error"
)

// Metrics owns a private registry so tests can build several instances.
type Metrics struct {
	registry        *prometheus.Registry
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	statusPolls     *prometheus.CounterVec
}

// New registers every collector plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predicweb_backend_requests_total",
			Help: "Backend round trips by service and outcome.",
		}, []string{"service", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "predicweb_backend_request_duration_seconds",
			Help:    "Backend round-trip latency.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"service"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predicweb_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		statusPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predicweb_status_polls_total",
			Help: "Scheduled status polls by consumer and outcome.",
		}, []string{"consumer", "outcome"}),
	}

	m.registry.MustRegister(
		m.backendRequests,
		m.backendLatency,
		m.httpRequests,
		m.statusPolls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe implements backend.Observer.
func (m *Metrics) Observe(service string, elapsed time.Duration, err error) {
	m.backendRequests.WithLabelValues(service, outcomeOf(err)).Inc()
	m.backendLatency.WithLabelValues(service).Observe(elapsed.Seconds())
}

// HTTPRequest counts one served request.
func (m *Metrics) HTTPRequest(route string, code int) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// StatusPoll counts one scheduled poll by a pusher such as the websocket stream.
func (m *Metrics) StatusPoll(consumer string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = outcomeOf(err)
	}
	m.statusPolls.WithLabelValues(consumer, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, backend.ErrConnect):
		return OutcomeUnreachable
	default:
		return OutcomeExchange
	}
}
