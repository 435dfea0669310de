// Package metrics defines the Prometheus collectors exposed on /metrics.
//
// All Record methods are safe to call on a nil *Metrics, which is how the
// server runs when METRICS_ENABLED is false.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/viewpoint-explorer/backend/internal/domain"
)

// Query outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the HTTP and catalogue query collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	queriesTotal   *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	queryRowsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"}, // route is the chi pattern, e.g. /api/viewpoints/{id}
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Time taken for HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewpoint_queries_total",
				Help: "Total number of catalogue queries by outcome",
			},
			[]string{"operation", "outcome"}, // operation: list, get; outcome: success, not_found, error
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "viewpoint_query_duration_seconds",
				Help:    "Time taken for catalogue queries",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"operation"},
		),
		queryRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewpoint_query_rows_total",
				Help: "Total number of viewpoints returned by catalogue queries",
			},
			[]string{"operation"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.queriesTotal,
		m.queryDuration,
		m.queryRowsTotal,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("metrics.New: %w", err)
		}
	}
	return m, nil
}

// RecordRequest records one served HTTP request.
func (m *Metrics) RecordRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordQuery records one catalogue query. rows is the number of viewpoints
// returned and is ignored when err is non-nil.
func (m *Metrics) RecordQuery(operation string, rows int, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.queriesTotal.WithLabelValues(operation, outcome(err)).Inc()
	m.queryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err == nil {
		m.queryRowsTotal.WithLabelValues(operation).Add(float64(rows))
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
