package server

import (
	"net/http"
	"strconv"

	"github.com/desertthunder/playlistinator/internal/models"
	"github.com/felixge/httpsnoop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the web surface on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	reqDuration *prometheus.HistogramVec
	reqCount    *prometheus.CounterVec
	runs        *prometheus.CounterVec
	handler     http.Handler
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	reqDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlistinator_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	reqCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlistinator_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)

	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlistinator_generate_runs_total",
			Help: "Settled generate runs by surface and outcome.",
		},
		[]string{"surface", "outcome"},
	)

	registry.MustRegister(
		reqDuration,
		reqCount,
		runs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:    registry,
		reqDuration: reqDuration,
		reqCount:    reqCount,
		runs:        runs,
		handler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
}

// Middleware observes every request, labelled by its matched route pattern.
func (m *Metrics) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snoop := httpsnoop.CaptureMetrics(next, w, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}

			m.reqCount.WithLabelValues(r.Method, route, strconv.Itoa(snoop.Code)).Inc()
			m.reqDuration.WithLabelValues(r.Method, route).Observe(snoop.Duration.Seconds())
		})
	}
}

// RecordRun counts a settled run. It never fails, so Metrics can sit next to the history recorder.
func (m *Metrics) RecordRun(run *models.Run) error {
	outcome := "failure"
	if run.Success() {
		outcome = "success"
	}
	m.runs.WithLabelValues(string(run.Surface()), outcome).Inc()
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Routes implements [Handler].
func (m *Metrics) Routes() []string {
	return []string{"/metrics"}
}

// ServeHTTP implements [http.Handler].
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
