// Package metrics owns the Prometheus collectors. A nil *Metrics is valid
// and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"jobtrack/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobtrack"

type Metrics struct {
	registry *prometheus.Registry

	storeOps     *prometheus.HistogramVec
	consumes     *prometheus.CounterVec
	jobStatuses  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		storeOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Latency of key-value store operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 9),
		}, []string{"backend", "op", "result"}),
		consumes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consume_total",
			Help:      "Consume calls by outcome (claimed, empty, error).",
		}, []string{"outcome"}),
		jobStatuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_status_total",
			Help:      "Jobs entering each status.",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.storeOps, m.consumes, m.jobStatuses, m.httpRequests,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveStoreOp(backend, op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeOps.WithLabelValues(backend, op, result).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveConsume(outcome string) {
	if m == nil {
		return
	}
	m.consumes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveJobStatus(status domain.JobStatus) {
	if m == nil {
		return
	}
	m.jobStatuses.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}
