package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg       *prometheus.Registry
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	rows      prometheus.Counter
	parseErrs prometheus.Counter
	reports   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stayreport",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stayreport",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stayreport",
			Name:      "rows_normalized_total",
			Help:      "Uploaded rows normalized into records.",
		}),
		parseErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stayreport",
			Name:      "parse_errors_total",
			Help:      "Uploads rejected because a row could not be parsed.",
		}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stayreport",
			Name:      "reports_generated_total",
			Help:      "Reports produced by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.requests, m.latency, m.rows, m.parseErrs, m.reports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) RowsNormalized(n int) {
	if m == nil {
		return
	}
	m.rows.Add(float64(n))
}

func (m *Metrics) ParseError() {
	if m == nil {
		return
	}
	m.parseErrs.Inc()
}

func (m *Metrics) ReportGenerated(kind string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(kind).Inc()
}
