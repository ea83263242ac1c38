package server

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricHTTPRequestsTotal   = "fare_http_requests_total"
	MetricHTTPRequestDuration = "fare_http_request_duration_seconds"
	MetricRankingItems        = "fare_ranking_items"
	MetricAuditWindows        = "fare_audit_windows"
)

// Metrics contains the Prometheus collectors of the service.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rankingItems        *prometheus.HistogramVec
	auditWindows        *prometheus.HistogramVec
}

// NewMetrics creates the collectors without registering them.
func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"method", "path", "status"},
		),
		rankingItems: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRankingItems,
				Help:    "Number of items in rankings received",
				Buckets: prometheus.ExponentialBuckets(10, 10, 6), // 10 to 1M items
			},
			[]string{"path"},
		),
		auditWindows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricAuditWindows,
				Help:    "Number of windows evaluated per audit",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"metric"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.rankingItems,
		m.auditWindows,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRanking records the size of a ranking received on path.
func (m *Metrics) ObserveRanking(path string, items int) {
	m.rankingItems.WithLabelValues(path).Observe(float64(items))
}

// ObserveAudit records how many windows an audit produced.
func (m *Metrics) ObserveAudit(metric string, windows int) {
	m.auditWindows.WithLabelValues(metric).Observe(float64(windows))
}

// Middleware records request count and latency per route. Errors are
// labelled with the status the error handler will send.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}
		labels := prometheus.Labels{
			"method": c.Method(),
			"path":   c.Route().Path,
			"status": strconv.Itoa(status),
		}
		m.httpRequestsTotal.With(labels).Inc()
		m.httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
		return err
	}
}
