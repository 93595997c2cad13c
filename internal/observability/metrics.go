package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the API and batch pipeline.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal       *prometheus.CounterVec
	httpRequestDuration     *prometheus.HistogramVec
	draftsCreatedTotal      *prometheus.CounterVec
	draftsFailedTotal       *prometheus.CounterVec
	enrichmentRequestsTotal *prometheus.CounterVec
	enrichmentDuration      prometheus.Histogram
	batchRunsTotal          *prometheus.CounterVec
	queuedRecipients        prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "outreach_engine",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "outreach_engine",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		draftsCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "outreach_engine",
				Name:      "drafts_created_total",
				Help:      "Total number of drafts created, by single or combined mode.",
			},
			[]string{"mode"},
		),
		draftsFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "outreach_engine",
				Name:      "drafts_failed_total",
				Help:      "Total number of draft creations that failed, by reason.",
			},
			[]string{"reason"},
		),
		enrichmentRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "outreach_engine",
				Name:      "enrichment_requests_total",
				Help:      "Total number of domain enrichment lookups by outcome.",
			},
			[]string{"outcome"},
		),
		enrichmentDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "outreach_engine",
				Name:      "enrichment_duration_seconds",
				Help:      "Company-analysis call duration in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
		batchRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "outreach_engine",
				Name:      "batch_runs_total",
				Help:      "Total number of batch runs by outcome.",
			},
			[]string{"outcome"},
		),
		queuedRecipients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "outreach_engine",
				Name:      "queued_recipients",
				Help:      "Current number of recipients in the batch.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.draftsCreatedTotal,
		m.draftsFailedTotal,
		m.enrichmentRequestsTotal,
		m.enrichmentDuration,
		m.batchRunsTotal,
		m.queuedRecipients,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncDraftCreated(mode string) {
	if m == nil {
		return
	}
	m.draftsCreatedTotal.WithLabelValues(normalizeLabel(mode)).Inc()
}

func (m *Metrics) IncDraftFailed(reason string) {
	if m == nil {
		return
	}
	m.draftsFailedTotal.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *Metrics) IncEnrichment(outcome string) {
	if m == nil {
		return
	}
	m.enrichmentRequestsTotal.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) ObserveEnrichmentDuration(duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.enrichmentDuration.Observe(seconds)
}

func (m *Metrics) IncBatchRun(outcome string) {
	if m == nil {
		return
	}
	m.batchRunsTotal.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) SetQueuedRecipients(count int) {
	if m == nil {
		return
	}
	m.queuedRecipients.Set(float64(count))
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(label string) string {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
