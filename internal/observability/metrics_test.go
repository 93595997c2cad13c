package observability

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsBatchCollectors(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()

	metrics.IncDraftCreated("single")
	metrics.IncDraftFailed("provider_error")
	metrics.IncEnrichment("fallback")
	metrics.ObserveEnrichmentDuration(120 * time.Millisecond)
	metrics.IncBatchRun("completed")
	metrics.SetQueuedRecipients(3)
	metrics.SetQueuedRecipients(2)

	if got := testutil.ToFloat64(metrics.draftsCreatedTotal.WithLabelValues("single")); got != 1 {
		t.Fatalf("drafts_created_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.draftsFailedTotal.WithLabelValues("provider_error")); got != 1 {
		t.Fatalf("drafts_failed_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.enrichmentRequestsTotal.WithLabelValues("fallback")); got != 1 {
		t.Fatalf("enrichment_requests_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.batchRunsTotal.WithLabelValues("completed")); got != 1 {
		t.Fatalf("batch_runs_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.queuedRecipients); got != 2 {
		t.Fatalf("queued_recipients = %v, want 2", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsRequest(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/livez", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/livez", "200")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsErrorStatus(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	_, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/boom", "500")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}
