package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/draftops/outreach-engine/internal/domain"
	"github.com/draftops/outreach-engine/internal/service"
	"github.com/draftops/outreach-engine/internal/store"
	"github.com/draftops/outreach-engine/internal/transport"
)

type stubBatchService struct {
	processFn  func(ctx context.Context) error
	refreshFn  func(ctx context.Context, domainName string) error
	updateFn   func(settings service.Settings) error
	settingsFn func() service.Settings
	statusFn   func() service.BatchStatus
}

func (s *stubBatchService) ProcessAll(ctx context.Context) error {
	if s.processFn == nil {
		return nil
	}
	return s.processFn(ctx)
}

func (s *stubBatchService) RefreshDomain(ctx context.Context, domainName string) error {
	if s.refreshFn == nil {
		return nil
	}
	return s.refreshFn(ctx, domainName)
}

func (s *stubBatchService) UpdateSettings(settings service.Settings) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(settings)
}

func (s *stubBatchService) Settings() service.Settings {
	if s.settingsFn == nil {
		return service.Settings{}
	}
	return s.settingsFn()
}

func (s *stubBatchService) Status() service.BatchStatus {
	if s.statusFn == nil {
		return service.BatchStatus{}
	}
	return s.statusFn()
}

func newBatchTestApp(t *testing.T, batch *store.BatchStore, svc BatchService) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})

	if err := RegisterBatchRoutes(app, batch, svc); err != nil {
		t.Fatalf("RegisterBatchRoutes() error = %v", err)
	}

	return app
}

func performRequest(t *testing.T, app *fiber.App, method string, path string, body string) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	_ = resp.Body.Close()

	return resp, respBody
}

func TestBatchIntegration_AddRecipient(t *testing.T) {
	t.Parallel()

	batch := store.NewBatchStore()
	app := newBatchTestApp(t, batch, &stubBatchService{})

	resp, body := performRequest(t, app, http.MethodPost, "/v1/recipients", `{"email":"dev@example.com"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", resp.StatusCode, string(body))
	}
	var created map[string]any
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if created["recipientEmail"] != "dev@example.com" {
		t.Fatalf("recipientEmail = %v", created["recipientEmail"])
	}
	if created["status"] != domain.StatusPending.String() {
		t.Fatalf("status = %v, want pending", created["status"])
	}

	resp, _ = performRequest(t, app, http.MethodPost, "/v1/recipients", `{"email":"dev@example.com"}`)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409 for duplicate", resp.StatusCode)
	}

	resp, _ = performRequest(t, app, http.MethodPost, "/v1/recipients", `{"email":"not-an-address"}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for address without @", resp.StatusCode)
	}

	resp, _ = performRequest(t, app, http.MethodPost, "/v1/recipients", `{not json`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for malformed body", resp.StatusCode)
	}
}

func TestBatchIntegration_ImportRecipients(t *testing.T) {
	t.Parallel()

	batch := store.NewBatchStore()
	if _, err := batch.Add("b@y.com"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	app := newBatchTestApp(t, batch, &stubBatchService{})

	resp, body := performRequest(t, app, http.MethodPost, "/v1/recipients/import",
		`{"emails":"a@x.com, a@x.com, b@y.com"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", resp.StatusCode, string(body))
	}
	var imported importRecipientsResponse
	if err := json.Unmarshal(body, &imported); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if imported.Count != 1 || len(imported.Added) != 1 {
		t.Fatalf("count = %d, want duplicates collapsed to one new entry", imported.Count)
	}
	if imported.Added[0].RecipientEmail != "a@x.com" {
		t.Fatalf("added = %q, want a@x.com", imported.Added[0].RecipientEmail)
	}

	resp, _ = performRequest(t, app, http.MethodPost, "/v1/recipients/import", `{"emails":"b@y.com"}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400 when nothing new to import", resp.StatusCode)
	}
}

func TestBatchIntegration_RecipientLifecycle(t *testing.T) {
	t.Parallel()

	batch := store.NewBatchStore()
	added, err := batch.Add("dev@example.com")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	app := newBatchTestApp(t, batch, &stubBatchService{})

	resp, body := performRequest(t, app, http.MethodGet, "/v1/recipients", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var list listRecipientsResponse
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("total = %d, want 1", list.Total)
	}

	resp, _ = performRequest(t, app, http.MethodGet, "/v1/recipients/"+added.ID, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	resp, _ = performRequest(t, app, http.MethodGet, "/v1/recipients/no-such-id", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	resp, _ = performRequest(t, app, http.MethodDelete, "/v1/recipients/"+added.ID, "")
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	resp, _ = performRequest(t, app, http.MethodDelete, "/v1/recipients", "")
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("status = %d, want 204 for clear", resp.StatusCode)
	}
	if batch.Len() != 0 {
		t.Fatalf("batch len = %d, want 0 after clear", batch.Len())
	}
}

func TestBatchIntegration_ListTemplates(t *testing.T) {
	t.Parallel()

	app := newBatchTestApp(t, store.NewBatchStore(), &stubBatchService{})

	resp, body := performRequest(t, app, http.MethodGet, "/v1/templates", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var payload struct {
		Data []domain.Template `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if len(payload.Data) == 0 {
		t.Fatal("expected built-in templates")
	}
	for _, tpl := range payload.Data {
		if tpl.ID == "" || tpl.Subject == "" || tpl.Body == "" {
			t.Fatalf("incomplete template: %+v", tpl)
		}
	}
}

func TestBatchIntegration_Settings(t *testing.T) {
	t.Parallel()

	current := service.Settings{}
	svc := &stubBatchService{
		updateFn: func(settings service.Settings) error {
			if settings.TemplateID == "no-such-template" {
				return fmt.Errorf("%w: template %q", domain.ErrNotFound, settings.TemplateID)
			}
			current = settings
			return nil
		},
		settingsFn: func() service.Settings { return current },
	}
	app := newBatchTestApp(t, store.NewBatchStore(), svc)

	resp, body := performRequest(t, app, http.MethodPut, "/v1/settings",
		`{"senderName":"Jane","senderCompany":"Draftops","templateId":"cold-email-1"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	resp, body = performRequest(t, app, http.MethodGet, "/v1/settings", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var settings service.Settings
	if err := json.Unmarshal(body, &settings); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if settings.SenderName != "Jane" || settings.TemplateID != "cold-email-1" {
		t.Fatalf("settings = %+v", settings)
	}

	resp, _ = performRequest(t, app, http.MethodPut, "/v1/settings", `{"templateId":"no-such-template"}`)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404 for unknown template", resp.StatusCode)
	}
}

func TestBatchIntegration_ProcessBatch(t *testing.T) {
	t.Parallel()

	svc := &stubBatchService{
		statusFn: func() service.BatchStatus {
			return service.BatchStatus{
				Total:  2,
				Counts: map[domain.Status]int{domain.StatusSuccess: 2},
			}
		},
	}
	app := newBatchTestApp(t, store.NewBatchStore(), svc)

	resp, body := performRequest(t, app, http.MethodPost, "/v1/batch/process", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}
	var status batchStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if status.Counts["success"] != 2 {
		t.Fatalf("counts = %v", status.Counts)
	}
}

func TestBatchIntegration_ProcessBatchBusy(t *testing.T) {
	t.Parallel()

	svc := &stubBatchService{
		processFn: func(context.Context) error { return domain.ErrBatchBusy },
	}
	app := newBatchTestApp(t, store.NewBatchStore(), svc)

	resp, _ := performRequest(t, app, http.MethodPost, "/v1/batch/process", "")
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409 while a run is active", resp.StatusCode)
	}
}

func TestBatchIntegration_RefreshDomain(t *testing.T) {
	t.Parallel()

	var refreshed string
	svc := &stubBatchService{
		refreshFn: func(_ context.Context, domainName string) error {
			if domainName == "missing.com" {
				return fmt.Errorf("%w: no recipients for domain %q", domain.ErrNotFound, domainName)
			}
			refreshed = domainName
			return nil
		},
	}
	app := newBatchTestApp(t, store.NewBatchStore(), svc)

	resp, _ := performRequest(t, app, http.MethodPost, "/v1/domains/acme.io/refresh", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if refreshed != "acme.io" {
		t.Fatalf("refreshed = %q, want acme.io", refreshed)
	}

	resp, _ = performRequest(t, app, http.MethodPost, "/v1/domains/missing.com/refresh", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestBatchIntegration_BatchStatusAuthState(t *testing.T) {
	t.Parallel()

	svc := &stubBatchService{
		statusFn: func() service.BatchStatus {
			return service.BatchStatus{
				Running:      false,
				Total:        1,
				Counts:       map[domain.Status]int{domain.StatusError: 1},
				AuthRequired: true,
				AuthURL:      "https://accounts.example/reauth",
			}
		},
	}
	app := newBatchTestApp(t, store.NewBatchStore(), svc)

	resp, body := performRequest(t, app, http.MethodGet, "/v1/batch/status", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var status batchStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if !status.AuthRequired || status.AuthURL != "https://accounts.example/reauth" {
		t.Fatalf("auth state = %v/%q", status.AuthRequired, status.AuthURL)
	}
}
