package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/draftops/outreach-engine/internal/domain"
	"github.com/draftops/outreach-engine/internal/service"
	"github.com/draftops/outreach-engine/internal/store"
)

type BatchService interface {
	ProcessAll(ctx context.Context) error
	RefreshDomain(ctx context.Context, domainName string) error
	UpdateSettings(settings service.Settings) error
	Settings() service.Settings
	Status() service.BatchStatus
}

type BatchHandler struct {
	batch   *store.BatchStore
	service BatchService
}

func NewBatchHandler(batch *store.BatchStore, service BatchService) (*BatchHandler, error) {
	if batch == nil {
		return nil, fmt.Errorf("batch store is required")
	}
	if service == nil {
		return nil, fmt.Errorf("batch service is required")
	}
	return &BatchHandler{batch: batch, service: service}, nil
}

func RegisterBatchRoutes(router fiber.Router, batch *store.BatchStore, service BatchService) error {
	h, err := NewBatchHandler(batch, service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/recipients", h.AddRecipient)
	v1.Post("/recipients/import", h.ImportRecipients)
	v1.Get("/recipients", h.ListRecipients)
	v1.Get("/recipients/:id", h.GetRecipient)
	v1.Delete("/recipients/:id", h.RemoveRecipient)
	v1.Delete("/recipients", h.ClearRecipients)
	v1.Get("/templates", h.ListTemplates)
	v1.Put("/settings", h.UpdateSettings)
	v1.Get("/settings", h.GetSettings)
	v1.Post("/batch/process", h.ProcessBatch)
	v1.Post("/domains/:domain/refresh", h.RefreshDomain)
	v1.Get("/batch/status", h.GetBatchStatus)

	return nil
}

type addRecipientRequest struct {
	Email string `json:"email"`
}

type importRecipientsRequest struct {
	Emails string `json:"emails"`
}

type recipientResponse struct {
	ID                string                    `json:"id"`
	RecipientEmail    string                    `json:"recipientEmail"`
	Status            string                    `json:"status"`
	Progress          int                       `json:"progress"`
	Subject           string                    `json:"subject,omitempty"`
	Body              string                    `json:"body,omitempty"`
	CompanyInfo       *domain.CompanyInfo       `json:"companyInfo,omitempty"`
	Error             string                    `json:"error,omitempty"`
	ProcessingDetails *domain.ProcessingDetails `json:"processingDetails,omitempty"`
	CreatedAt         time.Time                 `json:"createdAt"`
	UpdatedAt         time.Time                 `json:"updatedAt"`
}

type importRecipientsResponse struct {
	Added []recipientResponse `json:"added"`
	Count int                 `json:"count"`
}

type listRecipientsResponse struct {
	Data  []recipientResponse `json:"data"`
	Total int                 `json:"total"`
}

type batchStatusResponse struct {
	Running      bool           `json:"running"`
	Total        int            `json:"total"`
	Counts       map[string]int `json:"counts"`
	AuthRequired bool           `json:"authRequired"`
	AuthURL      string         `json:"authUrl,omitempty"`
}

func (h *BatchHandler) AddRecipient(c *fiber.Ctx) error {
	var req addRecipientRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rec, err := h.batch.Add(req.Email)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toRecipientResponse(rec))
}

func (h *BatchHandler) ImportRecipients(c *fiber.Ctx) error {
	var req importRecipientsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	added, err := h.batch.BulkImport(req.Emails)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(importRecipientsResponse{
		Added: toRecipientResponses(added),
		Count: len(added),
	})
}

func (h *BatchHandler) ListRecipients(c *fiber.Ctx) error {
	recipients := h.batch.List()
	return c.Status(fiber.StatusOK).JSON(listRecipientsResponse{
		Data:  toRecipientResponses(recipients),
		Total: len(recipients),
	})
}

func (h *BatchHandler) GetRecipient(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	rec, err := h.batch.Get(id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toRecipientResponse(rec))
}

func (h *BatchHandler) RemoveRecipient(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.batch.Remove(id); err != nil {
		return toHTTPError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *BatchHandler) ClearRecipients(c *fiber.Ctx) error {
	h.batch.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *BatchHandler) ListTemplates(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": domain.Templates(),
	})
}

func (h *BatchHandler) UpdateSettings(c *fiber.Ctx) error {
	var req service.Settings
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.UpdateSettings(req); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(h.service.Settings())
}

func (h *BatchHandler) GetSettings(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.service.Settings())
}

// ProcessBatch runs the whole batch synchronously; clients poll per-recipient
// progress via the list endpoint while a long run is in flight elsewhere.
func (h *BatchHandler) ProcessBatch(c *fiber.Ctx) error {
	if err := h.service.ProcessAll(c.Context()); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toBatchStatusResponse(h.service.Status()))
}

func (h *BatchHandler) RefreshDomain(c *fiber.Ctx) error {
	domainName := strings.TrimSpace(c.Params("domain"))
	if err := h.service.RefreshDomain(c.Context(), domainName); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toBatchStatusResponse(h.service.Status()))
}

func (h *BatchHandler) GetBatchStatus(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(toBatchStatusResponse(h.service.Status()))
}

func toBatchStatusResponse(status service.BatchStatus) batchStatusResponse {
	counts := make(map[string]int, len(status.Counts))
	for s, n := range status.Counts {
		counts[s.String()] = n
	}
	return batchStatusResponse{
		Running:      status.Running,
		Total:        status.Total,
		Counts:       counts,
		AuthRequired: status.AuthRequired,
		AuthURL:      status.AuthURL,
	}
}

func toRecipientResponses(recipients []domain.Recipient) []recipientResponse {
	responses := make([]recipientResponse, 0, len(recipients))
	for i := range recipients {
		responses = append(responses, toRecipientResponse(&recipients[i]))
	}
	return responses
}

func toRecipientResponse(rec *domain.Recipient) recipientResponse {
	if rec == nil {
		return recipientResponse{}
	}

	return recipientResponse{
		ID:                rec.ID,
		RecipientEmail:    rec.RecipientEmail,
		Status:            rec.Status.String(),
		Progress:          rec.Progress,
		Subject:           rec.Subject,
		Body:              rec.Body,
		CompanyInfo:       rec.CompanyInfo,
		Error:             rec.Error,
		ProcessingDetails: rec.ProcessingDetails,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrBatchBusy):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
