package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/draftops/outreach-engine/internal/domain"
	"github.com/draftops/outreach-engine/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100
)

type DraftHandler struct {
	drafts repository.DraftRepository
}

func NewDraftHandler(drafts repository.DraftRepository) (*DraftHandler, error) {
	if drafts == nil {
		return nil, fmt.Errorf("draft repository is required")
	}
	return &DraftHandler{drafts: drafts}, nil
}

func RegisterDraftRoutes(router fiber.Router, drafts repository.DraftRepository) error {
	h, err := NewDraftHandler(drafts)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/drafts", h.ListDrafts)
	v1.Get("/drafts/:id", h.GetDraft)

	return nil
}

type draftRecordResponse struct {
	ID         string    `json:"id"`
	Domain     string    `json:"domain"`
	Recipients string    `json:"recipients"`
	Subject    string    `json:"subject"`
	DraftID    string    `json:"draftId"`
	Combined   bool      `json:"combined"`
	CreatedAt  time.Time `json:"createdAt"`
}

type listDraftsResponse struct {
	Data []draftRecordResponse `json:"data"`
	Meta listMeta              `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

func (h *DraftHandler) ListDrafts(c *fiber.Ctx) error {
	params, err := parseDraftListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	records, total, err := h.drafts.List(c.Context(), params)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]draftRecordResponse, 0, len(records))
	for i := range records {
		data = append(data, toDraftRecordResponse(&records[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listDraftsResponse{
		Data: data,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func (h *DraftHandler) GetDraft(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	record, err := h.drafts.GetByID(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toDraftRecordResponse(record))
}

func parseDraftListParams(c *fiber.Ctx) (repository.ListParams, error) {
	params := repository.ListParams{
		Domain:   strings.TrimSpace(c.Query("domain")),
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.ListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.ListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	from, err := parseRFC3339Query(c.Query("from"), "from")
	if err != nil {
		return repository.ListParams{}, err
	}
	to, err := parseRFC3339Query(c.Query("to"), "to")
	if err != nil {
		return repository.ListParams{}, err
	}
	params.From = from
	params.To = to

	return params, nil
}

func parseRFC3339Query(value string, field string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339", domain.ErrValidation, field)
	}
	return &t, nil
}

func toDraftRecordResponse(record *domain.DraftRecord) draftRecordResponse {
	if record == nil {
		return draftRecordResponse{}
	}

	return draftRecordResponse{
		ID:         record.ID,
		Domain:     record.Domain,
		Recipients: record.Recipients,
		Subject:    record.Subject,
		DraftID:    record.DraftID,
		Combined:   record.Combined,
		CreatedAt:  record.CreatedAt,
	}
}
