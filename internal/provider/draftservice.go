package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/draftops/outreach-engine/internal/domain"
)

const defaultDraftTimeout = 20 * time.Second

type draftResponse struct {
	Success      bool   `json:"success"`
	DraftID      string `json:"draft_id"`
	Detail       string `json:"detail"`
	Error        string `json:"error"`
	AuthRequired bool   `json:"auth_required"`
	AuthURL      string `json:"auth_url"`
}

// DraftClient calls the mail-draft service over HTTP. The service submits
// drafts to the user's mailbox and may demand re-authentication.
type DraftClient struct {
	client  *resty.Client
	baseURL string
}

func NewDraftClient(baseURL string) (*DraftClient, error) {
	client := resty.New()
	client.SetTimeout(defaultDraftTimeout)
	client.SetRetryCount(0)

	return NewDraftClientWithClient(baseURL, client)
}

func NewDraftClientWithClient(baseURL string, client *resty.Client) (*DraftClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("draft service base url is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid draft service base url: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	return &DraftClient{client: client, baseURL: trimmed}, nil
}

func (c *DraftClient) CreateDraft(ctx context.Context, req DraftRequest) (*domain.DraftResult, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("draft client is not initialized")
	}
	if strings.TrimSpace(req.RecipientEmail) == "" {
		return nil, fmt.Errorf("recipient email is required")
	}

	var parsed draftResponse
	response, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"recipient_email": req.RecipientEmail,
			"subject":         req.Subject,
			"body":            req.Body,
		}).
		SetResult(&parsed).
		SetError(&parsed).
		Post(c.baseURL + "/create-draft")
	if err != nil {
		return nil, &ProviderError{
			Message:   "draft request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}

	// Auth demands can ride on any status code; surface them as data, not
	// as a call failure, so the orchestrator can halt the batch.
	if parsed.AuthRequired && parsed.AuthURL != "" {
		return &domain.DraftResult{
			Success:      false,
			AuthRequired: true,
			AuthURL:      parsed.AuthURL,
		}, nil
	}

	statusCode := response.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		message := strings.TrimSpace(parsed.Detail)
		if message == "" {
			message = strings.TrimSpace(parsed.Error)
		}
		if message == "" {
			message = fmt.Sprintf("draft service returned status %d", statusCode)
		}
		return &domain.DraftResult{Success: false, Error: message}, nil
	}

	if !parsed.Success {
		message := strings.TrimSpace(parsed.Error)
		if message == "" {
			message = "Failed to create draft"
		}
		return &domain.DraftResult{Success: false, Error: message}, nil
	}

	return &domain.DraftResult{Success: true, DraftID: parsed.DraftID}, nil
}
