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

const defaultEnrichTimeout = 30 * time.Second

type enrichRequest struct {
	Domain string `json:"domain"`
}

// enrichResponse mirrors the analysis service payload. Focus fields arrive
// under longer names than the core uses.
type enrichResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	SearchData struct {
		CompanyName   string `json:"company_name"`
		Industry      string `json:"industry"`
		BusinessFocus string `json:"business_focus"`
		DesignFocus   string `json:"design_focus"`
		DevFocus      string `json:"development_focus"`
		AIFocus       string `json:"ai_integration_focus"`
		Description   string `json:"description"`
	} `json:"searchData"`
}

// AnalyzerClient calls the company-analysis service over HTTP.
type AnalyzerClient struct {
	client  *resty.Client
	baseURL string
}

func NewAnalyzerClient(baseURL string) (*AnalyzerClient, error) {
	client := resty.New()
	client.SetTimeout(defaultEnrichTimeout)
	client.SetRetryCount(0)

	return NewAnalyzerClientWithClient(baseURL, client)
}

func NewAnalyzerClientWithClient(baseURL string, client *resty.Client) (*AnalyzerClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("analyzer base url is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid analyzer base url: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	return &AnalyzerClient{client: client, baseURL: trimmed}, nil
}

func (c *AnalyzerClient) Enrich(ctx context.Context, domainName string) (*domain.EnrichmentResult, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("analyzer client is not initialized")
	}
	domainName = strings.TrimSpace(domainName)
	if domainName == "" {
		return nil, fmt.Errorf("domain is required")
	}

	var parsed enrichResponse
	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(enrichRequest{Domain: domainName}).
		SetResult(&parsed).
		Post(c.baseURL + "/scrape-website")
	if err != nil {
		return nil, &ProviderError{
			Message:   "analysis request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}

	statusCode := response.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, &ProviderError{
			StatusCode: statusCode,
			Message:    fmt.Sprintf("analysis service returned status %d", statusCode),
			Transient:  isTransientHTTPStatus(statusCode),
		}
	}

	return &domain.EnrichmentResult{
		Success:       parsed.Success,
		CompanyName:   parsed.SearchData.CompanyName,
		Industry:      parsed.SearchData.Industry,
		BusinessFocus: parsed.SearchData.BusinessFocus,
		DesignFocus:   parsed.SearchData.DesignFocus,
		DevFocus:      parsed.SearchData.DevFocus,
		AIFocus:       parsed.SearchData.AIFocus,
		Description:   parsed.SearchData.Description,
		Error:         parsed.Error,
	}, nil
}
