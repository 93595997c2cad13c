package provider

import (
	"context"

	"github.com/draftops/outreach-engine/internal/domain"
)

// Enricher is the outbound port to the company-analysis service. One call
// per domain; repeat calls may return different text.
type Enricher interface {
	Enrich(ctx context.Context, domainName string) (*domain.EnrichmentResult, error)
}

// DraftRequest carries a resolved draft to the mail-draft service. The
// recipient field is a single address or a comma-joined set for combined
// drafts.
type DraftRequest struct {
	RecipientEmail string
	Subject        string
	Body           string
}

// DraftService is the outbound port to the mail-draft service. It only
// creates drafts; nothing here sends mail.
type DraftService interface {
	CreateDraft(ctx context.Context, req DraftRequest) (*domain.DraftResult, error)
}
