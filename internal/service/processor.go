package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/draftops/outreach-engine/internal/domain"
	"github.com/draftops/outreach-engine/internal/mailaddr"
	"github.com/draftops/outreach-engine/internal/placeholder"
	"github.com/draftops/outreach-engine/internal/provider"
)

// processRecipient runs the per-recipient pipeline on a private copy:
// template selection, domain validation, company-info normalization,
// placeholder resolution, draft creation. Linear, no retries; any step
// failure is terminal for this attempt. When the group has more than one
// member the recipient is the group's primary and one combined draft is
// addressed to every member.
//
// A non-nil draft result is returned whenever the draft service answered,
// so the orchestrator can detect the auth-required halt condition. Panics
// are contained here and become an error status; the orchestrator never
// sees them.
func (s *BatchService) processRecipient(
	ctx context.Context,
	rec domain.Recipient,
	enrichment *domain.EnrichmentResult,
	group []domain.Recipient,
	settings Settings,
) (out domain.Recipient, draft *domain.DraftResult) {
	defer func() {
		if r := recover(); r != nil {
			message := fmt.Sprintf("unexpected failure: %v", r)
			rec.AddStep(domain.StepProcessRecipient, domain.StepError, message)
			rec.Status = domain.StatusError
			rec.Progress = domain.ProgressDone
			rec.Error = message
			out = rec
			draft = nil
		}
	}()

	combined := len(group) > 1

	rec.AddStep(domain.StepInitialization, domain.StepCompleted, "")

	tpl, err := domain.TemplateByID(settings.TemplateID)
	if err != nil {
		return failStep(rec, domain.StepTemplateSelection, "No template selected"), nil
	}
	rec.AddStep(domain.StepTemplateSelection, domain.StepCompleted, tpl.Name)

	domainName := mailaddr.Domain(rec.RecipientEmail)
	if domainName == "" {
		return failStep(rec, domain.StepDomainAnalysis, "Invalid email domain"), nil
	}
	rec.AddStep(domain.StepDomainAnalysis, domain.StepCompleted, domainName)

	if enrichment == nil {
		enrichment = domain.FallbackEnrichment(domainName, "no enrichment data")
	}
	if enrichment.Success {
		rec.AddStep(domain.StepScrapeWebsite, domain.StepCompleted, "company data retrieved")
	} else {
		detail := "fallback company data used"
		if enrichment.Error != "" {
			detail += ": " + enrichment.Error
		}
		rec.AddStep(domain.StepScrapeWebsite, domain.StepCompleted, detail)
	}

	heuristicName := mailaddr.CompanyName(rec.RecipientEmail)
	info := domain.NormalizeCompanyInfo(enrichment, heuristicName)
	rec.CompanyInfo = &info
	rec.Progress = domain.ProgressEnriched
	rec.AddStep(domain.StepExtractCompanyInfo, domain.StepCompleted, info.Name)
	rec.AddStep(domain.StepAnalyzeIndustry, domain.StepCompleted, info.Industry)
	rec.AddStep(domain.StepAnalyzeDesignFocus, domain.StepCompleted, info.DesignFocus)
	rec.AddStep(domain.StepAnalyzeDevFocus, domain.StepCompleted, info.DevFocus)
	rec.AddStep(domain.StepAnalyzeAIFocus, domain.StepCompleted, info.AIFocus)

	recipientName := mailaddr.DisplayName(rec.RecipientEmail)
	if combined {
		names := make([]string, 0, len(group))
		for i := range group {
			if name := mailaddr.DisplayName(group[i].RecipientEmail); name != "" {
				names = append(names, name)
			}
		}
		if joined := joinNames(names); joined != "" {
			recipientName = joined
		}
		rec.AddStep(domain.StepMultiRecipient, domain.StepCompleted,
			fmt.Sprintf("combined draft for %d recipients", len(group)))
	}

	rec.AddStep(domain.StepPrepareTemplate, domain.StepCompleted, tpl.ID)

	special := placeholder.Pass{
		{Name: "Recipient's Company", Value: info.Name},
		{Name: "industry", Value: info.Industry},
		{Name: "business_focus", Value: info.BusinessFocus},
		{Name: "Insert a line about their product, vision", Value: domain.ProductVisionLine(enrichment)},
		{Name: "specific achievement or aspect of their business", Value: info.BusinessFocus},
	}
	general := placeholder.Pass{
		{Name: "Recipient", Value: recipientName},
		{Name: "Your Name", Value: settings.SenderName},
		{Name: "Your Company", Value: settings.SenderCompany},
		{Name: "design_focus", Value: info.DesignFocus},
		{Name: "dev_focus", Value: info.DevFocus},
		{Name: "ai_focus", Value: info.AIFocus},
	}
	fallbacks := placeholder.Pass{
		{Name: "Recipient", Value: "there"},
		{Name: "Recipient's Company", Value: "your company"},
		{Name: "industry", Value: domain.DefaultIndustry},
		{Name: "design_focus", Value: domain.DefaultDesignFocus},
		{Name: "dev_focus", Value: domain.DefaultDevFocus},
		{Name: "ai_focus", Value: domain.DefaultAIFocus},
	}

	subject, body := placeholder.Resolve(tpl.Subject, tpl.Body, []placeholder.Pass{special, general}, fallbacks)
	rec.Subject = subject
	rec.Body = body
	rec.Status = domain.StatusProcessed
	rec.Progress = domain.ProgressResolved
	rec.AddStep(domain.StepTemplateCustomization, domain.StepCompleted, "")

	address := rec.RecipientEmail
	if combined {
		addresses := make([]string, 0, len(group))
		for i := range group {
			addresses = append(addresses, group[i].RecipientEmail)
		}
		address = strings.Join(addresses, ", ")
	}
	rec.AddStep(domain.StepPrepareDraft, domain.StepCompleted, address)

	result, err := s.drafts.CreateDraft(ctx, provider.DraftRequest{
		RecipientEmail: address,
		Subject:        subject,
		Body:           body,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncDraftFailed("provider_error")
		}
		return failStep(rec, domain.StepCreateDraft, err.Error()), nil
	}

	if result.AuthRequired {
		if s.metrics != nil {
			s.metrics.IncDraftFailed("auth_required")
		}
		return failStep(rec, domain.StepCreateDraft, "Authentication required"), result
	}

	if !result.Success {
		message := result.Error
		if message == "" {
			message = "Failed to create draft"
		}
		if s.metrics != nil {
			s.metrics.IncDraftFailed("rejected")
		}
		return failStep(rec, domain.StepCreateDraft, message), result
	}

	rec.AddStep(domain.StepCreateDraft, domain.StepCompleted, result.DraftID)
	rec.Status = domain.StatusSuccess
	rec.Progress = domain.ProgressDone
	rec.Error = ""
	if s.metrics != nil {
		mode := "single"
		if combined {
			mode = "combined"
		}
		s.metrics.IncDraftCreated(mode)
	}
	return rec, result
}

// failStep marks one step and the whole attempt failed.
func failStep(rec domain.Recipient, step domain.StepKind, message string) domain.Recipient {
	rec.AddStep(step, domain.StepError, message)
	rec.Status = domain.StatusError
	rec.Progress = domain.ProgressDone
	rec.Error = message
	return rec
}

// joinNames renders a human-readable recipient list: "A", "A and B",
// "A, B, and C".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
