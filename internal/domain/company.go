package domain

import (
	"fmt"
	"strings"
)

// Fallback defaults used whenever an enrichment field is absent or empty.
const (
	DefaultIndustry      = "technology"
	DefaultBusinessFocus = "business growth and digital transformation"
	DefaultDesignFocus   = "UI/UX optimization for improved user engagement"
	DefaultDevFocus      = "Scalable, AI-powered architecture"
	DefaultAIFocus       = "Custom AI solutions for automation and efficiency"
)

// EnrichmentResult is the raw company-analysis payload for one domain. Any
// field may be empty; Success false means the lookup itself failed.
type EnrichmentResult struct {
	Success       bool   `json:"success"`
	CompanyName   string `json:"company_name"`
	Industry      string `json:"industry"`
	BusinessFocus string `json:"business_focus"`
	DesignFocus   string `json:"design_focus"`
	DevFocus      string `json:"dev_focus"`
	AIFocus       string `json:"ai_focus"`
	Description   string `json:"description"`
	Error         string `json:"error,omitempty"`
}

// FallbackEnrichment synthesizes a failure-flagged result so a transport
// error from the analysis service never blocks draft creation.
func FallbackEnrichment(domainName, reason string) *EnrichmentResult {
	name := domainName
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return &EnrichmentResult{
		Success:       false,
		CompanyName:   name,
		Industry:      DefaultIndustry,
		BusinessFocus: DefaultBusinessFocus,
		DesignFocus:   DefaultDesignFocus,
		DevFocus:      DefaultDevFocus,
		AIFocus:       DefaultAIFocus,
		Description:   fmt.Sprintf("A company providing solutions in the %s industry", DefaultIndustry),
		Error:         reason,
	}
}

// CompanyInfo is the normalized snapshot attached to a recipient once its
// domain has been analyzed. Every field is populated.
type CompanyInfo struct {
	Name          string `json:"name"`
	Industry      string `json:"industry"`
	BusinessFocus string `json:"businessFocus"`
	DesignFocus   string `json:"designFocus"`
	DevFocus      string `json:"devFocus"`
	AIFocus       string `json:"aiFocus"`
}

// NormalizeCompanyInfo merges a raw enrichment result with fixed defaults,
// preferring each enrichment field when non-empty. The heuristic company
// name derived from the address backs the name field.
func NormalizeCompanyInfo(raw *EnrichmentResult, heuristicName string) CompanyInfo {
	if raw == nil {
		raw = &EnrichmentResult{}
	}
	return CompanyInfo{
		Name:          firstNonEmpty(raw.CompanyName, heuristicName),
		Industry:      firstNonEmpty(raw.Industry, DefaultIndustry),
		BusinessFocus: firstNonEmpty(raw.BusinessFocus, DefaultBusinessFocus),
		DesignFocus:   firstNonEmpty(raw.DesignFocus, DefaultDesignFocus),
		DevFocus:      firstNonEmpty(raw.DevFocus, DefaultDevFocus),
		AIFocus:       firstNonEmpty(raw.AIFocus, DefaultAIFocus),
	}
}

// ProductVisionLine derives the one-line product/vision blurb: the text
// before the first period of the description, else a generic line built
// from the industry.
func ProductVisionLine(raw *EnrichmentResult) string {
	if raw != nil && raw.Description != "" {
		line, _, _ := strings.Cut(raw.Description, ".")
		return line
	}
	industry := DefaultIndustry
	if raw != nil && raw.Industry != "" {
		industry = raw.Industry
	}
	return fmt.Sprintf("innovative solutions in %s", industry)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
