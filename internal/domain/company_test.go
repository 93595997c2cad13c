package domain

import (
	"strings"
	"testing"
)

func TestNormalizeCompanyInfo(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		raw           *EnrichmentResult
		heuristicName string
		want          CompanyInfo
	}{
		{
			name: "enrichment fields win over defaults",
			raw: &EnrichmentResult{
				Success:       true,
				CompanyName:   "Acme Corp",
				Industry:      "logistics",
				BusinessFocus: "same-day delivery",
				DesignFocus:   "driver app UX",
				DevFocus:      "event-driven routing",
				AIFocus:       "demand forecasting",
			},
			heuristicName: "Acme",
			want: CompanyInfo{
				Name:          "Acme Corp",
				Industry:      "logistics",
				BusinessFocus: "same-day delivery",
				DesignFocus:   "driver app UX",
				DevFocus:      "event-driven routing",
				AIFocus:       "demand forecasting",
			},
		},
		{
			name:          "empty enrichment falls back entirely",
			raw:           &EnrichmentResult{},
			heuristicName: "Acme",
			want: CompanyInfo{
				Name:          "Acme",
				Industry:      DefaultIndustry,
				BusinessFocus: DefaultBusinessFocus,
				DesignFocus:   DefaultDesignFocus,
				DevFocus:      DefaultDevFocus,
				AIFocus:       DefaultAIFocus,
			},
		},
		{
			name:          "nil enrichment is tolerated",
			raw:           nil,
			heuristicName: "Acme",
			want: CompanyInfo{
				Name:          "Acme",
				Industry:      DefaultIndustry,
				BusinessFocus: DefaultBusinessFocus,
				DesignFocus:   DefaultDesignFocus,
				DevFocus:      DefaultDevFocus,
				AIFocus:       DefaultAIFocus,
			},
		},
		{
			name: "partial enrichment mixes sources",
			raw: &EnrichmentResult{
				Industry: "fintech",
				AIFocus:  "fraud scoring",
			},
			heuristicName: "Paystack",
			want: CompanyInfo{
				Name:          "Paystack",
				Industry:      "fintech",
				BusinessFocus: DefaultBusinessFocus,
				DesignFocus:   DefaultDesignFocus,
				DevFocus:      DefaultDevFocus,
				AIFocus:       "fraud scoring",
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeCompanyInfo(tc.raw, tc.heuristicName); got != tc.want {
				t.Fatalf("NormalizeCompanyInfo() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestProductVisionLine(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		raw  *EnrichmentResult
		want string
	}{
		{
			name: "first sentence of description",
			raw:  &EnrichmentResult{Description: "Builds robots for warehouses. Founded 2020."},
			want: "Builds robots for warehouses",
		},
		{
			name: "description without period",
			raw:  &EnrichmentResult{Description: "Builds robots"},
			want: "Builds robots",
		},
		{
			name: "no description uses industry",
			raw:  &EnrichmentResult{Industry: "robotics"},
			want: "innovative solutions in robotics",
		},
		{
			name: "nil result uses default industry",
			raw:  nil,
			want: "innovative solutions in " + DefaultIndustry,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := ProductVisionLine(tc.raw); got != tc.want {
				t.Fatalf("ProductVisionLine() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFallbackEnrichment(t *testing.T) {
	t.Parallel()

	result := FallbackEnrichment("acme-corp.io", "connection refused")
	if result.Success {
		t.Fatal("fallback result must be failure-flagged")
	}
	if result.CompanyName != "Acme-corp" {
		t.Fatalf("CompanyName = %q, want first label capitalized", result.CompanyName)
	}
	if result.Industry != DefaultIndustry || result.DevFocus != DefaultDevFocus {
		t.Fatalf("defaults not applied: %+v", result)
	}
	if result.Error != "connection refused" {
		t.Fatalf("Error = %q", result.Error)
	}
	if !strings.Contains(result.Description, DefaultIndustry) {
		t.Fatalf("Description = %q", result.Description)
	}

	empty := FallbackEnrichment("", "x")
	if empty.CompanyName != "" {
		t.Fatalf("CompanyName = %q, want empty for empty domain", empty.CompanyName)
	}
}
