package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a batch recipient.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusAnalyzing  Status = "analyzing"
	StatusProcessed  Status = "processed"
	StatusError      Status = "error"
	StatusSuccess    Status = "success"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusAnalyzing, StatusProcessed, StatusError, StatusSuccess:
		return true
	}
	return false
}

// IsTerminal reports whether a recipient in this status is done for the
// current processing attempt.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

func ParseStatusFromString(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
	return st, nil
}

// StepStatus represents the state of one processing step.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in-progress"
	StepCompleted  StepStatus = "completed"
	StepError      StepStatus = "error"
)

func (s StepStatus) String() string { return string(s) }

func (s StepStatus) IsValid() bool {
	switch s {
	case StepPending, StepInProgress, StepCompleted, StepError:
		return true
	}
	return false
}

// StepKind names a known stage of the per-recipient pipeline. Steps are
// diagnostic only; control flow never reads them back.
type StepKind string

const (
	StepInitialization        StepKind = "initialization"
	StepTemplateSelection     StepKind = "template-selection"
	StepDomainAnalysis        StepKind = "domain-analysis"
	StepScrapeWebsite         StepKind = "scrape-website"
	StepExtractCompanyInfo    StepKind = "extract-company-info"
	StepAnalyzeIndustry       StepKind = "analyze-industry"
	StepAnalyzeDesignFocus    StepKind = "analyze-design-focus"
	StepAnalyzeDevFocus       StepKind = "analyze-dev-focus"
	StepAnalyzeAIFocus        StepKind = "analyze-ai-focus"
	StepPrepareTemplate       StepKind = "prepare-template"
	StepTemplateCustomization StepKind = "template-customization"
	StepMultiRecipient        StepKind = "multi-recipient"
	StepMultiRecipientShare   StepKind = "multi-recipient-handling"
	StepPrepareDraft          StepKind = "prepare-draft"
	StepCreateDraft           StepKind = "create-draft"
	StepProcessRecipient      StepKind = "process-recipient"
)

// ProcessingStep is one entry in the append-only step history of a
// processing attempt.
type ProcessingStep struct {
	Name      StepKind   `json:"name"`
	Status    StepStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	Details   string     `json:"details,omitempty"`
}

// ProcessingDetails records one processing attempt. A fresh attempt (manual
// re-analysis) replaces the whole block with a new StartTime.
type ProcessingDetails struct {
	StartTime time.Time        `json:"startTime"`
	EndTime   *time.Time       `json:"endTime,omitempty"`
	Steps     []ProcessingStep `json:"steps"`
}

// Progress milestones for the coarse phase indicator.
const (
	ProgressQueued    = 0
	ProgressStarted   = 20
	ProgressAnalyzing = 30
	ProgressEnriched  = 40
	ProgressResolved  = 75
	ProgressDone      = 100
)

// Recipient is one queued outreach target and its processing state.
type Recipient struct {
	ID                string             `json:"id"`
	RecipientEmail    string             `json:"recipientEmail"`
	Status            Status             `json:"status"`
	Progress          int                `json:"progress"`
	Subject           string             `json:"subject,omitempty"`
	Body              string             `json:"body,omitempty"`
	CompanyInfo       *CompanyInfo       `json:"companyInfo,omitempty"`
	Error             string             `json:"error,omitempty"`
	ProcessingDetails *ProcessingDetails `json:"processingDetails,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

func (r *Recipient) Validate() error {
	if strings.TrimSpace(r.RecipientEmail) == "" {
		return fmt.Errorf("%w: recipient email is required", ErrValidation)
	}
	if !strings.Contains(r.RecipientEmail, "@") {
		return fmt.Errorf("%w: recipient email %q must contain @", ErrValidation, r.RecipientEmail)
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, r.Status)
	}
	if r.Progress < 0 || r.Progress > 100 {
		return fmt.Errorf("%w: progress %d out of range", ErrValidation, r.Progress)
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without sharing the step
// slice or company snapshot with other readers.
func (r Recipient) Clone() Recipient {
	out := r
	if r.CompanyInfo != nil {
		info := *r.CompanyInfo
		out.CompanyInfo = &info
	}
	if r.ProcessingDetails != nil {
		details := ProcessingDetails{
			StartTime: r.ProcessingDetails.StartTime,
			Steps:     make([]ProcessingStep, len(r.ProcessingDetails.Steps)),
		}
		copy(details.Steps, r.ProcessingDetails.Steps)
		if r.ProcessingDetails.EndTime != nil {
			end := *r.ProcessingDetails.EndTime
			details.EndTime = &end
		}
		out.ProcessingDetails = &details
	}
	return out
}

// AddStep appends a diagnostic step to the current attempt, starting a new
// attempt block when none exists yet.
func (r *Recipient) AddStep(kind StepKind, status StepStatus, details string) {
	now := time.Now().UTC()
	if r.ProcessingDetails == nil {
		r.ProcessingDetails = &ProcessingDetails{StartTime: now}
	}
	r.ProcessingDetails.Steps = append(r.ProcessingDetails.Steps, ProcessingStep{
		Name:      kind,
		Status:    status,
		Timestamp: now,
		Details:   details,
	})
	if status == StepCompleted || status == StepError {
		r.ProcessingDetails.EndTime = &now
	}
}

// ResetAttempt discards the previous attempt history so a manual
// re-analysis starts with a fresh block.
func (r *Recipient) ResetAttempt() {
	r.ProcessingDetails = nil
	r.Subject = ""
	r.Body = ""
	r.Error = ""
}
