package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/draftops/outreach-engine/internal/domain"
	"github.com/draftops/outreach-engine/internal/mailaddr"
	"github.com/draftops/outreach-engine/internal/observability"
	"github.com/draftops/outreach-engine/internal/provider"
	"github.com/draftops/outreach-engine/internal/ratelimit"
	"github.com/draftops/outreach-engine/internal/repository"
	"github.com/draftops/outreach-engine/internal/store"
)

const enrichScope = "enrich"

// Settings holds the batch-level inputs every draft needs. ProcessAll
// refuses to run until all three are set.
type Settings struct {
	SenderName    string `json:"senderName"`
	SenderCompany string `json:"senderCompany"`
	TemplateID    string `json:"templateId"`
}

// EnrichmentCache caches enrichment results per domain so repeat batch runs
// do not re-analyze a company.
type EnrichmentCache interface {
	Get(ctx context.Context, domainName string) (*domain.EnrichmentResult, bool, error)
	Set(ctx context.Context, domainName string, result *domain.EnrichmentResult) error
	Delete(ctx context.Context, domainName string) error
}

// BatchStatus summarizes the batch for the status endpoint.
type BatchStatus struct {
	Running      bool                  `json:"running"`
	Total        int                   `json:"total"`
	Counts       map[domain.Status]int `json:"counts"`
	AuthRequired bool                  `json:"authRequired"`
	AuthURL      string                `json:"authUrl,omitempty"`
}

// BatchService drives batch runs: it groups queued recipients by domain,
// enriches each domain once, and hands groups to the recipient processor.
// Domains are processed strictly sequentially; one run at a time.
type BatchService struct {
	batch       *store.BatchStore
	enricher    provider.Enricher
	drafts      provider.DraftService
	cache       EnrichmentCache
	rateLimiter ratelimit.RateLimiter
	audit       repository.DraftRepository
	logger      *zap.Logger
	metrics     *observability.Metrics

	runGuard *semaphore.Weighted

	mu        sync.Mutex
	settings  Settings
	running   bool
	needsAuth bool
	authURL   string
}

func NewBatchService(
	batch *store.BatchStore,
	enricher provider.Enricher,
	drafts provider.DraftService,
	cache EnrichmentCache,
	rateLimiter ratelimit.RateLimiter,
	audit repository.DraftRepository,
	logger *zap.Logger,
) (*BatchService, error) {
	if batch == nil {
		return nil, fmt.Errorf("batch store is required")
	}
	if enricher == nil {
		return nil, fmt.Errorf("enricher is required")
	}
	if drafts == nil {
		return nil, fmt.Errorf("draft service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BatchService{
		batch:       batch,
		enricher:    enricher,
		drafts:      drafts,
		cache:       cache,
		rateLimiter: rateLimiter,
		audit:       audit,
		logger:      logger,
		runGuard:    semaphore.NewWeighted(1),
	}, nil
}

func (s *BatchService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// UpdateSettings replaces the batch settings. A non-empty template id must
// resolve against the built-in catalog.
func (s *BatchService) UpdateSettings(settings Settings) error {
	settings.SenderName = strings.TrimSpace(settings.SenderName)
	settings.SenderCompany = strings.TrimSpace(settings.SenderCompany)
	settings.TemplateID = strings.TrimSpace(settings.TemplateID)

	if settings.TemplateID != "" {
		if _, err := domain.TemplateByID(settings.TemplateID); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

func (s *BatchService) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Status reports the batch counts and any pending re-authentication.
func (s *BatchService) Status() BatchStatus {
	recipients := s.batch.List()
	counts := make(map[domain.Status]int)
	for i := range recipients {
		counts[recipients[i].Status]++
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return BatchStatus{
		Running:      s.running,
		Total:        len(recipients),
		Counts:       counts,
		AuthRequired: s.needsAuth,
		AuthURL:      s.authURL,
	}
}

// ProcessAll runs the whole batch. Recipients already in success are left
// alone; the rest are grouped by domain and each group is enriched once and
// drafted. A second call while a run is active returns ErrBatchBusy, and an
// authentication demand from the draft service halts the remaining domains.
func (s *BatchService) ProcessAll(ctx context.Context) error {
	if !s.runGuard.TryAcquire(1) {
		return domain.ErrBatchBusy
	}
	defer s.runGuard.Release(1)

	settings := s.Settings()
	if err := s.checkPreconditions(settings); err != nil {
		return err
	}

	groups := s.groupByDomain()
	if len(groups) == 0 {
		return fmt.Errorf("%w: no recipients left to process", domain.ErrValidation)
	}

	ctx = observability.WithRunID(ctx, uuid.NewString())
	logger := observability.WithContextLogger(s.logger, ctx)

	s.setRunning(true)
	s.setAuthState(false, "")
	defer s.setRunning(false)

	queued := 0
	for _, group := range groups {
		queued += len(group.members)
	}
	if s.metrics != nil {
		s.metrics.SetQueuedRecipients(queued)
	}

	logger.Info("batch run started",
		zap.Int("domains", len(groups)),
		zap.Int("recipients", queued),
	)

	halted := false
	for _, group := range groups {
		result := s.processDomain(ctx, logger, group.name, group.members, settings, false)
		if result != nil && result.AuthRequired {
			s.setAuthState(true, result.AuthURL)
			logger.Warn("batch halted, draft service requires re-authentication",
				zap.String("domain", group.name),
			)
			halted = true
			break
		}
	}

	if s.metrics != nil {
		s.metrics.SetQueuedRecipients(s.countNonTerminal())
		if halted {
			s.metrics.IncBatchRun("auth_required")
		} else {
			s.metrics.IncBatchRun("completed")
		}
	}

	logger.Info("batch run finished", zap.Bool("halted", halted))
	return nil
}

// RefreshDomain re-runs enrichment and drafting for the recipients
// currently grouped under one domain, bypassing the enrichment cache.
// Other domains are not touched.
func (s *BatchService) RefreshDomain(ctx context.Context, domainName string) error {
	domainName = strings.ToLower(strings.TrimSpace(domainName))
	if domainName == "" {
		return fmt.Errorf("%w: domain is required", domain.ErrValidation)
	}

	if !s.runGuard.TryAcquire(1) {
		return domain.ErrBatchBusy
	}
	defer s.runGuard.Release(1)

	settings := s.Settings()
	if err := s.checkPreconditions(settings); err != nil {
		return err
	}

	var members []domain.Recipient
	for _, rec := range s.batch.List() {
		if strings.EqualFold(mailaddr.Domain(rec.RecipientEmail), domainName) {
			members = append(members, rec)
		}
	}
	if len(members) == 0 {
		return fmt.Errorf("%w: no recipients for domain %q", domain.ErrNotFound, domainName)
	}

	ctx = observability.WithRunID(ctx, uuid.NewString())
	logger := observability.WithContextLogger(s.logger, ctx)

	s.setRunning(true)
	defer s.setRunning(false)

	if s.cache != nil {
		if err := s.cache.Delete(ctx, domainName); err != nil {
			logger.Warn("failed to evict enrichment cache entry",
				zap.String("domain", domainName),
				zap.Error(err),
			)
		}
	}

	result := s.processDomain(ctx, logger, domainName, members, settings, true)
	if result != nil && result.AuthRequired {
		s.setAuthState(true, result.AuthURL)
	}
	return nil
}

func (s *BatchService) checkPreconditions(settings Settings) error {
	if s.batch.Len() == 0 {
		return fmt.Errorf("%w: batch is empty", domain.ErrValidation)
	}
	if settings.TemplateID == "" {
		return fmt.Errorf("%w: no template selected", domain.ErrValidation)
	}
	if _, err := domain.TemplateByID(settings.TemplateID); err != nil {
		return fmt.Errorf("%w: no template selected", domain.ErrValidation)
	}
	if settings.SenderName == "" {
		return fmt.Errorf("%w: sender name is required", domain.ErrValidation)
	}
	if settings.SenderCompany == "" {
		return fmt.Errorf("%w: sender company is required", domain.ErrValidation)
	}
	return nil
}

type domainGroup struct {
	name    string
	members []domain.Recipient
}

// groupByDomain partitions the non-succeeded batch by email domain in
// first-seen order. Addresses without an extractable domain are skipped,
// not erred.
func (s *BatchService) groupByDomain() []domainGroup {
	index := make(map[string]int)
	var groups []domainGroup
	for _, rec := range s.batch.List() {
		if rec.Status == domain.StatusSuccess {
			continue
		}
		domainName := mailaddr.Domain(rec.RecipientEmail)
		if domainName == "" {
			continue
		}
		domainName = strings.ToLower(domainName)
		i, ok := index[domainName]
		if !ok {
			i = len(groups)
			index[domainName] = i
			groups = append(groups, domainGroup{name: domainName})
		}
		groups[i].members = append(groups[i].members, rec)
	}
	return groups
}

// processDomain runs one domain group end to end. The returned draft result
// is non-nil only when the draft service answered; the caller inspects it
// for the auth-required halt condition. Failures stay contained to this
// group.
func (s *BatchService) processDomain(
	ctx context.Context,
	logger *zap.Logger,
	domainName string,
	members []domain.Recipient,
	settings Settings,
	bypassCache bool,
) *domain.DraftResult {
	logger.Info("processing domain",
		zap.String("domain", domainName),
		zap.Int("recipients", len(members)),
	)

	for i := range members {
		_ = s.batch.Update(members[i].ID, func(r *domain.Recipient) {
			r.ResetAttempt()
			r.Status = domain.StatusProcessing
			r.Progress = domain.ProgressStarted
		})
	}
	for i := range members {
		_ = s.batch.Update(members[i].ID, func(r *domain.Recipient) {
			r.Status = domain.StatusAnalyzing
			r.Progress = domain.ProgressAnalyzing
		})
	}

	enrichment := s.enrichDomain(ctx, logger, domainName, bypassCache)

	members = s.reload(members)
	if len(members) == 0 {
		return nil
	}

	if len(members) == 1 {
		processed, result := s.processRecipient(ctx, members[0], enrichment, members, settings)
		if err := s.batch.Replace(processed); err != nil {
			logger.Warn("failed to store recipient result", zap.Error(err))
		}
		s.recordDraft(ctx, logger, domainName, members, processed, result, false)
		return result
	}

	primary := members[0]
	processed, result := s.processRecipient(ctx, primary, enrichment, members, settings)
	if err := s.batch.Replace(processed); err != nil {
		logger.Warn("failed to store recipient result", zap.Error(err))
	}

	if processed.Status == domain.StatusSuccess {
		s.propagateCombined(processed, members[1:])
		s.recordDraft(ctx, logger, domainName, members, processed, result, true)
		return result
	}

	// Combined failure errs the whole group with the shared reason.
	for _, member := range members[1:] {
		reason := processed.Error
		_ = s.batch.Update(member.ID, func(r *domain.Recipient) {
			r.Status = domain.StatusError
			r.Progress = domain.ProgressDone
			r.Error = reason
			r.AddStep(domain.StepMultiRecipientShare, domain.StepError, "combined draft failed: "+reason)
		})
	}
	return result
}

// propagateCombined copies the primary's resolved draft onto the remaining
// group members and marks them succeeded.
func (s *BatchService) propagateCombined(primary domain.Recipient, rest []domain.Recipient) {
	for _, member := range rest {
		_ = s.batch.Update(member.ID, func(r *domain.Recipient) {
			r.Subject = primary.Subject
			r.Body = primary.Body
			if primary.CompanyInfo != nil {
				info := *primary.CompanyInfo
				r.CompanyInfo = &info
			}
			r.Status = domain.StatusSuccess
			r.Progress = domain.ProgressDone
			r.Error = ""
			r.AddStep(domain.StepMultiRecipientShare, domain.StepCompleted,
				"included in combined draft via "+primary.RecipientEmail)
		})
	}
}

// enrichDomain resolves company data for a domain: cache first, then one
// rate-limited call to the analysis service. A transport failure never
// propagates; it degrades to a failure-flagged fallback result.
func (s *BatchService) enrichDomain(ctx context.Context, logger *zap.Logger, domainName string, bypassCache bool) *domain.EnrichmentResult {
	if s.cache != nil && !bypassCache {
		cached, found, err := s.cache.Get(ctx, domainName)
		if err != nil {
			logger.Warn("enrichment cache lookup failed",
				zap.String("domain", domainName),
				zap.Error(err),
			)
		} else if found {
			if s.metrics != nil {
				s.metrics.IncEnrichment("cache_hit")
			}
			return cached
		}
	}

	if s.rateLimiter != nil {
		if err := s.rateLimiter.Wait(ctx, enrichScope); err != nil {
			logger.Warn("rate limiter wait failed, proceeding",
				zap.String("domain", domainName),
				zap.Error(err),
			)
		}
	}

	start := time.Now()
	result, err := s.enricher.Enrich(ctx, domainName)
	if s.metrics != nil {
		s.metrics.ObserveEnrichmentDuration(time.Since(start))
	}
	if err != nil || result == nil {
		reason := "enrichment returned no data"
		if err != nil {
			reason = err.Error()
		}
		logger.Warn("enrichment failed, using fallback company data",
			zap.String("domain", domainName),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.IncEnrichment("fallback")
		}
		return domain.FallbackEnrichment(domainName, reason)
	}

	if s.metrics != nil {
		s.metrics.IncEnrichment("success")
	}
	if s.cache != nil && result.Success {
		if err := s.cache.Set(ctx, domainName, result); err != nil {
			logger.Warn("failed to cache enrichment result",
				zap.String("domain", domainName),
				zap.Error(err),
			)
		}
	}
	return result
}

// recordDraft appends a created draft to the audit log. Auditing is best
// effort and never affects recipient state.
func (s *BatchService) recordDraft(
	ctx context.Context,
	logger *zap.Logger,
	domainName string,
	members []domain.Recipient,
	processed domain.Recipient,
	result *domain.DraftResult,
	combined bool,
) {
	if s.audit == nil || result == nil || !result.Success {
		return
	}

	addresses := make([]string, 0, len(members))
	for i := range members {
		addresses = append(addresses, members[i].RecipientEmail)
	}

	record := &domain.DraftRecord{
		ID:         uuid.NewString(),
		Domain:     domainName,
		Recipients: strings.Join(addresses, ", "),
		Subject:    processed.Subject,
		DraftID:    result.DraftID,
		Combined:   combined,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.audit.Create(ctx, record); err != nil {
		logger.Warn("failed to audit draft",
			zap.String("domain", domainName),
			zap.Error(err),
		)
	}
}

func (s *BatchService) reload(members []domain.Recipient) []domain.Recipient {
	out := make([]domain.Recipient, 0, len(members))
	for i := range members {
		rec, err := s.batch.Get(members[i].ID)
		if err != nil {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

func (s *BatchService) countNonTerminal() int {
	count := 0
	for _, rec := range s.batch.List() {
		if !rec.Status.IsTerminal() {
			count++
		}
	}
	return count
}

func (s *BatchService) setRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
}

func (s *BatchService) setAuthState(needsAuth bool, authURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needsAuth = needsAuth
	s.authURL = authURL
}
