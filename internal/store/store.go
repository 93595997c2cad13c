// Package store holds the in-memory recipient batch. Records are owned by
// the store for their whole lifecycle; readers get copies and writers go
// through replace-by-id updates, never shared in-place mutation.
package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/draftops/outreach-engine/internal/domain"
)

type BatchStore struct {
	mu         sync.RWMutex
	recipients []domain.Recipient
}

func NewBatchStore() *BatchStore {
	return &BatchStore{}
}

// Add enqueues one recipient. The address must contain an @ and must not
// already be queued.
func (s *BatchStore) Add(email string) (*domain.Recipient, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: %q is not a valid email address", domain.ErrValidation, email)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.recipients {
		if s.recipients[i].RecipientEmail == email {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicate, email)
		}
	}

	now := time.Now().UTC()
	rec := domain.Recipient{
		ID:             uuid.NewString(),
		RecipientEmail: email,
		Status:         domain.StatusPending,
		Progress:       domain.ProgressQueued,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.recipients = append(s.recipients, rec)

	out := rec.Clone()
	return &out, nil
}

// BulkImport parses a comma-separated address list, keeps entries that
// contain an @, and enqueues the ones not already present. Duplicates in
// the input collapse to one entry.
func (s *BatchStore) BulkImport(input string) ([]domain.Recipient, error) {
	seen := make(map[string]struct{})
	var candidates []string
	for _, part := range strings.Split(input, ",") {
		email := strings.TrimSpace(part)
		if email == "" || !strings.Contains(email, "@") {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		candidates = append(candidates, email)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.recipients))
	for i := range s.recipients {
		existing[s.recipients[i].RecipientEmail] = struct{}{}
	}

	now := time.Now().UTC()
	var added []domain.Recipient
	for _, email := range candidates {
		if _, ok := existing[email]; ok {
			continue
		}
		rec := domain.Recipient{
			ID:             uuid.NewString(),
			RecipientEmail: email,
			Status:         domain.StatusPending,
			Progress:       domain.ProgressQueued,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		s.recipients = append(s.recipients, rec)
		added = append(added, rec.Clone())
	}

	if len(added) == 0 {
		return nil, fmt.Errorf("%w: no new valid emails found", domain.ErrValidation)
	}
	return added, nil
}

func (s *BatchStore) Get(id string) (*domain.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.recipients {
		if s.recipients[i].ID == id {
			out := s.recipients[i].Clone()
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: recipient %q", domain.ErrNotFound, id)
}

// List returns a snapshot of the batch in enqueue order.
func (s *BatchStore) List() []domain.Recipient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Recipient, 0, len(s.recipients))
	for i := range s.recipients {
		out = append(out, s.recipients[i].Clone())
	}
	return out
}

// Replace swaps the stored record with the given copy, matched by id.
func (s *BatchStore) Replace(rec domain.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.recipients {
		if s.recipients[i].ID == rec.ID {
			rec.UpdatedAt = time.Now().UTC()
			s.recipients[i] = rec.Clone()
			return nil
		}
	}
	return fmt.Errorf("%w: recipient %q", domain.ErrNotFound, rec.ID)
}

// Update applies mutate to a private copy of the record and writes it back
// under one lock, so a read-modify-write never interleaves with another
// writer.
func (s *BatchStore) Update(id string, mutate func(*domain.Recipient)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.recipients {
		if s.recipients[i].ID == id {
			rec := s.recipients[i].Clone()
			mutate(&rec)
			rec.ID = id
			rec.UpdatedAt = time.Now().UTC()
			s.recipients[i] = rec
			return nil
		}
	}
	return fmt.Errorf("%w: recipient %q", domain.ErrNotFound, id)
}

func (s *BatchStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.recipients {
		if s.recipients[i].ID == id {
			s.recipients = append(s.recipients[:i], s.recipients[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: recipient %q", domain.ErrNotFound, id)
}

func (s *BatchStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients = nil
}

func (s *BatchStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recipients)
}
