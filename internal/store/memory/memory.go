package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tipjar/internal/core"
	"tipjar/internal/store"
)

// Store is an in-memory RecordRepository and ProfileRepository. It backs
// the default deployment and every store-level test; the SQLite backend
// carries the same semantics durably.
type Store struct {
	mu      sync.Mutex
	limit   int
	records []core.Record // newest first
	profile *core.Profile
	now     func() time.Time
}

func New(limit int) *Store {
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}
	return &Store{limit: limit, now: time.Now}
}

// NewWithClock lets tests control the store-assigned timestamps.
func NewWithClock(limit int, now func() time.Time) *Store {
	s := New(limit)
	s.now = now
	return s
}

// Append finalizes the draft with an ID and timestamp, prepends it and
// truncates the history to the capacity limit.
func (s *Store) Append(_ context.Context, draft core.RecordDraft) (*core.Record, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := core.Record{
		ID:        uuid.NewString(),
		Hash:      draft.Hash,
		Amount:    draft.Amount,
		From:      draft.From,
		Recipient: draft.Recipient,
		Message:   draft.Message,
		Status:    draft.Status,
		Timestamp: s.now().UTC(),
	}

	s.records = append([]core.Record{rec}, s.records...)
	if len(s.records) > s.limit {
		s.records = s.records[:s.limit]
	}
	return &rec, nil
}

// List returns a newest-first snapshot. Never nil.
func (s *Store) List(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Clear drops the whole history. Clearing an empty store succeeds.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

func (s *Store) FindByID(_ context.Context, id string) (*core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) SaveProfile(_ context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.UpdatedAt = s.now().UTC()
	s.profile = &p
	return nil
}

func (s *Store) LoadProfile(_ context.Context) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return core.DefaultProfile(), nil
	}
	return *s.profile, nil
}

func (s *Store) ClearProfile(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	return nil
}
