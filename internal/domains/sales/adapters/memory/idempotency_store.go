package memory

import (
	"context"
	"sync"
	"time"

	"github.com/DewinU/backend-DSI/internal/domains/sales/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore provides an in-memory implementation for development and tests.
type IdempotencyStore struct {
	mu      sync.RWMutex
	records map[string]ports.IdempotencyRecord
	now     func() time.Time
}

// NewIdempotencyStore constructs an empty in-memory store.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records: map[string]ports.IdempotencyRecord{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *IdempotencyStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Get returns the stored record for the provided key, or nil when absent.
func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	copy := record
	return &copy, nil
}

// Save claims an unclaimed key, completes the caller's reservation, or
// returns the stored record. Reservations held by another request and
// mismatched payloads conflict.
func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[record.Key]
	if !ok {
		now := s.now()
		record.CreatedAt = now
		record.UpdatedAt = now
		s.records[record.Key] = record
		saved := record
		return &saved, nil
	}

	if existing.RequestHash != record.RequestHash {
		copy := existing
		return &copy, ports.ErrIdempotencyConflict
	}
	if existing.SaleID == 0 && record.SaleID != 0 {
		record.CreatedAt = existing.CreatedAt
		record.UpdatedAt = s.now()
		s.records[record.Key] = record
		saved := record
		return &saved, nil
	}
	if existing.SaleID == 0 {
		// The reservation holder has not persisted its sale yet.
		copy := existing
		return &copy, ports.ErrIdempotencyConflict
	}
	if record.SaleID == 0 || record.SaleID == existing.SaleID {
		copy := existing
		return &copy, nil
	}
	copy := existing
	return &copy, ports.ErrIdempotencyConflict
}

// Release removes the key's reservation. Completed records stay.
func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[key]; ok && existing.SaleID == 0 {
		delete(s.records, key)
	}
	return nil
}
