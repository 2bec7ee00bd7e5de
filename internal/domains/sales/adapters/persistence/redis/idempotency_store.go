package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DewinU/backend-DSI/internal/domains/sales/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

const (
	keyPrefix = "sale:idem:"
	recordTTL = 24 * time.Hour
	// A reservation abandoned by a crashed process must not block the key
	// until recordTTL, so pending entries expire quickly.
	pendingTTL = time.Minute
)

// IdempotencyStore keeps sale idempotency records in Redis so replays survive
// process restarts and are shared across API instances. Records expire after
// 24 hours; a retry beyond that window creates a fresh sale.
type IdempotencyStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewIdempotencyStore wires a Redis-backed store. Caller manages client lifecycle.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, now: time.Now}
}

type storedRecord struct {
	Key         string    `json:"key"`
	RequestHash string    `json:"requestHash"`
	SaleID      int64     `json:"saleId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Get returns the stored record for the provided key, or nil when absent.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	payload, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedRecord
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}
	return stored.toPort(), nil
}

// Save claims the key with SETNX, completes the caller's reservation with a
// plain SET, or returns the stored record. A reservation held elsewhere and a
// different payload under the same key both conflict.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	payload, err := marshalRecord(record)
	if err != nil {
		return nil, err
	}
	ttl := recordTTL
	if record.SaleID == 0 {
		ttl = pendingTTL
	}
	ok, err := s.client.SetNX(ctx, keyPrefix+record.Key, payload, ttl).Result()
	if err != nil {
		return nil, err
	}
	if ok {
		saved := record
		return &saved, nil
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// Expired between SETNX and GET; retry once.
		return s.Save(ctx, record)
	}
	if existing.RequestHash != record.RequestHash {
		return existing, ports.ErrIdempotencyConflict
	}
	if existing.SaleID == 0 && record.SaleID != 0 {
		record.CreatedAt = existing.CreatedAt
		payload, err := marshalRecord(record)
		if err != nil {
			return nil, err
		}
		if err := s.client.Set(ctx, keyPrefix+record.Key, payload, recordTTL).Err(); err != nil {
			return nil, err
		}
		saved := record
		return &saved, nil
	}
	if existing.SaleID == 0 {
		// The reservation holder has not persisted its sale yet.
		return existing, ports.ErrIdempotencyConflict
	}
	if record.SaleID == 0 || record.SaleID == existing.SaleID {
		return existing, nil
	}
	return existing, ports.ErrIdempotencyConflict
}

// Release drops the key's reservation so a retried request can claim it.
// Completed records are kept for replay.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	existing, err := s.Get(ctx, key)
	if err != nil || existing == nil {
		return err
	}
	if existing.SaleID != 0 {
		return nil
	}
	return s.client.Del(ctx, keyPrefix+key).Err()
}

func marshalRecord(record ports.IdempotencyRecord) ([]byte, error) {
	return json.Marshal(storedRecord{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		SaleID:      record.SaleID,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	})
}

func (s *IdempotencyStore) ensureClient() error {
	if s == nil || s.client == nil {
		return errors.New("redis idempotency store not configured")
	}
	return nil
}

func (r storedRecord) toPort() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         r.Key,
		RequestHash: r.RequestHash,
		SaleID:      r.SaleID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
