package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict indicates the same key was used with a different payload.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// IdempotencyRecord captures the association between a client-supplied key and
// the sale it produced. A SaleID of zero marks a reservation: the request
// holding the key is still writing its sale.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	SaleID      int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdempotencyStore persists idempotency keys so retried sale creations can be
// replayed safely instead of double-debiting stock.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save claims or resolves the key atomically. For an unclaimed key the
	// record is stored and returned; a record with SaleID zero claims a
	// reservation. For a claimed key with the same request hash, Save
	// completes the caller's reservation (stored SaleID zero, record SaleID
	// set), replays the completed record (record SaleID zero), or accepts an
	// identical save. Every other combination returns the stored record with
	// ErrIdempotencyConflict: a different payload under the same key, or a
	// reservation still held by a concurrent request.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
	// Release drops the key's reservation so a retry can claim it again.
	// Completed records are left in place.
	Release(ctx context.Context, key string) error
}
