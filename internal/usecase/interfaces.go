package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/domain"
)

// TransactionFilter selects legs from the log. Empty fields match anything.
type TransactionFilter struct {
	TxID      string
	Owner     string
	Asset     string
	Account   domain.AccountType
	EntrySide domain.EntrySide
}

// BalanceFilter selects balance records. Empty fields match anything.
type BalanceFilter struct {
	Owner     string
	Asset     string
	Account   domain.AccountType
	EntrySide domain.EntrySide
}

// BalanceIncrement adds Delta to the record at Key on behalf of leg LegID.
type BalanceIncrement struct {
	Key       string
	LegID     string
	Owner     string
	Asset     string
	Account   domain.AccountType
	EntrySide domain.EntrySide
	Delta     decimal.Decimal
}

// TransactionLog is the append-only leg store.
type TransactionLog interface {
	// BatchAppend writes all legs or none. It returns
	// domain.ErrDuplicateTransaction when the txid is already recorded.
	BatchAppend(ctx context.Context, legs []*domain.Transaction) error
	// Scan returns at most limit legs matching filter, ordered by (timestamp, id).
	Scan(ctx context.Context, filter TransactionFilter, limit int) ([]*domain.Transaction, error)
	// SumBySide totals DR and CR amounts over the whole log.
	SumBySide(ctx context.Context) (dr, cr decimal.Decimal, err error)
}

// BalanceStore holds the projected balance records.
type BalanceStore interface {
	// Increment atomically adds inc.Delta to the record, creating it at zero
	// when absent. A LegID that was already applied is a no-op.
	Increment(ctx context.Context, inc BalanceIncrement) (*domain.BalanceRecord, error)
	// ConditionalCreate inserts every absent record in one atomic write and
	// reports which ones were created. Existing records are left untouched.
	ConditionalCreate(ctx context.Context, records []*domain.BalanceRecord) ([]bool, error)
	// Get returns domain.ErrBalanceNotFound when the key is absent.
	Get(ctx context.Context, key string) (*domain.BalanceRecord, error)
	Scan(ctx context.Context, filter BalanceFilter, limit int) ([]*domain.BalanceRecord, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// EventPublisher publishes ledger events to external subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.LedgerEvent) error
}

// RepairQueue carries txids whose projection did not complete.
type RepairQueue interface {
	Enqueue(ctx context.Context, txid string) error
	// Dequeue blocks up to timeout and returns "" when nothing is queued.
	Dequeue(ctx context.Context, timeout time.Duration) (string, error)
	Len(ctx context.Context) (int64, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops the key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}
