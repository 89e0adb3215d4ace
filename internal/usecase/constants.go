package usecase

import "time"

const (
	// DefaultOperationTimeout bounds a single ledger operation against the store.
	DefaultOperationTimeout = 10 * time.Second

	// BalanceScanLimit is enough rows to detect more than one record per side.
	BalanceScanLimit = 2

	// ConsistencyScanLimit caps the legs loaded when reconciling one balance key.
	ConsistencyScanLimit = 1000000

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
