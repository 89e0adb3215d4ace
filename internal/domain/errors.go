package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidationFailed marks malformed or out-of-range input. Not retryable.
	ErrValidationFailed = errors.New("validation failed")
	// ErrStorageUnavailable marks a transient backend fault. Retryable.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrPartialProjection marks a durable append whose projection did not complete.
	ErrPartialProjection = errors.New("partial projection")
)

var (
	// Input errors
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive", ErrValidationFailed)
	ErrNegativeAmount   = fmt.Errorf("%w: amount must not be negative", ErrValidationFailed)
	ErrSameOwner        = fmt.Errorf("%w: cannot transfer to the same owner", ErrValidationFailed)
	ErrMissingField     = fmt.Errorf("%w: required field is empty", ErrValidationFailed)
	ErrFieldTooLong     = fmt.Errorf("%w: field exceeds maximum length", ErrValidationFailed)
	ErrInvalidAccount   = fmt.Errorf("%w: unknown account type", ErrValidationFailed)
	ErrInvalidEntrySide = fmt.Errorf("%w: unknown entry side", ErrValidationFailed)

	// Leg group errors
	ErrEmptyTransaction      = fmt.Errorf("%w: transaction has no legs", ErrValidationFailed)
	ErrMixedTxID             = fmt.Errorf("%w: legs carry different txids", ErrValidationFailed)
	ErrUnbalancedTransaction = fmt.Errorf("%w: debits do not equal credits", ErrValidationFailed)
	ErrIdempotencyConflict   = fmt.Errorf("%w: txid already recorded with different legs", ErrValidationFailed)

	// Storage errors
	ErrDuplicateTransaction = errors.New("transaction already recorded")
	ErrBalanceNotFound      = errors.New("balance record not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
)

// PartialProjectionError reports legs that were durably appended but not
// reflected in their balance records.
type PartialProjectionError struct {
	TxID    string
	Applied []*Transaction
	Pending []*Transaction
	Err     error
}

func (e *PartialProjectionError) Error() string {
	return fmt.Sprintf("partial projection for txid %s: pending legs [%s]: %v",
		e.TxID, strings.Join(e.PendingIDs(), ","), e.Err)
}

func (e *PartialProjectionError) Unwrap() []error {
	return []error{ErrPartialProjection, e.Err}
}

// PendingIDs returns the ids of the legs not yet projected.
func (e *PartialProjectionError) PendingIDs() []string {
	ids := make([]string, len(e.Pending))
	for i, leg := range e.Pending {
		ids[i] = leg.ID
	}
	return ids
}

// StorageError wraps a backend fault so that it matches ErrStorageUnavailable.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}

// IsRetryable reports whether the caller may retry the operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) && !errors.Is(err, ErrValidationFailed)
}
