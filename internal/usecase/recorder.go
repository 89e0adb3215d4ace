package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/iho/assetledger/internal/domain"
)

// Recorder appends validated leg groups to the transaction log.
type Recorder struct {
	txLog   TransactionLog
	retrier Retrier
}

// NewRecorder creates a new Recorder. A nil retrier disables retries.
func NewRecorder(txLog TransactionLog, retrier Retrier) *Recorder {
	return &Recorder{
		txLog:   txLog,
		retrier: retrier,
	}
}

// Append writes all legs of one txid as a single atomic batch.
//
// When the txid is already in the log the stored legs are read back and
// returned instead. replayed is true when they were written by an earlier
// call rather than by a retried attempt of this one. Stored legs that differ
// from the requested ones fail with domain.ErrIdempotencyConflict.
func (r *Recorder) Append(ctx context.Context, legs []*domain.Transaction) (stored []*domain.Transaction, replayed bool, err error) {
	if err := domain.ValidateLegs(legs); err != nil {
		return nil, false, err
	}

	duplicate := false
	err = withRetry(ctx, r.retrier, func() error {
		appendErr := r.txLog.BatchAppend(ctx, legs)
		if errors.Is(appendErr, domain.ErrDuplicateTransaction) {
			duplicate = true
			return nil
		}
		return appendErr
	})
	if err != nil {
		return nil, false, err
	}

	if !duplicate {
		return legs, false, nil
	}

	return r.resolveDuplicate(ctx, legs)
}

func (r *Recorder) resolveDuplicate(ctx context.Context, legs []*domain.Transaction) ([]*domain.Transaction, bool, error) {
	txid := legs[0].TxID

	var stored []*domain.Transaction
	err := withRetry(ctx, r.retrier, func() error {
		var scanErr error
		stored, scanErr = r.txLog.Scan(ctx, TransactionFilter{TxID: txid}, len(legs)+1)
		return scanErr
	})
	if err != nil {
		return nil, false, err
	}

	if len(stored) == 0 {
		return nil, false, domain.StorageError("read back txid "+txid, domain.ErrTransactionNotFound)
	}

	if !sameLegs(stored, legs) {
		return nil, false, fmt.Errorf("%w: txid %s", domain.ErrIdempotencyConflict, txid)
	}

	ours := true
	for _, leg := range stored {
		if !containsID(legs, leg.ID) {
			ours = false
			break
		}
	}

	return stored, !ours, nil
}

// sameLegs compares two leg groups ignoring ids, timestamps and order.
func sameLegs(a, b []*domain.Transaction) bool {
	if len(a) != len(b) {
		return false
	}

	ka, kb := legShapes(a), legShapes(b)
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
	}

	return true
}

func legShapes(legs []*domain.Transaction) []string {
	shapes := make([]string, len(legs))
	for i, leg := range legs {
		shapes[i] = leg.Key() + "=" + leg.Amount.String()
	}
	sort.Strings(shapes)
	return shapes
}

func containsID(legs []*domain.Transaction, id string) bool {
	for _, leg := range legs {
		if leg.ID == id {
			return true
		}
	}
	return false
}
