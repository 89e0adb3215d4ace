package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/domain"
)

// ErrInconsistentLedger is returned when logged legs violate double entry.
var ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")

// ReconciliationUseCase checks the log against the projection and repairs
// projections that did not complete.
type ReconciliationUseCase struct {
	txLog     TransactionLog
	store     BalanceStore
	projector *Projector
	collaborators
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	txLog TransactionLog,
	store BalanceStore,
	projector *Projector,
	opts ...Option,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txLog:         txLog,
		store:         store,
		projector:     projector,
		collaborators: newCollaborators(opts),
	}
}

// ConsistencyReport is the ledger-wide double-entry check.
type ConsistencyReport struct {
	Debits     decimal.Decimal
	Credits    decimal.Decimal
	Consistent bool
	CheckedAt  time.Time
}

// BalanceReconciliation compares one balance record with the legs it
// should be the sum of.
type BalanceReconciliation struct {
	Key           string
	Recorded      decimal.Decimal
	Expected      decimal.Decimal
	Difference    decimal.Decimal
	LegCount      int
	RecordPresent bool
	IsReconciled  bool
	CheckedAt     time.Time
}

// RepairReport describes a projection repair of one txid.
type RepairReport struct {
	TxID      string
	Legs      int
	Projected int
}

// CheckConsistency verifies that total debits equal total credits over the
// whole log.
func (uc *ReconciliationUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	var dr, cr decimal.Decimal
	err := withRetry(ctx, uc.retrier, func() error {
		var sumErr error
		dr, cr, sumErr = uc.txLog.SumBySide(ctx)
		return sumErr
	})
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		Debits:     dr,
		Credits:    cr,
		Consistent: dr.Equal(cr),
		CheckedAt:  time.Now().UTC(),
	}

	result := "consistent"
	if !report.Consistent {
		result = "inconsistent"
		uc.logger.Error().
			Str("debits", dr.String()).
			Str("credits", cr.String()).
			Msg("ledger debits do not equal credits")
	}
	if uc.metrics != nil {
		uc.metrics.ConsistencyChecks.WithLabelValues(result).Inc()
	}

	return report, nil
}

// ReconcileBalance compares the record for one key with the sum of its
// logged legs. Legs not yet projected show up as a difference.
func (uc *ReconciliationUseCase) ReconcileBalance(
	ctx context.Context,
	owner, asset string,
	account domain.AccountType,
	side domain.EntrySide,
) (*BalanceReconciliation, error) {
	if err := domain.ValidateIdentifier("owner", owner); err != nil {
		return nil, err
	}
	if err := domain.ValidateIdentifier("asset", asset); err != nil {
		return nil, err
	}
	if !account.IsValid() {
		return nil, domain.ErrInvalidAccount
	}
	if !side.IsValid() {
		return nil, domain.ErrInvalidEntrySide
	}

	key := domain.BalanceKey(owner, account, asset, side)

	var legs []*domain.Transaction
	err := withRetry(ctx, uc.retrier, func() error {
		var scanErr error
		legs, scanErr = uc.txLog.Scan(ctx, TransactionFilter{
			Owner:     owner,
			Asset:     asset,
			Account:   account,
			EntrySide: side,
		}, ConsistencyScanLimit)
		return scanErr
	})
	if err != nil {
		return nil, err
	}

	expected := decimal.Zero
	for _, leg := range legs {
		expected = expected.Add(leg.Amount)
	}

	result := &BalanceReconciliation{
		Key:       key,
		Recorded:  decimal.Zero,
		Expected:  expected,
		LegCount:  len(legs),
		CheckedAt: time.Now().UTC(),
	}

	record, err := uc.store.Get(ctx, key)
	switch {
	case err == nil:
		result.Recorded = record.Amount
		result.RecordPresent = true
	case errors.Is(err, domain.ErrBalanceNotFound):
	default:
		return nil, err
	}

	result.Difference = result.Expected.Sub(result.Recorded)
	result.IsReconciled = result.Difference.IsZero()

	return result, nil
}

// RepairTransaction re-applies the projectable legs of txid. Legs that were
// already applied are left alone, so repairing twice is harmless.
func (uc *ReconciliationUseCase) RepairTransaction(ctx context.Context, txid string) (*RepairReport, error) {
	report, err := uc.repair(ctx, txid)

	status := "success"
	if err != nil {
		status = "error"
		uc.logger.Error().Err(err).Str("txid", txid).Msg("projection repair failed")
	} else {
		uc.logger.Info().
			Str("txid", txid).
			Int("projected", report.Projected).
			Msg("projection repaired")
	}
	if uc.metrics != nil {
		uc.metrics.Repairs.WithLabelValues(status).Inc()
	}

	return report, err
}

func (uc *ReconciliationUseCase) repair(ctx context.Context, txid string) (*RepairReport, error) {
	if err := domain.ValidateIdentifier("txid", txid); err != nil {
		return nil, err
	}

	var legs []*domain.Transaction
	err := withRetry(ctx, uc.retrier, func() error {
		var scanErr error
		legs, scanErr = uc.txLog.Scan(ctx, TransactionFilter{TxID: txid}, ConsistencyScanLimit)
		return scanErr
	})
	if err != nil {
		return nil, err
	}

	if len(legs) == 0 {
		return nil, fmt.Errorf("%w: txid %s", domain.ErrTransactionNotFound, txid)
	}

	if err := domain.ValidateLegs(legs); err != nil {
		return nil, fmt.Errorf("%w: txid %s: %w", ErrInconsistentLedger, txid, err)
	}

	records, err := uc.projector.ApplyAll(ctx, legs)
	if err != nil {
		return nil, err
	}

	return &RepairReport{
		TxID:      txid,
		Legs:      len(legs),
		Projected: len(records),
	}, nil
}
