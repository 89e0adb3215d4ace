package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/domain"
)

// Operation names used in logs and metrics.
const (
	OperationFund     = "fund"
	OperationTransfer = "transfer"
)

// LedgerUseCase records fund and transfer operations.
type LedgerUseCase struct {
	recorder  *Recorder
	projector *Projector
	legIDs    IDGenerator
	txIDs     IDGenerator
	collaborators
}

// NewLedgerUseCase creates a new LedgerUseCase. legIDs generates leg ids and
// txIDs generates correlation ids when the caller supplies no idempotency key.
func NewLedgerUseCase(
	recorder *Recorder,
	projector *Projector,
	legIDs IDGenerator,
	txIDs IDGenerator,
	opts ...Option,
) *LedgerUseCase {
	return &LedgerUseCase{
		recorder:      recorder,
		projector:     projector,
		legIDs:        legIDs,
		txIDs:         txIDs,
		collaborators: newCollaborators(opts),
	}
}

// FundInput represents input for funding an owner.
type FundInput struct {
	Owner          string
	Asset          string
	Amount         decimal.Decimal
	IdempotencyKey string
}

// TransferInput represents input for moving an asset between owners.
type TransferInput struct {
	Asset          string
	From           string
	To             string
	Amount         decimal.Decimal
	IdempotencyKey string
}

// Fund credits owner's equity and debits owner's asset account by amount.
// It returns the EQUITY/CR and ASSET/DR legs.
func (uc *LedgerUseCase) Fund(ctx context.Context, input FundInput) ([]*domain.Transaction, error) {
	start := time.Now()

	legs, err := uc.fund(ctx, input)
	uc.observe(OperationFund, input.Asset, input.Amount, start, err)

	return legs, err
}

func (uc *LedgerUseCase) fund(ctx context.Context, input FundInput) ([]*domain.Transaction, error) {
	if err := domain.ValidateIdentifier("owner", input.Owner); err != nil {
		return nil, err
	}
	if err := domain.ValidateIdentifier("asset", input.Asset); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	txid, err := uc.txID(input.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	legs := []*domain.Transaction{
		uc.leg(now, txid, input.Owner, input.Asset, domain.AccountEquity, domain.Credit, input.Amount),
		uc.leg(now, txid, input.Owner, input.Asset, domain.AccountAsset, domain.Debit, input.Amount),
	}

	stored, replayed, err := uc.execute(ctx, OperationFund, legs)
	if err != nil {
		return nil, err
	}
	if replayed {
		return stored, nil
	}

	publish(ctx, uc.collaborators, &domain.LedgerEvent{
		Type:       domain.EventTypeFunded,
		TxID:       txid,
		To:         input.Owner,
		Asset:      input.Asset,
		Amount:     input.Amount.String(),
		OccurredAt: now,
	})

	return stored, nil
}

// Transfer moves amount of asset from one owner to another. The sender's
// ASSET/CR and EXPENSE/DR and the receiver's ASSET/DR and INCOME/CR legs
// are all logged; only the ASSET legs are projected.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) ([]*domain.Transaction, error) {
	start := time.Now()

	legs, err := uc.transfer(ctx, input)
	uc.observe(OperationTransfer, input.Asset, input.Amount, start, err)

	return legs, err
}

func (uc *LedgerUseCase) transfer(ctx context.Context, input TransferInput) ([]*domain.Transaction, error) {
	if err := domain.ValidateIdentifier("from", input.From); err != nil {
		return nil, err
	}
	if err := domain.ValidateIdentifier("to", input.To); err != nil {
		return nil, err
	}
	if err := domain.ValidateIdentifier("asset", input.Asset); err != nil {
		return nil, err
	}
	if input.From == input.To {
		return nil, domain.ErrSameOwner
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	txid, err := uc.txID(input.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	legs := []*domain.Transaction{
		uc.leg(now, txid, input.From, input.Asset, domain.AccountAsset, domain.Credit, input.Amount),
		uc.leg(now, txid, input.From, input.Asset, domain.AccountExpense, domain.Debit, input.Amount),
		uc.leg(now, txid, input.To, input.Asset, domain.AccountAsset, domain.Debit, input.Amount),
		uc.leg(now, txid, input.To, input.Asset, domain.AccountIncome, domain.Credit, input.Amount),
	}

	stored, replayed, err := uc.execute(ctx, OperationTransfer, legs)
	if err != nil {
		return nil, err
	}
	if replayed {
		return stored, nil
	}

	publish(ctx, uc.collaborators, &domain.LedgerEvent{
		Type:       domain.EventTypeTransferred,
		TxID:       txid,
		From:       input.From,
		To:         input.To,
		Asset:      input.Asset,
		Amount:     input.Amount.String(),
		OccurredAt: now,
	})

	return stored, nil
}

// execute appends legs and then projects them. A projection failure after a
// durable append is reported as *domain.PartialProjectionError and the txid
// is queued for repair. replayed reports that the txid was already recorded,
// in which case the caller must not announce the operation again.
func (uc *LedgerUseCase) execute(ctx context.Context, op string, legs []*domain.Transaction) ([]*domain.Transaction, bool, error) {
	stored, replayed, err := uc.recorder.Append(ctx, legs)
	if err != nil {
		return nil, false, err
	}

	if replayed {
		uc.logger.Info().
			Str("operation", op).
			Str("txid", stored[0].TxID).
			Msg("txid already recorded, replaying stored legs")
		if uc.metrics != nil {
			uc.metrics.AppendReplays.Inc()
		}
	} else if uc.metrics != nil {
		uc.metrics.LegsAppended.Add(float64(len(stored)))
	}

	records, err := uc.projector.ApplyAll(ctx, stored)
	if uc.metrics != nil {
		uc.metrics.ProjectionsApplied.Add(float64(len(records)))
	}
	if err != nil {
		var partial *domain.PartialProjectionError
		if errors.As(err, &partial) {
			uc.handlePartialProjection(ctx, op, partial)
		}
		return nil, false, err
	}

	return stored, replayed, nil
}

func (uc *LedgerUseCase) handlePartialProjection(ctx context.Context, op string, partial *domain.PartialProjectionError) {
	uc.logger.Error().
		Err(partial.Err).
		Str("operation", op).
		Str("txid", partial.TxID).
		Strs("pending_leg_ids", partial.PendingIDs()).
		Msg("transaction logged but not fully projected")

	if uc.metrics != nil {
		uc.metrics.PartialProjections.Inc()
	}

	if uc.queue != nil {
		if err := uc.queue.Enqueue(ctx, partial.TxID); err != nil {
			uc.logger.Error().
				Err(err).
				Str("txid", partial.TxID).
				Msg("failed to enqueue txid for repair")
		}
	}

	publish(ctx, uc.collaborators, &domain.LedgerEvent{
		Type:       domain.EventTypeProjectionFailed,
		TxID:       partial.TxID,
		Asset:      partial.Pending[0].Asset,
		PendingIDs: partial.PendingIDs(),
		OccurredAt: time.Now().UTC(),
	})
}

func (uc *LedgerUseCase) txID(idempotencyKey string) (string, error) {
	if idempotencyKey == "" {
		return uc.txIDs.Generate(), nil
	}
	if err := domain.ValidateIdentifier("idempotency key", idempotencyKey); err != nil {
		return "", err
	}
	return idempotencyKey, nil
}

func (uc *LedgerUseCase) leg(
	at time.Time,
	txid, owner, asset string,
	account domain.AccountType,
	side domain.EntrySide,
	amount decimal.Decimal,
) *domain.Transaction {
	return &domain.Transaction{
		Timestamp: at,
		ID:        uc.legIDs.Generate(),
		TxID:      txid,
		Owner:     owner,
		Asset:     asset,
		Account:   account,
		EntrySide: side,
		Amount:    amount,
	}
}

func (uc *LedgerUseCase) observe(op, asset string, amount decimal.Decimal, start time.Time, err error) {
	if uc.metrics == nil {
		return
	}

	status := "success"
	switch {
	case err == nil:
		f, _ := amount.Float64()
		uc.metrics.OperationAmount.WithLabelValues(op, asset).Observe(f)
	case errors.Is(err, domain.ErrValidationFailed):
		status = "invalid"
	case errors.Is(err, domain.ErrPartialProjection):
		status = "partial"
	default:
		status = "error"
	}

	uc.metrics.Operations.WithLabelValues(op, status).Inc()
	uc.metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
