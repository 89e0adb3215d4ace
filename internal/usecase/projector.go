package usecase

import (
	"context"

	"github.com/iho/assetledger/internal/domain"
)

// Projector folds logged legs into their balance records.
type Projector struct {
	store   BalanceStore
	retrier Retrier
}

// NewProjector creates a new Projector. A nil retrier disables retries.
func NewProjector(store BalanceStore, retrier Retrier) *Projector {
	return &Projector{
		store:   store,
		retrier: retrier,
	}
}

// Apply adds the leg amount to the record for its key. Applying a leg that
// was already applied leaves the record unchanged.
func (p *Projector) Apply(ctx context.Context, leg *domain.Transaction) (*domain.BalanceRecord, error) {
	inc := BalanceIncrement{
		Key:       leg.Key(),
		LegID:     leg.ID,
		Owner:     leg.Owner,
		Asset:     leg.Asset,
		Account:   leg.Account,
		EntrySide: leg.EntrySide,
		Delta:     leg.Amount,
	}

	var record *domain.BalanceRecord
	err := withRetry(ctx, p.retrier, func() error {
		var incErr error
		record, incErr = p.store.Increment(ctx, inc)
		return incErr
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// ApplyAll projects the projectable legs of one txid in order. Legs on
// accounts that are logged only are skipped. On the first failure it returns
// a *domain.PartialProjectionError listing applied and pending legs.
func (p *Projector) ApplyAll(ctx context.Context, legs []*domain.Transaction) ([]*domain.BalanceRecord, error) {
	projected := domain.ProjectedLegs(legs)
	records := make([]*domain.BalanceRecord, 0, len(projected))

	for i, leg := range projected {
		record, err := p.Apply(ctx, leg)
		if err != nil {
			return records, &domain.PartialProjectionError{
				TxID:    leg.TxID,
				Applied: projected[:i],
				Pending: projected[i:],
				Err:     err,
			}
		}
		records = append(records, record)
	}

	return records, nil
}
