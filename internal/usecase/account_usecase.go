package usecase

import (
	"context"
	"time"

	"github.com/iho/assetledger/internal/domain"
)

// AccountUseCase initializes balance records for an owner.
type AccountUseCase struct {
	store BalanceStore
	collaborators
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(store BalanceStore, opts ...Option) *AccountUseCase {
	return &AccountUseCase{
		store:         store,
		collaborators: newCollaborators(opts),
	}
}

// Init creates the ASSET/DR and ASSET/CR records of owner for asset at zero
// when they do not exist yet. Existing records are never reset. It returns
// the records as currently stored, debit side first.
func (uc *AccountUseCase) Init(ctx context.Context, owner, asset string) ([]*domain.BalanceRecord, error) {
	if err := domain.ValidateIdentifier("owner", owner); err != nil {
		return nil, err
	}
	if err := domain.ValidateIdentifier("asset", asset); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	records := []*domain.BalanceRecord{
		domain.NewBalanceRecord(owner, domain.AccountAsset, asset, domain.Debit),
		domain.NewBalanceRecord(owner, domain.AccountAsset, asset, domain.Credit),
	}
	for _, r := range records {
		r.UpdatedAt = now
	}

	var created []bool
	err := withRetry(ctx, uc.retrier, func() error {
		var createErr error
		created, createErr = uc.store.ConditionalCreate(ctx, records)
		return createErr
	})
	if err != nil {
		return nil, err
	}

	count := 0
	for _, c := range created {
		if c {
			count++
		}
	}
	if uc.metrics != nil {
		uc.metrics.AccountsInitialized.Add(float64(count))
	}
	uc.logger.Debug().
		Str("owner", owner).
		Str("asset", asset).
		Int("created", count).
		Msg("account initialized")

	current := make([]*domain.BalanceRecord, 0, len(records))
	for _, r := range records {
		var stored *domain.BalanceRecord
		err := withRetry(ctx, uc.retrier, func() error {
			var getErr error
			stored, getErr = uc.store.Get(ctx, r.ID)
			return getErr
		})
		if err != nil {
			return nil, err
		}
		current = append(current, stored)
	}

	if count > 0 {
		publish(ctx, uc.collaborators, &domain.LedgerEvent{
			Type:       domain.EventTypeAccountInitialized,
			Owner:      owner,
			Asset:      asset,
			OccurredAt: now,
		})
	}

	return current, nil
}
