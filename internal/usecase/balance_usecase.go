package usecase

import (
	"context"

	"github.com/iho/assetledger/internal/domain"
)

// BalanceUseCase reads projected balances.
type BalanceUseCase struct {
	store BalanceStore
	collaborators
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(store BalanceStore, opts ...Option) *BalanceUseCase {
	return &BalanceUseCase{
		store:         store,
		collaborators: newCollaborators(opts),
	}
}

// GetBalance returns the DR and CR records of (owner, asset, account) and
// their net. Net is nil unless each side resolves to exactly one record.
// The result may lag behind the transaction log.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, owner, asset string, account domain.AccountType) (*domain.Balance, error) {
	if err := domain.ValidateIdentifier("owner", owner); err != nil {
		return nil, err
	}
	if err := domain.ValidateIdentifier("asset", asset); err != nil {
		return nil, err
	}
	if !account.IsValid() {
		return nil, domain.ErrInvalidAccount
	}

	dr, drUnique, err := uc.side(ctx, owner, asset, account, domain.Debit)
	if err != nil {
		return nil, err
	}

	cr, crUnique, err := uc.side(ctx, owner, asset, account, domain.Credit)
	if err != nil {
		return nil, err
	}

	if !drUnique || !crUnique {
		return &domain.Balance{DR: dr, CR: cr}, nil
	}

	return domain.NewBalance(dr, cr), nil
}

// side returns the first record found for one entry side and whether it
// was the only one.
func (uc *BalanceUseCase) side(
	ctx context.Context,
	owner, asset string,
	account domain.AccountType,
	side domain.EntrySide,
) (*domain.BalanceRecord, bool, error) {
	filter := BalanceFilter{
		Owner:     owner,
		Asset:     asset,
		Account:   account,
		EntrySide: side,
	}

	var rows []*domain.BalanceRecord
	err := withRetry(ctx, uc.retrier, func() error {
		var scanErr error
		rows, scanErr = uc.store.Scan(ctx, filter, BalanceScanLimit)
		return scanErr
	})
	if err != nil {
		return nil, false, err
	}

	switch len(rows) {
	case 0:
		return nil, true, nil
	case 1:
		return rows[0], true, nil
	default:
		uc.logger.Error().
			Str("owner", owner).
			Str("asset", asset).
			Str("account", string(account)).
			Str("side", string(side)).
			Int("records", len(rows)).
			Msg("more than one balance record for one side")
		return rows[0], false, nil
	}
}
