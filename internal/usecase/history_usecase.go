package usecase

import (
	"context"

	"github.com/iho/assetledger/internal/domain"
)

// HistoryUseCase lists logged legs.
type HistoryUseCase struct {
	txLog TransactionLog
	collaborators
}

// NewHistoryUseCase creates a new HistoryUseCase.
func NewHistoryUseCase(txLog TransactionLog, opts ...Option) *HistoryUseCase {
	return &HistoryUseCase{
		txLog:         txLog,
		collaborators: newCollaborators(opts),
	}
}

// ListTransactionsInput represents input for listing legs.
type ListTransactionsInput struct {
	Owner   string
	Asset   string
	Account domain.AccountType
	Limit   int
}

// ListTransactions returns at most Limit legs of (Owner, Asset, Account)
// ordered by timestamp then id. A non-positive Limit means the default.
func (uc *HistoryUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	if err := domain.ValidateIdentifier("owner", input.Owner); err != nil {
		return nil, err
	}
	if err := domain.ValidateIdentifier("asset", input.Asset); err != nil {
		return nil, err
	}
	if !input.Account.IsValid() {
		return nil, domain.ErrInvalidAccount
	}

	filter := TransactionFilter{
		Owner:   input.Owner,
		Asset:   input.Asset,
		Account: input.Account,
	}
	limit := domain.NormalizeLimit(input.Limit)

	var legs []*domain.Transaction
	err := withRetry(ctx, uc.retrier, func() error {
		var scanErr error
		legs, scanErr = uc.txLog.Scan(ctx, filter, limit)
		return scanErr
	})
	if err != nil {
		return nil, err
	}

	if legs == nil {
		legs = []*domain.Transaction{}
	}

	return legs, nil
}
