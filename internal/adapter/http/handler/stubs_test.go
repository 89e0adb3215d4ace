package handler

import (
	"context"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

type accountServiceStub struct {
	initFn func(ctx context.Context, owner, asset string) ([]*domain.BalanceRecord, error)
}

func (s *accountServiceStub) Init(ctx context.Context, owner, asset string) ([]*domain.BalanceRecord, error) {
	return s.initFn(ctx, owner, asset)
}

type balanceServiceStub struct {
	getFn func(ctx context.Context, owner, asset string, account domain.AccountType) (*domain.Balance, error)
}

func (s *balanceServiceStub) GetBalance(ctx context.Context, owner, asset string, account domain.AccountType) (*domain.Balance, error) {
	return s.getFn(ctx, owner, asset, account)
}

type ledgerServiceStub struct {
	fundFn     func(ctx context.Context, input usecase.FundInput) ([]*domain.Transaction, error)
	transferFn func(ctx context.Context, input usecase.TransferInput) ([]*domain.Transaction, error)
}

func (s *ledgerServiceStub) Fund(ctx context.Context, input usecase.FundInput) ([]*domain.Transaction, error) {
	return s.fundFn(ctx, input)
}

func (s *ledgerServiceStub) Transfer(ctx context.Context, input usecase.TransferInput) ([]*domain.Transaction, error) {
	return s.transferFn(ctx, input)
}

type historyServiceStub struct {
	listFn func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

func (s *historyServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
	return s.listFn(ctx, input)
}

type reconciliationServiceStub struct {
	consistencyFn func(ctx context.Context) (*usecase.ConsistencyReport, error)
	balanceFn     func(ctx context.Context, owner, asset string, account domain.AccountType, side domain.EntrySide) (*usecase.BalanceReconciliation, error)
	repairFn      func(ctx context.Context, txid string) (*usecase.RepairReport, error)
}

func (s *reconciliationServiceStub) CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error) {
	return s.consistencyFn(ctx)
}

func (s *reconciliationServiceStub) ReconcileBalance(
	ctx context.Context,
	owner, asset string,
	account domain.AccountType,
	side domain.EntrySide,
) (*usecase.BalanceReconciliation, error) {
	return s.balanceFn(ctx, owner, asset, account, side)
}

func (s *reconciliationServiceStub) RepairTransaction(ctx context.Context, txid string) (*usecase.RepairReport, error) {
	return s.repairFn(ctx, txid)
}
