package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/adapter/repository/memory"
	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
	"github.com/iho/assetledger/internal/usecase/mocks"
)

// ledgerFixture wires every use case over one in-memory store.
type ledgerFixture struct {
	store          *memory.Store
	txLog          *memory.TransactionLog
	balances       *memory.BalanceStore
	ledger         *usecase.LedgerUseCase
	accounts       *usecase.AccountUseCase
	balance        *usecase.BalanceUseCase
	history        *usecase.HistoryUseCase
	reconciliation *usecase.ReconciliationUseCase
}

func newLedgerFixture(t *testing.T, opts ...usecase.Option) *ledgerFixture {
	t.Helper()

	store := memory.New()
	txLog := store.TransactionLog()
	balances := store.BalanceStore()
	projector := usecase.NewProjector(balances, nil)

	return &ledgerFixture{
		store:    store,
		txLog:    txLog,
		balances: balances,
		ledger: usecase.NewLedgerUseCase(
			usecase.NewRecorder(txLog, nil),
			projector,
			&mocks.SequenceIDGenerator{Prefix: "leg"},
			&mocks.SequenceIDGenerator{Prefix: "tx"},
			opts...,
		),
		accounts:       usecase.NewAccountUseCase(balances, opts...),
		balance:        usecase.NewBalanceUseCase(balances, opts...),
		history:        usecase.NewHistoryUseCase(txLog, opts...),
		reconciliation: usecase.NewReconciliationUseCase(txLog, balances, projector, opts...),
	}
}

// assertProjectionMatchesLog checks that every balance record equals the sum
// of the logged legs for its key and that every projectable key has a record.
func assertProjectionMatchesLog(t *testing.T, f *ledgerFixture) {
	t.Helper()
	ctx := context.Background()

	legs, err := f.txLog.Scan(ctx, usecase.TransactionFilter{}, 0)
	if err != nil {
		t.Fatalf("scan log: %v", err)
	}

	expected := make(map[string]decimal.Decimal)
	for _, leg := range domain.ProjectedLegs(legs) {
		expected[leg.Key()] = expected[leg.Key()].Add(leg.Amount)
	}

	records, err := f.balances.Scan(ctx, usecase.BalanceFilter{}, 0)
	if err != nil {
		t.Fatalf("scan balances: %v", err)
	}

	seen := make(map[string]bool)
	for _, r := range records {
		seen[r.ID] = true
		if !r.Amount.Equal(expected[r.ID]) {
			t.Errorf("record %s: amount %s, want %s", r.ID, r.Amount, expected[r.ID])
		}
	}
	for key := range expected {
		if !seen[key] {
			t.Errorf("no balance record for projected key %s", key)
		}
	}
}

func assertBalancedByTxID(t *testing.T, legs []*domain.Transaction) {
	t.Helper()

	byTx := make(map[string][]*domain.Transaction)
	for _, leg := range legs {
		byTx[leg.TxID] = append(byTx[leg.TxID], leg)
	}
	for txid, group := range byTx {
		dr, cr := domain.SumBySide(group)
		if !dr.Equal(cr) {
			t.Errorf("txid %s: debits %s != credits %s", txid, dr, cr)
		}
	}
}

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
