package mocks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// TransactionLogStub is a func-field implementation of usecase.TransactionLog.
// Unset funcs succeed and return empty results. Appended batches are kept.
type TransactionLogStub struct {
	mu      sync.Mutex
	batches [][]*domain.Transaction

	BatchAppendFunc func(ctx context.Context, legs []*domain.Transaction) error
	ScanFunc        func(ctx context.Context, filter usecase.TransactionFilter, limit int) ([]*domain.Transaction, error)
	SumBySideFunc   func(ctx context.Context) (decimal.Decimal, decimal.Decimal, error)
}

func (m *TransactionLogStub) BatchAppend(ctx context.Context, legs []*domain.Transaction) error {
	if m.BatchAppendFunc != nil {
		if err := m.BatchAppendFunc(ctx, legs); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, legs)
	return nil
}

func (m *TransactionLogStub) Scan(ctx context.Context, filter usecase.TransactionFilter, limit int) ([]*domain.Transaction, error) {
	if m.ScanFunc != nil {
		return m.ScanFunc(ctx, filter, limit)
	}
	return nil, nil
}

func (m *TransactionLogStub) SumBySide(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumBySideFunc != nil {
		return m.SumBySideFunc(ctx)
	}
	return decimal.Zero, decimal.Zero, nil
}

// Batches returns the batches accepted so far.
func (m *TransactionLogStub) Batches() [][]*domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]*domain.Transaction(nil), m.batches...)
}

// BalanceStoreStub is a func-field implementation of usecase.BalanceStore.
type BalanceStoreStub struct {
	mu         sync.Mutex
	increments []usecase.BalanceIncrement

	IncrementFunc         func(ctx context.Context, inc usecase.BalanceIncrement) (*domain.BalanceRecord, error)
	ConditionalCreateFunc func(ctx context.Context, records []*domain.BalanceRecord) ([]bool, error)
	GetFunc               func(ctx context.Context, key string) (*domain.BalanceRecord, error)
	ScanFunc              func(ctx context.Context, filter usecase.BalanceFilter, limit int) ([]*domain.BalanceRecord, error)
}

func (m *BalanceStoreStub) Increment(ctx context.Context, inc usecase.BalanceIncrement) (*domain.BalanceRecord, error) {
	if m.IncrementFunc != nil {
		record, err := m.IncrementFunc(ctx, inc)
		if err != nil {
			return nil, err
		}
		m.record(inc)
		return record, nil
	}
	m.record(inc)
	return &domain.BalanceRecord{
		ID:        inc.Key,
		Owner:     inc.Owner,
		Asset:     inc.Asset,
		Account:   inc.Account,
		EntrySide: inc.EntrySide,
		Amount:    inc.Delta,
	}, nil
}

func (m *BalanceStoreStub) record(inc usecase.BalanceIncrement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.increments = append(m.increments, inc)
}

// Increments returns the increments that succeeded so far.
func (m *BalanceStoreStub) Increments() []usecase.BalanceIncrement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]usecase.BalanceIncrement(nil), m.increments...)
}

func (m *BalanceStoreStub) ConditionalCreate(ctx context.Context, records []*domain.BalanceRecord) ([]bool, error) {
	if m.ConditionalCreateFunc != nil {
		return m.ConditionalCreateFunc(ctx, records)
	}
	created := make([]bool, len(records))
	for i := range created {
		created[i] = true
	}
	return created, nil
}

func (m *BalanceStoreStub) Get(ctx context.Context, key string) (*domain.BalanceRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return nil, domain.ErrBalanceNotFound
}

func (m *BalanceStoreStub) Scan(ctx context.Context, filter usecase.BalanceFilter, limit int) ([]*domain.BalanceRecord, error) {
	if m.ScanFunc != nil {
		return m.ScanFunc(ctx, filter, limit)
	}
	return nil, nil
}

// SequenceIDGenerator returns prefix-1, prefix-2, ...
type SequenceIDGenerator struct {
	Prefix string
	n      atomic.Int64
}

func (g *SequenceIDGenerator) Generate() string {
	return fmt.Sprintf("%s-%d", g.Prefix, g.n.Add(1))
}
