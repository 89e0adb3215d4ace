package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// AppendFault is consulted before each leg of a batch is staged.
// A non-nil error aborts the whole batch.
type AppendFault func(index int, leg *domain.Transaction) error

// IncrementFault is consulted before each balance increment.
type IncrementFault func(inc usecase.BalanceIncrement) error

// Store is an in-process TransactionLog and BalanceStore. A single mutex is
// its atomic primitive, so batches and increments are linearizable.
type Store struct {
	mu sync.RWMutex

	// Transaction log storage
	legs  []*domain.Transaction
	txids map[string]struct{}

	// Balance projection storage
	balances map[string]*domain.BalanceRecord
	applied  map[string]struct{}

	appendFault    AppendFault
	incrementFault IncrementFault
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		legs:     make([]*domain.Transaction, 0),
		txids:    make(map[string]struct{}),
		balances: make(map[string]*domain.BalanceRecord),
		applied:  make(map[string]struct{}),
	}
}

// SetAppendFault installs f for subsequent appends. nil removes it.
func (s *Store) SetAppendFault(f AppendFault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendFault = f
}

// SetIncrementFault installs f for subsequent increments. nil removes it.
func (s *Store) SetIncrementFault(f IncrementFault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incrementFault = f
}

// TransactionLog returns the usecase.TransactionLog view of the store.
func (s *Store) TransactionLog() *TransactionLog {
	return &TransactionLog{s: s}
}

// BalanceStore returns the usecase.BalanceStore view of the store.
func (s *Store) BalanceStore() *BalanceStore {
	return &BalanceStore{s: s}
}

// TransactionLog is the append-only leg store backed by Store.
type TransactionLog struct {
	s *Store
}

// BalanceStore is the balance projection backed by Store.
type BalanceStore struct {
	s *Store
}

func (l *TransactionLog) BatchAppend(ctx context.Context, legs []*domain.Transaction) error {
	s := l.s

	if err := ctx.Err(); err != nil {
		return domain.StorageError("batch append", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make([]*domain.Transaction, 0, len(legs))
	for i, leg := range legs {
		if _, exists := s.txids[leg.TxID]; exists {
			return domain.ErrDuplicateTransaction
		}
		if s.appendFault != nil {
			if err := s.appendFault(i, leg); err != nil {
				return domain.StorageError("batch append", err)
			}
		}
		cp := *leg
		staged = append(staged, &cp)
	}

	s.legs = append(s.legs, staged...)
	for _, leg := range staged {
		s.txids[leg.TxID] = struct{}{}
	}

	return nil
}

func (l *TransactionLog) Scan(ctx context.Context, filter usecase.TransactionFilter, limit int) ([]*domain.Transaction, error) {
	s := l.s

	if err := ctx.Err(); err != nil {
		return nil, domain.StorageError("scan transactions", err)
	}

	s.mu.RLock()
	matched := make([]*domain.Transaction, 0)
	for _, leg := range s.legs {
		if matchTransaction(leg, filter) {
			cp := *leg
			matched = append(matched, &cp)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.Before(matched[j].Timestamp)
		}
		return matched[i].ID < matched[j].ID
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func (l *TransactionLog) SumBySide(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	s := l.s

	if err := ctx.Err(); err != nil {
		return decimal.Zero, decimal.Zero, domain.StorageError("sum by side", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dr, cr := domain.SumBySide(s.legs)
	return dr, cr, nil
}

func matchTransaction(leg *domain.Transaction, f usecase.TransactionFilter) bool {
	return (f.TxID == "" || leg.TxID == f.TxID) &&
		(f.Owner == "" || leg.Owner == f.Owner) &&
		(f.Asset == "" || leg.Asset == f.Asset) &&
		(f.Account == "" || leg.Account == f.Account) &&
		(f.EntrySide == "" || leg.EntrySide == f.EntrySide)
}

// Balance store implementation

func (b *BalanceStore) Increment(ctx context.Context, inc usecase.BalanceIncrement) (*domain.BalanceRecord, error) {
	s := b.s

	if err := ctx.Err(); err != nil {
		return nil, domain.StorageError("increment balance", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.incrementFault != nil {
		if err := s.incrementFault(inc); err != nil {
			return nil, domain.StorageError("increment balance", err)
		}
	}

	record, ok := s.balances[inc.Key]
	if !ok {
		record = &domain.BalanceRecord{
			ID:        inc.Key,
			Owner:     inc.Owner,
			Asset:     inc.Asset,
			Account:   inc.Account,
			EntrySide: inc.EntrySide,
			Amount:    decimal.Zero,
		}
		s.balances[inc.Key] = record
	}

	if _, done := s.applied[inc.LegID]; !done {
		record.Amount = record.Amount.Add(inc.Delta)
		record.UpdatedAt = time.Now().UTC()
		s.applied[inc.LegID] = struct{}{}
	}

	cp := *record
	return &cp, nil
}

func (b *BalanceStore) ConditionalCreate(ctx context.Context, records []*domain.BalanceRecord) ([]bool, error) {
	s := b.s

	if err := ctx.Err(); err != nil {
		return nil, domain.StorageError("create balances", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]bool, len(records))
	for i, r := range records {
		if _, exists := s.balances[r.ID]; exists {
			continue
		}
		cp := *r
		s.balances[r.ID] = &cp
		created[i] = true
	}

	return created, nil
}

func (b *BalanceStore) Get(ctx context.Context, key string) (*domain.BalanceRecord, error) {
	s := b.s

	if err := ctx.Err(); err != nil {
		return nil, domain.StorageError("get balance", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.balances[key]
	if !ok {
		return nil, domain.ErrBalanceNotFound
	}

	cp := *record
	return &cp, nil
}

func (b *BalanceStore) Scan(ctx context.Context, filter usecase.BalanceFilter, limit int) ([]*domain.BalanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.StorageError("scan balances", err)
	}

	s := b.s
	s.mu.RLock()
	matched := make([]*domain.BalanceRecord, 0)
	for _, record := range s.balances {
		if matchBalance(record, filter) {
			cp := *record
			matched = append(matched, &cp)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID < matched[j].ID
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func matchBalance(record *domain.BalanceRecord, f usecase.BalanceFilter) bool {
	return (f.Owner == "" || record.Owner == f.Owner) &&
		(f.Asset == "" || record.Asset == f.Asset) &&
		(f.Account == "" || record.Account == f.Account) &&
		(f.EntrySide == "" || record.EntrySide == f.EntrySide)
}
