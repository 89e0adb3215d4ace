package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
	"github.com/iho/assetledger/internal/usecase/mocks"
)

func fundLegs(txid, crID, drID string, amount int64) []*domain.Transaction {
	now := time.Now().UTC()
	return []*domain.Transaction{
		{Timestamp: now, ID: crID, TxID: txid, Owner: "u", Asset: "GEM", Account: domain.AccountEquity, EntrySide: domain.Credit, Amount: d(amount)},
		{Timestamp: now, ID: drID, TxID: txid, Owner: "u", Asset: "GEM", Account: domain.AccountAsset, EntrySide: domain.Debit, Amount: d(amount)},
	}
}

func TestRecorder_Append(t *testing.T) {
	tests := []struct {
		name         string
		legs         []*domain.Transaction
		setup        func(*mocks.TransactionLogStub)
		wantErr      error
		wantReplayed bool
		wantIDs      []string
		wantBatches  int
	}{
		{
			name:        "new txid is written",
			legs:        fundLegs("tx1", "l1", "l2", 5),
			wantIDs:     []string{"l1", "l2"},
			wantBatches: 1,
		},
		{
			name: "unbalanced legs are rejected before any write",
			legs: func() []*domain.Transaction {
				legs := fundLegs("tx1", "l1", "l2", 5)
				legs[1].Amount = d(6)
				return legs
			}(),
			wantErr: domain.ErrUnbalancedTransaction,
		},
		{
			name:    "empty batch is rejected",
			legs:    nil,
			wantErr: domain.ErrEmptyTransaction,
		},
		{
			name: "retried append of our own legs is not a replay",
			legs: fundLegs("tx1", "l1", "l2", 5),
			setup: func(m *mocks.TransactionLogStub) {
				m.BatchAppendFunc = func(context.Context, []*domain.Transaction) error {
					return domain.ErrDuplicateTransaction
				}
				m.ScanFunc = func(_ context.Context, f usecase.TransactionFilter, _ int) ([]*domain.Transaction, error) {
					return fundLegs(f.TxID, "l1", "l2", 5), nil
				}
			},
			wantIDs: []string{"l1", "l2"},
		},
		{
			name: "earlier call with the same txid is replayed",
			legs: fundLegs("tx1", "l3", "l4", 5),
			setup: func(m *mocks.TransactionLogStub) {
				m.BatchAppendFunc = func(context.Context, []*domain.Transaction) error {
					return domain.ErrDuplicateTransaction
				}
				m.ScanFunc = func(_ context.Context, f usecase.TransactionFilter, _ int) ([]*domain.Transaction, error) {
					return fundLegs(f.TxID, "l1", "l2", 5), nil
				}
			},
			wantReplayed: true,
			wantIDs:      []string{"l1", "l2"},
		},
		{
			name: "same txid with different legs conflicts",
			legs: fundLegs("tx1", "l3", "l4", 7),
			setup: func(m *mocks.TransactionLogStub) {
				m.BatchAppendFunc = func(context.Context, []*domain.Transaction) error {
					return domain.ErrDuplicateTransaction
				}
				m.ScanFunc = func(_ context.Context, f usecase.TransactionFilter, _ int) ([]*domain.Transaction, error) {
					return fundLegs(f.TxID, "l1", "l2", 5), nil
				}
			},
			wantErr: domain.ErrIdempotencyConflict,
		},
		{
			name: "storage failure is returned",
			legs: fundLegs("tx1", "l1", "l2", 5),
			setup: func(m *mocks.TransactionLogStub) {
				m.BatchAppendFunc = func(context.Context, []*domain.Transaction) error {
					return domain.StorageError("batch append", errors.New("timeout"))
				}
			},
			wantErr: domain.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txLog := &mocks.TransactionLogStub{}
			if tt.setup != nil {
				tt.setup(txLog)
			}

			stored, replayed, err := usecase.NewRecorder(txLog, nil).Append(context.Background(), tt.legs)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, txLog.Batches())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantReplayed, replayed)
			ids := make([]string, len(stored))
			for i, leg := range stored {
				ids[i] = leg.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Len(t, txLog.Batches(), tt.wantBatches)
		})
	}
}

func TestRecorder_AppendGoesThroughRetrier(t *testing.T) {
	ctrl := gomock.NewController(t)
	retrier := mocks.NewMockRetrier(ctrl)

	attempts := 0
	txLog := &mocks.TransactionLogStub{
		BatchAppendFunc: func(context.Context, []*domain.Transaction) error {
			attempts++
			if attempts == 1 {
				return domain.StorageError("batch append", errors.New("deadlock"))
			}
			return nil
		},
	}

	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, op func() error) error {
		var err error
		for i := 0; i < 3; i++ {
			if err = op(); err == nil || !domain.IsRetryable(err) {
				return err
			}
		}
		return err
	})

	_, replayed, err := usecase.NewRecorder(txLog, retrier).Append(context.Background(), fundLegs("tx1", "l1", "l2", 5))
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 2, attempts)
}
