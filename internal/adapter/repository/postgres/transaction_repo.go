package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

const (
	insertTxIDSQL = `INSERT INTO transaction_ids (txid, leg_count, created_at) VALUES ($1, $2, $3)`

	insertLegSQL = `INSERT INTO transactions (id, txid, owner, asset, account, entry_side, amount, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8)`

	selectLegsSQL = `SELECT id, txid, owner, asset, account, entry_side, amount::text, created_at FROM transactions`

	sumBySideSQL = `SELECT
    COALESCE(SUM(amount) FILTER (WHERE entry_side = 'DR'), 0)::text,
    COALESCE(SUM(amount) FILTER (WHERE entry_side = 'CR'), 0)::text
FROM transactions`
)

// TransactionRepository implements usecase.TransactionLog.
type TransactionRepository struct {
	pool pgxPool
	txm  *TxManager
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return newTransactionRepository(pool)
}

func newTransactionRepository(pool pgxPool) *TransactionRepository {
	return &TransactionRepository{
		pool: pool,
		txm:  newTxManagerWithPool(pool),
	}
}

// BatchAppend writes the txid marker and every leg in one transaction.
func (r *TransactionRepository) BatchAppend(ctx context.Context, legs []*domain.Transaction) error {
	if len(legs) == 0 {
		return domain.ErrEmptyTransaction
	}

	err := r.txm.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertTxIDSQL, legs[0].TxID, len(legs), legs[0].Timestamp); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateTransaction
			}
			return err
		}

		for _, leg := range legs {
			_, err := tx.Exec(ctx, insertLegSQL,
				leg.ID,
				leg.TxID,
				leg.Owner,
				leg.Asset,
				string(leg.Account),
				string(leg.EntrySide),
				leg.Amount.String(),
				leg.Timestamp,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if errors.Is(err, domain.ErrDuplicateTransaction) {
		return err
	}

	return storageError("batch append", err)
}

// Scan returns legs matching filter ordered by (created_at, id).
func (r *TransactionRepository) Scan(ctx context.Context, filter usecase.TransactionFilter, limit int) ([]*domain.Transaction, error) {
	var w whereBuilder
	w.eq("txid", filter.TxID)
	w.eq("owner", filter.Owner)
	w.eq("asset", filter.Asset)
	w.eq("account", string(filter.Account))
	w.eq("entry_side", string(filter.EntrySide))

	query, args := w.build(selectLegsSQL, "created_at, id", limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("scan transactions", err)
	}
	defer rows.Close()

	legs := make([]*domain.Transaction, 0)
	for rows.Next() {
		leg, err := scanLeg(rows)
		if err != nil {
			return nil, storageError("scan transactions", err)
		}
		legs = append(legs, leg)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("scan transactions", err)
	}

	return legs, nil
}

// SumBySide totals debits and credits over the whole log.
func (r *TransactionRepository) SumBySide(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var drText, crText string
	if err := r.pool.QueryRow(ctx, sumBySideSQL).Scan(&drText, &crText); err != nil {
		return decimal.Zero, decimal.Zero, storageError("sum by side", err)
	}

	dr, err := decimal.NewFromString(drText)
	if err != nil {
		return decimal.Zero, decimal.Zero, storageError("sum by side", err)
	}
	cr, err := decimal.NewFromString(crText)
	if err != nil {
		return decimal.Zero, decimal.Zero, storageError("sum by side", err)
	}

	return dr, cr, nil
}

func scanLeg(row pgx.Row) (*domain.Transaction, error) {
	var (
		leg       domain.Transaction
		account   string
		side      string
		amount    string
		createdAt time.Time
	)

	if err := row.Scan(&leg.ID, &leg.TxID, &leg.Owner, &leg.Asset, &account, &side, &amount, &createdAt); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("leg %s amount %q: %w", leg.ID, amount, err)
	}

	leg.Account = domain.AccountType(account)
	leg.EntrySide = domain.EntrySide(side)
	leg.Amount = parsed
	leg.Timestamp = createdAt.UTC()

	return &leg, nil
}
