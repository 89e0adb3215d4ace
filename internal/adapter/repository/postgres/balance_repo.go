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
	insertBalanceSQL = `INSERT INTO balance_records (id, owner, asset, account, entry_side, amount, updated_at)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)
ON CONFLICT (id) DO NOTHING`

	markLegProjectedSQL = `INSERT INTO projected_legs (leg_id, balance_id, applied_at) VALUES ($1, $2, $3)
ON CONFLICT (leg_id) DO NOTHING`

	addToBalanceSQL = `UPDATE balance_records SET amount = amount + $2::numeric, updated_at = $3 WHERE id = $1`

	selectBalancesSQL = `SELECT id, owner, asset, account, entry_side, amount::text, updated_at FROM balance_records`

	selectBalanceByIDSQL = selectBalancesSQL + ` WHERE id = $1`
)

// BalanceRepository implements usecase.BalanceStore.
type BalanceRepository struct {
	pool pgxPool
	txm  *TxManager
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return newBalanceRepository(pool)
}

func newBalanceRepository(pool pgxPool) *BalanceRepository {
	return &BalanceRepository{
		pool: pool,
		txm:  newTxManagerWithPool(pool),
	}
}

// Increment creates the record at zero when absent, then adds the delta
// unless the leg was already projected. The UPDATE row lock serializes
// concurrent increments on one key.
func (r *BalanceRepository) Increment(ctx context.Context, inc usecase.BalanceIncrement) (*domain.BalanceRecord, error) {
	now := time.Now().UTC()

	var record *domain.BalanceRecord
	err := r.txm.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertBalanceSQL,
			inc.Key,
			inc.Owner,
			inc.Asset,
			string(inc.Account),
			string(inc.EntrySide),
			"0",
			now,
		)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, markLegProjectedSQL, inc.LegID, inc.Key, now)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 1 {
			if _, err := tx.Exec(ctx, addToBalanceSQL, inc.Key, inc.Delta.String(), now); err != nil {
				return err
			}
		}

		record, err = scanBalance(tx.QueryRow(ctx, selectBalanceByIDSQL, inc.Key))
		return err
	})
	if err != nil {
		return nil, storageError("increment balance", err)
	}

	return record, nil
}

// ConditionalCreate inserts the absent records in one transaction.
func (r *BalanceRepository) ConditionalCreate(ctx context.Context, records []*domain.BalanceRecord) ([]bool, error) {
	created := make([]bool, len(records))

	err := r.txm.WithTx(ctx, func(tx pgx.Tx) error {
		for i, rec := range records {
			tag, err := tx.Exec(ctx, insertBalanceSQL,
				rec.ID,
				rec.Owner,
				rec.Asset,
				string(rec.Account),
				string(rec.EntrySide),
				rec.Amount.String(),
				rec.UpdatedAt,
			)
			if err != nil {
				return err
			}
			created[i] = tag.RowsAffected() == 1
		}
		return nil
	})
	if err != nil {
		return nil, storageError("create balances", err)
	}

	return created, nil
}

// Get returns the record stored under key.
func (r *BalanceRepository) Get(ctx context.Context, key string) (*domain.BalanceRecord, error) {
	record, err := scanBalance(r.pool.QueryRow(ctx, selectBalanceByIDSQL, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBalanceNotFound
	}
	if err != nil {
		return nil, storageError("get balance", err)
	}

	return record, nil
}

// Scan returns records matching filter ordered by id.
func (r *BalanceRepository) Scan(ctx context.Context, filter usecase.BalanceFilter, limit int) ([]*domain.BalanceRecord, error) {
	var w whereBuilder
	w.eq("owner", filter.Owner)
	w.eq("asset", filter.Asset)
	w.eq("account", string(filter.Account))
	w.eq("entry_side", string(filter.EntrySide))

	query, args := w.build(selectBalancesSQL, "id", limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("scan balances", err)
	}
	defer rows.Close()

	records := make([]*domain.BalanceRecord, 0)
	for rows.Next() {
		record, err := scanBalance(rows)
		if err != nil {
			return nil, storageError("scan balances", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("scan balances", err)
	}

	return records, nil
}

func scanBalance(row pgx.Row) (*domain.BalanceRecord, error) {
	var (
		record    domain.BalanceRecord
		account   string
		side      string
		amount    string
		updatedAt time.Time
	)

	if err := row.Scan(&record.ID, &record.Owner, &record.Asset, &account, &side, &amount, &updatedAt); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("balance %s amount %q: %w", record.ID, amount, err)
	}

	record.Account = domain.AccountType(account)
	record.EntrySide = domain.EntrySide(side)
	record.Amount = parsed
	record.UpdatedAt = updatedAt.UTC()

	return &record, nil
}
