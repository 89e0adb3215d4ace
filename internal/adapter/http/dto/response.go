package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// TransactionResponse represents one ledger leg in API responses.
type TransactionResponse struct {
	Timestamp time.Time       `json:"timestamp"`
	ID        string          `json:"id"`
	TxID      string          `json:"txid"`
	Owner     string          `json:"uid"`
	Asset     string          `json:"assetName"`
	Account   string          `json:"account"`
	EntrySide string          `json:"entryType"`
	Amount    decimal.Decimal `json:"amount"`
}

// TransactionFromDomain converts a domain leg to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		Timestamp: t.Timestamp,
		ID:        t.ID,
		TxID:      t.TxID,
		Owner:     t.Owner,
		Asset:     t.Asset,
		Account:   string(t.Account),
		EntrySide: string(t.EntrySide),
		Amount:    t.Amount,
	}
}

// TransactionsFromDomain converts domain legs to responses.
func TransactionsFromDomain(legs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(legs))
	for i, leg := range legs {
		result[i] = TransactionFromDomain(leg)
	}
	return result
}

// BalanceRecordResponse represents a balance record in API responses.
type BalanceRecordResponse struct {
	ID        string          `json:"id"`
	Owner     string          `json:"uid"`
	Asset     string          `json:"assetName"`
	Account   string          `json:"account"`
	EntrySide string          `json:"entryType"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BalanceRecordFromDomain converts a domain balance record to response.
func BalanceRecordFromDomain(b *domain.BalanceRecord) *BalanceRecordResponse {
	if b == nil {
		return nil
	}
	return &BalanceRecordResponse{
		ID:        b.ID,
		Owner:     b.Owner,
		Asset:     b.Asset,
		Account:   string(b.Account),
		EntrySide: string(b.EntrySide),
		Amount:    b.Amount,
		UpdatedAt: b.UpdatedAt,
	}
}

// BalanceRecordsFromDomain converts domain balance records to responses.
func BalanceRecordsFromDomain(records []*domain.BalanceRecord) []*BalanceRecordResponse {
	result := make([]*BalanceRecordResponse, len(records))
	for i, r := range records {
		result[i] = BalanceRecordFromDomain(r)
	}
	return result
}

// BalanceResponse represents a net balance. Total is null when either side
// does not resolve to exactly one record.
type BalanceResponse struct {
	Total *decimal.Decimal       `json:"total"`
	DR    *BalanceRecordResponse `json:"DR"`
	CR    *BalanceRecordResponse `json:"CR"`
}

// BalanceFromDomain converts a domain balance to response.
func BalanceFromDomain(b *domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		Total: b.Net,
		DR:    BalanceRecordFromDomain(b.DR),
		CR:    BalanceRecordFromDomain(b.CR),
	}
}

// ConsistencyResponse represents a ledger-wide consistency check.
type ConsistencyResponse struct {
	Debits     decimal.Decimal `json:"debits"`
	Credits    decimal.Decimal `json:"credits"`
	Consistent bool            `json:"consistent"`
	CheckedAt  time.Time       `json:"checked_at"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		Debits:     r.Debits,
		Credits:    r.Credits,
		Consistent: r.Consistent,
		CheckedAt:  r.CheckedAt,
	}
}

// BalanceReconciliationResponse compares one balance record with its logged legs.
type BalanceReconciliationResponse struct {
	Key           string          `json:"key"`
	Recorded      decimal.Decimal `json:"recorded"`
	Expected      decimal.Decimal `json:"expected"`
	Difference    decimal.Decimal `json:"difference"`
	LegCount      int             `json:"leg_count"`
	RecordPresent bool            `json:"record_present"`
	IsReconciled  bool            `json:"is_reconciled"`
	CheckedAt     time.Time       `json:"checked_at"`
}

// BalanceReconciliationFromReport converts a balance reconciliation to response.
func BalanceReconciliationFromReport(r *usecase.BalanceReconciliation) *BalanceReconciliationResponse {
	return &BalanceReconciliationResponse{
		Key:           r.Key,
		Recorded:      r.Recorded,
		Expected:      r.Expected,
		Difference:    r.Difference,
		LegCount:      r.LegCount,
		RecordPresent: r.RecordPresent,
		IsReconciled:  r.IsReconciled,
		CheckedAt:     r.CheckedAt,
	}
}

// RepairResponse represents the outcome of re-projecting a transaction.
type RepairResponse struct {
	TxID      string `json:"txid"`
	Legs      int    `json:"legs"`
	Projected int    `json:"projected"`
}

// RepairFromReport converts a repair report to response.
func RepairFromReport(r *usecase.RepairReport) *RepairResponse {
	return &RepairResponse{
		TxID:      r.TxID,
		Legs:      r.Legs,
		Projected: r.Projected,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Message    string   `json:"message,omitempty"`
	TxID       string   `json:"txid,omitempty"`
	PendingIDs []string `json:"pending_ids,omitempty"`
}
