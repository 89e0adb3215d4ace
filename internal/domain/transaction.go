package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is one of the fixed double-entry account classes.
type AccountType string

const (
	AccountAsset   AccountType = "ASSET"
	AccountEquity  AccountType = "EQUITY"
	AccountExpense AccountType = "EXPENSE"
	AccountIncome  AccountType = "INCOME"
)

var validAccountTypes = map[AccountType]bool{
	AccountAsset:   true,
	AccountEquity:  true,
	AccountExpense: true,
	AccountIncome:  true,
}

// IsValid reports whether the account type belongs to the vocabulary.
func (a AccountType) IsValid() bool {
	return validAccountTypes[a]
}

// Projected reports whether legs on this account update a balance record.
// EXPENSE and INCOME legs are logged only.
func (a AccountType) Projected() bool {
	return a == AccountAsset || a == AccountEquity
}

// EntrySide is the debit or credit side of a leg.
type EntrySide string

const (
	Debit  EntrySide = "DR"
	Credit EntrySide = "CR"
)

// IsValid reports whether the entry side is DR or CR.
func (s EntrySide) IsValid() bool {
	return s == Debit || s == Credit
}

// Transaction is one immutable leg of a double-entry transaction.
// All legs of a business operation share the same TxID.
type Transaction struct {
	Timestamp time.Time
	ID        string
	TxID      string
	Owner     string
	Asset     string
	Account   AccountType
	EntrySide EntrySide
	Amount    decimal.Decimal
}

// Key returns the balance record key this leg projects into.
func (t *Transaction) Key() string {
	return BalanceKey(t.Owner, t.Account, t.Asset, t.EntrySide)
}

// SumBySide totals the DR and CR amounts of the given legs.
func SumBySide(legs []*Transaction) (dr, cr decimal.Decimal) {
	dr, cr = decimal.Zero, decimal.Zero
	for _, leg := range legs {
		switch leg.EntrySide {
		case Debit:
			dr = dr.Add(leg.Amount)
		case Credit:
			cr = cr.Add(leg.Amount)
		}
	}
	return dr, cr
}

// ProjectedLegs filters legs down to those that update balance records.
func ProjectedLegs(legs []*Transaction) []*Transaction {
	out := make([]*Transaction, 0, len(legs))
	for _, leg := range legs {
		if leg.Account.Projected() {
			out = append(out, leg)
		}
	}
	return out
}
