package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceRecord is the running total of all projected legs for one
// (owner, account, asset, entry side) key. Only the projector mutates it.
type BalanceRecord struct {
	UpdatedAt time.Time
	ID        string
	Owner     string
	Asset     string
	Account   AccountType
	EntrySide EntrySide
	Amount    decimal.Decimal
}

// NewBalanceRecord returns a zero-balance record with its derived key.
func NewBalanceRecord(owner string, account AccountType, asset string, side EntrySide) *BalanceRecord {
	return &BalanceRecord{
		ID:        BalanceKey(owner, account, asset, side),
		Owner:     owner,
		Asset:     asset,
		Account:   account,
		EntrySide: side,
		Amount:    decimal.Zero,
	}
}

// BalanceKey derives the balance record identity for a tuple.
//
// Every component is written as <byte length>:<value> and the components are
// joined with "/". The length prefix makes the encoding injective whatever
// bytes the values contain, so distinct tuples never share a key.
func BalanceKey(owner string, account AccountType, asset string, side EntrySide) string {
	var b strings.Builder
	parts := [4]string{owner, string(account), asset, string(side)}
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// Balance is the read model returned by the balance reader.
// Net is nil when either side does not resolve to exactly one record.
type Balance struct {
	DR  *BalanceRecord
	CR  *BalanceRecord
	Net *decimal.Decimal
}

// NewBalance computes the net DR - CR when both records are present.
func NewBalance(dr, cr *BalanceRecord) *Balance {
	b := &Balance{DR: dr, CR: cr}
	if dr != nil && cr != nil {
		net := dr.Amount.Sub(cr.Amount)
		b.Net = &net
	}
	return b
}
