package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxIdentifierLength = 255
	MaxAmount           = "1000000000000000" // 1 quadrillion
	DefaultHistoryLimit = 10000000

	// MaxAmountScale matches the NUMERIC(38, 18) amount columns.
	MaxAmountScale = 18
	// maxAmountIntDigits is the number of integer digits in MaxAmount.
	maxAmountIntDigits = 16
)

// ValidateIdentifier validates an owner or asset identifier.
func ValidateIdentifier(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, field)
	}

	if len(value) > MaxIdentifierLength {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrFieldTooLong, field, MaxIdentifierLength)
	}

	return nil
}

// ValidateAmount validates a fund or transfer amount. The scale and digit
// checks run before any comparison, since comparing decimals with far apart
// exponents rescales the coefficient.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	if amount.Exponent() < -MaxAmountScale {
		return fmt.Errorf("%w: at most %d decimal places", ErrValidationFailed, MaxAmountScale)
	}

	if int64(amount.NumDigits())+int64(amount.Exponent()) > maxAmountIntDigits {
		return fmt.Errorf("%w: maximum amount is %s", ErrValidationFailed, MaxAmount)
	}

	maxAmount := decimal.RequireFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrValidationFailed, MaxAmount)
	}

	return nil
}

// ValidateLeg checks a single leg's fields against the vocabulary.
func ValidateLeg(leg *Transaction) error {
	if leg == nil {
		return fmt.Errorf("%w: nil leg", ErrValidationFailed)
	}
	if leg.ID == "" {
		return fmt.Errorf("%w: id", ErrMissingField)
	}
	if leg.TxID == "" {
		return fmt.Errorf("%w: txid", ErrMissingField)
	}
	if err := ValidateIdentifier("owner", leg.Owner); err != nil {
		return err
	}
	if err := ValidateIdentifier("asset", leg.Asset); err != nil {
		return err
	}
	if !leg.Account.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccount, leg.Account)
	}
	if !leg.EntrySide.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidEntrySide, leg.EntrySide)
	}
	if leg.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// ValidateLegs checks the preconditions of an append: every leg is valid,
// all legs share one txid and debits equal credits.
func ValidateLegs(legs []*Transaction) error {
	if len(legs) == 0 {
		return ErrEmptyTransaction
	}

	for _, leg := range legs {
		if err := ValidateLeg(leg); err != nil {
			return err
		}
		if leg.TxID != legs[0].TxID {
			return ErrMixedTxID
		}
	}

	dr, cr := SumBySide(legs)
	if !dr.Equal(cr) {
		return fmt.Errorf("%w: txid %s debits=%s credits=%s", ErrUnbalancedTransaction, legs[0].TxID, dr, cr)
	}

	return nil
}

// ParseAccountType parses an account type, case-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	a := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccount, s)
	}
	return a, nil
}

// ParseEntrySide parses an entry side, case-insensitively.
func ParseEntrySide(s string) (EntrySide, error) {
	side := EntrySide(strings.ToUpper(strings.TrimSpace(s)))
	if !side.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntrySide, s)
	}
	return side, nil
}

// NormalizeLimit maps a non-positive history limit to the default.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}
