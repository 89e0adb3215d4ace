package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/usecase"
)

// InitRequest represents a request to initialize the balance records of an owner.
// UID is accepted as an alias of Owner.
type InitRequest struct {
	Asset string `json:"asset"`
	Owner string `json:"owner,omitempty"`
	UID   string `json:"uid,omitempty"`
}

// OwnerID returns Owner, falling back to UID.
func (r *InitRequest) OwnerID() string {
	if r.Owner != "" {
		return r.Owner
	}
	return r.UID
}

// FundRequest represents a request to mint amount of asset to an owner.
// Amount accepts a JSON number or a decimal string.
type FundRequest struct {
	Asset  string          `json:"asset"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *FundRequest) ToUseCaseInput(idempotencyKey string) usecase.FundInput {
	return usecase.FundInput{
		Owner:          r.To,
		Asset:          r.Asset,
		Amount:         r.Amount,
		IdempotencyKey: idempotencyKey,
	}
}

// TransferRequest represents a request to move amount of asset between owners.
type TransferRequest struct {
	Asset  string          `json:"asset"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput(idempotencyKey string) usecase.TransferInput {
	return usecase.TransferInput{
		Asset:          r.Asset,
		From:           r.From,
		To:             r.To,
		Amount:         r.Amount,
		IdempotencyKey: idempotencyKey,
	}
}
