package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/assetledger/internal/adapter/http/dto"
	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	Fund(ctx context.Context, input usecase.FundInput) ([]*domain.Transaction, error)
	Transfer(ctx context.Context, input usecase.TransferInput) ([]*domain.Transaction, error)
}

// LedgerHandler handles fund and transfer requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Fund mints an amount of an asset to an owner.
func (h *LedgerHandler) Fund(w http.ResponseWriter, r *http.Request) {
	var req dto.FundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := domain.ValidateAmount(req.Amount); err != nil {
		writeDomainError(w, "invalid amount", err)
		return
	}

	legs, err := h.ledgerUC.Fund(r.Context(), req.ToUseCaseInput(r.Header.Get(IdempotencyKeyHeader)))
	if err != nil {
		writeDomainError(w, "failed to fund", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(legs))
}

// Transfer moves an amount of an asset from one owner to another.
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := domain.ValidateAmount(req.Amount); err != nil {
		writeDomainError(w, "invalid amount", err)
		return
	}

	legs, err := h.ledgerUC.Transfer(r.Context(), req.ToUseCaseInput(r.Header.Get(IdempotencyKeyHeader)))
	if err != nil {
		writeDomainError(w, "failed to transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(legs))
}
