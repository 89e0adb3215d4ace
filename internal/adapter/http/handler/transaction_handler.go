package handler

import (
	"context"
	"net/http"

	"github.com/iho/assetledger/internal/adapter/http/dto"
	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// HistoryService defines the behavior needed by TransactionHandler.
type HistoryService interface {
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

// TransactionHandler handles transaction history requests.
type TransactionHandler struct {
	historyUC    HistoryService
	defaultAsset string
}

// NewTransactionHandler creates a new TransactionHandler. Requests without
// an asset read defaultAsset.
func NewTransactionHandler(historyUC HistoryService, defaultAsset string) *TransactionHandler {
	return &TransactionHandler{
		historyUC:    historyUC,
		defaultAsset: defaultAsset,
	}
}

// List returns the legs of (uid, asset, account). A missing or non-numeric
// limit falls back to the default history limit.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAccountType(queryOr(r, string(domain.AccountAsset), "account"))
	if err != nil {
		writeDomainError(w, "invalid account", err)
		return
	}

	input := usecase.ListTransactionsInput{
		Owner:   queryOr(r, "", "uid", "owner"),
		Asset:   queryOr(r, h.defaultAsset, "asset"),
		Account: account,
		Limit:   parseIntQuery(r, "limit", domain.DefaultHistoryLimit),
	}

	legs, err := h.historyUC.ListTransactions(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(legs))
}
