package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/assetledger/internal/adapter/http/dto"
	"github.com/iho/assetledger/internal/domain"
)

// AccountService defines the behavior needed to initialize balance records.
type AccountService interface {
	Init(ctx context.Context, owner, asset string) ([]*domain.BalanceRecord, error)
}

// BalanceService defines the behavior needed to read net balances.
type BalanceService interface {
	GetBalance(ctx context.Context, owner, asset string, account domain.AccountType) (*domain.Balance, error)
}

// AccountHandler handles balance record HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	balanceUC BalanceService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, balanceUC BalanceService) *AccountHandler {
	return &AccountHandler{
		accountUC: accountUC,
		balanceUC: balanceUC,
	}
}

// Init creates the ASSET/DR and ASSET/CR records of an owner if absent.
func (h *AccountHandler) Init(w http.ResponseWriter, r *http.Request) {
	var req dto.InitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	records, err := h.accountUC.Init(r.Context(), req.OwnerID(), req.Asset)
	if err != nil {
		writeDomainError(w, "failed to initialize balances", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceRecordsFromDomain(records))
}

// Balance returns the DR and CR records of a triple and their net.
// The amount and entryType query parameters are accepted and ignored.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	owner := queryOr(r, "", "owner", "uid")
	asset := r.URL.Query().Get("asset")
	account, err := domain.ParseAccountType(r.URL.Query().Get("account"))
	if err != nil {
		writeDomainError(w, "invalid account", err)
		return
	}

	balance, err := h.balanceUC.GetBalance(r.Context(), owner, asset, account)
	if err != nil {
		writeDomainError(w, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}
