package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/assetledger/internal/adapter/http/dto"
	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
	ReconcileBalance(
		ctx context.Context,
		owner, asset string,
		account domain.AccountType,
		side domain.EntrySide,
	) (*usecase.BalanceReconciliation, error)
	RepairTransaction(ctx context.Context, txid string) (*usecase.RepairReport, error)
}

// ReconciliationHandler handles ledger consistency and repair requests.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// Consistency checks that total debits equal total credits.
// An inconsistent ledger is reported with 409.
func (h *ReconciliationHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.CheckConsistency(r.Context())
	if err != nil {
		writeDomainError(w, "failed to check consistency", err)
		return
	}

	status := http.StatusOK
	if !report.Consistent {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.ConsistencyFromReport(report))
}

// Balance compares one balance record with the sum of its logged legs.
func (h *ReconciliationHandler) Balance(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAccountType(r.URL.Query().Get("account"))
	if err != nil {
		writeDomainError(w, "invalid account", err)
		return
	}
	side, err := domain.ParseEntrySide(queryOr(r, "", "side", "entryType"))
	if err != nil {
		writeDomainError(w, "invalid entry side", err)
		return
	}

	result, err := h.reconciliationUC.ReconcileBalance(
		r.Context(),
		queryOr(r, "", "owner", "uid"),
		r.URL.Query().Get("asset"),
		account,
		side,
	)
	if err != nil {
		writeDomainError(w, "failed to reconcile balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceReconciliationFromReport(result))
}

// Repair re-applies the projectable legs of a transaction.
func (h *ReconciliationHandler) Repair(w http.ResponseWriter, r *http.Request) {
	txid := chi.URLParam(r, "txid")
	if txid == "" {
		writeError(w, http.StatusBadRequest, "missing txid", "")
		return
	}

	report, err := h.reconciliationUC.RepairTransaction(r.Context(), txid)
	if err != nil {
		writeDomainError(w, "failed to repair transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RepairFromReport(report))
}
