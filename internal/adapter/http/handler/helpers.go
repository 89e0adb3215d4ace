package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/assetledger/internal/adapter/http/dto"
	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// IdempotencyKeyHeader carries the caller's idempotency key. On fund and
// transfer it becomes the txid.
const IdempotencyKeyHeader = "Idempotency-Key"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status mapDomainError picks for it.
// A partial projection also reports the txid and the pending leg ids.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	resp := dto.ErrorResponse{
		Error:   message,
		Message: err.Error(),
	}

	var partial *domain.PartialProjectionError
	if errors.As(err, &partial) {
		resp.TxID = partial.TxID
		resp.PendingIDs = partial.PendingIDs()
	}

	writeJSON(w, mapDomainError(err), resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrPartialProjection):
		return http.StatusInternalServerError
	case errors.Is(err, usecase.ErrInconsistentLedger):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBalanceNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// queryOr returns the first non-empty query parameter among keys, or def.
func queryOr(r *http.Request, def string, keys ...string) string {
	q := r.URL.Query()
	for _, key := range keys {
		if v := q.Get(key); v != "" {
			return v
		}
	}
	return def
}
