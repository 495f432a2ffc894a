package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/medinv/medinv/internal/ledger"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// ledgerError maps an engine failure onto the HTTP taxonomy. Business-rule
// failures carry enough detail to adjust and retry; infrastructure failures
// are opaque and marked retryable.
func ledgerError(w http.ResponseWriter, err error) {
	var insufficient *ledger.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		jsonResponse(w, http.StatusUnprocessableEntity, map[string]any{
			"error":         "insufficient stock",
			"item_id":       insufficient.ItemID,
			"department_id": insufficient.DepartmentID,
			"requested":     insufficient.Requested,
			"available":     insufficient.Available,
		})
	case errors.Is(err, ledger.ErrInvalidInput):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInvalidState):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrTimeout), errors.Is(err, ledger.ErrStoreUnavailable):
		w.Header().Set("Retry-After", "1")
		jsonError(w, http.StatusServiceUnavailable, "temporarily unavailable, retry with the same idempotency key")
	case errors.Is(err, ledger.ErrInvariantViolation):
		slog.Error("ledger invariant violation", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	default:
		slog.Error("ledger operation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
