package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/arilsson/marketplace/internal/ledger"
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

// ledgerError maps a ledger failure kind to an HTTP status. Anything that is
// not one of the known kinds is an internal error and gets the fallback
// message instead of the raw error.
func ledgerError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ledger.ErrUnauthorized):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInsufficientStock):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrInsufficientPayment):
		jsonError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, ledger.ErrInvalidArgument):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error(fallback, "error", err)
		jsonError(w, http.StatusInternalServerError, fallback)
	}
}
