package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/arilsson/marketplace/internal/ledger"
)

// AccountsHandler handles account balance and role introspection endpoints.
type AccountsHandler struct {
	DB *sql.DB
}

type depositRequest struct {
	Amount int64 `json:"amount"`
}

type meResponse struct {
	Address    string `json:"address"`
	Balance    int64  `json:"balance"`
	Admin      bool   `json:"admin"`
	StoreOwner bool   `json:"store_owner"`
}

// Me handles GET /api/accounts/me: the caller's address, wallet balance, and
// role memberships in one round trip.
func (h *AccountsHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := callerAddress(r.Context())

	account, err := ledger.GetAccount(r.Context(), h.DB, caller)
	if err != nil {
		slog.Error("getting account", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get account")
		return
	}

	resp := meResponse{Address: caller}
	if account != nil {
		resp.Balance = account.Balance
	}

	if resp.Admin, err = ledger.IsAdmin(r.Context(), h.DB, caller); err != nil {
		slog.Error("checking admin role", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to check roles")
		return
	}
	if resp.StoreOwner, err = ledger.IsStoreOwner(r.Context(), h.DB, caller); err != nil {
		slog.Error("checking store-owner role", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to check roles")
		return
	}

	jsonResponse(w, http.StatusOK, resp)
}

// Deposit handles POST /api/accounts/{address}/deposit. Admin-only; this is
// how spendable funds enter the system.
func (h *AccountsHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")

	var req depositRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller := callerAddress(r.Context())
	if err := ledger.Deposit(r.Context(), h.DB, caller, address, req.Amount); err != nil {
		ledgerError(w, err, "failed to deposit")
		return
	}

	slog.Info("deposit credited", "by", caller, "address", address, "amount", req.Amount)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "deposit credited"})
}
