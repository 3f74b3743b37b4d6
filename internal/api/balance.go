package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/arilsson/marketplace/internal/ledger"
)

// BalanceHandler handles storefront balance withdrawal.
type BalanceHandler struct {
	DB *sql.DB
}

type withdrawResponse struct {
	Amount int64 `json:"amount"`
}

// Withdraw handles POST /api/storefronts/{id}/withdraw. The full storefront
// balance moves to the owner's account; there are no partial withdrawals.
func (h *BalanceHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid storefront id")
		return
	}

	caller := callerAddress(r.Context())
	amount, err := ledger.WithdrawBalance(r.Context(), h.DB, storeID, caller)
	if err != nil {
		ledgerError(w, err, "failed to withdraw balance")
		return
	}

	slog.Info("balance withdrawn", "storefront", storeID, "owner", caller, "amount", amount)
	jsonResponse(w, http.StatusOK, withdrawResponse{Amount: amount})
}
