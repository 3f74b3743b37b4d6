package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/arilsson/marketplace/internal/ledger"
)

// PurchaseHandler handles item purchases.
type PurchaseHandler struct {
	DB *sql.DB
}

type purchaseRequest struct {
	Quantity int64 `json:"quantity"`
	Tendered int64 `json:"tendered"`
}

// Purchase handles POST /api/storefronts/{id}/inventory/{itemID}/purchase.
// The tendered amount is a spending cap: only the actual cost leaves the
// buyer's wallet.
func (h *PurchaseHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	storeID, itemID, ok := pathIDs(w, r)
	if !ok {
		return
	}

	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	buyer := callerAddress(r.Context())
	if err := ledger.PurchaseItem(r.Context(), h.DB, storeID, itemID, req.Quantity, req.Tendered, buyer); err != nil {
		ledgerError(w, err, "failed to purchase item")
		return
	}

	slog.Info("item purchased", "item", itemID, "storefront", storeID, "buyer", buyer, "quantity", req.Quantity)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "purchase complete"})
}
