package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/arilsson/marketplace/internal/ledger"
	"github.com/arilsson/marketplace/internal/model"
)

// EventsHandler serves the append-only activity log.
type EventsHandler struct {
	DB *sql.DB
}

// List handles GET /api/events, newest first. Optional filters:
// ?storefront=<id> and ?account=<address>.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	var storefrontID int64
	if raw := r.URL.Query().Get("storefront"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid storefront filter")
			return
		}
		storefrontID = id
	}
	account := r.URL.Query().Get("account")

	events, err := ledger.ListEvents(r.Context(), h.DB, storefrontID, account)
	if err != nil {
		slog.Error("listing events", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	jsonResponse(w, http.StatusOK, events)
}
