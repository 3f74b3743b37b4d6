package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/arilsson/marketplace/internal/ledger"
	"github.com/arilsson/marketplace/internal/model"
)

// StorefrontsHandler handles storefront lifecycle endpoints.
type StorefrontsHandler struct {
	DB *sql.DB
}

type createStoreRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/storefronts, optionally filtered by ?owner=.
func (h *StorefrontsHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")

	var storefronts []model.Storefront
	var err error
	if owner != "" {
		storefronts, err = ledger.StorefrontsByOwner(r.Context(), h.DB, owner)
	} else {
		storefronts, err = ledger.ListStorefronts(r.Context(), h.DB)
	}
	if err != nil {
		slog.Error("listing storefronts", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list storefronts")
		return
	}
	if storefronts == nil {
		storefronts = []model.Storefront{}
	}
	jsonResponse(w, http.StatusOK, storefronts)
}

// Create handles POST /api/storefronts.
func (h *StorefrontsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStoreRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller := callerAddress(r.Context())
	store, err := ledger.CreateStore(r.Context(), h.DB, req.Name, caller)
	if err != nil {
		ledgerError(w, err, "failed to create storefront")
		return
	}

	slog.Info("storefront created", "id", store.ID, "name", store.Name, "owner", caller)
	jsonResponse(w, http.StatusCreated, store)
}

// Get handles GET /api/storefronts/{id}. An absent storefront is reported as
// the sentinel record (id 0) with status 200; reads never 404.
func (h *StorefrontsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid storefront id")
		return
	}

	store, err := ledger.GetStorefront(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting storefront", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get storefront")
		return
	}

	jsonResponse(w, http.StatusOK, store)
}

// Delete handles DELETE /api/storefronts/{id}.
func (h *StorefrontsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid storefront id")
		return
	}

	caller := callerAddress(r.Context())
	if err := ledger.RemoveStore(r.Context(), h.DB, id, caller); err != nil {
		ledgerError(w, err, "failed to remove storefront")
		return
	}

	slog.Info("storefront removed", "id", id, "owner", caller)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "storefront removed"})
}
