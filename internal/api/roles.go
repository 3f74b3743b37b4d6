package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/arilsson/marketplace/internal/ledger"
)

// RolesHandler handles administrator and store-owner membership endpoints.
// Authorization lives in the ledger: every grant or revocation is checked
// against the caller's admin membership there, not here.
type RolesHandler struct {
	DB *sql.DB
}

type grantRequest struct {
	Address string `json:"address"`
}

// ListAdmins handles GET /api/admins.
func (h *RolesHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := ledger.ListAdmins(r.Context(), h.DB)
	if err != nil {
		slog.Error("listing admins", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list admins")
		return
	}
	if admins == nil {
		admins = []string{}
	}
	jsonResponse(w, http.StatusOK, admins)
}

// AddAdmin handles POST /api/admins.
func (h *RolesHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller := callerAddress(r.Context())
	if err := ledger.AddAdmin(r.Context(), h.DB, caller, req.Address); err != nil {
		ledgerError(w, err, "failed to grant admin role")
		return
	}

	slog.Info("admin granted", "by", caller, "address", req.Address)
	jsonResponse(w, http.StatusCreated, map[string]string{"address": req.Address})
}

// RemoveAdmin handles DELETE /api/admins/{address}.
func (h *RolesHandler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	caller := callerAddress(r.Context())
	address := r.PathValue("address")

	if err := ledger.RemoveAdmin(r.Context(), h.DB, caller, address); err != nil {
		ledgerError(w, err, "failed to revoke admin role")
		return
	}

	slog.Info("admin revoked", "by", caller, "address", address)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "admin removed"})
}

// ListStoreOwners handles GET /api/store-owners.
func (h *RolesHandler) ListStoreOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := ledger.ListStoreOwners(r.Context(), h.DB)
	if err != nil {
		slog.Error("listing store owners", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list store owners")
		return
	}
	if owners == nil {
		owners = []string{}
	}
	jsonResponse(w, http.StatusOK, owners)
}

// AddStoreOwner handles POST /api/store-owners.
func (h *RolesHandler) AddStoreOwner(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller := callerAddress(r.Context())
	if err := ledger.AddStoreOwner(r.Context(), h.DB, caller, req.Address); err != nil {
		ledgerError(w, err, "failed to grant store-owner role")
		return
	}

	slog.Info("store owner granted", "by", caller, "address", req.Address)
	jsonResponse(w, http.StatusCreated, map[string]string{"address": req.Address})
}

// RemoveStoreOwner handles DELETE /api/store-owners/{address}.
func (h *RolesHandler) RemoveStoreOwner(w http.ResponseWriter, r *http.Request) {
	caller := callerAddress(r.Context())
	address := r.PathValue("address")

	if err := ledger.RemoveStoreOwner(r.Context(), h.DB, caller, address); err != nil {
		ledgerError(w, err, "failed to revoke store-owner role")
		return
	}

	slog.Info("store owner revoked", "by", caller, "address", address)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "store owner removed"})
}
