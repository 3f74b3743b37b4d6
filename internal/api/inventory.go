package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/arilsson/marketplace/internal/imaging"
	"github.com/arilsson/marketplace/internal/ledger"
	"github.com/arilsson/marketplace/internal/model"
)

// maxPhotoUpload limits listing photo uploads to 5 MiB before decoding.
const maxPhotoUpload = 5 << 20

// InventoryHandler handles item endpoints scoped under a storefront.
type InventoryHandler struct {
	DB *sql.DB
}

type addItemRequest struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type updatePriceRequest struct {
	Price int64 `json:"price"`
}

type updateQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// inventoryResponse carries a storefront's inventory as parallel arrays, one
// entry per item, all in creation order.
type inventoryResponse struct {
	IDs        []int64  `json:"ids"`
	Names      []string `json:"names"`
	Prices     []int64  `json:"prices"`
	Quantities []int64  `json:"quantities"`
}

// List handles GET /api/storefronts/{id}/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid storefront id")
		return
	}

	items, err := ledger.GetInventory(r.Context(), h.DB, storeID)
	if err != nil {
		slog.Error("listing inventory", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}

	resp := inventoryResponse{
		IDs:        make([]int64, 0, len(items)),
		Names:      make([]string, 0, len(items)),
		Prices:     make([]int64, 0, len(items)),
		Quantities: make([]int64, 0, len(items)),
	}
	for _, item := range items {
		resp.IDs = append(resp.IDs, item.ID)
		resp.Names = append(resp.Names, item.Name)
		resp.Prices = append(resp.Prices, item.Price)
		resp.Quantities = append(resp.Quantities, item.Quantity)
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Add handles POST /api/storefronts/{id}/inventory.
func (h *InventoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid storefront id")
		return
	}

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller := callerAddress(r.Context())
	item, err := ledger.AddItem(r.Context(), h.DB, storeID, req.Name, req.Price, req.Quantity, caller)
	if err != nil {
		ledgerError(w, err, "failed to add item")
		return
	}

	slog.Info("item added", "id", item.ID, "storefront", storeID, "name", item.Name)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/storefronts/{id}/inventory/{itemID}. Like storefront
// reads, an absent item is the zero record with status 200.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	storeID, itemID, ok := pathIDs(w, r)
	if !ok {
		return
	}

	item, err := ledger.GetItem(r.Context(), h.DB, itemID)
	if err != nil {
		slog.Error("getting item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item.StorefrontID != storeID {
		item = model.Item{}
	}
	jsonResponse(w, http.StatusOK, item)
}

// Remove handles DELETE /api/storefronts/{id}/inventory/{itemID}.
func (h *InventoryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	storeID, itemID, ok := pathIDs(w, r)
	if !ok {
		return
	}

	caller := callerAddress(r.Context())
	if err := ledger.RemoveItem(r.Context(), h.DB, itemID, storeID, caller); err != nil {
		ledgerError(w, err, "failed to remove item")
		return
	}

	slog.Info("item removed", "id", itemID, "storefront", storeID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item removed"})
}

// UpdatePrice handles PUT /api/storefronts/{id}/inventory/{itemID}/price.
func (h *InventoryHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	storeID, itemID, ok := pathIDs(w, r)
	if !ok {
		return
	}

	var req updatePriceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller := callerAddress(r.Context())
	if err := ledger.UpdateItemPrice(r.Context(), h.DB, itemID, storeID, req.Price, caller); err != nil {
		ledgerError(w, err, "failed to update price")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "price updated"})
}

// UpdateQuantity handles PUT /api/storefronts/{id}/inventory/{itemID}/quantity.
func (h *InventoryHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	storeID, itemID, ok := pathIDs(w, r)
	if !ok {
		return
	}

	var req updateQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller := callerAddress(r.Context())
	if err := ledger.UpdateItemQuantity(r.Context(), h.DB, itemID, storeID, req.Quantity, caller); err != nil {
		ledgerError(w, err, "failed to update quantity")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "quantity updated"})
}

// UploadPhoto handles POST /api/storefronts/{id}/inventory/{itemID}/photo.
// The photo arrives as multipart form data under the "photo" field and is
// normalized (downscaled, re-encoded) before storage.
func (h *InventoryHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	storeID, itemID, ok := pathIDs(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoUpload)
	if err := r.ParseMultipartForm(maxPhotoUpload); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "missing photo field")
		return
	}
	defer file.Close()

	data, mime, err := imaging.Normalize(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	caller := callerAddress(r.Context())
	if err := ledger.SetItemPhoto(r.Context(), h.DB, itemID, storeID, caller, data, mime); err != nil {
		ledgerError(w, err, "failed to store photo")
		return
	}

	slog.Info("item photo stored", "item", itemID, "storefront", storeID, "bytes", len(data))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo stored"})
}

// GetPhoto handles GET /api/storefronts/{id}/inventory/{itemID}/photo.
func (h *InventoryHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	_, itemID, ok := pathIDs(w, r)
	if !ok {
		return
	}

	photo, mime, err := ledger.GetItemPhoto(r.Context(), h.DB, itemID)
	if err != nil {
		slog.Error("getting item photo", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if len(photo) == 0 {
		jsonError(w, http.StatusNotFound, "item has no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	w.Write(photo)
}

// pathIDs parses the {id} and {itemID} path segments shared by the item
// endpoints, writing a 400 on malformed input.
func pathIDs(w http.ResponseWriter, r *http.Request) (storeID, itemID int64, ok bool) {
	storeID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid storefront id")
		return 0, 0, false
	}
	itemID, err = strconv.ParseInt(r.PathValue("itemID"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return 0, 0, false
	}
	return storeID, itemID, true
}
