package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	rolesHandler := &RolesHandler{DB: db}
	accountsHandler := &AccountsHandler{DB: db}
	storefrontsHandler := &StorefrontsHandler{DB: db}
	inventoryHandler := &InventoryHandler{DB: db}
	purchaseHandler := &PurchaseHandler{DB: db}
	balanceHandler := &BalanceHandler{DB: db}
	eventsHandler := &EventsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: registration and login.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated session management.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Accounts.
	mux.Handle("GET /api/accounts/me", authMW(http.HandlerFunc(accountsHandler.Me)))
	mux.Handle("POST /api/accounts/{address}/deposit", authMW(http.HandlerFunc(accountsHandler.Deposit)))

	// Role membership. Authorization happens in the ledger, so mutations only
	// need an authenticated caller here.
	mux.Handle("GET /api/admins", authMW(http.HandlerFunc(rolesHandler.ListAdmins)))
	mux.Handle("POST /api/admins", authMW(http.HandlerFunc(rolesHandler.AddAdmin)))
	mux.Handle("DELETE /api/admins/{address}", authMW(http.HandlerFunc(rolesHandler.RemoveAdmin)))
	mux.Handle("GET /api/store-owners", authMW(http.HandlerFunc(rolesHandler.ListStoreOwners)))
	mux.Handle("POST /api/store-owners", authMW(http.HandlerFunc(rolesHandler.AddStoreOwner)))
	mux.Handle("DELETE /api/store-owners/{address}", authMW(http.HandlerFunc(rolesHandler.RemoveStoreOwner)))

	// Storefronts: reads are public so shoppers can browse without an account.
	mux.HandleFunc("GET /api/storefronts", storefrontsHandler.List)
	mux.HandleFunc("GET /api/storefronts/{id}", storefrontsHandler.Get)
	mux.Handle("POST /api/storefronts", authMW(http.HandlerFunc(storefrontsHandler.Create)))
	mux.Handle("DELETE /api/storefronts/{id}", authMW(http.HandlerFunc(storefrontsHandler.Delete)))
	mux.Handle("POST /api/storefronts/{id}/withdraw", authMW(http.HandlerFunc(balanceHandler.Withdraw)))

	// Inventory.
	mux.HandleFunc("GET /api/storefronts/{id}/inventory", inventoryHandler.List)
	mux.HandleFunc("GET /api/storefronts/{id}/inventory/{itemID}", inventoryHandler.Get)
	mux.HandleFunc("GET /api/storefronts/{id}/inventory/{itemID}/photo", inventoryHandler.GetPhoto)
	mux.Handle("POST /api/storefronts/{id}/inventory", authMW(http.HandlerFunc(inventoryHandler.Add)))
	mux.Handle("DELETE /api/storefronts/{id}/inventory/{itemID}", authMW(http.HandlerFunc(inventoryHandler.Remove)))
	mux.Handle("PUT /api/storefronts/{id}/inventory/{itemID}/price", authMW(http.HandlerFunc(inventoryHandler.UpdatePrice)))
	mux.Handle("PUT /api/storefronts/{id}/inventory/{itemID}/quantity", authMW(http.HandlerFunc(inventoryHandler.UpdateQuantity)))
	mux.Handle("POST /api/storefronts/{id}/inventory/{itemID}/photo", authMW(http.HandlerFunc(inventoryHandler.UploadPhoto)))

	// Purchases.
	mux.Handle("POST /api/storefronts/{id}/inventory/{itemID}/purchase", authMW(http.HandlerFunc(purchaseHandler.Purchase)))

	// Activity log.
	mux.Handle("GET /api/events", authMW(http.HandlerFunc(eventsHandler.List)))

	return mux
}
