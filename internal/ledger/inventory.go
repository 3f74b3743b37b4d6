package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arilsson/marketplace/internal/model"
)

// AddItem adds an item to a storefront's inventory. Only the owning store
// owner may add items. Item ids come from a global monotonic counter so they
// never collide across storefronts.
func AddItem(ctx context.Context, db *sql.DB, storeID int64, name string, price, quantity int64, caller string) (model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.Item{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := resolveStoreOwner(ctx, tx, storeID, caller); err != nil {
		return model.Item{}, err
	}
	if err := model.ValidateName(name); err != nil {
		return model.Item{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if price < 0 || quantity < 0 {
		return model.Item{}, fmt.Errorf("price and quantity must be non-negative: %w", ErrInvalidArgument)
	}

	id, err := nextID(ctx, tx, counterItem)
	if err != nil {
		return model.Item{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO items (id, storefront_id, name, price, quantity) VALUES (?, ?, ?, ?, ?)`,
		id, storeID, name, price, quantity,
	); err != nil {
		return model.Item{}, fmt.Errorf("adding item: %w", err)
	}

	if err := appendEvent(ctx, tx, model.Event{
		Type:         model.EventItemAdded,
		StorefrontID: storeID,
		ItemID:       id,
		Account:      caller,
		Name:         name,
	}); err != nil {
		return model.Item{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Item{}, fmt.Errorf("committing item addition: %w", err)
	}

	return GetItem(ctx, db, id)
}

// RemoveItem removes an item from a storefront. The item must belong to the
// given storefront and the caller must be the storefront's owner.
func RemoveItem(ctx context.Context, db *sql.DB, itemID, storeID int64, caller string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := resolveItemOwner(ctx, tx, itemID, storeID, caller); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ?`, itemID,
	); err != nil {
		return fmt.Errorf("removing item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item removal: %w", err)
	}
	return nil
}

// UpdateItemPrice replaces an item's unit price. Owner-only.
func UpdateItemPrice(ctx context.Context, db *sql.DB, itemID, storeID, newPrice int64, caller string) error {
	if newPrice < 0 {
		return fmt.Errorf("price must be non-negative: %w", ErrInvalidArgument)
	}
	return updateItemField(ctx, db, itemID, storeID, caller, "price", newPrice)
}

// UpdateItemQuantity replaces an item's remaining quantity wholesale. This is
// the only way stock increases after creation; purchases only decrement it.
func UpdateItemQuantity(ctx context.Context, db *sql.DB, itemID, storeID, newQuantity int64, caller string) error {
	if newQuantity < 0 {
		return fmt.Errorf("quantity must be non-negative: %w", ErrInvalidArgument)
	}
	return updateItemField(ctx, db, itemID, storeID, caller, "quantity", newQuantity)
}

// updateItemField sets one of the item's numeric columns after ownership
// checks. The column name is always a compile-time constant.
func updateItemField(ctx context.Context, db *sql.DB, itemID, storeID int64, caller, column string, value int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := resolveItemOwner(ctx, tx, itemID, storeID, caller); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET `+column+` = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		value, itemID,
	); err != nil {
		return fmt.Errorf("updating item %s: %w", column, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item update: %w", err)
	}
	return nil
}

// GetItem returns an item by id. An absent or removed item yields the zero
// record (ID == 0), never an error.
func GetItem(ctx context.Context, db *sql.DB, id int64) (model.Item, error) {
	var i model.Item
	var photoMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, storefront_id, name, price, quantity, photo_mime, created_at, updated_at
		 FROM items WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&i.ID, &i.StorefrontID, &i.Name, &i.Price, &i.Quantity, &photoMime, &i.CreatedAt, &i.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Item{}, nil
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("getting item: %w", err)
	}
	i.PhotoMime = photoMime.String
	return i, nil
}

// GetInventory returns a storefront's live items in creation order. Removed
// items are skipped; an absent storefront yields an empty inventory.
func GetInventory(ctx context.Context, db *sql.DB, storeID int64) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.storefront_id, i.name, i.price, i.quantity, i.photo_mime, i.created_at, i.updated_at
		 FROM items i
		 JOIN storefronts s ON s.id = i.storefront_id
		 WHERE i.storefront_id = ? AND i.deleted_at IS NULL AND s.deleted_at IS NULL
		 ORDER BY i.id`, storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var i model.Item
		var photoMime sql.NullString
		if err := rows.Scan(&i.ID, &i.StorefrontID, &i.Name, &i.Price, &i.Quantity,
			&photoMime, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		i.PhotoMime = photoMime.String
		items = append(items, i)
	}
	return items, rows.Err()
}

// SetItemPhoto stores a listing photo for an item. Owner-only.
func SetItemPhoto(ctx context.Context, db *sql.DB, itemID, storeID int64, caller string, photo []byte, mime string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := resolveItemOwner(ctx, tx, itemID, storeID, caller); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		photo, mime, itemID,
	); err != nil {
		return fmt.Errorf("setting item photo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item photo: %w", err)
	}
	return nil
}

// GetItemPhoto returns an item's listing photo and MIME type, or nil data if
// the item is absent or has no photo.
func GetItemPhoto(ctx context.Context, db *sql.DB, itemID int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM items WHERE id = ? AND deleted_at IS NULL`, itemID,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item photo: %w", err)
	}
	return photo, mime.String, nil
}

// resolveStoreOwner fails with ErrNotFound if the storefront is absent, or
// ErrUnauthorized if the caller does not own it.
func resolveStoreOwner(ctx context.Context, q DBTX, storeID int64, caller string) error {
	var owner string
	err := q.QueryRowContext(ctx,
		`SELECT owner FROM storefronts WHERE id = ? AND deleted_at IS NULL`, storeID,
	).Scan(&owner)
	if err == sql.ErrNoRows {
		return fmt.Errorf("storefront %d: %w", storeID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("resolving storefront: %w", err)
	}
	if owner != caller {
		return fmt.Errorf("caller %q does not own storefront %d: %w", caller, storeID, ErrUnauthorized)
	}
	return nil
}

// resolveItemOwner additionally verifies that the item exists and belongs to
// the given storefront. An item/storefront mismatch reads as ErrNotFound.
func resolveItemOwner(ctx context.Context, q DBTX, itemID, storeID int64, caller string) error {
	var owner string
	err := q.QueryRowContext(ctx,
		`SELECT s.owner
		 FROM items i
		 JOIN storefronts s ON s.id = i.storefront_id
		 WHERE i.id = ? AND i.storefront_id = ? AND i.deleted_at IS NULL AND s.deleted_at IS NULL`,
		itemID, storeID,
	).Scan(&owner)
	if err == sql.ErrNoRows {
		return fmt.Errorf("item %d in storefront %d: %w", itemID, storeID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("resolving item: %w", err)
	}
	if owner != caller {
		return fmt.Errorf("caller %q does not own storefront %d: %w", caller, storeID, ErrUnauthorized)
	}
	return nil
}
