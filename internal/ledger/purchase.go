package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/arilsson/marketplace/internal/model"
)

// PurchaseItem executes an atomic buy: it validates the request, debits the
// item's stock, moves exactly cost = price * quantity from the buyer's account
// into the storefront's balance, and records an ItemSold event. The tendered
// value is a spend cap: excess tender never leaves the buyer's account.
//
// All effects commit together or not at all: a failed stock or payment check
// leaves quantity, balances, and the event log untouched. The conditional
// stock decrement guarantees that two purchases racing for the same last unit
// cannot both succeed regardless of serialization order.
func PurchaseItem(ctx context.Context, db *sql.DB, storeID, itemID, quantity, tendered int64, buyer string) error {
	if quantity <= 0 {
		return fmt.Errorf("purchase quantity must be positive: %w", ErrInvalidArgument)
	}
	if tendered < 0 {
		return fmt.Errorf("tendered value must be non-negative: %w", ErrInvalidArgument)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var price, stock int64
	err = tx.QueryRowContext(ctx,
		`SELECT i.price, i.quantity
		 FROM items i
		 JOIN storefronts s ON s.id = i.storefront_id
		 WHERE i.id = ? AND i.storefront_id = ? AND i.deleted_at IS NULL AND s.deleted_at IS NULL`,
		itemID, storeID,
	).Scan(&price, &stock)
	if err == sql.ErrNoRows {
		return fmt.Errorf("item %d in storefront %d: %w", itemID, storeID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("resolving item: %w", err)
	}

	if stock < quantity {
		return fmt.Errorf("item %d has %d of %d requested: %w", itemID, stock, quantity, ErrInsufficientStock)
	}

	if price > 0 && quantity > math.MaxInt64/price {
		return fmt.Errorf("cost overflows: %w", ErrInvalidArgument)
	}
	cost := price * quantity
	if tendered < cost {
		return fmt.Errorf("tendered %d for cost %d: %w", tendered, cost, ErrInsufficientPayment)
	}

	if cost > 0 {
		ok, err := debitAccount(ctx, tx, buyer, cost)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("buyer %q cannot cover cost %d: %w", buyer, cost, ErrInsufficientPayment)
		}
	}

	// Conditional decrement guards the stock even if the earlier read went
	// stale under a different serialization.
	result, err := tx.ExecContext(ctx,
		`UPDATE items SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND quantity >= ?`,
		quantity, itemID, quantity,
	)
	if err != nil {
		return fmt.Errorf("debiting stock: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("debiting stock: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("item %d oversold: %w", itemID, ErrInsufficientStock)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE storefronts SET balance = balance + ? WHERE id = ?`,
		cost, storeID,
	); err != nil {
		return fmt.Errorf("crediting storefront balance: %w", err)
	}

	if err := appendEvent(ctx, tx, model.Event{
		Type:         model.EventItemSold,
		StorefrontID: storeID,
		ItemID:       itemID,
		Account:      buyer,
		Quantity:     quantity,
		Amount:       cost,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing purchase: %w", err)
	}
	return nil
}
