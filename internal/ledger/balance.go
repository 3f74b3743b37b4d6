package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arilsson/marketplace/internal/model"
)

// WithdrawBalance moves a storefront's accumulated balance into its owner's
// account and returns the amount withdrawn. Only the owner may withdraw. The
// balance is snapshotted and zeroed inside one transaction, so a purchase
// serialized after the withdrawal accrues into the fresh zero rather than
// being dropped.
func WithdrawBalance(ctx context.Context, db *sql.DB, storeID int64, caller string) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var owner string
	var amount int64
	err = tx.QueryRowContext(ctx,
		`SELECT owner, balance FROM storefronts WHERE id = ? AND deleted_at IS NULL`,
		storeID,
	).Scan(&owner, &amount)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("storefront %d: %w", storeID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving storefront: %w", err)
	}
	if owner != caller {
		return 0, fmt.Errorf("caller %q does not own storefront %d: %w", caller, storeID, ErrUnauthorized)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE storefronts SET balance = 0 WHERE id = ?`, storeID,
	); err != nil {
		return 0, fmt.Errorf("zeroing storefront balance: %w", err)
	}

	if amount > 0 {
		if err := creditAccount(ctx, tx, caller, amount); err != nil {
			return 0, err
		}
	}

	if err := appendEvent(ctx, tx, model.Event{
		Type:         model.EventBalanceWithdrawn,
		StorefrontID: storeID,
		Account:      caller,
		Amount:       amount,
	}); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing withdrawal: %w", err)
	}
	return amount, nil
}
