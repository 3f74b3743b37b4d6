package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arilsson/marketplace/internal/model"
)

// CreateStore creates a storefront for the calling store owner. Ids are
// assigned from a persisted monotonic counter and never reused.
func CreateStore(ctx context.Context, db *sql.DB, name, caller string) (model.Storefront, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.Storefront{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireStoreOwner(ctx, tx, caller); err != nil {
		return model.Storefront{}, err
	}
	if err := model.ValidateName(name); err != nil {
		return model.Storefront{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	id, err := nextID(ctx, tx, counterStorefront)
	if err != nil {
		return model.Storefront{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO storefronts (id, name, owner) VALUES (?, ?, ?)`,
		id, name, caller,
	); err != nil {
		return model.Storefront{}, fmt.Errorf("creating storefront: %w", err)
	}

	if err := appendEvent(ctx, tx, model.Event{
		Type:         model.EventStoreCreated,
		StorefrontID: id,
		Account:      caller,
		Name:         name,
	}); err != nil {
		return model.Storefront{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Storefront{}, fmt.Errorf("committing storefront creation: %w", err)
	}

	return GetStorefront(ctx, db, id)
}

// RemoveStore removes a storefront and all of its inventory. Only the owning
// store owner may remove it. Any accumulated balance is paid out to the owner
// so removal never strands funds.
func RemoveStore(ctx context.Context, db *sql.DB, storeID int64, caller string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var owner string
	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT owner, balance FROM storefronts WHERE id = ? AND deleted_at IS NULL`,
		storeID,
	).Scan(&owner, &balance)
	if err == sql.ErrNoRows {
		return fmt.Errorf("storefront %d: %w", storeID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("resolving storefront: %w", err)
	}
	if owner != caller {
		return fmt.Errorf("caller %q does not own storefront %d: %w", caller, storeID, ErrUnauthorized)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE storefronts SET balance = 0, deleted_at = CURRENT_TIMESTAMP WHERE id = ?`,
		storeID,
	); err != nil {
		return fmt.Errorf("removing storefront: %w", err)
	}

	// Cascade: every item under the storefront stops being purchasable or
	// editable in the same transaction.
	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP
		 WHERE storefront_id = ? AND deleted_at IS NULL`,
		storeID,
	); err != nil {
		return fmt.Errorf("removing storefront inventory: %w", err)
	}

	if balance > 0 {
		if err := creditAccount(ctx, tx, owner, balance); err != nil {
			return err
		}
	}

	if err := appendEvent(ctx, tx, model.Event{
		Type:         model.EventStoreRemoved,
		StorefrontID: storeID,
		Account:      caller,
		Amount:       balance,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing storefront removal: %w", err)
	}
	return nil
}

// GetStorefront returns a storefront by id. An absent or removed storefront
// yields the zero record (ID == 0), never an error.
func GetStorefront(ctx context.Context, db *sql.DB, id int64) (model.Storefront, error) {
	var s model.Storefront
	err := db.QueryRowContext(ctx,
		`SELECT id, name, owner, balance, created_at
		 FROM storefronts WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&s.ID, &s.Name, &s.Owner, &s.Balance, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Storefront{}, nil
	}
	if err != nil {
		return model.Storefront{}, fmt.Errorf("getting storefront: %w", err)
	}
	return s, nil
}

// StorefrontsByOwner returns an owner's live storefronts in creation order.
// The slice index is stable between calls as long as no storefront is removed.
func StorefrontsByOwner(ctx context.Context, db *sql.DB, owner string) ([]model.Storefront, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, owner, balance, created_at
		 FROM storefronts WHERE owner = ? AND deleted_at IS NULL ORDER BY id`, owner,
	)
	if err != nil {
		return nil, fmt.Errorf("listing storefronts by owner: %w", err)
	}
	defer rows.Close()

	return scanStorefronts(rows)
}

// ListStorefronts returns all live storefronts in creation order.
func ListStorefronts(ctx context.Context, db *sql.DB) ([]model.Storefront, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, owner, balance, created_at
		 FROM storefronts WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing storefronts: %w", err)
	}
	defer rows.Close()

	return scanStorefronts(rows)
}

// AllStorefrontIDs returns the ids of all live storefronts in creation order.
func AllStorefrontIDs(ctx context.Context, db *sql.DB) ([]int64, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id FROM storefronts WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing storefront ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning storefront id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanStorefronts(rows *sql.Rows) ([]model.Storefront, error) {
	var storefronts []model.Storefront
	for rows.Next() {
		var s model.Storefront
		if err := rows.Scan(&s.ID, &s.Name, &s.Owner, &s.Balance, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning storefront: %w", err)
		}
		storefronts = append(storefronts, s)
	}
	return storefronts, rows.Err()
}
