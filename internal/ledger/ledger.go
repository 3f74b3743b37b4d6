// Package ledger implements the marketplace transition function: role grants,
// storefront and inventory lifecycle, purchases, and balance withdrawals.
//
// Every mutating operation runs as a single SQLite transaction and either
// fully commits or returns exactly one of the error kinds in errors.go with no
// partial state change. Authorization is checked inside the same transaction
// as the mutation, so a role revocation serialized before an operation is
// always observed by it.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database operations the ledger uses, satisfied by both
// *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Counter names for persisted monotonic ids.
const (
	counterStorefront = "storefront"
	counterItem       = "item"
)

// nextID increments and returns the named monotonic counter. Ids issued this
// way are never reused, even after the entity they identified is removed.
func nextID(ctx context.Context, q DBTX, name string) (int64, error) {
	_, err := q.ExecContext(ctx,
		`INSERT INTO counters (name, value) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET value = value + 1`,
		name,
	)
	if err != nil {
		return 0, fmt.Errorf("advancing %s counter: %w", name, err)
	}

	var id int64
	err = q.QueryRowContext(ctx,
		`SELECT value FROM counters WHERE name = ?`, name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("reading %s counter: %w", name, err)
	}
	return id, nil
}

// isMember reports whether an address is present in a membership table.
// The table name is always one of the compile-time constants below.
func isMember(ctx context.Context, q DBTX, table, address string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE address = ?`, address,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking %s membership: %w", table, err)
	}
	return count > 0, nil
}

// requireAdmin fails with ErrUnauthorized unless the caller is an administrator.
func requireAdmin(ctx context.Context, q DBTX, caller string) error {
	ok, err := isMember(ctx, q, tableAdmins, caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("caller %q is not an administrator: %w", caller, ErrUnauthorized)
	}
	return nil
}

// requireStoreOwner fails with ErrUnauthorized unless the caller holds the
// store-owner role.
func requireStoreOwner(ctx context.Context, q DBTX, caller string) error {
	ok, err := isMember(ctx, q, tableStoreOwners, caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("caller %q is not a store owner: %w", caller, ErrUnauthorized)
	}
	return nil
}
