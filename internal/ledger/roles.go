package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arilsson/marketplace/internal/model"
)

// Membership table names.
const (
	tableAdmins      = "admins"
	tableStoreOwners = "store_owners"
)

// BootstrapAdmin grants the administrator role without an authorization check.
// It exists only for seeding the deploying account at ledger creation; every
// later grant goes through AddAdmin.
func BootstrapAdmin(ctx context.Context, db *sql.DB, address string) error {
	if err := model.ValidateAddress(address); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO admins (address) VALUES (?)`, address,
	)
	if err != nil {
		return fmt.Errorf("seeding administrator: %w", err)
	}
	return nil
}

// AddAdmin grants the administrator role to an account. The caller must be an
// administrator. Granting a role the account already holds is a no-op.
func AddAdmin(ctx context.Context, db *sql.DB, caller, account string) error {
	return addRole(ctx, db, tableAdmins, caller, account)
}

// AddStoreOwner grants the store-owner role to an account. The caller must be
// an administrator. Granting a role the account already holds is a no-op.
func AddStoreOwner(ctx context.Context, db *sql.DB, caller, account string) error {
	return addRole(ctx, db, tableStoreOwners, caller, account)
}

func addRole(ctx context.Context, db *sql.DB, table, caller, account string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireAdmin(ctx, tx, caller); err != nil {
		return err
	}
	if err := model.ValidateAddress(account); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	// INSERT OR IGNORE keeps the grant idempotent and leaves an existing
	// member's listing position untouched.
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+table+` (address) VALUES (?)`, account,
	); err != nil {
		return fmt.Errorf("granting %s role: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing role grant: %w", err)
	}
	return nil
}

// RemoveAdmin revokes the administrator role. The caller must be an
// administrator. Revoking from a non-member is a no-op; removing the final
// remaining administrator is refused so the ledger can never lock itself out.
func RemoveAdmin(ctx context.Context, db *sql.DB, caller, account string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireAdmin(ctx, tx, caller); err != nil {
		return err
	}

	member, err := isMember(ctx, tx, tableAdmins, account)
	if err != nil {
		return err
	}
	if !member {
		return nil
	}

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&total); err != nil {
		return fmt.Errorf("counting administrators: %w", err)
	}
	if total == 1 {
		return fmt.Errorf("cannot remove the last administrator: %w", ErrInvalidArgument)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM admins WHERE address = ?`, account,
	); err != nil {
		return fmt.Errorf("revoking administrator role: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing role revocation: %w", err)
	}
	return nil
}

// RemoveStoreOwner revokes the store-owner role. The caller must be an
// administrator. Storefronts the account already owns stay valid; revocation
// only stops it from creating new ones.
func RemoveStoreOwner(ctx context.Context, db *sql.DB, caller, account string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireAdmin(ctx, tx, caller); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM store_owners WHERE address = ?`, account,
	); err != nil {
		return fmt.Errorf("revoking store-owner role: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing role revocation: %w", err)
	}
	return nil
}

// IsAdmin reports whether an account holds the administrator role.
func IsAdmin(ctx context.Context, db *sql.DB, address string) (bool, error) {
	return isMember(ctx, db, tableAdmins, address)
}

// IsStoreOwner reports whether an account holds the store-owner role.
func IsStoreOwner(ctx context.Context, db *sql.DB, address string) (bool, error) {
	return isMember(ctx, db, tableStoreOwners, address)
}

// ListAdmins returns current administrators in grant order. A re-granted
// member appears at the position of its latest grant.
func ListAdmins(ctx context.Context, db *sql.DB) ([]string, error) {
	return listMembers(ctx, db, tableAdmins)
}

// ListStoreOwners returns current store owners in grant order.
func ListStoreOwners(ctx context.Context, db *sql.DB) ([]string, error) {
	return listMembers(ctx, db, tableStoreOwners)
}

func listMembers(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT address FROM `+table+` ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var address string
		if err := rows.Scan(&address); err != nil {
			return nil, fmt.Errorf("scanning %s member: %w", table, err)
		}
		members = append(members, address)
	}
	return members, rows.Err()
}
