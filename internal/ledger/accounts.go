package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arilsson/marketplace/internal/model"
)

// CreateAccount registers a new account. The address is the identifier every
// ledger operation trusts; the password hash is only used by the API login.
func CreateAccount(ctx context.Context, db *sql.DB, address, passwordHash string) (*model.Account, error) {
	if err := model.ValidateAddress(address); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE address = ?`, address,
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("checking account existence: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("account %q already exists: %w", address, ErrInvalidArgument)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (address, password_hash) VALUES (?, ?)`,
		address, passwordHash,
	); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing account creation: %w", err)
	}

	return GetAccount(ctx, db, address)
}

// GetAccount returns an account by address, or nil if it does not exist.
func GetAccount(ctx context.Context, db *sql.DB, address string) (*model.Account, error) {
	a := &model.Account{}
	err := db.QueryRowContext(ctx,
		`SELECT address, password_hash, balance, created_at
		 FROM accounts WHERE address = ?`, address,
	).Scan(&a.Address, &a.PasswordHash, &a.Balance, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}
	return a, nil
}

// UpdateAccountPassword replaces an account's password hash.
func UpdateAccountPassword(ctx context.Context, db *sql.DB, address, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ? WHERE address = ?`,
		passwordHash, address,
	)
	if err != nil {
		return fmt.Errorf("updating account password: %w", err)
	}
	return nil
}

// Deposit credits an account with spendable funds. Only administrators may
// mint deposits; buyers are otherwise funded by withdrawals they receive.
func Deposit(ctx context.Context, db *sql.DB, caller, address string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be positive: %w", ErrInvalidArgument)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireAdmin(ctx, tx, caller); err != nil {
		return err
	}
	if err := model.ValidateAddress(address); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	if err := creditAccount(ctx, tx, address, amount); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing deposit: %w", err)
	}
	return nil
}

// creditAccount adds funds to an account inside the caller's transaction,
// creating the account row if the address has never registered. An account
// created this way has no credentials until its holder registers.
func creditAccount(ctx context.Context, q DBTX, address string, amount int64) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO accounts (address, password_hash, balance) VALUES (?, '', ?)
		 ON CONFLICT (address) DO UPDATE SET balance = balance + excluded.balance`,
		address, amount,
	)
	if err != nil {
		return fmt.Errorf("crediting account %q: %w", address, err)
	}
	return nil
}

// debitAccount removes funds from an account inside the caller's transaction.
// It reports false when the account is missing or cannot cover the amount,
// leaving the balance untouched.
func debitAccount(ctx context.Context, q DBTX, address string, amount int64) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE accounts SET balance = balance - ? WHERE address = ? AND balance >= ?`,
		amount, address, amount,
	)
	if err != nil {
		return false, fmt.Errorf("debiting account %q: %w", address, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("debiting account %q: %w", address, err)
	}
	return rows > 0, nil
}
