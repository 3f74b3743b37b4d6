package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: Seed the id counters so the first storefront and item get
	// id 1 on databases created before the counters table existed.
	`INSERT OR IGNORE INTO counters (name, value) VALUES ('storefront', 0)`,
	`INSERT OR IGNORE INTO counters (name, value) VALUES ('item', 0)`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
