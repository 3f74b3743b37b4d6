package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// Storefront and item ids come from the counters table, not from rowids, so
// that ids stay monotonic and are never reused after a removal. Removed
// storefronts and items keep their rows with deleted_at set; lookups treat
// them as absent.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    address       TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    balance       INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS admins (
    seq        INTEGER PRIMARY KEY,
    address    TEXT NOT NULL UNIQUE,
    granted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS store_owners (
    seq        INTEGER PRIMARY KEY,
    address    TEXT NOT NULL UNIQUE,
    granted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS storefronts (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    owner      TEXT NOT NULL,
    balance    INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME
);

CREATE TABLE IF NOT EXISTS items (
    id            INTEGER PRIMARY KEY,
    storefront_id INTEGER NOT NULL REFERENCES storefronts(id),
    name          TEXT NOT NULL,
    price         INTEGER NOT NULL CHECK (price >= 0),
    quantity      INTEGER NOT NULL CHECK (quantity >= 0),
    photo         BLOB,
    photo_mime    TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_storefront
    ON items(storefront_id) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS counters (
    name  TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id            TEXT PRIMARY KEY,
    type          TEXT NOT NULL,
    storefront_id INTEGER,
    item_id       INTEGER,
    account       TEXT,
    quantity      INTEGER,
    amount        INTEGER,
    name          TEXT,
    occurred_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
