package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. The transactions table is the
// append-only ledger; stock is the current-value table derived from it and
// from pending transfer reservations.
const schema = `
CREATE TABLE IF NOT EXISTS hospitals (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    location   TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME
);

CREATE TABLE IF NOT EXISTS departments (
    id          INTEGER PRIMARY KEY,
    hospital_id INTEGER NOT NULL REFERENCES hospitals(id),
    parent_id   INTEGER REFERENCES departments(id),
    name        TEXT NOT NULL,
    staff_count INTEGER NOT NULL DEFAULT 0,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at  DATETIME
);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user', 'readonly')),
    department_id INTEGER REFERENCES departments(id),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    category   TEXT NOT NULL DEFAULT '',
    unit       TEXT NOT NULL DEFAULT 'unit',
    photo      BLOB,
    photo_mime TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME
);

CREATE TABLE IF NOT EXISTS stock (
    item_id       INTEGER NOT NULL REFERENCES items(id),
    department_id INTEGER NOT NULL REFERENCES departments(id),
    quantity      INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    reserved      INTEGER NOT NULL DEFAULT 0 CHECK (reserved >= 0 AND reserved <= quantity),
    min_threshold INTEGER NOT NULL DEFAULT 0 CHECK (min_threshold >= 0),
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (item_id, department_id)
);

CREATE TABLE IF NOT EXISTS transactions (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    kind          TEXT NOT NULL CHECK (kind IN ('book_in', 'book_out', 'transfer_out', 'transfer_in')),
    item_id       INTEGER NOT NULL REFERENCES items(id),
    department_id INTEGER NOT NULL REFERENCES departments(id),
    quantity      INTEGER NOT NULL CHECK (quantity > 0),
    actor_id      INTEGER REFERENCES users(id),
    transfer_id   INTEGER REFERENCES transfers(id),
    dedup_key     TEXT,
    status        TEXT NOT NULL DEFAULT 'completed' CHECK (status IN ('completed', 'pending', 'cancelled')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_dedup
    ON transactions(dedup_key) WHERE dedup_key IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_transactions_stock
    ON transactions(item_id, department_id);

CREATE TABLE IF NOT EXISTS transfers (
    id                        INTEGER PRIMARY KEY,
    source_department_id      INTEGER NOT NULL REFERENCES departments(id),
    destination_department_id INTEGER NOT NULL REFERENCES departments(id),
    status                    TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    priority                  TEXT NOT NULL DEFAULT '',
    requested_by              INTEGER REFERENCES users(id),
    requested_at              DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    resolved_by               INTEGER REFERENCES users(id),
    resolved_at               DATETIME,
    CHECK (source_department_id <> destination_department_id)
);

CREATE TABLE IF NOT EXISTS transfer_lines (
    transfer_id INTEGER NOT NULL REFERENCES transfers(id),
    line_no     INTEGER NOT NULL,
    item_id     INTEGER NOT NULL REFERENCES items(id),
    quantity    INTEGER NOT NULL CHECK (quantity > 0),
    PRIMARY KEY (transfer_id, line_no)
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

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at the
// end.
var migrations = []string{}

// Migrate creates the schema and applies all migrations.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
