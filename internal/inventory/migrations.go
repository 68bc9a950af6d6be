package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// schemaVersion is the version this build writes and understands
const schemaVersion = 1

// ErrSchemaMismatch is returned when the database was written by an incompatible build
var ErrSchemaMismatch = errors.New("inventory schema mismatch")

// migrate brings the database schema up to schemaVersion
func migrate(ctx context.Context, db *sql.DB) error {
	var tableExists bool
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	}

	if !tableExists {
		if err := initializeSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		return nil
	}

	var current int
	err = db.QueryRowContext(ctx, `
		SELECT version FROM schema_version
		ORDER BY version DESC LIMIT 1
	`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	if current != schemaVersion {
		return fmt.Errorf("%w: database is at version %d, this build supports %d",
			ErrSchemaMismatch, current, schemaVersion)
	}

	return nil
}

// initializeSchema creates all tables for a new database.
// The inventory table is created with IF NOT EXISTS so databases that predate
// schema_version are adopted as version 1.
func initializeSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, stmt := range []string{schemaVersionTable, inventoryTable, inventoryIndexes} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}

// Schema definitions
const (
	schemaVersionTable = `
CREATE TABLE schema_version (
    version    INTEGER NOT NULL,
    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

	inventoryTable = `
CREATE TABLE IF NOT EXISTS cert_inventory (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    fingerprint TEXT NOT NULL,
    source      TEXT NOT NULL,
    location    TEXT NOT NULL,
    subject     TEXT,
    issuer      TEXT,
    not_before  TEXT,
    not_after   TEXT,
    sans_json   TEXT NOT NULL DEFAULT '[]',
    first_seen  TEXT NOT NULL,
    last_seen   TEXT NOT NULL,

    UNIQUE (fingerprint, source, location)
)`

	inventoryIndexes = `
CREATE INDEX IF NOT EXISTS idx_cert_inventory_expiry ON cert_inventory(not_after);
CREATE INDEX IF NOT EXISTS idx_cert_inventory_source ON cert_inventory(source)`
)
