// Package sqlite implements the persistence gateway on an embedded SQLite
// database through the pure-Go modernc.org/sqlite driver, so the binary
// stays CGo-free and cross-compiles everywhere.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements
// repository.ResourceRepository.
type DB struct {
	conn *sql.DB
}

// New opens the database, configures it and runs migrations.
//
// dbPath is either a file path or ":memory:" for a throwaway database, which
// the tests use.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Force an immediate connection so a bad path surfaces here, not on
	// the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return db, nil
}

// Close closes the connection pool. Always defer it next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the resources table.
//
// digest is the primary key and uuid carries a unique index: those are the
// two identity constraints the gateway must detect synchronously at commit
// time. List-valued fields are stored as delimiter-joined TEXT and
// timestamps as pre-formatted TEXT, so a stored resource reads back exactly
// as it was written.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS resources (
			digest      TEXT PRIMARY KEY,
			uuid        TEXT NOT NULL UNIQUE,
			category    TEXT NOT NULL,
			data        TEXT NOT NULL DEFAULT '',
			brief       TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			name        TEXT NOT NULL DEFAULT '',
			"groups"    TEXT NOT NULL DEFAULT '',
			tags        TEXT NOT NULL DEFAULT '',
			links       TEXT NOT NULL DEFAULT '',
			source      TEXT NOT NULL DEFAULT '',
			versions    TEXT NOT NULL DEFAULT '',
			filename    TEXT NOT NULL DEFAULT '',
			created     TEXT NOT NULL,
			updated     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_resources_category ON resources(category);
	`)
	if err != nil {
		return fmt.Errorf("creating resources table: %w", err)
	}
	return nil
}
