// Package store provides the SQLite-backed catalog store.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS families (
	id            TEXT PRIMARY KEY,
	official_tags TEXT NOT NULL DEFAULT '[]',
	checksum      TEXT NOT NULL DEFAULT '',
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tag_scores (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	family_id  TEXT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
	tag        TEXT NOT NULL,
	score      INTEGER NOT NULL DEFAULT 0 CHECK (score >= 0),
	first_seen DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(family_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_tag_scores_family ON tag_scores(family_id, score);
`

// DB wraps a sql.DB with catalog operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
