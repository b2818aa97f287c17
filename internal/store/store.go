package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades a journal created by an older schema.sql. Steps are
// applied in order; user_version records the last one applied.
type migration struct {
	version int
	stmt    string
}

var migrations = []migration{
	{1, `CREATE INDEX IF NOT EXISTS idx_mutations_kind ON mutations(kind)`},
	{2, `CREATE INDEX IF NOT EXISTS idx_mutations_status ON mutations(run_id, status)`},
}

// pragmas are applied on every open. The journal has a single writer.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Store is the SQLite journal of design snapshots, runs and mutations.
type Store struct {
	db *sql.DB
}

// Open opens the journal at path, creating the file and schema if needed.
// ":memory:" gives a private in-memory journal.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: an in-memory journal lives in it, and SQLite has a
	// single writer anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %q: %w", p, err)
		}
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying handle for queries the Store does not cover.
func (s *Store) DB() *sql.DB {
	return s.db
}

// applySchema creates missing tables and brings user_version up to date.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := migrate(db, m); err != nil {
			return err
		}
	}
	return nil
}

// migrate applies one step and its user_version bump atomically.
func migrate(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate to v%d: %w", m.version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.stmt); err != nil {
		return fmt.Errorf("migrate to v%d: %w", m.version, err)
	}
	// PRAGMA does not take parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return fmt.Errorf("migrate to v%d: set user_version: %w", m.version, err)
	}
	return tx.Commit()
}

// verifyPragma checks that a pragma has the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
