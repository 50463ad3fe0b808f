// Package sqlite provides SQLite-based persistent storage for the service.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Accounts
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    INTEGER NOT NULL
		)`,

		// Cooking preferences, one row per user
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id         TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			budget_eur_week INTEGER NOT NULL DEFAULT 50,
			diners          INTEGER NOT NULL DEFAULT 2,
			meals_per_day   INTEGER NOT NULL DEFAULT 2,
			days            INTEGER NOT NULL DEFAULT 5,
			diet_type       TEXT NOT NULL DEFAULT 'omnivora',
			allergies       TEXT NOT NULL DEFAULT '[]',
			favorite_foods  TEXT NOT NULL DEFAULT '[]',
			disliked_foods  TEXT NOT NULL DEFAULT '[]',
			pantry_items    TEXT NOT NULL DEFAULT '',
			onboarded       BOOLEAN NOT NULL DEFAULT 0,
			updated_at      INTEGER NOT NULL
		)`,

		// Generated meal plans, chef response stored verbatim
		`CREATE TABLE IF NOT EXISTS menus (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			menu_data  TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_menus_user ON menus(user_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS shopping_lists (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			items          TEXT NOT NULL,
			total_cost_eur INTEGER,
			created_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shopping_user ON shopping_lists(user_id, created_at)`,

		// Gamification state: the whole per-user state is one JSON document,
		// saved after every mutation. The engine treats this store as opaque.
		`CREATE TABLE IF NOT EXISTS gamification_state (
			user_id    TEXT PRIMARY KEY,
			state      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
