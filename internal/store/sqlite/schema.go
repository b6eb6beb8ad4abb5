package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT    NOT NULL UNIQUE,
		password_hash TEXT    NOT NULL,
		created_at    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_id   TEXT    NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS districts (
		value         TEXT    PRIMARY KEY,
		name_ja       TEXT    NOT NULL,
		name_en       TEXT    NOT NULL,
		area          TEXT    NOT NULL,
		area_name_ja  TEXT    NOT NULL DEFAULT '',
		area_name_en  TEXT    NOT NULL DEFAULT '',
		display_order INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_districts_order ON districts (display_order, value)`,
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
	}
	return nil
}
