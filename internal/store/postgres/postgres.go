package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/machi-events/eventfinder/internal/store/sqlstore"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT   NOT NULL UNIQUE,
		password_hash TEXT   NOT NULL,
		created_at    BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_id   TEXT   NOT NULL,
		created_at BIGINT NOT NULL,
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

// Open opens a PostgreSQL connection using the pgx stdlib driver, verifies
// connectivity and applies the schema.
func Open(ctx context.Context, dsn string) (*sqlstore.SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	x := sqlx.NewDb(db, "pgx")
	if err := Migrate(ctx, x); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sqlstore.New(x), nil
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}
