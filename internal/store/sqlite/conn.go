package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/machi-events/eventfinder/internal/store/sqlstore"
)

// DriverName is the database/sql name registered by modernc.org/sqlite.
const DriverName = "sqlite"

func init() {
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
}

// Open opens (or creates) a SQLite database at path, enables WAL and foreign
// keys, and returns a store with the schema applied.
func Open(ctx context.Context, path string) (*sqlstore.SQLStore, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	x := sqlx.NewDb(db, DriverName)
	if err := Migrate(ctx, x); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sqlstore.New(x), nil
}

func openDB(path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}
	// a single writer connection serializes inserts and keeps ON CONFLICT checks atomic
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
