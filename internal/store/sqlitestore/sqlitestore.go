// Package sqlitestore implements store.Store on top of an on-disk
// sqlite database, for deployments that don't run a separate MySQL
// server.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"universe-server/internal/store"
	"universe-server/internal/store/sqlstore"
)

// Open opens (creating if necessary) the sqlite database at path and
// creates every table store.Store needs if it doesn't already exist.
func Open(ctx context.Context, path string) (store.Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open: %w", err)
	}
	// sqlite3 serializes writers internally; a single connection avoids
	// "database is locked" errors under concurrent access.
	db.SetMaxOpenConns(1)

	s := sqlstore.New(db, sqlstore.SQLite)
	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
