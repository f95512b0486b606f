// Package mysqlstore implements store.Store against an external MySQL
// server, for deployments that want the universe database shared
// across multiple servers.
package mysqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"

	"universe-server/internal/store"
	"universe-server/internal/store/sqlstore"
)

// Config is the connection information for an external MySQL server.
type Config struct {
	Hostname string
	Port     uint16
	Username string
	Password string
	Database string
}

func (c Config) dsn() string {
	addr := fmt.Sprintf("%s:%d", c.Hostname, c.Port)
	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = addr
	cfg.DBName = c.Database
	cfg.ParseTime = false
	return cfg.FormatDSN()
}

// Open connects to the configured MySQL server and creates every table
// store.Store needs if it doesn't already exist. Queries issued
// through the returned store retry automatically on transient
// connection errors, mirroring the original's mysql_get_conn loop.
func Open(ctx context.Context, cfg Config) (store.Store, error) {
	db, err := sql.Open("mysql", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("mysqlstore: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysqlstore: ping: %w", err)
	}

	s := sqlstore.New(&retryingConn{db: db}, sqlstore.MySQL)
	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// retryingConn wraps a *sql.DB, re-issuing a query once a second until
// it succeeds whenever the failure looks transient (the connection was
// dropped, reset, or refused), and giving up immediately on anything
// else - a query against a live connection that still fails is a logic
// error, not something retrying will fix.
type retryingConn struct {
	db *sql.DB
}

func (r *retryingConn) Close() error { return r.db.Close() }

func (r *retryingConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	for {
		res, err := r.db.ExecContext(ctx, query, args...)
		if !isTransient(err) {
			return res, err
		}
		if !sleepOrDone(ctx) {
			return res, err
		}
	}
}

func (r *retryingConn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	for {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if !isTransient(err) {
			return rows, err
		}
		if !sleepOrDone(ctx) {
			return rows, err
		}
	}
}

func (r *retryingConn) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	// database/sql.Row defers its error until Scan, so a transient
	// failure here surfaces there; QueryRowContext itself never blocks
	// on a retry loop.
	return r.db.QueryRowContext(ctx, query, args...)
}

func sleepOrDone(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Second):
		return true
	}
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, mysql.ErrInvalidConn)
}
