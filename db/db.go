// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/polls/cliparse"
	"github.com/danielhkuo/polls/db/migrations"
)

// DBTX is the subset of database/sql used by the stores.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the configured database, verifies the connection and
// brings the schema up to date.
func Open(ctx context.Context, cfg cliparse.Config) (*sql.DB, error) {
	driver, dsn := driverFor(cfg.DatabaseType, cfg.DatabaseURL)

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection makes
	// concurrent transactions queue in the pool instead of failing with SQLITE_BUSY.
	if cfg.DatabaseType == cliparse.DatabaseSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, conn, cfg.DatabaseType); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

func driverFor(databaseType, dsn string) (driver, resolved string) {
	switch databaseType {
	case cliparse.DatabasePostgres:
		return "postgres", dsn
	case cliparse.DatabasePgx:
		return "pgx", dsn
	default:
		return "sqlite", sqliteDSN(dsn)
	}
}

// sqliteDSN turns on foreign keys (needed for ON DELETE CASCADE) and a busy
// timeout for every connection the pool opens. Times are written in the
// sqlite layout so UTC values compare chronologically as text.
func sqliteDSN(dsn string) string {
	params := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)", "_time_format=sqlite"}
	for _, p := range params {
		if strings.Contains(dsn, p) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + p
	}
	return dsn
}

// Migrate applies all pending embedded migrations.
// Safe to call multiple times.
func Migrate(ctx context.Context, conn *sql.DB, databaseType string) error {
	dialect := goose.DialectSQLite3
	if databaseType == cliparse.DatabasePostgres || databaseType == cliparse.DatabasePgx {
		dialect = goose.DialectPostgres
	}

	provider, err := goose.NewProvider(dialect, conn, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// WithTx begins a transaction, runs fn with it and commits on success.
// Any error or panic from fn rolls the transaction back; panics are rethrown.
func WithTx(ctx context.Context, conn *sql.DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cerr)
		}
	}()

	return fn(ctx, tx)
}
