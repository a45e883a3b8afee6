// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and manages its schema.

# Connecting

Open picks the driver from the configured database type, pings the
connection and runs migrations:

	conn, err := db.Open(ctx, cfg)

Supported types:

  - sqlite: modernc.org/sqlite (default). Foreign keys and a busy timeout are
    enabled through DSN pragmas and the pool is limited to one connection.
  - postgres: github.com/lib/pq
  - pgx: github.com/jackc/pgx/v5/stdlib

# Migrations

Schema changes live in db/migrations as goose SQL files embedded into the
binary. Migrate applies pending ones and is safe to call repeatedly.

# Tables

  - question: poll prompt and publication time
  - choice: option under a question with its vote counter
  - web_session: browser session data (voted questions, flash messages)

# Relationships

	question 1──* choice (ON DELETE CASCADE)

# Transactions

WithTx runs a function inside a transaction and commits only when it
returns nil:

	err := db.WithTx(ctx, conn, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, "UPDATE ...")
		return err
	})
*/
package db
