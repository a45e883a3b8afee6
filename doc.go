// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the polls server.

Polls is a small web polling application: visitors browse published
questions, vote for one or more choices, and see the running totals. Each
browser session may vote once per question.

# Starting the Server

	DATABASE_URL=polls.db ADMIN_KEY=change-me go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -admin-key change-me

Settings can also come from a .env file (-env-file) or a YAML file (-c or
CONFIG_FILE). Flags beat environment variables, which beat the file.

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file/DSN or PostgreSQL connection string
  - ADMIN_KEY (-admin-key): key expected in X-Admin-Key for /admin routes

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or pgx (default: sqlite)
  - LOG_LEVEL (-log-level): debug, info, warn or error (default: info)
  - SESSION_TTL, SESSION_PURGE_INTERVAL, SESSION_COOKIE_NAME, PAGE_SIZE

# Architecture

  - handlers: public pages, vote submission, admin API
  - router: route definitions using Go 1.22+ routing
  - middleware: logging, recovery, CORS, admin key check, JSON helpers
  - templates: embedded HTML pages
  - session: database-backed browser sessions and flash messages
  - store: question and choice persistence, atomic vote increments
  - db: connection setup, goose migrations, transactions
  - models: domain and API types
  - auth: key comparison and random session keys
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
