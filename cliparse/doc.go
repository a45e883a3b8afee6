// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: sqlite (default), postgres (lib/pq) or pgx
  - AdminKey: Secret for the admin API (required)
  - SessionCookieName: Name of the session cookie (default: pollsid)
  - SessionTTL: Session lifetime (default: 336h)
  - SessionPurgeInterval: How often expired sessions are deleted (default: 1h, 0 disables)
  - LogLevel: debug, info, warn or error (default: info)
  - PageSize: Questions per index page (default: 10)

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type
	-c              YAML config file
	-env-file       dotenv file (default: .env)
	--admin-key     Admin API key
	--session-cookie, --session-ttl, --session-purge
	--log-level, --page-size

# Sources

Settings are resolved in this order, first match wins:

	CLI flag → environment variable → YAML file → default

Environment variables may come from a dotenv file, loaded with godotenv
before anything is read. Variables already present in the environment are
not overwritten. A missing dotenv file is ignored.

	PORT, DATABASE_URL, DATABASE_TYPE, ADMIN_KEY, CONFIG_FILE,
	SESSION_COOKIE_NAME, SESSION_TTL, SESSION_PURGE_INTERVAL,
	LOG_LEVEL, PAGE_SIZE

The YAML file uses snake_case keys matching the env names:

	port: 3318
	database_url: file:polls.db
	admin_key: change-me
	session_ttl: 336h
*/
package cliparse
