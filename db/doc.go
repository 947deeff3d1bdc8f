// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles store connections, schema creation, and SQL dialect details.

# Connecting

Open selects the driver by type and pings the store:

	conn, dialect, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types are "postgres" (github.com/lib/pq) and "sqlite"
(modernc.org/sqlite). SQLite connections get a busy timeout so concurrent
writers queue on the file lock.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - vote: one row per voter identity (UNIQUE identity)
  - origin_access: one row per rate-limit check, keyed by origin

# Placeholders

Queries are written with ? placeholders and rebound per dialect:

	conn.QueryRow(dialect.Rebind("SELECT 1 FROM vote WHERE identity = ?"), id)

# Constraint Violations

IsUniqueViolation recognises Postgres SQLSTATE 23505 and SQLite
SQLITE_CONSTRAINT_UNIQUE so callers can turn a lost insert race into a
domain error instead of a storage failure.
*/
package db
