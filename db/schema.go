// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The schema sticks to types both Postgres and SQLite accept.
// Timestamps are written by the application in UTC; no NOW() defaults.
const schema = `
-- Votes: one row per identity, enforced by the store
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    identity TEXT NOT NULL UNIQUE,
    candidate TEXT NOT NULL,
    country TEXT NOT NULL,
    city TEXT NOT NULL,
    latitude DOUBLE PRECISION,
    longitude DOUBLE PRECISION,
    document_number TEXT,
    birth_year INTEGER,
    origin TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vote_origin ON vote(origin);

-- Origin access log: one row per rate-limit check
CREATE TABLE IF NOT EXISTS origin_access (
    id TEXT PRIMARY KEY,
    origin TEXT NOT NULL,
    seen_at_ms BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_origin_access_origin ON origin_access(origin, seen_at_ms);
CREATE INDEX IF NOT EXISTS idx_origin_access_seen ON origin_access(seen_at_ms);
`
