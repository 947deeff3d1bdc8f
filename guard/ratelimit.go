// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package guard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/tuvoto/db"
)

// RateLimiter decides whether an origin may proceed. Every call counts as an
// observation, so the window runs from the last attempt, allowed or not.
type RateLimiter interface {
	Allow(ctx context.Context, origin string) (bool, error)
}

// SQLLimiter keeps the origin access log in the origin_access table
type SQLLimiter struct {
	db      *sql.DB
	dialect db.Dialect
	window  time.Duration
	now     func() time.Time
}

func NewSQLLimiter(conn *sql.DB, dialect db.Dialect, window time.Duration) *SQLLimiter {
	return &SQLLimiter{db: conn, dialect: dialect, window: window, now: time.Now}
}

// Allow logs this attempt, then denies if any other attempt from origin
// falls inside the window. Concurrent attempts may both be denied.
func (l *SQLLimiter) Allow(ctx context.Context, origin string) (bool, error) {
	now := l.now().UnixMilli()
	cutoff := now - l.window.Milliseconds()
	id := uuid.NewString()

	_, err := l.db.ExecContext(ctx, l.dialect.Rebind(`
		INSERT INTO origin_access (id, origin, seen_at_ms) VALUES (?, ?, ?)
	`), id, origin, now)
	if err != nil {
		return false, fmt.Errorf("failed to log origin access: %w", err)
	}

	var recent int
	err = l.db.QueryRowContext(ctx, l.dialect.Rebind(`
		SELECT COUNT(*) FROM origin_access
		WHERE origin = ? AND seen_at_ms > ? AND id <> ?
	`), origin, cutoff, id).Scan(&recent)
	if err != nil {
		return false, fmt.Errorf("failed to query origin access: %w", err)
	}

	// Rows outside the window no longer matter, for any origin
	_, err = l.db.ExecContext(ctx, l.dialect.Rebind(`
		DELETE FROM origin_access WHERE seen_at_ms <= ?
	`), cutoff)
	if err != nil {
		return false, fmt.Errorf("failed to prune origin access: %w", err)
	}

	return recent == 0, nil
}
