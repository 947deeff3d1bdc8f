// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package guard

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/tuvoto/testutil"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSQLLimiter(t *testing.T, window time.Duration) (*SQLLimiter, *clock) {
	t.Helper()
	conn, dialect := testutil.SetupTestDB(t)
	c := &clock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	l := NewSQLLimiter(conn, dialect, window)
	l.now = c.now
	return l, c
}

func TestSQLLimiter_Window(t *testing.T) {
	ctx := context.Background()
	l, c := newTestSQLLimiter(t, 60*time.Second)

	ok, err := l.Allow(ctx, "203.0.113.5")
	require.NoError(t, err)
	assert.True(t, ok, "first attempt is allowed")

	c.advance(10 * time.Second)
	ok, err = l.Allow(ctx, "203.0.113.5")
	require.NoError(t, err)
	assert.False(t, ok, "second attempt inside the window is denied")

	// The denied attempt at t+10s restarted the window
	c.advance(55 * time.Second)
	ok, err = l.Allow(ctx, "203.0.113.5")
	require.NoError(t, err)
	assert.False(t, ok, "window runs from the last attempt, not the last allowed one")

	c.advance(60 * time.Second)
	ok, err = l.Allow(ctx, "203.0.113.5")
	require.NoError(t, err)
	assert.True(t, ok, "attempt a full window after the last one is allowed")
}

func TestSQLLimiter_OriginsIndependent(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestSQLLimiter(t, time.Minute)

	ok, err := l.Allow(ctx, "203.0.113.5")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "198.51.100.7")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "203.0.113.5")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLLimiter_PrunesOldRows(t *testing.T) {
	ctx := context.Background()
	l, c := newTestSQLLimiter(t, time.Minute)

	for i := 0; i < 5; i++ {
		_, err := l.Allow(ctx, "203.0.113.5")
		require.NoError(t, err)
		c.advance(2 * time.Minute)
	}

	var rows int
	require.NoError(t, l.db.QueryRow(`SELECT COUNT(*) FROM origin_access`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestSQLLimiter_PrunesOtherOrigins(t *testing.T) {
	ctx := context.Background()
	l, c := newTestSQLLimiter(t, time.Minute)

	// Origins that never come back
	for _, origin := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		_, err := l.Allow(ctx, origin)
		require.NoError(t, err)
	}

	c.advance(2 * time.Minute)
	_, err := l.Allow(ctx, "203.0.113.5")
	require.NoError(t, err)

	var rows int
	require.NoError(t, l.db.QueryRow(`SELECT COUNT(*) FROM origin_access`).Scan(&rows))
	assert.Equal(t, 1, rows, "stale rows of idle origins are pruned too")

	var origin string
	require.NoError(t, l.db.QueryRow(`SELECT origin FROM origin_access`).Scan(&origin))
	assert.Equal(t, "203.0.113.5", origin)
}

func TestGuard_CheckRateUsesLimiter(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestSQLLimiter(t, time.Minute)
	g := New(nil, l, nil)

	ok, err := g.CheckRate(ctx, "203.0.113.5")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.CheckRate(ctx, "203.0.113.5")
	require.NoError(t, err)
	assert.False(t, ok)
}

// Runs only against a real Redis: REDIS_URL=redis://localhost:6379/15
func TestRedisLimiter_Window(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	l := NewRedisLimiter(client, 300*time.Millisecond)
	l.prefix = "tuvoto:test:" + t.Name() + ":"
	defer client.Del(ctx, l.prefix+"203.0.113.5")

	ok, err := l.Allow(ctx, "203.0.113.5")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "203.0.113.5")
	require.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(400 * time.Millisecond)
	ok, err = l.Allow(ctx, "203.0.113.5")
	require.NoError(t, err)
	assert.True(t, ok)
}
