// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/tuvoto/cliparse"
	"github.com/danielhkuo/tuvoto/db"
)

// SetupTestDB creates a fresh SQLite store in a temp dir with the full schema.
// WAL mode plus the busy timeout lets concurrent tests write without SQLITE_BUSY.
func SetupTestDB(t *testing.T) (*sql.DB, db.Dialect) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "tuvoto.db") +
		"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	conn, dialect, err := db.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn, dialect
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              3318,
		DatabaseURL:       "file::memory:",
		DatabaseType:      "sqlite",
		PublicBaseURL:     "https://tuvotoseguro.test",
		TokenSecret:       "test-token-secret",
		TokenMaxAge:       time.Hour,
		LinksAPIKey:       "test-links-key",
		ReputationTimeout: 200 * time.Millisecond,
		RateWindow:        time.Minute,
		MaxVotesPerOrigin: 10,
	}
}

// InsertTestVote writes a vote row directly, bypassing the ledger
func InsertTestVote(t *testing.T, conn *sql.DB, dialect db.Dialect, identity, origin string) {
	t.Helper()

	_, err := conn.Exec(dialect.Rebind(`
		INSERT INTO vote (id, identity, candidate, country, city, origin, submitted_at)
		VALUES (?, ?, 'Candidate A', 'BO', 'La Paz', ?, ?)
	`), "seed-"+identity, identity, origin, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
