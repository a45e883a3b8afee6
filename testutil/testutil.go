// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/polls/cliparse"
	"github.com/danielhkuo/polls/db"
)

// TestAdminKey is the admin key in GetTestConfig
const TestAdminKey = "test-admin-key"

// SetupTestDB creates a fresh in-memory SQLite database with the full schema.
// Every call gets its own database.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := GetTestConfig()
	cfg.DatabaseURL = "file:polls-test-" + uuid.NewString() + "?mode=memory&cache=shared"

	conn, err := db.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                 3318,
		DatabaseURL:          "file::memory:",
		DatabaseType:         cliparse.DatabaseSQLite,
		AdminKey:             TestAdminKey,
		SessionCookieName:    "pollsid",
		SessionTTL:           time.Hour,
		SessionPurgeInterval: 0,
		LogLevel:             "error",
		PageSize:             10,
	}
}

// CreateTestQuestion inserts a question published at pubDate and returns its ID
func CreateTestQuestion(t *testing.T, conn *sql.DB, text string, pubDate time.Time) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO question (id, question_text, pub_date)
		VALUES ($1, $2, $3)
	`, id, text, pubDate.UTC())
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	return id
}

// CreatePublishedQuestion inserts a question published an hour ago
func CreatePublishedQuestion(t *testing.T, conn *sql.DB, text string) string {
	t.Helper()
	return CreateTestQuestion(t, conn, text, time.Now().Add(-time.Hour))
}

// AddTestChoice adds a choice with zero votes and returns its ID
func AddTestChoice(t *testing.T, conn *sql.DB, questionID, text string) string {
	t.Helper()

	var position int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM choice WHERE question_id = $1`, questionID).Scan(&position); err != nil {
		t.Fatalf("Failed to count choices: %v", err)
	}

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO choice (id, question_id, choice_text, position, votes)
		VALUES ($1, $2, $3, $4, 0)
	`, id, questionID, text, position)
	if err != nil {
		t.Fatalf("Failed to create test choice: %v", err)
	}

	return id
}

// ChoiceVotes reads the current counter of a choice
func ChoiceVotes(t *testing.T, conn *sql.DB, choiceID string) int64 {
	t.Helper()

	var votes int64
	if err := conn.QueryRow(`SELECT votes FROM choice WHERE id = $1`, choiceID).Scan(&votes); err != nil {
		t.Fatalf("Failed to read votes: %v", err)
	}
	return votes
}

// MakeRequest creates an HTTP test request with an optional JSON body
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

// MakeFormRequest creates a form-encoded request carrying the given cookies
func MakeFormRequest(method, path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// ResponseCookie returns the named cookie set by a response, or nil
func ResponseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
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
