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

	"github.com/danielhkuo/quickly-spin/auth"
	"github.com/danielhkuo/quickly-spin/cliparse"
	"github.com/danielhkuo/quickly-spin/db"
	"github.com/danielhkuo/quickly-spin/middleware"
	"github.com/danielhkuo/quickly-spin/wheel"
)

// TestPassword is the password of every user created by CreateTestUser
const TestPassword = "correct-horse"

// SetupTestDB creates a fresh SQLite database with the full schema in a
// temporary directory. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open("sqlite", "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   "file:test.db",
		DatabaseType:  "sqlite",
		SessionSalt:   "test-session-salt",
		SessionTTL:    time.Hour,
		PlacesAPIKey:  "test-places-key",
		PlacesBaseURL: "http://places.invalid",
		LogLevel:      "debug",
		Wheel:         wheel.DefaultConfig(),
	}
}

// CreateTestUser registers a user with TestPassword and opens a session.
// It returns the user ID and the raw session token.
func CreateTestUser(t *testing.T, conn *sql.DB, cfg cliparse.Config, email string) (userID, token string) {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	userID = auth.NewID()
	_, err = conn.Exec(`
		INSERT INTO app_user (id, email, name, password_hash, is_guest, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, email, "Test User", hash, false, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID, CreateTestSession(t, conn, cfg, userID, time.Now().UTC().Add(cfg.SessionTTL))
}

// CreateTestSession opens a session for userID that expires at expiresAt
func CreateTestSession(t *testing.T, conn *sql.DB, cfg cliparse.Config, userID string, expiresAt time.Time) string {
	t.Helper()

	token, err := auth.GenerateSessionToken()
	if err != nil {
		t.Fatalf("Failed to generate session token: %v", err)
	}
	hash, err := auth.HashSessionToken(token, cfg.SessionSalt)
	if err != nil {
		t.Fatalf("Failed to hash session token: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO session (token_hash, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, hash, userID, time.Now().UTC(), expiresAt.UTC())
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return token
}

// CreateTestRestaurant inserts a restaurant and returns its ID
func CreateTestRestaurant(t *testing.T, conn *sql.DB, id, name string, rating float64) string {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO restaurant (id, name, rating, address, latitude, longitude, price_level, photo_reference, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, name, rating, "1 Test Street", 41.0082, 28.9784, 2, "ref-"+id, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test restaurant: %v", err)
	}

	return id
}

// SessionHeaders returns request headers carrying token
func SessionHeaders(token string) map[string]string {
	return map[string]string{middleware.SessionHeader: token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
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
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
