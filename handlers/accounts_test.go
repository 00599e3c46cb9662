// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-spin/models"
	"github.com/danielhkuo/quickly-spin/testutil"
)

func TestRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	testutil.CreateTestUser(t, db, cfg, "taken@example.com")

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{
			name:           "valid registration",
			body:           models.RegisterRequest{Email: "New@Example.com", Password: "secret1", Name: "Ada"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			body:           models.RegisterRequest{Email: "a@example.com", Password: "secret1"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid email",
			body:           models.RegisterRequest{Email: "not-an-email", Password: "secret1", Name: "Ada"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "short password",
			body:           models.RegisterRequest{Email: "b@example.com", Password: "12345", Name: "Ada"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "duplicate email",
			body:           models.RegisterRequest{Email: "taken@example.com", Password: "secret1", Name: "Ada"},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/auth/register", tt.body, nil)
			w := httptest.NewRecorder()

			handler.Register(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestRegister_ReturnsUsableSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	req := testutil.MakeRequest("POST", "/auth/register",
		models.RegisterRequest{Email: " Mixed@Example.COM ", Password: "secret1", Name: "Ada"}, nil)
	w := httptest.NewRecorder()
	handler.Register(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.AuthResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.SessionToken == "" {
		t.Fatal("Expected a session token")
	}
	if resp.User.Email == nil || *resp.User.Email != "mixed@example.com" {
		t.Errorf("Expected normalized email, got %v", resp.User.Email)
	}
	if resp.User.IsGuest {
		t.Error("Registered user should not be a guest")
	}

	// The token should authenticate /users/me
	req = testutil.MakeRequest("GET", "/users/me", nil, testutil.SessionHeaders(resp.SessionToken))
	w = httptest.NewRecorder()
	handler.Me(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var me models.MeResponse
	testutil.AssertJSON(t, w, &me)
	if me.User.ID != resp.User.ID {
		t.Errorf("Expected user %s, got %s", resp.User.ID, me.User.ID)
	}
}

func TestLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	testutil.CreateTestUser(t, db, cfg, "user@example.com")

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{"valid credentials", models.LoginRequest{Email: "user@example.com", Password: testutil.TestPassword}, http.StatusOK},
		{"case-insensitive email", models.LoginRequest{Email: "USER@example.com", Password: testutil.TestPassword}, http.StatusOK},
		{"wrong password", models.LoginRequest{Email: "user@example.com", Password: "nope-nope"}, http.StatusUnauthorized},
		{"unknown email", models.LoginRequest{Email: "ghost@example.com", Password: testutil.TestPassword}, http.StatusUnauthorized},
		{"empty password", models.LoginRequest{Email: "user@example.com"}, http.StatusBadRequest},
		{"empty email", models.LoginRequest{Password: testutil.TestPassword}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/auth/login", tt.body, nil)
			w := httptest.NewRecorder()

			handler.Login(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus == http.StatusOK {
				var resp models.AuthResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.SessionToken == "" {
					t.Error("Expected a session token")
				}
			}
		})
	}
}

func TestGuest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	req := testutil.MakeRequest("POST", "/auth/guest", nil, nil)
	w := httptest.NewRecorder()
	handler.Guest(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.AuthResponse
	testutil.AssertJSON(t, w, &resp)

	if !resp.User.IsGuest {
		t.Error("Expected a guest user")
	}
	if resp.User.Name != "Guest" {
		t.Errorf("Expected name 'Guest', got %q", resp.User.Name)
	}
	if resp.User.Email != nil {
		t.Errorf("Guest should have no email, got %q", *resp.User.Email)
	}
}

func TestLogout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	_, token := testutil.CreateTestUser(t, db, cfg, "user@example.com")

	req := testutil.MakeRequest("POST", "/auth/logout", nil, testutil.SessionHeaders(token))
	w := httptest.NewRecorder()
	handler.Logout(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	// The session is gone
	req = testutil.MakeRequest("GET", "/users/me", nil, testutil.SessionHeaders(token))
	w = httptest.NewRecorder()
	handler.Me(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestMe_Unauthorized(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	userID, _ := testutil.CreateTestUser(t, db, cfg, "user@example.com")
	expired := testutil.CreateTestSession(t, db, cfg, userID, time.Now().Add(-time.Minute))

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"no token", nil},
		{"malformed token", testutil.SessionHeaders("short")},
		{"unknown token", testutil.SessionHeaders("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")},
		{"expired token", testutil.SessionHeaders(expired)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/users/me", nil, tt.headers)
			w := httptest.NewRecorder()

			handler.Me(w, req)

			testutil.AssertStatus(t, w, http.StatusUnauthorized)
		})
	}

	// Expired sessions are removed on first use
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM session WHERE user_id = $1`, userID).Scan(&count); err != nil {
		t.Fatalf("Failed to count sessions: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 remaining session, got %d", count)
	}
}

func TestMe_Stats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	userID, token := testutil.CreateTestUser(t, db, cfg, "user@example.com")
	a := testutil.CreateTestRestaurant(t, db, "place-a", "Alpha", 4.5)
	b := testutil.CreateTestRestaurant(t, db, "place-b", "Beta", 4.2)

	now := time.Now().UTC()
	rating := 5
	if err := markVisited(t.Context(), db, userID, a, &rating, now); err != nil {
		t.Fatalf("Failed to seed visit: %v", err)
	}
	for _, id := range []string{a, b} {
		if _, err := db.Exec(`
			INSERT INTO user_restaurant (user_id, restaurant_id, is_favorite, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, restaurant_id) DO UPDATE SET is_favorite = EXCLUDED.is_favorite
		`, userID, id, true, now); err != nil {
			t.Fatalf("Failed to seed favorite: %v", err)
		}
	}
	if _, err := recordHistory(t.Context(), db, userID, a, "Alpha", models.SourceManual, nil, "", now); err != nil {
		t.Fatalf("Failed to seed history: %v", err)
	}

	req := testutil.MakeRequest("GET", "/users/me", nil, testutil.SessionHeaders(token))
	w := httptest.NewRecorder()
	handler.Me(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var me models.MeResponse
	testutil.AssertJSON(t, w, &me)

	want := models.UserStats{Favorites: 2, Visited: 1, Rated: 1, History: 1}
	if me.Stats != want {
		t.Errorf("Expected stats %+v, got %+v", want, me.Stats)
	}
}
