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

func TestFavorites_AddListRemove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewFavoritesHandler(db, cfg)

	_, token := testutil.CreateTestUser(t, db, cfg, "user@example.com")
	headers := testutil.SessionHeaders(token)
	a := testutil.CreateTestRestaurant(t, db, "place-a", "Alpha", 4.5)
	b := testutil.CreateTestRestaurant(t, db, "place-b", "Beta", 4.1)

	for _, id := range []string{a, b} {
		req := testutil.MakeRequest("PUT", "/favorites/"+id, nil, headers)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.Add(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var flags models.SavedFlags
		testutil.AssertJSON(t, w, &flags)
		if !flags.IsFavorite {
			t.Errorf("Expected %s to be a favorite", id)
		}
	}

	// Unfavorite one of them
	req := testutil.MakeRequest("DELETE", "/favorites/"+a, nil, headers)
	req.SetPathValue("id", a)
	w := httptest.NewRecorder()
	handler.Remove(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	req = testutil.MakeRequest("GET", "/favorites", nil, headers)
	w = httptest.NewRecorder()
	handler.List(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.FavoritesResponse
	testutil.AssertJSON(t, w, &resp)

	if len(resp.Restaurants) != 1 {
		t.Fatalf("Expected 1 favorite, got %d", len(resp.Restaurants))
	}
	if resp.Restaurants[0].Restaurant.ID != b {
		t.Errorf("Expected favorite %s, got %s", b, resp.Restaurants[0].Restaurant.ID)
	}
	if resp.Restaurants[0].Restaurant.PriceLabel != "$$" {
		t.Errorf("Expected price label $$, got %q", resp.Restaurants[0].Restaurant.PriceLabel)
	}
}

func TestFavorites_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewFavoritesHandler(db, cfg)

	_, token := testutil.CreateTestUser(t, db, cfg, "user@example.com")

	tests := []struct {
		name           string
		headers        map[string]string
		id             string
		expectedStatus int
	}{
		{"no session", nil, "whatever", http.StatusUnauthorized},
		{"unknown restaurant", testutil.SessionHeaders(token), "missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("PUT", "/favorites/"+tt.id, nil, tt.headers)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			handler.Add(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestRate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewFavoritesHandler(db, cfg)

	_, token := testutil.CreateTestUser(t, db, cfg, "user@example.com")
	id := testutil.CreateTestRestaurant(t, db, "place-a", "Alpha", 4.5)

	tests := []struct {
		name           string
		id             string
		rating         int
		expectedStatus int
	}{
		{"valid rating", id, 5, http.StatusOK},
		{"lowest rating", id, 1, http.StatusOK},
		{"zero rating", id, 0, http.StatusBadRequest},
		{"rating too high", id, 6, http.StatusBadRequest},
		{"unknown restaurant", "missing", 3, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/restaurants/"+tt.id+"/rating",
				models.RatingRequest{Rating: tt.rating}, testutil.SessionHeaders(token))
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			handler.Rate(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var flags models.SavedFlags
			testutil.AssertJSON(t, w, &flags)
			if !flags.IsVisited {
				t.Error("Rating should mark the restaurant visited")
			}
			if flags.UserRating == nil || *flags.UserRating != tt.rating {
				t.Errorf("Expected rating %d, got %v", tt.rating, flags.UserRating)
			}
		})
	}
}

func TestForget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewFavoritesHandler(db, cfg)

	userID, token := testutil.CreateTestUser(t, db, cfg, "user@example.com")
	id := testutil.CreateTestRestaurant(t, db, "place-a", "Alpha", 4.5)
	headers := testutil.SessionHeaders(token)

	req := testutil.MakeRequest("POST", "/restaurants/"+id+"/rating", models.RatingRequest{Rating: 3}, headers)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	handler.Rate(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	req = testutil.MakeRequest("DELETE", "/restaurants/"+id+"/saved", nil, headers)
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	handler.Forget(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	flags, err := loadSavedFlags(t.Context(), db, userID, id)
	if err != nil {
		t.Fatalf("Failed to load saved flags: %v", err)
	}
	if flags != nil {
		t.Errorf("Expected no saved flags, got %+v", flags)
	}
}

func TestMarkVisited_KeepsRatingWhenNil(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	userID, _ := testutil.CreateTestUser(t, db, cfg, "user@example.com")
	id := testutil.CreateTestRestaurant(t, db, "place-a", "Alpha", 4.5)

	rating := 4
	if err := markVisited(t.Context(), db, userID, id, &rating, time.Now().UTC()); err != nil {
		t.Fatalf("markVisited failed: %v", err)
	}
	if err := markVisited(t.Context(), db, userID, id, nil, time.Now().UTC()); err != nil {
		t.Fatalf("markVisited failed: %v", err)
	}

	flags, err := loadSavedFlags(t.Context(), db, userID, id)
	if err != nil {
		t.Fatalf("Failed to load saved flags: %v", err)
	}
	if flags == nil || flags.UserRating == nil || *flags.UserRating != 4 {
		t.Errorf("Expected rating 4 to survive, got %+v", flags)
	}
}
