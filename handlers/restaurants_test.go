// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-spin/models"
	"github.com/danielhkuo/quickly-spin/places"
	"github.com/danielhkuo/quickly-spin/testutil"
)

const nearbyFixture = `{
	"status": "OK",
	"results": [
		{
			"place_id": "far",
			"name": "Far Kebab",
			"rating": 4.6,
			"price_level": 3,
			"vicinity": "Far Street 1",
			"geometry": {"location": {"lat": 41.0172, "lng": 28.9784}},
			"photos": [{"photo_reference": "photo-far"}]
		},
		{
			"place_id": "near",
			"name": "Near Meze",
			"rating": 4.2,
			"price_level": 1,
			"vicinity": "Near Street 2",
			"geometry": {"location": {"lat": 41.0100, "lng": 28.9784}}
		},
		{
			"place_id": "low",
			"name": "Low Rated Diner",
			"rating": 3.1,
			"geometry": {"location": {"lat": 41.0090, "lng": 28.9784}}
		},
		{
			"place_id": "",
			"name": "No Id",
			"rating": 4.9,
			"geometry": {"location": {"lat": 41.0090, "lng": 28.9784}}
		}
	]
}`

// newPlacesServer serves body with status for every nearby search
func newPlacesServer(t *testing.T, status int, body string) *places.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/nearbysearch/json") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return places.NewClient(srv.Client(), "test-places-key", srv.URL, nil)
}

func TestNearby(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewRestaurantHandler(db, cfg, newPlacesServer(t, http.StatusOK, nearbyFixture))

	req := testutil.MakeRequest("GET", "/restaurants/nearby?lat=41.0082&lng=28.9784", nil, nil)
	w := httptest.NewRecorder()
	handler.Nearby(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.NearbyResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.Count != 2 || len(resp.Restaurants) != 2 {
		t.Fatalf("Expected 2 restaurants, got %d", len(resp.Restaurants))
	}
	if resp.Restaurants[0].ID != "near" || resp.Restaurants[1].ID != "far" {
		t.Errorf("Expected results sorted by distance, got %s, %s", resp.Restaurants[0].ID, resp.Restaurants[1].ID)
	}
	if d := resp.Restaurants[1].DistanceKm; d == nil || *d < 0.9 || *d > 1.1 {
		t.Errorf("Expected ~1km distance for far, got %v", d)
	}
	if resp.Restaurants[1].PriceLabel != "$$$" {
		t.Errorf("Expected price label $$$, got %q", resp.Restaurants[1].PriceLabel)
	}

	// Fetched restaurants are cached for later lookups
	var cached int
	if err := db.QueryRow(`SELECT COUNT(*) FROM restaurant`).Scan(&cached); err != nil {
		t.Fatalf("Failed to count restaurants: %v", err)
	}
	if cached != 2 {
		t.Errorf("Expected 2 cached restaurants, got %d", cached)
	}
}

func TestNearby_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewRestaurantHandler(db, cfg, newPlacesServer(t, http.StatusOK, nearbyFixture))

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"name query", "&q=kebab", []string{"far"}},
		{"where expression", "&where=price_level+%3C%3D+1", []string{"near"}},
		{"higher min rating", "&min_rating=4.5", []string{"far"}},
		{"radius excludes far", "&radius_km=1&where=distance_km+%3C+0.5", []string{"near"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/restaurants/nearby?lat=41.0082&lng=28.9784"+tt.query, nil, nil)
			w := httptest.NewRecorder()
			handler.Nearby(w, req)
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.NearbyResponse
			testutil.AssertJSON(t, w, &resp)

			if len(resp.Restaurants) != len(tt.wantIDs) {
				t.Fatalf("Expected %d restaurants, got %d", len(tt.wantIDs), len(resp.Restaurants))
			}
			for i, id := range tt.wantIDs {
				if resp.Restaurants[i].ID != id {
					t.Errorf("Expected restaurant %s at %d, got %s", id, i, resp.Restaurants[i].ID)
				}
			}
		})
	}
}

func TestNearby_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	ok := newPlacesServer(t, http.StatusOK, nearbyFixture)

	tests := []struct {
		name           string
		finder         NearbyFinder
		query          string
		expectedStatus int
	}{
		{"missing coordinates", ok, "", http.StatusBadRequest},
		{"latitude out of range", ok, "lat=91&lng=0", http.StatusBadRequest},
		{"radius too large", ok, "lat=41&lng=29&radius_km=30", http.StatusBadRequest},
		{"radius too small", ok, "lat=41&lng=29&radius_km=0.5", http.StatusBadRequest},
		{"min rating out of range", ok, "lat=41&lng=29&min_rating=6", http.StatusBadRequest},
		{"radius NaN", ok, "lat=41&lng=29&radius_km=NaN", http.StatusBadRequest},
		{"radius infinite", ok, "lat=41&lng=29&radius_km=Inf", http.StatusBadRequest},
		{"min rating NaN", ok, "lat=41&lng=29&min_rating=NaN", http.StatusBadRequest},
		{"latitude NaN", ok, "lat=NaN&lng=29", http.StatusBadRequest},
		{"bad where expression", ok, "lat=41&lng=29&where=rating+%3E", http.StatusBadRequest},
		{"no api key", places.NewClient(nil, "", "", nil), "lat=41&lng=29", http.StatusServiceUnavailable},
		{"upstream failure", newPlacesServer(t, http.StatusInternalServerError, "oops"), "lat=41&lng=29", http.StatusBadGateway},
		{"upstream denied", newPlacesServer(t, http.StatusOK, `{"status":"REQUEST_DENIED","error_message":"bad key"}`), "lat=41&lng=29", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewRestaurantHandler(db, cfg, tt.finder)
			req := testutil.MakeRequest("GET", "/restaurants/nearby?"+tt.query, nil, nil)
			w := httptest.NewRecorder()

			handler.Nearby(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestNearby_ZeroResults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewRestaurantHandler(db, cfg, newPlacesServer(t, http.StatusOK, `{"status":"ZERO_RESULTS","results":[]}`))

	req := testutil.MakeRequest("GET", "/restaurants/nearby?lat=41&lng=29", nil, nil)
	w := httptest.NewRecorder()
	handler.Nearby(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.NearbyResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Restaurants == nil || len(resp.Restaurants) != 0 {
		t.Errorf("Expected an empty list, got %v", resp.Restaurants)
	}
}

func TestGetRestaurant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewRestaurantHandler(db, cfg, places.NewClient(nil, cfg.PlacesAPIKey, cfg.PlacesBaseURL, nil))

	id := testutil.CreateTestRestaurant(t, db, "place-1", "Pide House", 4.4)
	userID, token := testutil.CreateTestUser(t, db, cfg, "user@example.com")

	t.Run("unknown restaurant", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/restaurants/missing", nil, nil)
		req.SetPathValue("id", "missing")
		w := httptest.NewRecorder()
		handler.Get(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/restaurants/"+id, nil, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.Get(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var detail models.RestaurantDetail
		testutil.AssertJSON(t, w, &detail)

		if detail.Restaurant.Name != "Pide House" {
			t.Errorf("Expected name 'Pide House', got %q", detail.Restaurant.Name)
		}
		if !strings.Contains(detail.PhotoURL, "photoreference=ref-place-1") {
			t.Errorf("Expected photo URL with reference, got %q", detail.PhotoURL)
		}
		if !strings.Contains(detail.Directions.GoogleDirections, "destination=41.0082%2C28.9784") {
			t.Errorf("Unexpected directions link %q", detail.Directions.GoogleDirections)
		}
		if detail.Saved != nil {
			t.Errorf("Anonymous request should not carry saved flags, got %+v", detail.Saved)
		}
	})

	t.Run("with saved flags", func(t *testing.T) {
		rating := 4
		if err := markVisited(t.Context(), db, userID, id, &rating, time.Now().UTC()); err != nil {
			t.Fatalf("Failed to seed visit: %v", err)
		}

		req := testutil.MakeRequest("GET", "/restaurants/"+id, nil, testutil.SessionHeaders(token))
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.Get(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var detail models.RestaurantDetail
		testutil.AssertJSON(t, w, &detail)

		if detail.Saved == nil {
			t.Fatal("Expected saved flags")
		}
		if !detail.Saved.IsVisited || detail.Saved.UserRating == nil || *detail.Saved.UserRating != 4 {
			t.Errorf("Unexpected saved flags %+v", detail.Saved)
		}
	})
}

func TestFloatParam(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"", 5, false},
		{"2.5", 2.5, false},
		{"abc", 0, true},
		{"NaN", 0, true},
		{"+Inf", 0, true},
		{"-inf", 0, true},
	}

	for _, tt := range tests {
		got, err := floatParam(tt.raw, 5)
		if tt.wantErr {
			if err == nil {
				t.Errorf("floatParam(%q) expected an error, got %v", tt.raw, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("floatParam(%q) = %v, %v; want %v", tt.raw, got, err, tt.want)
		}
	}
}
