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
	"github.com/danielhkuo/quickly-spin/wheel"
)

// TestFullDinnerWorkflow tests the complete end-to-end workflow:
// 1. Register
// 2. Search nearby restaurants
// 3. Favorite one
// 4. Spin the wheel over the results
// 5. Settle the spin
// 6. Rate the winner
// 7. Verify history and stats
func TestFullDinnerWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	clock := wheel.NewVirtualClock(time.Now().UTC())
	selector := wheel.NewSelector(cfg.Wheel, &cyclingRNG{values: []float64{0.5, 0.25}})

	authHandler := NewAuthHandler(db, cfg)
	restaurantHandler := NewRestaurantHandler(db, cfg, newPlacesServer(t, http.StatusOK, nearbyFixture))
	favoritesHandler := NewFavoritesHandler(db, cfg)
	historyHandler := NewHistoryHandler(db, cfg)
	wheelHandler := NewWheelHandler(db, cfg, selector, clock)

	// Step 1: Register
	req := testutil.MakeRequest("POST", "/auth/register", models.RegisterRequest{
		Email:    "diner@example.com",
		Password: "hungry-now",
		Name:     "Diner",
	}, nil)
	w := httptest.NewRecorder()
	authHandler.Register(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Register failed: %d - %s", w.Code, w.Body.String())
	}
	var registered models.AuthResponse
	testutil.AssertJSON(t, w, &registered)
	headers := testutil.SessionHeaders(registered.SessionToken)
	t.Logf("Step 1 - Registered user: %s", registered.User.ID)

	// Step 2: Search nearby
	req = testutil.MakeRequest("GET", "/restaurants/nearby?lat=41.0082&lng=28.9784", nil, headers)
	w = httptest.NewRecorder()
	restaurantHandler.Nearby(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 2 - Nearby failed: %d - %s", w.Code, w.Body.String())
	}
	var nearby models.NearbyResponse
	testutil.AssertJSON(t, w, &nearby)
	if nearby.Count != 2 {
		t.Fatalf("Step 2 - Expected 2 restaurants, got %d", nearby.Count)
	}
	ids := []string{nearby.Restaurants[0].ID, nearby.Restaurants[1].ID}
	t.Logf("Step 2 - Found restaurants: %v", ids)

	// Step 3: Favorite the first result
	req = testutil.MakeRequest("PUT", "/favorites/"+ids[0], nil, headers)
	req.SetPathValue("id", ids[0])
	w = httptest.NewRecorder()
	favoritesHandler.Add(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 3 - Favorite failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 4: Spin
	req = testutil.MakeRequest("POST", "/wheel/spins", models.StartSpinRequest{RestaurantIDs: ids}, headers)
	w = httptest.NewRecorder()
	wheelHandler.StartSpin(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Step 4 - Spin failed: %d - %s", w.Code, w.Body.String())
	}
	var started models.StartSpinResponse
	testutil.AssertJSON(t, w, &started)
	t.Logf("Step 4 - Spin %s lands at %.1f°", started.SpinID, started.Plan.FinalRotation)

	// Step 5: Settle
	clock.Advance(started.SettlesAt.Sub(started.StartedAt))
	req = testutil.MakeRequest("GET", "/wheel", nil, headers)
	w = httptest.NewRecorder()
	wheelHandler.State(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 5 - Wheel state failed: %d - %s", w.Code, w.Body.String())
	}
	var state models.WheelStateResponse
	testutil.AssertJSON(t, w, &state)

	want := wheel.ResolveSelection(2, started.Plan.FinalRotation)
	if state.IsSpinning || state.SelectedIndex == nil || *state.SelectedIndex != want {
		t.Fatalf("Step 5 - Expected settled wheel on index %d, got %+v", want, state)
	}
	winner := state.Selected.ID
	t.Logf("Step 5 - Winner: %s", state.Selected.Label)

	// Step 6: Rate the winner
	req = testutil.MakeRequest("POST", "/restaurants/"+winner+"/rating", models.RatingRequest{Rating: 5}, headers)
	req.SetPathValue("id", winner)
	w = httptest.NewRecorder()
	favoritesHandler.Rate(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 6 - Rate failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 7: History and stats
	req = testutil.MakeRequest("GET", "/history", nil, headers)
	w = httptest.NewRecorder()
	historyHandler.List(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 7 - History failed: %d - %s", w.Code, w.Body.String())
	}
	var history models.HistoryResponse
	testutil.AssertJSON(t, w, &history)
	if len(history.Entries) != 1 {
		t.Fatalf("Step 7 - Expected 1 history entry, got %d", len(history.Entries))
	}
	if e := history.Entries[0]; e.RestaurantID != winner || e.Source != models.SourceWheel {
		t.Errorf("Step 7 - Unexpected history entry %+v", e)
	}

	req = testutil.MakeRequest("GET", "/users/me", nil, headers)
	w = httptest.NewRecorder()
	authHandler.Me(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 7 - Me failed: %d - %s", w.Code, w.Body.String())
	}
	var me models.MeResponse
	testutil.AssertJSON(t, w, &me)

	wantStats := models.UserStats{Favorites: 1, Visited: 1, Rated: 1, History: 1}
	if me.Stats != wantStats {
		t.Errorf("Step 7 - Expected stats %+v, got %+v", wantStats, me.Stats)
	}
}

// TestSpinAfterSignOut verifies that a logged out session can no longer
// drive the wheel
func TestSpinAfterSignOut(t *testing.T) {
	env := newWheelEnv(t, 2)
	authHandler := NewAuthHandler(env.db, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/auth/logout", nil, testutil.SessionHeaders(env.token))
	w := httptest.NewRecorder()
	authHandler.Logout(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	w = env.start(t, env.ids)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	if env.rng.calls != 0 {
		t.Errorf("Expected no draws for a rejected spin, got %d", env.rng.calls)
	}
}
