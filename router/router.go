// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/quickly-spin/cliparse"
	"github.com/danielhkuo/quickly-spin/handlers"
	"github.com/danielhkuo/quickly-spin/middleware"
	"github.com/danielhkuo/quickly-spin/places"
	"github.com/danielhkuo/quickly-spin/wheel"
)

// Services are the collaborators built once in main and shared by handlers.
// Nil fields are replaced with production defaults.
type Services struct {
	Places   handlers.NearbyFinder
	Selector *wheel.Selector
	Clock    wheel.Clock
}

func (s Services) withDefaults(cfg cliparse.Config) Services {
	if s.Places == nil {
		s.Places = places.NewClient(nil, cfg.PlacesAPIKey, cfg.PlacesBaseURL, nil)
	}
	if s.Selector == nil {
		wcfg := cfg.Wheel
		if wcfg == (wheel.Config{}) {
			wcfg = wheel.DefaultConfig()
		}
		s.Selector = wheel.NewSelector(wcfg, wheel.DefaultRNG())
	}
	if s.Clock == nil {
		s.Clock = wheel.SystemClock()
	}
	return s
}

func NewRouter(db *sql.DB, cfg cliparse.Config, svc Services) *http.ServeMux {
	mux := http.NewServeMux()
	svc = svc.withDefaults(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	restaurantHandler := handlers.NewRestaurantHandler(db, cfg, svc.Places)
	favoritesHandler := handlers.NewFavoritesHandler(db, cfg)
	historyHandler := handlers.NewHistoryHandler(db, cfg)
	wheelHandler := handlers.NewWheelHandler(db, cfg, svc.Selector, svc.Clock)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /auth/register", middleware.WithLogging(authHandler.Register))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("POST /auth/guest", middleware.WithLogging(authHandler.Guest))
	mux.HandleFunc("POST /auth/logout", middleware.WithLogging(authHandler.Logout))
	mux.HandleFunc("GET /users/me", middleware.WithLogging(authHandler.Me))

	// Restaurant discovery (public, saved flags when signed in)
	mux.HandleFunc("GET /restaurants/nearby", middleware.WithLogging(restaurantHandler.Nearby))
	mux.HandleFunc("GET /restaurants/{id}", middleware.WithLogging(restaurantHandler.Get))

	// Favorites and ratings
	mux.HandleFunc("GET /favorites", middleware.WithLogging(favoritesHandler.List))
	mux.HandleFunc("PUT /favorites/{id}", middleware.WithLogging(favoritesHandler.Add))
	mux.HandleFunc("DELETE /favorites/{id}", middleware.WithLogging(favoritesHandler.Remove))
	mux.HandleFunc("POST /restaurants/{id}/rating", middleware.WithLogging(favoritesHandler.Rate))
	mux.HandleFunc("DELETE /restaurants/{id}/saved", middleware.WithLogging(favoritesHandler.Forget))

	// History
	mux.HandleFunc("GET /history", middleware.WithLogging(historyHandler.List))
	mux.HandleFunc("POST /history", middleware.WithLogging(historyHandler.Add))

	// Wheel
	mux.HandleFunc("GET /wheel", middleware.WithLogging(wheelHandler.State))
	mux.HandleFunc("POST /wheel/spins", middleware.WithLogging(wheelHandler.StartSpin))
	mux.HandleFunc("GET /wheel/spins/{id}", middleware.WithLogging(wheelHandler.GetSpin))
	mux.HandleFunc("POST /wheel/spins/{id}/cancel", middleware.WithLogging(wheelHandler.CancelSpin))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			middleware.ErrorResponse(w, http.StatusNotFound, "no such endpoint")
			return
		}
		w.Write([]byte("quickly-spin API v1"))
	})

	return mux
}
