// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-spin/cliparse"
	"github.com/danielhkuo/quickly-spin/middleware"
	"github.com/danielhkuo/quickly-spin/models"
)

type FavoritesHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewFavoritesHandler(db *sql.DB, cfg cliparse.Config) *FavoritesHandler {
	return &FavoritesHandler{db: db, cfg: cfg}
}

// List handles GET /favorites
// Returns the user's favorite restaurants, most recently saved first
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT `+restaurantColumns+`, ur.is_favorite, ur.is_visited, ur.user_rating, ur.updated_at
		FROM user_restaurant ur
		JOIN restaurant r ON r.id = ur.restaurant_id
		WHERE ur.user_id = $1 AND ur.is_favorite
		ORDER BY ur.updated_at DESC, r.name
	`, user.ID)
	if err != nil {
		slog.Error("failed to query favorites", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	saved := []models.SavedRestaurant{}
	for rows.Next() {
		var flags models.SavedFlags
		var rating sql.NullInt64
		rest, err := scanRestaurant(rows, &flags.IsFavorite, &flags.IsVisited, &rating, &flags.UpdatedAt)
		if err != nil {
			slog.Error("failed to scan favorite", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		flags.UserRating = nullIntPtr(rating)
		saved = append(saved, models.SavedRestaurant{
			Restaurant: toRestaurantModel(rest),
			SavedFlags: flags,
		})
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate favorites", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.FavoritesResponse{Restaurants: saved})
}

// Add handles PUT /favorites/{id}
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.setFavorite(w, r, true)
}

// Remove handles DELETE /favorites/{id}
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.setFavorite(w, r, false)
}

func (h *FavoritesHandler) setFavorite(w http.ResponseWriter, r *http.Request, favorite bool) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	ctx := r.Context()
	id := r.PathValue("id")

	if !h.restaurantExists(w, r, id) {
		return
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO user_restaurant (user_id, restaurant_id, is_favorite, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, restaurant_id) DO UPDATE SET
			is_favorite = EXCLUDED.is_favorite,
			updated_at = EXCLUDED.updated_at
	`, user.ID, id, favorite, time.Now().UTC())
	if err != nil {
		slog.Error("failed to update favorite", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("favorite updated", "user_id", user.ID, "restaurant_id", id, "favorite", favorite)

	if !favorite {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	flags, err := loadSavedFlags(ctx, h.db, user.ID, id)
	if err != nil {
		slog.Error("failed to load saved flags", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, flags)
}

// Rate handles POST /restaurants/{id}/rating
// Stores a 1-5 rating and marks the restaurant visited
func (h *FavoritesHandler) Rate(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	var req models.RatingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !validRating(req.Rating) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	ctx := r.Context()
	id := r.PathValue("id")

	if !h.restaurantExists(w, r, id) {
		return
	}

	if err := markVisited(ctx, h.db, user.ID, id, &req.Rating, time.Now().UTC()); err != nil {
		slog.Error("failed to save rating", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	flags, err := loadSavedFlags(ctx, h.db, user.ID, id)
	if err != nil {
		slog.Error("failed to load saved flags", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("restaurant rated", "user_id", user.ID, "restaurant_id", id, "rating", req.Rating)
	middleware.JSONResponse(w, http.StatusOK, flags)
}

// Forget handles DELETE /restaurants/{id}/saved
// Drops the favorite, visited and rating flags in one go
func (h *FavoritesHandler) Forget(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	_, err := h.db.ExecContext(r.Context(), `
		DELETE FROM user_restaurant WHERE user_id = $1 AND restaurant_id = $2
	`, user.ID, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to delete saved flags", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// restaurantExists writes a 404 (or 500) and returns false when id is unknown
func (h *FavoritesHandler) restaurantExists(w http.ResponseWriter, r *http.Request, id string) bool {
	var count int
	err := h.db.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM restaurant WHERE id = $1`, id).Scan(&count)
	if err != nil {
		slog.Error("failed to query restaurant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return false
	}
	if count == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "restaurant not found")
		return false
	}
	return true
}

// loadSavedFlags returns nil flags when the user never saved the restaurant
func loadSavedFlags(ctx context.Context, ex execer, userID, restaurantID string) (*models.SavedFlags, error) {
	var flags models.SavedFlags
	var rating sql.NullInt64
	err := ex.QueryRowContext(ctx, `
		SELECT is_favorite, is_visited, user_rating, updated_at
		FROM user_restaurant
		WHERE user_id = $1 AND restaurant_id = $2
	`, userID, restaurantID).Scan(&flags.IsFavorite, &flags.IsVisited, &rating, &flags.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	flags.UserRating = nullIntPtr(rating)
	return &flags, nil
}

// markVisited sets is_visited and, when rating is non-nil, the user rating.
// A nil rating keeps whatever rating was stored before.
func markVisited(ctx context.Context, ex execer, userID, restaurantID string, rating *int, now time.Time) error {
	var r sql.NullInt64
	if rating != nil {
		r = sql.NullInt64{Int64: int64(*rating), Valid: true}
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO user_restaurant (user_id, restaurant_id, is_visited, user_rating, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, restaurant_id) DO UPDATE SET
			is_visited = EXCLUDED.is_visited,
			user_rating = COALESCE(EXCLUDED.user_rating, user_restaurant.user_rating),
			updated_at = EXCLUDED.updated_at
	`, userID, restaurantID, true, r, now)
	if err != nil {
		return fmt.Errorf("failed to mark visited: %w", err)
	}
	return nil
}

func validRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
