// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-spin/auth"
	"github.com/danielhkuo/quickly-spin/cliparse"
	"github.com/danielhkuo/quickly-spin/middleware"
	"github.com/danielhkuo/quickly-spin/models"
)

const maxNoteLength = 500

type HistoryHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewHistoryHandler(db *sql.DB, cfg cliparse.Config) *HistoryHandler {
	return &HistoryHandler{db: db, cfg: cfg}
}

// List handles GET /history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, restaurant_id, restaurant_name, source, rating, note, visited_at
		FROM history
		WHERE user_id = $1
		ORDER BY visited_at DESC, id
	`, user.ID)
	if err != nil {
		slog.Error("failed to query history", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	now := time.Now()
	entries := []models.HistoryEntry{}
	for rows.Next() {
		var e models.HistoryEntry
		var rating sql.NullInt64
		if err := rows.Scan(&e.ID, &e.RestaurantID, &e.RestaurantName, &e.Source, &rating, &e.Note, &e.VisitedAt); err != nil {
			slog.Error("failed to scan history entry", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		e.Rating = nullIntPtr(rating)
		e.VisitedAgo = humanize.RelTime(e.VisitedAt, now, "ago", "from now")
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate history", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HistoryResponse{Entries: entries})
}

// Add handles POST /history
// Records a manual visit and marks the restaurant visited
func (h *HistoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	var req models.AddHistoryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.RestaurantID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}
	if req.Rating != nil && !validRating(*req.Rating) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	note := strings.TrimSpace(req.Note)
	if len(note) > maxNoteLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("note must be %d characters or less", maxNoteLength))
		return
	}

	ctx := r.Context()

	rest, err := loadRestaurant(ctx, h.db, req.RestaurantID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "restaurant not found")
		return
	}
	if err != nil {
		slog.Error("failed to query restaurant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	entry, err := recordHistory(ctx, tx, user.ID, rest.ID, rest.Name, models.SourceManual, req.Rating, note, now)
	if err != nil {
		slog.Error("failed to record history", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if err := markVisited(ctx, tx, user.ID, rest.ID, req.Rating, now); err != nil {
		slog.Error("failed to mark visited", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit history", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("history recorded", "user_id", user.ID, "restaurant_id", rest.ID)
	middleware.JSONResponse(w, http.StatusCreated, entry)
}

// recordHistory inserts a history entry and returns it
func recordHistory(ctx context.Context, ex execer, userID, restaurantID, name, source string, rating *int, note string, at time.Time) (models.HistoryEntry, error) {
	entry := models.HistoryEntry{
		ID:             auth.NewID(),
		RestaurantID:   restaurantID,
		RestaurantName: name,
		Source:         source,
		Rating:         rating,
		Note:           note,
		VisitedAt:      at,
		VisitedAgo:     humanize.Time(at),
	}

	var r sql.NullInt64
	if rating != nil {
		r = sql.NullInt64{Int64: int64(*rating), Valid: true}
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO history (id, user_id, restaurant_id, restaurant_name, source, rating, note, visited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, userID, restaurantID, name, source, r, note, at)
	if err != nil {
		return models.HistoryEntry{}, fmt.Errorf("failed to insert history: %w", err)
	}
	return entry, nil
}
