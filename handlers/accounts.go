// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-spin/auth"
	"github.com/danielhkuo/quickly-spin/cliparse"
	"github.com/danielhkuo/quickly-spin/middleware"
	"github.com/danielhkuo/quickly-spin/models"
)

type AuthHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// Register handles POST /auth/register
// Creates an account and opens a session
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || req.Email == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email, password and name are required")
		return
	}
	if len(name) > 100 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name must be 100 characters or less")
		return
	}

	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrWeakPassword) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	ctx := r.Context()

	// Check for an existing account
	var exists int
	err = h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM app_user WHERE email = $1`, email).Scan(&exists)
	if err != nil {
		slog.Error("failed to check email", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists > 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "email already registered")
		return
	}

	user := models.User{
		ID:        auth.NewID(),
		Email:     &email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO app_user (id, email, name, password_hash, is_guest, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, email, user.Name, hash, false, user.CreatedAt)
	if err != nil {
		// A concurrent registration can still win the UNIQUE race
		slog.Warn("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusConflict, "email already registered")
		return
	}

	token, err := openSession(ctx, tx, h.cfg, user.ID)
	if err != nil {
		slog.Error("failed to open session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit registration", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("user registered", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.AuthResponse{
		User:         user,
		SessionToken: token,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	ctx := r.Context()

	var user models.User
	var hash sql.NullString
	err = h.db.QueryRowContext(ctx, `
		SELECT id, email, name, is_guest, created_at, password_hash
		FROM app_user
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.Name, &user.IsGuest, &user.CreatedAt, &hash)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := auth.CheckPassword(hash.String, req.Password); err != nil {
		slog.Info("login failed", "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	token, err := openSession(ctx, h.db, h.cfg, user.ID)
	if err != nil {
		slog.Error("failed to open session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusOK, models.AuthResponse{
		User:         user,
		SessionToken: token,
	})
}

// Guest handles POST /auth/guest
// Creates a throwaway guest user with its own session
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := models.User{
		ID:        auth.NewID(),
		Name:      "Guest",
		IsGuest:   true,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO app_user (id, email, name, password_hash, is_guest, created_at)
		VALUES ($1, NULL, $2, NULL, $3, $4)
	`, user.ID, user.Name, true, user.CreatedAt)
	if err != nil {
		slog.Error("failed to insert guest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create guest")
		return
	}

	token, err := openSession(ctx, tx, h.cfg, user.ID)
	if err != nil {
		slog.Error("failed to open session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create guest")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit guest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("guest created", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.AuthResponse{
		User:         user,
		SessionToken: token,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	// requireUser already validated the token format
	hash, _ := auth.HashSessionToken(middleware.SessionToken(r), h.cfg.SessionSalt)
	_, err := h.db.ExecContext(r.Context(), `DELETE FROM session WHERE token_hash = $1`, hash)
	if err != nil {
		slog.Error("failed to delete session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("user logged out", "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /users/me
// Returns the current user with saved/visited counters
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	ctx := r.Context()
	var stats models.UserStats

	counters := []struct {
		dest  *int
		query string
	}{
		{&stats.Favorites, `SELECT COUNT(*) FROM user_restaurant WHERE user_id = $1 AND is_favorite`},
		{&stats.Visited, `SELECT COUNT(*) FROM user_restaurant WHERE user_id = $1 AND is_visited`},
		{&stats.Rated, `SELECT COUNT(*) FROM user_restaurant WHERE user_id = $1 AND user_rating IS NOT NULL`},
		{&stats.History, `SELECT COUNT(*) FROM history WHERE user_id = $1`},
	}
	for _, c := range counters {
		if err := h.db.QueryRowContext(ctx, c.query, user.ID).Scan(c.dest); err != nil {
			slog.Error("failed to count user stats", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.MeResponse{
		User:  user,
		Stats: stats,
	})
}
