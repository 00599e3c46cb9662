// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-spin/auth"
	"github.com/danielhkuo/quickly-spin/cliparse"
	"github.com/danielhkuo/quickly-spin/middleware"
	"github.com/danielhkuo/quickly-spin/models"
)

var (
	errNoSession      = errors.New("session token required")
	errUnknownSession = errors.New("invalid session")
	errSessionExpired = errors.New("session expired")
)

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// authenticate resolves the request's session token to a user
func authenticate(ctx context.Context, db *sql.DB, cfg cliparse.Config, r *http.Request) (models.User, error) {
	token := middleware.SessionToken(r)
	if token == "" {
		return models.User{}, errNoSession
	}
	hash, err := auth.HashSessionToken(token, cfg.SessionSalt)
	if err != nil {
		return models.User{}, errUnknownSession
	}

	var user models.User
	var expiresAt time.Time
	err = db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.name, u.is_guest, u.created_at, s.expires_at
		FROM session s
		JOIN app_user u ON u.id = s.user_id
		WHERE s.token_hash = $1
	`, hash).Scan(&user.ID, &user.Email, &user.Name, &user.IsGuest, &user.CreatedAt, &expiresAt)

	if err == sql.ErrNoRows {
		return models.User{}, errUnknownSession
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to load session: %w", err)
	}

	if !time.Now().Before(expiresAt) {
		if _, err := db.ExecContext(ctx, `DELETE FROM session WHERE token_hash = $1`, hash); err != nil {
			slog.Error("failed to delete expired session", "error", err)
		}
		return models.User{}, errSessionExpired
	}

	return user, nil
}

// requireUser writes a 401 and returns false when the request carries no
// valid session
func requireUser(w http.ResponseWriter, r *http.Request, db *sql.DB, cfg cliparse.Config) (models.User, bool) {
	user, err := authenticate(r.Context(), db, cfg, r)
	switch {
	case err == nil:
		return user, true
	case errors.Is(err, errNoSession), errors.Is(err, errUnknownSession), errors.Is(err, errSessionExpired):
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
	default:
		slog.Error("failed to authenticate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
	return models.User{}, false
}

// openSession stores a new session for userID and returns the raw token
func openSession(ctx context.Context, ex execer, cfg cliparse.Config, userID string) (string, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", err
	}
	hash, err := auth.HashSessionToken(token, cfg.SessionSalt)
	if err != nil {
		return "", err
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = cliparse.DefaultSessionTTL
	}

	now := time.Now().UTC()
	_, err = ex.ExecContext(ctx, `
		INSERT INTO session (token_hash, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, hash, userID, now, now.Add(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}

	return token, nil
}
