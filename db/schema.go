// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// sqlitePragmas are appended to SQLite DSNs that don't set their own.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// Open connects to PostgreSQL or SQLite and verifies the connection.
func Open(dbType, url string) (*sql.DB, error) {
	var driver string
	switch dbType {
	case "postgres":
		driver = "postgres"
	case "sqlite", "":
		driver = "sqlite"
		url = withSQLitePragmas(url)
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return conn, nil
}

func withSQLitePragmas(url string) string {
	if strings.Contains(url, "_pragma=") {
		return url
	}
	if strings.Contains(url, "?") {
		return url + "&" + sqlitePragmas
	}
	return url + "?" + sqlitePragmas
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// The statements stay within the SQL both drivers accept: no NOW(), no
// JSONB, no RETURNING. Timestamps are always written by the application.
var schema = []string{
	// Users
	`CREATE TABLE IF NOT EXISTS app_user (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT,
		is_guest BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL
	)`,

	// Sessions
	`CREATE TABLE IF NOT EXISTS session (
		token_hash TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_session_user_id ON session(user_id)`,

	// Restaurants (cache of places results)
	`CREATE TABLE IF NOT EXISTS restaurant (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		address TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		price_level INTEGER NOT NULL DEFAULT 0,
		photo_reference TEXT,
		fetched_at TIMESTAMP NOT NULL
	)`,

	// Per-user saved flags
	`CREATE TABLE IF NOT EXISTS user_restaurant (
		user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
		restaurant_id TEXT NOT NULL REFERENCES restaurant(id) ON DELETE CASCADE,
		is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
		is_visited BOOLEAN NOT NULL DEFAULT FALSE,
		user_rating INTEGER CHECK (user_rating IS NULL OR (user_rating >= 1 AND user_rating <= 5)),
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, restaurant_id)
	)`,

	// Visit history
	`CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
		restaurant_id TEXT NOT NULL REFERENCES restaurant(id) ON DELETE CASCADE,
		restaurant_name TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT 'manual' CHECK (source IN ('manual', 'wheel')),
		rating INTEGER,
		note TEXT NOT NULL DEFAULT '',
		visited_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_user_id ON history(user_id, visited_at)`,

	// Spins and their candidate snapshots
	`CREATE TABLE IF NOT EXISTS spin (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'spinning' CHECK (status IN ('spinning', 'settled', 'cancelled')),
		start_rotation DOUBLE PRECISION NOT NULL,
		final_rotation DOUBLE PRECISION NOT NULL,
		full_turns DOUBLE PRECISION NOT NULL,
		offset_degrees DOUBLE PRECISION NOT NULL,
		pointer_offset DOUBLE PRECISION NOT NULL DEFAULT 45,
		duration_ms INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		settles_at TIMESTAMP NOT NULL,
		selected_index INTEGER,
		resolved_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_spin_user_id ON spin(user_id)`,
	`CREATE TABLE IF NOT EXISTS spin_candidate (
		spin_id TEXT NOT NULL REFERENCES spin(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		restaurant_id TEXT NOT NULL,
		label TEXT NOT NULL,
		PRIMARY KEY (spin_id, position)
	)`,

	// One wheel per user
	`CREATE TABLE IF NOT EXISTS wheel_state (
		user_id TEXT PRIMARY KEY REFERENCES app_user(id) ON DELETE CASCADE,
		current_rotation DOUBLE PRECISION NOT NULL DEFAULT 0,
		active_spin_id TEXT,
		selected_index INTEGER,
		selected_restaurant_id TEXT,
		selected_label TEXT,
		updated_at TIMESTAMP NOT NULL
	)`,
}
