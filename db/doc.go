// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

Open picks the driver from the configured database type:

	conn, err := db.Open("postgres", "postgres://...") // github.com/lib/pq
	conn, err := db.Open("sqlite", "file:spin.db")     // modernc.org/sqlite

SQLite DSNs without explicit pragmas get a busy timeout, WAL journaling and
foreign key enforcement.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - app_user: registered and guest users
  - session: hashed session tokens with expiry
  - restaurant: restaurants seen in nearby searches
  - user_restaurant: favorite, visited and rating flags per user
  - history: visits, manual or chosen by the wheel
  - wheel_state: rotation, active spin and selection per user
  - spin: one row per spin with its drawn plan
  - spin_candidate: the candidate snapshot of a spin

# Relationships

	app_user 1──* session
	app_user *──* restaurant (via user_restaurant)
	app_user 1──* history
	app_user 1──1 wheel_state
	app_user 1──* spin
	spin 1──* spin_candidate

Foreign keys to users use ON DELETE CASCADE.
*/
package db
