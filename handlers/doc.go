// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Spin API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AuthHandler: Registration, login, guest accounts, sessions
  - RestaurantHandler: Nearby search and restaurant details
  - FavoritesHandler: Favorites, ratings and saved flags
  - HistoryHandler: Visit history
  - WheelHandler: Per-user wheel state and spins

Handlers are created via constructor functions:

	authHandler := handlers.NewAuthHandler(db, cfg)
	wheelHandler := handlers.NewWheelHandler(db, cfg, selector, clock)

# Sessions

Session tokens are random and only their salted HMAC is stored. Handlers
that need a user call requireUser, which answers 401 for missing, unknown
or expired tokens.

# Spins

A spin is planned when it starts and stored with its candidate snapshot:

	POST /wheel/spins       → StartSpin (202 with plan and signal offsets)
	GET  /wheel/spins/{id}  → GetSpin (settles once settles_at has passed)

Resolution is lazy. Whichever request first sees an expired spin resolves
it inside a transaction guarded by status = 'spinning', stores the
selection on the user's wheel and records a history entry.
*/
package handlers
