// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Spin API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, router.Services{Places: client})

Zero-valued Services fields fall back to a places client built from cfg,
a selector with a crypto random source, and the system clock.

# Endpoints

Health:

	GET /health

Accounts:

	POST /auth/register - Create account, returns session token
	POST /auth/login    - Open a session
	POST /auth/guest    - Create a guest account
	POST /auth/logout   - Close the current session
	GET  /users/me      - Current user and counters

Restaurants:

	GET    /restaurants/nearby      - Nearby search with filters
	GET    /restaurants/{id}        - Details, photo and map links
	POST   /restaurants/{id}/rating - Rate 1-5 (marks visited)
	DELETE /restaurants/{id}/saved  - Forget saved flags

Favorites and history (session required):

	GET    /favorites
	PUT    /favorites/{id}
	DELETE /favorites/{id}
	GET    /history
	POST   /history

Wheel (session required):

	GET  /wheel                   - Rotation, spinning flag, selection
	POST /wheel/spins             - Start a spin
	GET  /wheel/spins/{id}        - Spin status, settles when due
	POST /wheel/spins/{id}/cancel - Cancel an in-flight spin

Authenticated requests send the token in X-Session-Token or as a bearer
token.
*/
package router
