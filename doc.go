// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Spin API server.

Quickly Spin answers "where should we eat?": it finds restaurants near the
user, keeps favorites, ratings and visit history, and picks one restaurant
with a randomized spinning wheel.

# Starting the Server

The server reads CLI flags, environment variables and an optional .env file:

	DATABASE_URL=file:spin.db SESSION_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -session-salt ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite DSN or PostgreSQL connection string
  - SESSION_SALT (-session-salt): Secret for session token HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - PLACES_API_KEY (-places-key): Enables nearby search
  - PLACES_BASE_URL (-places-url): Places API root
  - WHEEL_CONFIG (-wheel-config): YAML file with wheel tuning
  - LOG_LEVEL (-log-level): debug, info, warn or error
  - SESSION_TTL (-session-ttl): Session lifetime (default: 720h)

# Architecture

  - handlers: HTTP request handlers (accounts, restaurants, favorites, history, wheel)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, session token extraction
  - models: Request/response types
  - auth: Passwords, session tokens, IDs
  - db: Connection and schema creation
  - cliparse: Configuration parsing
  - places: Places API client, filters and map links
  - wheel: Wheel selection math, spin scheduling and the in-process driver
  - tui: Terminal wheel used by cmd/wheel

See package documentation for each component.
*/
package main
