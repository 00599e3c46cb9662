// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadEnv reads an optional .env file, then ParseFlags returns a Config:

	if err := cliparse.LoadEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type (sqlite or postgres)
	-session-salt   Session token salt
	-session-ttl    Session lifetime
	-places-key     Places API key
	-places-url     Places API base URL
	-wheel-config   Wheel tuning YAML file
	-log-level      Log level

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	SESSION_SALT    → -session-salt
	SESSION_TTL     → -session-ttl
	PLACES_API_KEY  → -places-key
	PLACES_BASE_URL → -places-url
	WHEEL_CONFIG    → -wheel-config
	LOG_LEVEL       → -log-level

CLI flags take precedence over environment variables, which take precedence
over .env entries.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - SESSION_SALT is missing
  - DATABASE_TYPE is not sqlite or postgres
  - the wheel config file cannot be loaded or fails validation
*/
package cliparse
