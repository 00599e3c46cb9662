// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/quickly-spin/places"
	"github.com/danielhkuo/quickly-spin/wheel"
)

const (
	DefaultPort       = 3318
	DefaultSessionTTL = 30 * 24 * time.Hour
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	SessionSalt   string
	SessionTTL    time.Duration
	PlacesAPIKey  string
	PlacesBaseURL string
	WheelConfig   string
	LogLevel      string

	// Wheel is loaded from WheelConfig, or the defaults when unset
	Wheel wheel.Config
}

// LoadEnv loads variables from a .env file into the environment.
// A missing file is not an error; variables already set win.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags reads flags, falls back to environment variables, and validates
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var ttl string

	fs := flag.NewFlagSet("quickly-spin", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSalt, "session-salt", "", "Session token salt (prefer env)")
	fs.StringVar(&cfg.PlacesAPIKey, "places-key", "", "Places API key (prefer env)")

	fs.StringVar(&cfg.PlacesBaseURL, "places-url", "", "Places API base URL")
	fs.StringVar(&cfg.WheelConfig, "wheel-config", "", "Wheel tuning YAML file")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&ttl, "session-ttl", "", "Session lifetime (e.g. 720h)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	cfg.DatabaseType = firstNonEmpty(cfg.DatabaseType, os.Getenv("DATABASE_TYPE"), "sqlite")
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	cfg.SessionSalt = firstNonEmpty(cfg.SessionSalt, os.Getenv("SESSION_SALT"))
	if cfg.SessionSalt == "" {
		return Config{}, errors.New("SESSION_SALT required")
	}

	// Optional: without a key nearby search answers 503
	cfg.PlacesAPIKey = firstNonEmpty(cfg.PlacesAPIKey, os.Getenv("PLACES_API_KEY"))
	cfg.PlacesBaseURL = firstNonEmpty(cfg.PlacesBaseURL, os.Getenv("PLACES_BASE_URL"), places.DefaultBaseURL)

	cfg.LogLevel = strings.ToLower(firstNonEmpty(cfg.LogLevel, os.Getenv("LOG_LEVEL"), "info"))
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}

	ttl = firstNonEmpty(ttl, os.Getenv("SESSION_TTL"))
	cfg.SessionTTL = DefaultSessionTTL
	if ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid session TTL %q", ttl)
		}
		cfg.SessionTTL = d
	}

	cfg.WheelConfig = firstNonEmpty(cfg.WheelConfig, os.Getenv("WHEEL_CONFIG"))
	cfg.Wheel = wheel.DefaultConfig()
	if cfg.WheelConfig != "" {
		wc, err := wheel.LoadConfig(cfg.WheelConfig)
		if err != nil {
			return Config{}, err
		}
		cfg.Wheel = wc
	}

	return cfg, nil
}

// ParseLevel maps a level name onto slog
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
