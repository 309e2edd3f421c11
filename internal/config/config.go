// Package config collects runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the auction server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SessionSecret: HMAC secret for signing session JWTs (HS256).
//   - SessionTTL: session cookie and token lifetime.
type Config struct {
	Addr          string
	DatabaseDSN   string
	SessionSecret string
	SessionTTL    time.Duration
}

// Load builds a Config from environment variables, falling back to
// development defaults. The defaults are insecure and meant for local use.
func Load() *Config {
	cfg := &Config{
		Addr:          ":8080",
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		SessionSecret: "dev-session-secret",
		SessionTTL:    24 * time.Hour,
	}

	if p := os.Getenv("PORT"); p != "" {
		cfg.Addr = fmt.Sprintf(":%s", p)
	}
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		cfg.SessionSecret = s
	}
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.SessionTTL = d
		}
	}

	return cfg
}
